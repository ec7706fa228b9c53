package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gsm-perf/performance/backend/internal/config"
	"github.com/gsm-perf/performance/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

const templateDir = "./templates"

type mailTemplate struct {
	file    string
	subject string
}

var mailTemplates = map[string]mailTemplate{
	domain.MailTypeCreateUser:       {file: "new_account_email.html", subject: "GSM Performance - Votre compte"},
	domain.MailTypeResetPassword:    {file: "reset_password_otp_email.html", subject: "GSM Performance - Réinitialisation du mot de passe"},
	domain.MailTypeAccountActivated: {file: "account_activated_email.html", subject: "GSM Performance - Compte activé"},
}

var errUnknownMailType = errors.New("type de mail non pris en charge")

// buildMessage construit le mail correspondant au message de la file. Toute erreur est définitive.
func buildMessage(dir, from string, body []byte) (*mail.Msg, error) {
	mailMessage := domain.MailMessage{}
	if err := json.Unmarshal(body, &mailMessage); err != nil {
		return nil, err
	}

	mt, ok := mailTemplates[mailMessage.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownMailType, mailMessage.Type)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(mailMessage.To); err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFiles(filepath.Join(dir, mt.file))
	if err != nil {
		return nil, err
	}
	if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
		return nil, err
	}
	m.Subject(mt.subject)

	return m, nil
}

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("impossible de charger la configuration", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * client SMTP
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("impossible de créer le client SMTP", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	dialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancelDial()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("impossible de joindre le serveur SMTP", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("impossible de se connecter à rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("impossible d'ouvrir un canal", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"email_queue", // nom
		true,          // durable
		false,         // pas de suppression automatique sans consommateur
		false,         // non exclusive
		false,         // attendre la confirmation du broker
		nil,
	)
	if err != nil {
		logger.Error("impossible de déclarer la file", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",    // identifiant attribué par le broker
		false, // acquittement manuel
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("impossible de consommer la file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("la file a été fermée")
					return
				}

				m, err := buildMessage(templateDir, cfg.Email.SMTP.Username, msg.Body)
				if err != nil {
					logger.Error("message rejeté", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("échec de l'envoi du mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // remis en file
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("en attente de messages... (CTRL+C pour quitter)")
	<-sigChan

	slog.Info("arrêt du worker mail...")
	cancel()
	wg.Wait()
	slog.Info("worker mail arrêté")
}
