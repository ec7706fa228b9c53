package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gsm-perf/performance/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const mailQueue = "email_queue"

// publishMail dépose le message dans la file consommée par le worker cmd/mail.
func (h *Handler) publishMail(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		mailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
