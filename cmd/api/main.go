package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gsm-perf/performance/backend/internal/config"
	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/handler"
	"github.com/gsm-perf/performance/backend/internal/orgconfig"
	"github.com/gsm-perf/performance/backend/internal/refresher"
	"github.com/gsm-perf/performance/backend/internal/report"
	"github.com/gsm-perf/performance/backend/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

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
		logger.Error("impossible de charger la configuration", "error", err)
		return
	}

	/**********************************************
	 * base de données
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("impossible de créer le pool de connexions", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open ne se connecte pas, le ping vérifie que la base répond
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("impossible de joindre la base de données", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * administrateur principal initial
	 **********************************************/
	if err := ensureInitialAdmin(ctx, cfg, repo); err != nil {
		logger.Error("impossible de créer l'administrateur initial", "error", err)
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("impossible de se connecter à rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("impossible d'ouvrir un canal", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		"email_queue",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("impossible de déclarer la file", "error", err)
		return
	}

	/**********************************************
	 * redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("impossible de joindre redis", "error", err)
		return
	}

	/**********************************************
	 * services et rafraîchissement de la vue d'ensemble
	 **********************************************/
	reports := report.NewService(cfg, repo)
	settings := orgconfig.NewService(repo)
	snapshots := refresher.NewRedisSnapshots(rdb, time.Duration(cfg.Dashboard.OverviewCacheTTL)*time.Second)
	overview := refresher.New(cfg, reports, snapshots, logger)
	if err := overview.Start(); err != nil {
		logger.Error("impossible de planifier le rafraîchissement", "error", err)
		return
	}

	/**********************************************
	 * handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, ch, rdb, reports, settings, overview)
	if err != nil {
		logger.Error("impossible de créer le handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * serveur HTTP
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("démarrage du serveur...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("impossible de démarrer le serveur", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("arrêt du serveur...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("échec de l'arrêt du serveur", slog.String("error", err.Error()))
	}
	overview.Stop(ctx)
	logger.Info("serveur arrêté")
}

// ensureInitialAdmin crée le compte adminP de la configuration s'il n'existe pas encore.
func ensureInitialAdmin(ctx context.Context, cfg *config.Config, repo *repository.Repository) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	initialAdmin := &domain.User{
		FirstName:    cfg.InitialAdmin.FirstName,
		LastName:     cfg.InitialAdmin.LastName,
		Email:        cfg.InitialAdmin.Email,
		PasswordHash: string(passwordHash),
		Role:         domain.RolePrincipalAdmin,
		Team:         "Supervision",
		Department:   domain.DefaultDepartment,
		Status:       domain.UserStatusActive,
	}
	if err := repo.CreateUser(ctx, initialAdmin); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key" {
			// déjà présent
			return nil
		}
		return err
	}
	return nil
}
