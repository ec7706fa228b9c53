package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/gsm-perf/performance/backend/internal/config"
	"github.com/gsm-perf/performance/backend/internal/domain"
	"github.com/gsm-perf/performance/backend/internal/orgconfig"
	"github.com/gsm-perf/performance/backend/internal/repository"
	"github.com/gsm-perf/performance/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var days int
	var file string

	flag.IntVar(&op, "op", 0, "opération (1: agents aléatoires, 2: historique aléatoire, 3: import CSV)")
	flag.IntVar(&n, "n", 5, "nombre d'agents à créer")
	flag.IntVar(&days, "days", 30, "nombre de jours d'historique à générer")
	flag.StringVar(&file, "file", "", "fichier CSV date,email,caseType,resolved,unreachable,untreated")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("impossible de charger la configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

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

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("impossible de joindre la base de données", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	ctx = context.Background()

	switch op {
	case 0:
		slog.Error("aucune opération indiquée")
	case 1:
		if n <= 0 {
			slog.Error("nombre d'agents invalide")
			return
		}
		teams, err := orgconfig.NewService(repo).Teams(ctx)
		if err != nil {
			slog.Error("impossible de lire les équipes", slog.String("error", err.Error()))
			return
		}
		created := seed.RandomUsers(ctx, repo, n, cfg.Seed.User.Password, cfg.Email.UserDomain, teams.Teams)
		slog.Info("agents créés", slog.Int("count", created))
	case 2:
		if days <= 0 {
			slog.Error("nombre de jours invalide")
			return
		}
		users, err := repo.ListUsers(ctx, repository.UserFilter{
			Status: domain.UserStatusActive,
			Roles:  []domain.Role{domain.RoleAgent, domain.RoleAgentC, domain.RoleSupervisor},
		})
		if err != nil {
			slog.Error("impossible de lister les agents", slog.String("error", err.Error()))
			return
		}
		inserted, err := seed.RandomHistory(ctx, repo, users, days, time.Now())
		if err != nil {
			slog.Error("génération interrompue", slog.Int("inserted", inserted), slog.String("error", err.Error()))
			return
		}
		slog.Info("historique généré", slog.Int("count", inserted))
	case 3:
		f, err := os.Open(file)
		if err != nil {
			slog.Error("impossible d'ouvrir le fichier", slog.String("error", err.Error()))
			return
		}
		defer f.Close()

		result, err := seed.ImportHistory(ctx, repo, f, time.Local)
		if err != nil {
			slog.Error("import interrompu", slog.Int("imported", result.Imported), slog.String("error", err.Error()))
			return
		}
		slog.Info("import terminé", slog.Int("imported", result.Imported), slog.Int("skipped", result.Skipped))
	default:
		slog.Error("opération inconnue")
	}
}
