package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gsm-perf/performance/backend/internal/config"
)

// ErrEditConflict signale une écriture conditionnelle refusée : la version lue est périmée.
var ErrEditConflict = errors.New("edit conflict")

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}
