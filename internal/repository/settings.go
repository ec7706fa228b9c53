package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gsm-perf/performance/backend/internal/domain"
)

// GetSetting renvoie sql.ErrNoRows quand la clé n'a jamais été enregistrée.
func (r *Repository) GetSetting(ctx context.Context, key string) (*domain.Setting, error) {
	query := `
		SELECT id, value, updated_at, version
		FROM settings WHERE key = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	setting := &domain.Setting{
		Key: key,
	}

	dst := []any{&setting.ID, &setting.Value, &setting.UpdatedAt, &setting.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, key).Scan(dst...); err != nil {
		return nil, err
	}

	return setting, nil
}

// CreateSetting échoue avec ErrEditConflict si un autre écrivain a créé la clé entre-temps.
func (r *Repository) CreateSetting(ctx context.Context, setting *domain.Setting) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
		RETURNING id, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	dst := []any{&setting.ID, &setting.UpdatedAt, &setting.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, setting.Key, setting.Value).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}

	return nil
}

// UpdateSetting réécrit toute la valeur à condition que la version lue soit toujours la courante.
func (r *Repository) UpdateSetting(ctx context.Context, setting *domain.Setting) error {
	query := `
		UPDATE settings
		SET value = $1, updated_at = NOW(), version = version + 1
		WHERE key = $2 AND version = $3
		RETURNING updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	dst := []any{&setting.UpdatedAt, &setting.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, setting.Value, setting.Key, setting.Version).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}

	return nil
}
