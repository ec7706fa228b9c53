package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gsm-perf/performance/backend/internal/domain"
)

const performanceColumns = `id, date, user_id, user_name, team, case_type, resolved, unreachable, untreated, created_at`

func (r *Repository) CreatePerformance(ctx context.Context, record *domain.PerformanceRecord) error {
	query := `
		INSERT INTO performance_records (date, user_id, user_name, team, case_type, resolved, unreachable, untreated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{
		dateOnly(record.Date),
		record.UserID,
		record.UserName,
		record.Team,
		record.CaseType,
		record.Resolved,
		record.Unreachable,
		record.Untreated,
	}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.CreatedAt)
}

// ListPerformance renvoie la page demandée et le nombre total de saisies correspondant au
// filtre, indépendamment de Limit et Offset.
func (r *Repository) ListPerformance(ctx context.Context, filter PerformanceFilter) ([]*domain.PerformanceRecord, int, error) {
	where, args, err := buildPerformanceWhere(filter)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + performanceColumns + `, COUNT(*) OVER() FROM performance_records` + where + buildPerformanceOrder(filter)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	total := 0
	records := make([]*domain.PerformanceRecord, 0)
	for rows.Next() {
		record := &domain.PerformanceRecord{}
		dst := []any{
			&record.ID,
			&record.Date,
			&record.UserID,
			&record.UserName,
			&record.Team,
			&record.CaseType,
			&record.Resolved,
			&record.Unreachable,
			&record.Untreated,
			&record.CreatedAt,
			&total,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListUserPerformance renvoie les saisies d'un agent entre from et to inclus, les plus récentes d'abord.
func (r *Repository) ListUserPerformance(ctx context.Context, userID int64, from, to time.Time) ([]*domain.PerformanceRecord, error) {
	records, _, err := r.ListPerformance(ctx, PerformanceFilter{
		From:       &from,
		To:         &to,
		UserIDs:    []string{fmt.Sprintf("%d", userID)},
		OrderBy:    "date",
		Descending: true,
	})
	return records, err
}
