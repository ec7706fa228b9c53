package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gsm-perf/performance/backend/internal/domain"
)

const feedbackColumns = `id, user_id, user_name, user_team, nature, visibility, message, date, status, version`

func scanFeedback(row interface{ Scan(...any) error }) (*domain.Feedback, error) {
	feedback := &domain.Feedback{}
	dst := []any{
		&feedback.ID,
		&feedback.UserID,
		&feedback.UserName,
		&feedback.UserTeam,
		&feedback.Nature,
		&feedback.Visibility,
		&feedback.Message,
		&feedback.Date,
		&feedback.Status,
		&feedback.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (r *Repository) CreateFeedback(ctx context.Context, feedback *domain.Feedback) error {
	query := `
		INSERT INTO feedbacks (user_id, user_name, user_team, nature, visibility, message, date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{
		feedback.UserID,
		feedback.UserName,
		feedback.UserTeam,
		feedback.Nature,
		feedback.Visibility,
		feedback.Message,
		feedback.Date,
		feedback.Status,
	}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&feedback.ID, &feedback.Version)
}

func (r *Repository) GetFeedbackByID(ctx context.Context, id int64) (*domain.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanFeedback(r.dbpool.QueryRowContext(ctx, query, id))
}

// UpdateFeedback ne modifie que le statut ; l'écriture est conditionnée par la version.
func (r *Repository) UpdateFeedback(ctx context.Context, feedback *domain.Feedback) error {
	query := `
		UPDATE feedbacks
		SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, feedback.Status, feedback.ID, feedback.Version).Scan(&feedback.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}
	return nil
}

type FeedbackFilter struct {
	From   *time.Time
	To     *time.Time
	Status domain.FeedbackStatus
	UserID int64
	Limit  int
}

func (f FeedbackFilter) where() (string, []any) {
	conds := []string{}
	args := []any{}

	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.UserID != 0 {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListFeedbacks renvoie les feedbacks du plus récent au plus ancien.
func (r *Repository) ListFeedbacks(ctx context.Context, filter FeedbackFilter) ([]*domain.Feedback, error) {
	where, args := filter.where()
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks` + where + ` ORDER BY date DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedbacks := make([]*domain.Feedback, 0)
	for rows.Next() {
		feedback, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, feedback)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return feedbacks, nil
}

func (r *Repository) CountFeedbacks(ctx context.Context, filter FeedbackFilter) (int, error) {
	where, args := filter.where()
	query := `SELECT COUNT(*) FROM feedbacks` + where

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var total int
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *Repository) CountFeedbacksByStatus(ctx context.Context, status domain.FeedbackStatus) (int, error) {
	return r.CountFeedbacks(ctx, FeedbackFilter{Status: status})
}
