package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gsm-perf/performance/backend/internal/domain"
)

const userColumns = `id, first_name, last_name, email, password_hash, role, team, group_name, department, contact, neighborhood, status, created_at, version`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	user := &domain.User{}
	dst := []any{
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Team,
		&user.Group,
		&user.Department,
		&user.Contact,
		&user.Neighborhood,
		&user.Status,
		&user.CreatedAt,
		&user.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanUser(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanUser(r.dbpool.QueryRowContext(ctx, query, strings.ToLower(email)))
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, password_hash, role, team, group_name, department, contact, neighborhood, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user.Email = strings.ToLower(user.Email)
	args := []any{
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Team,
		user.Group,
		user.Department,
		user.Contact,
		user.Neighborhood,
		user.Status,
	}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.Version)
}

// UpdateUser n'écrit que si la version n'a pas bougé depuis la lecture.
func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET
			first_name = $1,
			last_name = $2,
			email = $3,
			password_hash = $4,
			role = $5,
			team = $6,
			group_name = $7,
			department = $8,
			status = $9,
			version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{
		user.FirstName,
		user.LastName,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
		user.Team,
		user.Group,
		user.Department,
		user.Status,
		user.ID,
		user.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return err
	}

	return nil
}

type UserFilter struct {
	Status domain.UserStatus
	Team   string
	Roles  []domain.Role
}

func (f UserFilter) where() (string, []any) {
	conds := []string{}
	args := []any{}

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Team != "" && f.Team != AllSentinel {
		args = append(args, f.Team)
		conds = append(conds, fmt.Sprintf("team = $%d", len(args)))
	}
	if len(f.Roles) > 0 {
		roles := make([]string, len(f.Roles))
		for i, role := range f.Roles {
			roles[i] = string(role)
		}
		args = append(args, roles)
		conds = append(conds, fmt.Sprintf("role = ANY($%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repository) ListUsers(ctx context.Context, filter UserFilter) ([]*domain.User, error) {
	where, args := filter.where()
	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY last_name, first_name, id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) CountUsers(ctx context.Context, filter UserFilter) (int, error) {
	where, args := filter.where()
	query := `SELECT COUNT(*) FROM users` + where

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var total int
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *Repository) CheckEmailIfExists(ctx context.Context, email string) (bool, error) {
	isExists := false

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}
