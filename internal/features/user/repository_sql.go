package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go-approvals/internal/common/apperr"
	"go-approvals/internal/common/models"
	"go-approvals/internal/database"

	"github.com/google/uuid"
)

const userColumns = `id, username, email, role, organization_id, team_id, timezone, created_at`

type UserRepositorySQL struct {
	db *database.Database
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	var role string
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &role, &u.OrganizationID, &u.TeamID, &u.Timezone, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.CreatedAt = models.Normalize(u.CreatedAt)
	return &u, nil
}

func (r *UserRepositorySQL) Create(ctx context.Context, user *models.User) error {
	prepareUser(user)
	_, err := r.db.Querier(ctx).ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		user.ID, user.Username, user.Email, string(user.Role),
		user.OrganizationID, user.TeamID, user.Timezone, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepositorySQL) FindByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user %s", id)
	}
	return u, err
}

func (r *UserRepositorySQL) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user %q", username)
	}
	return u, err
}

func (r *UserRepositorySQL) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`) ORDER BY created_at, id`, args...)
}

func (r *UserRepositorySQL) FindFirstByRole(ctx context.Context, role models.Role) (*models.User, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx, r.db.Rebind(`
		SELECT `+userColumns+` FROM users
		WHERE role = ?
		ORDER BY created_at, id
		LIMIT 1`), string(role))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *UserRepositorySQL) ListByRoles(ctx context.Context, roles []models.Role) ([]models.User, error) {
	if len(roles) == 0 {
		return []models.User{}, nil
	}
	args := make([]any, len(roles))
	for i, role := range roles {
		args[i] = string(role)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roles)), ",")
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE role IN (`+placeholders+`) ORDER BY username`, args...)
}

func (r *UserRepositorySQL) List(ctx context.Context) ([]models.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
}

func (r *UserRepositorySQL) query(ctx context.Context, q string, args ...any) ([]models.User, error) {
	rows, err := r.db.Querier(ctx).QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func prepareUser(user *models.User) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = models.Now()
	} else {
		user.CreatedAt = models.Normalize(user.CreatedAt)
	}
	if user.Role == "" {
		user.Role = models.RoleEmployee
	}
	if user.Timezone == "" {
		user.Timezone = "UTC"
	}
}
