package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jolanboyev/ehson-backend/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	const query = `
SELECT user_id, username, first_name, created_at FROM users WHERE user_id = ?`
	row := r.db.QueryRowContext(ctx, query, userID)
	var u models.User
	if err := row.Scan(&u.UserID, &u.Username, &u.FirstName, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Upsert fully replaces the row for the given user id, matching the
// insert-or-replace semantics of the callback flow.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	const query = `
INSERT INTO users (user_id, username, first_name, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    username = excluded.username,
    first_name = excluded.first_name,
    created_at = excluded.created_at`
	if _, err := r.db.ExecContext(ctx, query, user.UserID, user.Username, user.FirstName, user.CreatedAt); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// Register inserts the user only if unseen, keeping the original registration
// row (and its timestamp) on repeat /start commands.
func (r *UserRepository) Register(ctx context.Context, user *models.User) error {
	const query = `
INSERT INTO users (user_id, username, first_name, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, user.UserID, user.Username, user.FirstName, user.CreatedAt); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}
