// Package repository persists users and listings in PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uyizlang/uyizlangbot/internal/domain"
)

// UserRepository stores bot users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository wraps db.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, telegram_id, phone, location, language, created_at`

// Create inserts a user keyed by telegram id. A repeated registration keeps
// the row and only refreshes the language.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, language string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `
		INSERT INTO users (telegram_id, language)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE SET language = EXCLUDED.language
		RETURNING `+userColumns, telegramID, language)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// GetByTelegramID returns domain.ErrNotFound for unknown users.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// UpdatePhone sets the phone of the user with telegramID.
func (r *UserRepository) UpdatePhone(ctx context.Context, telegramID int64, phone string) error {
	return r.updateColumn(ctx, "phone", telegramID, phone)
}

// UpdateLocation sets the location of the user with telegramID.
func (r *UserRepository) UpdateLocation(ctx context.Context, telegramID int64, location string) error {
	return r.updateColumn(ctx, "location", telegramID, location)
}

func (r *UserRepository) updateColumn(ctx context.Context, column string, telegramID int64, value string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+column+` = $1 WHERE telegram_id = $2`, value, telegramID)
	if err != nil {
		return fmt.Errorf("update user %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user %s: %w", column, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
