// Package users stores registered bot users.
package users

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no user has the requested Telegram ID.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when a user with the same Telegram ID is already stored.
	ErrAlreadyExists = errors.New("user already exists")
)

// Record is a persisted user.
type Record struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	FullName   string    `db:"full_name"`
	Username   *string   `db:"username"`
	Phone      string    `db:"phone"`
	Age        int       `db:"age"`
	CreatedAt  time.Time `db:"created_at"`
}

// NewUser carries the fields collected by the registration dialog.
type NewUser struct {
	TelegramID int64
	FullName   string
	Username   *string
	Phone      string
	Age        int
}

// Repository is the user store used by the bot.
type Repository interface {
	Get(ctx context.Context, telegramID int64) (*Record, error)
	Add(ctx context.Context, u NewUser) (*Record, error)
	Count(ctx context.Context) (int, error)
}
