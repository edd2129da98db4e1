package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/satbot/core/logger"
)

const uniqueViolation = pq.ErrorCode("23505")

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository implements Repository on the users table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wraps an open database handle.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the user with telegramID or ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, telegramID int64) (*Record, error) {
	const query = `
		SELECT id, telegram_id, full_name, username, phone, age, created_at
		FROM users
		WHERE telegram_id = $1`

	var rec Record
	if err := r.db.GetContext(ctx, &rec, query, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", telegramID, err)
	}
	return &rec, nil
}

// Add inserts a new user. A duplicate Telegram ID yields ErrAlreadyExists.
func (r *PostgresRepository) Add(ctx context.Context, u NewUser) (*Record, error) {
	const query = `
		INSERT INTO users (telegram_id, full_name, username, phone, age)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, telegram_id, full_name, username, phone, age, created_at`

	start := time.Now()
	var rec Record
	err := r.db.QueryRowxContext(ctx, query, u.TelegramID, u.FullName, u.Username, u.Phone, u.Age).StructScan(&rec)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert user %d: %w", u.TelegramID, err)
	}
	logger.DB.LogAttrs(ctx, slog.LevelDebug, "user inserted",
		slog.String("event", "db.insert"),
		slog.String("table", "users"),
		slog.Int64("user_id", rec.TelegramID),
		slog.Duration("duration", logger.Took(start)),
	)
	return &rec, nil
}

// Count returns the number of stored users.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
