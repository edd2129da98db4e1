package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisManager keeps sessions as JSON values under "<prefix>:<userID>".
// A zero TTL keeps sessions until they are cleared.
type RedisManager[D any] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ Manager[struct{}] = (*RedisManager[struct{}])(nil)

// NewRedisManager constructs a Redis-backed Manager.
func NewRedisManager[D any](client redis.Cmdable, prefix string, ttl time.Duration) *RedisManager[D] {
	if prefix == "" {
		prefix = "fsm"
	}
	return &RedisManager[D]{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the Redis key holding the session of userID.
func (m *RedisManager[D]) Key(userID int64) string {
	return fmt.Sprintf("%s:%d", m.prefix, userID)
}

// Get loads the session for userID; a missing key yields an idle session.
func (m *RedisManager[D]) Get(ctx context.Context, userID int64) (Session[D], error) {
	raw, err := m.client.Get(ctx, m.Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session[D]{State: StateIdle}, nil
	}
	if err != nil {
		return Session[D]{}, fmt.Errorf("state: redis get: %w", err)
	}
	var session Session[D]
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session[D]{}, fmt.Errorf("state: decode session: %w", err)
	}
	return session, nil
}

// Set stores the session; an idle session deletes the key.
func (m *RedisManager[D]) Set(ctx context.Context, userID int64, session Session[D]) error {
	if session.Idle() {
		return m.Clear(ctx, userID)
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("state: encode session: %w", err)
	}
	if err := m.client.Set(ctx, m.Key(userID), raw, m.ttl).Err(); err != nil {
		return fmt.Errorf("state: redis set: %w", err)
	}
	return nil
}

// Clear deletes the stored session.
func (m *RedisManager[D]) Clear(ctx context.Context, userID int64) error {
	if err := m.client.Del(ctx, m.Key(userID)).Err(); err != nil {
		return fmt.Errorf("state: redis del: %w", err)
	}
	return nil
}
