package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/satbot/core/config"
	coredatabase "github.com/m3rciful/satbot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunNilConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	require.Error(t, err)
}

func TestRunSkipsOptionalSteps(t *testing.T) {
	called := false
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			called = true
			return nil, nil
		},
		ConnectRedis: func(context.Context, coreconfig.RedisConfig) (*redis.Client, error) {
			called = true
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Nil(t, res.DB)
	assert.Nil(t, res.Redis)
	assert.NoError(t, res.Close())
}

func TestRunPropagatesFailures(t *testing.T) {
	boom := errors.New("boom")

	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return boom },
	})
	assert.ErrorIs(t, err, boom)

	_, err = Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{},
		LoggerInit: noLogger,
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return nil, boom },
	})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "database")

	_, err = Run(context.Background(), Options{
		Config:       &coreconfig.Config{},
		Redis:        &coreconfig.RedisConfig{Addr: "localhost:0"},
		LoggerInit:   noLogger,
		ConnectRedis: func(context.Context, coreconfig.RedisConfig) (*redis.Client, error) { return nil, boom },
	})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "redis")
}

func TestRunMigratesAfterConnect(t *testing.T) {
	var steps []string
	db := sqlx.NewDb(nil, "postgres")
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{Name: "sat"},
		LoggerInit: noLogger,
		Connect: func(cfg coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect:"+cfg.Name)
			return db, nil
		},
		Migrate: func(cfg coredatabase.Config) error {
			steps = append(steps, "migrate:"+cfg.Name)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"connect:sat", "migrate:sat"}, steps)
}
