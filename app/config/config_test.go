package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMemoryBackends(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: abc
admins: [11, 22]
catalog:
  root: ./docs
  extensions: [PDF, docx]
validation:
  age_max: 120
storage:
  users: memory
  session_ttl: 24h
sender:
  max_retries: 2
  retry_backoff: 1s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Telegram.Token)
	assert.Equal(t, "longpoll", cfg.CoreConfig().Telegram.RunMode)
	assert.Equal(t, []int64{11, 22}, cfg.Admins)
	assert.Equal(t, "./docs", cfg.Catalog.Root)
	assert.Equal(t, []string{".pdf", ".docx"}, cfg.Catalog.Extensions)
	assert.Equal(t, 120, cfg.Validation.AgeMax)
	assert.Equal(t, UsersMemory, cfg.Storage.Users)
	assert.Equal(t, SessionsMemory, cfg.Storage.Sessions)
	assert.Equal(t, 24*time.Hour, cfg.Storage.SessionTTL)
	assert.False(t, cfg.UsesPostgres())
	assert.False(t, cfg.UsesRedis())

	opts := cfg.Sender.Options()
	assert.Equal(t, 2, opts.MaxRetries)
	assert.Equal(t, time.Second, opts.RetryBackoff)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: abc\nstorage:\n  users: memory\n")
	t.Setenv("ADMINS", "7,8")
	t.Setenv("CATALOG_ROOT", "/srv/files")
	t.Setenv("VALIDATION_PHONE_MIN_DIGITS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, cfg.Admins)
	assert.Equal(t, "/srv/files", cfg.Catalog.Root)
	assert.Equal(t, 7, cfg.Validation.PhoneMinDigits)
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "abc"
	cfg.Database.Host = "db"
	cfg.Database.Port = "5432"
	cfg.Database.User = "bot"
	cfg.Database.Name = "sat"

	require.NoError(t, Normalize(cfg))
	assert.Equal(t, "files", cfg.Catalog.Root)
	assert.NotEmpty(t, cfg.Catalog.Extensions)
	assert.Equal(t, UsersPostgres, cfg.Storage.Users)
	assert.Equal(t, SessionsMemory, cfg.Storage.Sessions)
	assert.Equal(t, "satbot:reg", cfg.Storage.SessionPrefix)
}

func TestNormalizeErrors(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Telegram.Token = "abc"
		cfg.Storage.Users = UsersMemory
		return cfg
	}

	cfg := base()
	cfg.Storage.Users = "mysql"
	assert.ErrorContains(t, Normalize(cfg), "storage.users")

	cfg = base()
	cfg.Storage.Sessions = "redis"
	assert.ErrorContains(t, Normalize(cfg), "redis.addr")

	cfg = base()
	cfg.Storage.Users = UsersPostgres
	assert.ErrorContains(t, Normalize(cfg), "database")

	cfg = base()
	cfg.Admins = []int64{0}
	assert.ErrorContains(t, Normalize(cfg), "admins")

	cfg = base()
	cfg.Validation.AgeMin = 50
	cfg.Validation.AgeMax = 10
	assert.ErrorContains(t, Normalize(cfg), "age_min")

	cfg = base()
	cfg.Telegram.Token = ""
	assert.ErrorContains(t, Normalize(cfg), "token")
}
