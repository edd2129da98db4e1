// Package config holds the bot configuration on top of the shared core config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/satbot/app/catalog"
	"github.com/m3rciful/satbot/app/validate"
	coreconfig "github.com/m3rciful/satbot/core/config"
	coredatabase "github.com/m3rciful/satbot/core/database"
	tgsender "github.com/m3rciful/satbot/core/telegram/sender"
)

// Storage backends.
const (
	UsersPostgres  = "postgres"
	UsersMemory    = "memory"
	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

// CatalogConfig points at the downloadable files.
type CatalogConfig struct {
	// Root contains <category>/<subject>/ directories.
	Root       string   `yaml:"root" envconfig:"CATALOG_ROOT"`
	Extensions []string `yaml:"extensions" envconfig:"CATALOG_EXTENSIONS"`
}

// StorageConfig selects where users and conversations are kept.
type StorageConfig struct {
	Users         string        `yaml:"users" envconfig:"STORAGE_USERS"`
	Sessions      string        `yaml:"sessions" envconfig:"STORAGE_SESSIONS"`
	SessionPrefix string        `yaml:"session_prefix" envconfig:"STORAGE_SESSION_PREFIX"`
	SessionTTL    time.Duration `yaml:"session_ttl" envconfig:"STORAGE_SESSION_TTL"`
}

// SenderConfig tunes the retrying queue used for admin notices.
type SenderConfig struct {
	QueueSize    int           `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers      int           `yaml:"workers" envconfig:"SENDER_WORKERS"`
	MaxRetries   int           `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
	RetryBackoff time.Duration `yaml:"retry_backoff" envconfig:"SENDER_RETRY_BACKOFF"`
}

// Options converts c to dispatcher options.
func (c SenderConfig) Options() tgsender.Options {
	return tgsender.Options{
		QueueSize:    c.QueueSize,
		Workers:      c.Workers,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
	}
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	// Admins receive a notice for every new registration and may use /stats.
	Admins     []int64             `yaml:"admins" envconfig:"ADMINS"`
	Catalog    CatalogConfig       `yaml:"catalog"`
	Validation validate.Rules      `yaml:"validation"`
	Storage    StorageConfig       `yaml:"storage"`
	Database   coredatabase.Config `yaml:"database"`
	Sender     SenderConfig        `yaml:"sender"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// UsesPostgres reports whether users are stored in Postgres.
func (c *Config) UsesPostgres() bool { return c.Storage.Users == UsersPostgres }

// UsesRedis reports whether conversations are stored in Redis.
func (c *Config) UsesRedis() bool { return c.Storage.Sessions == SessionsRedis }

// Load reads the YAML file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	for _, id := range cfg.Admins {
		if id <= 0 {
			return fmt.Errorf("admins: invalid user id %d", id)
		}
	}

	cfg.Catalog.Root = strings.TrimSpace(cfg.Catalog.Root)
	if cfg.Catalog.Root == "" {
		cfg.Catalog.Root = "files"
	}
	exts := make([]string, 0, len(cfg.Catalog.Extensions))
	for _, e := range cfg.Catalog.Extensions {
		if n := catalog.NormalizeExtension(e); n != "" {
			exts = append(exts, n)
		}
	}
	if len(exts) == 0 {
		exts = append(exts, catalog.DefaultExtensions...)
	}
	cfg.Catalog.Extensions = exts

	if err := cfg.Validation.Check(); err != nil {
		return err
	}

	cfg.Storage.Users = strings.ToLower(strings.TrimSpace(cfg.Storage.Users))
	switch cfg.Storage.Users {
	case "":
		cfg.Storage.Users = UsersPostgres
	case UsersPostgres, UsersMemory:
	default:
		return fmt.Errorf("invalid storage.users %q; allowed: postgres, memory", cfg.Storage.Users)
	}

	cfg.Storage.Sessions = strings.ToLower(strings.TrimSpace(cfg.Storage.Sessions))
	switch cfg.Storage.Sessions {
	case "":
		cfg.Storage.Sessions = SessionsMemory
	case SessionsMemory:
	case SessionsRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return fmt.Errorf("redis.addr is required when storage.sessions is 'redis'")
		}
	default:
		return fmt.Errorf("invalid storage.sessions %q; allowed: memory, redis", cfg.Storage.Sessions)
	}
	if cfg.Storage.SessionTTL < 0 {
		return fmt.Errorf("storage.session_ttl must be >= 0")
	}
	if cfg.Storage.SessionPrefix == "" {
		cfg.Storage.SessionPrefix = "satbot:reg"
	}

	if cfg.UsesPostgres() {
		db := cfg.Database
		if db.Host == "" || db.Port == "" || db.User == "" || db.Name == "" {
			return fmt.Errorf("database host, port, user and name are required when storage.users is 'postgres'")
		}
	}

	if cfg.Sender.QueueSize < 0 || cfg.Sender.Workers < 0 || cfg.Sender.MaxRetries < 0 || cfg.Sender.RetryBackoff < 0 {
		return fmt.Errorf("sender settings must be >= 0")
	}
	return nil
}
