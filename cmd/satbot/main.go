// Command satbot runs the SAT prep Telegram bot.
package main

import (
	"context"
	"log"

	"github.com/m3rciful/satbot/app/bot"
	appconfig "github.com/m3rciful/satbot/app/config"
	"github.com/m3rciful/satbot/core/bootstrap"
	"github.com/m3rciful/satbot/core/cmd"
)

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return appconfig.Load(path)
		},
		Bootstrap: func(c cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg := c.(*appconfig.Config)
			return setup(context.Background(), cfg)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}

func setup(ctx context.Context, cfg *appconfig.Config) (*bot.App, error) {
	opts := bootstrap.Options{Config: cfg.CoreConfig()}
	if cfg.UsesPostgres() {
		db := cfg.Database
		opts.Database = &db
	}
	if cfg.UsesRedis() {
		rc := cfg.Redis
		opts.Redis = &rc
	}
	infra, err := bootstrap.Run(ctx, opts)
	if err != nil {
		return nil, err
	}
	app, err := bot.New(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return app, nil
}
