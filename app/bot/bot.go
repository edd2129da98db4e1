// Package bot assembles the SAT prep bot from configuration and infrastructure.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/satbot/app/catalog"
	appconfig "github.com/m3rciful/satbot/app/config"
	"github.com/m3rciful/satbot/app/dialog"
	"github.com/m3rciful/satbot/app/gateway"
	appmetrics "github.com/m3rciful/satbot/app/metrics"
	"github.com/m3rciful/satbot/app/registration"
	"github.com/m3rciful/satbot/app/selection"
	"github.com/m3rciful/satbot/app/users"
	"github.com/m3rciful/satbot/core/bootstrap"
	"github.com/m3rciful/satbot/core/logger"
	coremetrics "github.com/m3rciful/satbot/core/metrics"
	tg "github.com/m3rciful/satbot/core/telegram"
	"github.com/m3rciful/satbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/satbot/core/telegram/helpers"
	"github.com/m3rciful/satbot/core/telegram/router"
	tgsender "github.com/m3rciful/satbot/core/telegram/sender"
	"github.com/m3rciful/satbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// App is the wired bot.
type App struct {
	cfg        *appconfig.Config
	infra      *bootstrap.Result
	dispatcher *tgsender.Dispatcher
	telebot    *gateway.Telebot
	router     *dialog.Router
	metrics    *coremetrics.Server
}

// New wires the application. infra may be nil when no external storage is configured.
func New(cfg *appconfig.Config, infra *bootstrap.Result) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	if infra == nil {
		infra = &bootstrap.Result{}
	}

	repo, err := userRepository(cfg, infra)
	if err != nil {
		return nil, err
	}
	sessions, err := sessionStore(cfg, infra)
	if err != nil {
		return nil, err
	}

	senderOpts := cfg.Sender.Options()
	senderOpts.OnFailure = func(string, error) { appmetrics.AdminNotifyFailure() }
	dispatcher := tgsender.NewDispatcher(senderOpts)
	tb := gateway.NewTelebot(nil)
	machine := registration.New(registration.Options{
		Users:    repo,
		Sessions: sessions,
		Gateway:  tb,
		Notifier: gateway.NewQueued(tb, dispatcher),
		Admins:   cfg.Admins,
		Rules:    cfg.Validation,
	})
	nav := catalog.NewNavigator(catalog.NewDirStore(cfg.Catalog.Root), selection.New(), cfg.Catalog.Extensions)

	app := &App{
		cfg:        cfg,
		infra:      infra,
		dispatcher: dispatcher,
		telebot:    tb,
		router: dialog.NewRouter(dialog.Options{
			Registration: machine,
			Navigator:    nav,
			Users:        repo,
			Gateway:      tb,
			Admins:       cfg.Admins,
		}),
	}
	if cfg.Metrics.Listen != "" {
		app.metrics = coremetrics.NewServer(cfg.Metrics)
	}

	logger.TWire.Info("app wired",
		slog.String("event", "app.wire"),
		slog.String("users", cfg.Storage.Users),
		slog.String("sessions", cfg.Storage.Sessions),
		slog.String("catalog_root", cfg.Catalog.Root),
		slog.Int("admins", len(cfg.Admins)),
	)
	return app, nil
}

func userRepository(cfg *appconfig.Config, infra *bootstrap.Result) (users.Repository, error) {
	if !cfg.UsesPostgres() {
		return users.NewMemoryRepository(), nil
	}
	if infra.DB == nil {
		return nil, fmt.Errorf("bot: storage.users is postgres but no database connection")
	}
	return users.NewPostgresRepository(infra.DB), nil
}

func sessionStore(cfg *appconfig.Config, infra *bootstrap.Result) (state.Manager[registration.Draft], error) {
	if !cfg.UsesRedis() {
		return state.NewMemoryManager[registration.Draft](), nil
	}
	if infra.Redis == nil {
		return nil, fmt.Errorf("bot: storage.sessions is redis but no redis client")
	}
	return state.NewRedisManager[registration.Draft](infra.Redis, cfg.Storage.SessionPrefix, cfg.Storage.SessionTTL), nil
}

// Registry declares the bot commands and callback keys.
func (a *App) Registry() *tg.Registry {
	reg := tg.NewRegistry()
	reg.RegisterCommand(dialog.CommandStart, commands.Command{Handler: a.handle, Description: "Register or open the main menu"})
	reg.RegisterCommand(dialog.CommandHelp, commands.Command{Handler: a.handle, Description: "How to use the bot"})
	reg.RegisterCommand(dialog.CommandCancel, commands.Command{Handler: a.handle, Description: "Cancel registration"})
	reg.RegisterCommand(dialog.CommandStats, commands.Command{Handler: a.handle, Description: "Registered user count", AdminOnly: true})

	for _, key := range []string{string(catalog.CategoryTest), string(catalog.CategoryAnswer), dialog.BackPayload().Encode()} {
		_ = reg.RegisterCallback(key, a.handle)
	}
	return reg
}

// TelegramRunOptions builds the runtime options for the bot.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	reg := a.Registry()

	var routes []tg.Route
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminIDs:      a.cfg.Admins,
		OnAdminReject: a.handle,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: a.handle}))
	routes = append(routes, router.TextRoutes(router.TextOptions{Conversation: a.handle})...)

	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Dispatcher:  a.dispatcher,
		Middlewares: tg.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

// Close releases storage connections.
func (a *App) Close() error {
	return a.infra.Close()
}

func (a *App) handle(c tele.Context) error {
	ev, ok := gateway.EventFromContext(c)
	if !ok {
		return nil
	}
	return a.router.Handle(tghelpers.BuildContext(c), ev)
}

func (a *App) start(_ context.Context, rt tg.Runtime) error {
	a.telebot.Bind(rt.Bot)
	if a.metrics == nil {
		return nil
	}
	coremetrics.Register(
		coremetrics.SenderFailures(rt.Dispatcher.ErrorCount),
		coremetrics.SenderQueue(rt.Dispatcher.Pending),
	)
	if err := a.metrics.Start(); err != nil {
		return fmt.Errorf("bot: metrics server: %w", err)
	}
	return nil
}

func (a *App) stop(ctx context.Context, _ tg.Runtime) error {
	if a.metrics == nil {
		return nil
	}
	return a.metrics.Shutdown(ctx)
}
