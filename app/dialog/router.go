// Package dialog dispatches inbound events to the registration dialog and the
// file catalog.
package dialog

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/m3rciful/satbot/app/catalog"
	"github.com/m3rciful/satbot/app/gateway"
	"github.com/m3rciful/satbot/app/menu"
	appmetrics "github.com/m3rciful/satbot/app/metrics"
	"github.com/m3rciful/satbot/app/registration"
	"github.com/m3rciful/satbot/app/users"
	"github.com/m3rciful/satbot/core/logger"
	"github.com/m3rciful/satbot/core/telegram/state"
)

// Commands understood by the router.
const (
	CommandStart  = "/start"
	CommandHelp   = "/help"
	CommandCancel = "/cancel"
	CommandStats  = "/stats"
)

// Options wires a Router.
type Options struct {
	Registration *registration.Machine
	Navigator    *catalog.Navigator
	Users        users.Repository
	Gateway      gateway.Gateway
	// Locker serializes events of one user. A fresh locker is used when nil.
	Locker *state.KeyedLocker
	Admins []int64
}

// Router is the entry point for every user event.
type Router struct {
	reg    *registration.Machine
	nav    *catalog.Navigator
	users  users.Repository
	gw     gateway.Gateway
	locker *state.KeyedLocker
	admins []int64
}

// NewRouter builds a Router.
func NewRouter(opts Options) *Router {
	locker := opts.Locker
	if locker == nil {
		locker = state.NewKeyedLocker()
	}
	return &Router{
		reg:    opts.Registration,
		nav:    opts.Navigator,
		users:  opts.Users,
		gw:     opts.Gateway,
		locker: locker,
		admins: append([]int64(nil), opts.Admins...),
	}
}

// Handle processes one event. Events of the same user run one at a time in
// arrival order.
func (r *Router) Handle(ctx context.Context, ev gateway.Event) error {
	unlock := r.locker.Lock(ev.UserID)
	defer unlock()

	if ev.Kind == gateway.KindCommand {
		if handled, err := r.command(ctx, ev); handled {
			return err
		}
		logger.Debug(ctx, logger.CompDialog, "dialog.command.unknown",
			slog.String("command", logger.SanitizeLimit(ev.Command, 32)),
		)
		return nil
	}

	if ev.Kind != gateway.KindCallback {
		active, err := r.reg.Active(ctx, ev.UserID)
		if err != nil {
			logger.Error(ctx, logger.CompDialog, "dialog.stage.fail", logger.Err(err))
			return errors.Join(err, r.send(ctx, ev, menu.StorageUnavailable, nil))
		}
		if active {
			if ev.Kind == gateway.KindContact {
				return r.reg.HandleContact(ctx, ev)
			}
			return r.reg.HandleText(ctx, ev)
		}
	}

	switch ev.Kind {
	case gateway.KindText:
		if b, ok := menu.Match(ev.Text); ok {
			return r.menuButton(ctx, ev, b)
		}
	case gateway.KindCallback:
		return r.callback(ctx, ev)
	}

	logger.Debug(ctx, logger.CompDialog, "dialog.unmatched",
		slog.String("kind", ev.Kind.String()),
	)
	return nil
}

func (r *Router) command(ctx context.Context, ev gateway.Event) (bool, error) {
	switch ev.Command {
	case CommandStart:
		return true, r.reg.Start(ctx, ev)
	case CommandCancel:
		return true, r.reg.Cancel(ctx, ev)
	case CommandHelp:
		active, err := r.reg.Active(ctx, ev.UserID)
		if err != nil {
			logger.Warn(ctx, logger.CompDialog, "dialog.stage.fail", logger.Err(err))
		}
		var kb *gateway.Keyboard
		if !active {
			kb = menu.Main()
		}
		return true, r.send(ctx, ev, menu.Help, kb)
	case CommandStats:
		return true, r.stats(ctx, ev)
	}
	return false, nil
}

func (r *Router) stats(ctx context.Context, ev gateway.Event) error {
	if !slices.Contains(r.admins, ev.UserID) {
		return r.send(ctx, ev, menu.AdminOnly, nil)
	}
	total, err := r.users.Count(ctx)
	if err != nil {
		logger.Error(ctx, logger.CompDialog, "dialog.stats.fail", logger.Err(err))
		return errors.Join(err, r.send(ctx, ev, menu.StorageUnavailable, nil))
	}
	return r.send(ctx, ev, menu.Stats(total), nil)
}

func (r *Router) menuButton(ctx context.Context, ev gateway.Event, b menu.Button) error {
	switch b {
	case menu.ButtonTests:
		return r.send(ctx, ev, menu.ChooseSubject, r.subjectKeyboard(catalog.CategoryTest))
	case menu.ButtonAnswers:
		return r.send(ctx, ev, menu.ChooseSubject, r.subjectKeyboard(catalog.CategoryAnswer))
	case menu.ButtonAsk:
		return r.send(ctx, ev, menu.AskQuestion, nil)
	case menu.ButtonAbout:
		return r.send(ctx, ev, menu.About, nil)
	}
	return nil
}

func (r *Router) callback(ctx context.Context, ev gateway.Event) error {
	p, err := DecodePayload(ev.Data)
	if err != nil {
		logger.Info(ctx, logger.CompDialog, "dialog.payload.malformed",
			slog.String("data", logger.SanitizeLimit(ev.Data, 64)),
		)
		return r.send(ctx, ev, menu.NotFound, menu.Main())
	}
	switch p.Kind {
	case PayloadSubject:
		return r.listFiles(ctx, ev, p)
	case PayloadFile:
		return r.deliver(ctx, ev, p)
	case PayloadBack:
		return r.send(ctx, ev, menu.MainMenuPrompt, menu.Main())
	}
	return nil
}

func (r *Router) listFiles(ctx context.Context, ev gateway.Event, p Payload) error {
	listing, err := r.nav.ListFiles(ctx, ev.UserID, p.Category, p.Subject)
	if err != nil {
		appmetrics.Listing(string(p.Category), string(p.Subject), appmetrics.ResultError)
		logger.Error(ctx, logger.CompCatalog, "catalog.list.fail", logger.Err(err))
		return errors.Join(err, r.send(ctx, ev, menu.StorageUnavailable, menu.Main()))
	}

	back := []gateway.Button{{Text: menu.BackToMenu, Data: BackPayload().Encode()}}
	if listing.Empty() {
		appmetrics.Listing(string(p.Category), string(p.Subject), appmetrics.ResultEmpty)
		return r.replace(ctx, ev, menu.NoFilesIn(p.Category, p.Subject), &gateway.Keyboard{
			Inline: [][]gateway.Button{back},
		})
	}

	appmetrics.Listing(string(p.Category), string(p.Subject), appmetrics.ResultOK)
	rows := make([][]gateway.Button, 0, len(listing.Files)+1)
	for i, tok := range listing.Tokens() {
		rows = append(rows, []gateway.Button{{
			Text: listing.Files[i],
			Data: FilePayload(p.Category, p.Subject, tok).Encode(),
		}})
	}
	rows = append(rows, back)
	return r.replace(ctx, ev, menu.FilesHeader(p.Category, p.Subject), &gateway.Keyboard{Inline: rows})
}

func (r *Router) deliver(ctx context.Context, ev gateway.Event, p Payload) error {
	f, err := r.nav.Resolve(ev.UserID, p.Token)
	if err == nil && (f.Category != p.Category || f.Subject != p.Subject) {
		err = catalog.ErrNotFound
	}
	if err != nil {
		return r.notFound(ctx, ev, p, err)
	}

	rc, err := r.nav.Open(ctx, f)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return r.notFound(ctx, ev, p, err)
		}
		appmetrics.Download(appmetrics.ResultError)
		logger.Error(ctx, logger.CompCatalog, "catalog.open.fail", logger.Err(err))
		return errors.Join(err, r.send(ctx, ev, menu.DeliveryFailed, menu.Main()))
	}
	defer rc.Close()

	if err := r.gw.SendDocument(ctx, ev.ChatID, gateway.Document{Name: f.Name, Content: rc}); err != nil {
		appmetrics.Download(appmetrics.ResultError)
		logger.Error(ctx, logger.CompCatalog, "catalog.deliver.fail",
			slog.String("file", f.Name),
			logger.Err(err),
		)
		return errors.Join(err, r.send(ctx, ev, menu.DeliveryFailed, nil))
	}
	appmetrics.Download(appmetrics.ResultOK)
	logger.Info(ctx, logger.CompCatalog, "catalog.deliver",
		slog.String("category", string(f.Category)),
		slog.String("subject", string(f.Subject)),
		slog.String("file", f.Name),
	)
	return nil
}

func (r *Router) notFound(ctx context.Context, ev gateway.Event, p Payload, err error) error {
	appmetrics.Download(appmetrics.ResultNotFound)
	logger.Info(ctx, logger.CompCatalog, "catalog.resolve.miss",
		slog.String("token", p.Token.String()),
		logger.Err(err),
	)
	return r.send(ctx, ev, menu.FileNotFound, menu.Main())
}

func (r *Router) subjectKeyboard(category catalog.Category) *gateway.Keyboard {
	subjects := r.nav.Subjects(category)
	row := make([]gateway.Button, 0, len(subjects))
	for _, s := range subjects {
		row = append(row, gateway.Button{Text: s.Label(), Data: SubjectPayload(category, s).Encode()})
	}
	return &gateway.Keyboard{Inline: [][]gateway.Button{
		row,
		{{Text: menu.BackToMenu, Data: BackPayload().Encode()}},
	}}
}

// replace edits the message carrying the pressed button, or sends a new one
// when there is nothing to edit.
func (r *Router) replace(ctx context.Context, ev gateway.Event, text string, kb *gateway.Keyboard) error {
	if ev.Message.MessageID == 0 {
		return r.send(ctx, ev, text, kb)
	}
	return r.gw.EditMessage(ctx, ev.Message, gateway.Message{Text: text, Keyboard: kb})
}

func (r *Router) send(ctx context.Context, ev gateway.Event, text string, kb *gateway.Keyboard) error {
	return r.gw.SendText(ctx, ev.ChatID, gateway.Message{Text: text, Keyboard: kb})
}
