// Package registration drives the full name, phone and age dialog that
// registers a new user.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/satbot/app/gateway"
	"github.com/m3rciful/satbot/app/menu"
	appmetrics "github.com/m3rciful/satbot/app/metrics"
	"github.com/m3rciful/satbot/app/users"
	"github.com/m3rciful/satbot/app/validate"
	"github.com/m3rciful/satbot/core/logger"
	"github.com/m3rciful/satbot/core/telegram/state"

	"golang.org/x/sync/errgroup"
)

// Registration stages. StageNone means no dialog is running.
const (
	StageNone          = state.StateIdle
	StageAwaitingName  = state.State("awaiting_name")
	StageAwaitingPhone = state.State("awaiting_phone")
	StageAwaitingAge   = state.State("awaiting_age")
)

// Draft accumulates the answers given so far.
type Draft struct {
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Age      *int   `json:"age,omitempty"`
}

// Conversation is the stored dialog of one user.
type Conversation = state.Session[Draft]

const notifyConcurrency = 4

// Options configures a Machine.
type Options struct {
	Users    users.Repository
	Sessions state.Manager[Draft]
	Gateway  gateway.Gateway
	// Notifier delivers admin notices. Defaults to Gateway.
	Notifier gateway.Gateway
	Admins   []int64
	Rules    validate.Rules
}

// Machine is the registration state machine.
type Machine struct {
	users    users.Repository
	sessions state.Manager[Draft]
	gw       gateway.Gateway
	notifier gateway.Gateway
	admins   []int64
	rules    validate.Rules
}

// New builds a Machine.
func New(opts Options) *Machine {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = opts.Gateway
	}
	return &Machine{
		users:    opts.Users,
		sessions: opts.Sessions,
		gw:       opts.Gateway,
		notifier: notifier,
		admins:   append([]int64(nil), opts.Admins...),
		rules:    opts.Rules,
	}
}

// Conversation returns the stored dialog of userID.
func (m *Machine) Conversation(ctx context.Context, userID int64) (Conversation, error) {
	conv, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return Conversation{}, fmt.Errorf("registration: load conversation: %w", err)
	}
	return conv, nil
}

// Active reports whether userID is in the middle of registering.
func (m *Machine) Active(ctx context.Context, userID int64) (bool, error) {
	conv, err := m.Conversation(ctx, userID)
	if err != nil {
		return false, err
	}
	return !conv.Idle(), nil
}

// Start handles /start. A registered user is welcomed back, an unknown user
// is asked for a full name. During a registration the pending prompt is
// repeated and the draft is kept.
func (m *Machine) Start(ctx context.Context, ev gateway.Event) error {
	conv, err := m.Conversation(ctx, ev.UserID)
	if err != nil {
		return m.fail(ctx, ev, err)
	}
	if !conv.Idle() {
		logger.Debug(ctx, logger.CompRegistration, "registration.prompt.repeat",
			slog.String("stage", string(conv.State)),
		)
		return m.prompt(ctx, ev.ChatID, conv.State)
	}

	rec, err := m.users.Get(ctx, ev.UserID)
	switch {
	case err == nil:
		return m.gw.SendText(ctx, ev.ChatID, gateway.Message{
			Text:     menu.WelcomeBack(rec.FullName),
			Keyboard: menu.Main(),
		})
	case !errors.Is(err, users.ErrNotFound):
		return m.fail(ctx, ev, fmt.Errorf("registration: lookup user: %w", err))
	}

	if err := m.save(ctx, ev.UserID, Conversation{State: StageAwaitingName}); err != nil {
		return m.fail(ctx, ev, err)
	}
	logger.Info(ctx, logger.CompRegistration, "registration.start")
	return m.gw.SendText(ctx, ev.ChatID, gateway.Message{
		Text:     menu.WelcomeNew,
		Keyboard: &gateway.Keyboard{Remove: true},
	})
}

// HandleText feeds a text answer to the current stage. It is a no-op when no
// registration is running.
func (m *Machine) HandleText(ctx context.Context, ev gateway.Event) error {
	conv, err := m.Conversation(ctx, ev.UserID)
	if err != nil {
		return m.fail(ctx, ev, err)
	}
	switch conv.State {
	case StageAwaitingName:
		return m.acceptName(ctx, ev, conv)
	case StageAwaitingPhone:
		return m.acceptPhone(ctx, ev, conv, ev.Text)
	case StageAwaitingAge:
		return m.acceptAge(ctx, ev, conv)
	}
	return nil
}

// HandleContact accepts a shared contact as the phone answer. Only the
// sender's own contact is trusted.
func (m *Machine) HandleContact(ctx context.Context, ev gateway.Event) error {
	conv, err := m.Conversation(ctx, ev.UserID)
	if err != nil {
		return m.fail(ctx, ev, err)
	}
	if conv.State != StageAwaitingPhone {
		if conv.Idle() {
			return nil
		}
		return m.prompt(ctx, ev.ChatID, conv.State)
	}
	if ev.Contact == nil || ev.Contact.UserID != ev.UserID {
		appmetrics.ValidationFailure("contact")
		logger.Info(ctx, logger.CompRegistration, "registration.contact.foreign")
		return m.gw.SendText(ctx, ev.ChatID, gateway.Message{
			Text:     menu.ForeignContact,
			Keyboard: phoneKeyboard(),
		})
	}
	phone := strings.TrimSpace(ev.Contact.Phone)
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return m.acceptPhone(ctx, ev, conv, phone)
}

// Cancel abandons a running registration and shows the main menu.
func (m *Machine) Cancel(ctx context.Context, ev gateway.Event) error {
	conv, err := m.Conversation(ctx, ev.UserID)
	if err != nil {
		return m.fail(ctx, ev, err)
	}
	if conv.Idle() {
		return m.gw.SendText(ctx, ev.ChatID, gateway.Message{Text: menu.NothingToCancel, Keyboard: menu.Main()})
	}
	if err := m.sessions.Clear(ctx, ev.UserID); err != nil {
		return m.fail(ctx, ev, fmt.Errorf("registration: clear conversation: %w", err))
	}
	appmetrics.Registration(appmetrics.OutcomeCancelled)
	logger.Info(ctx, logger.CompRegistration, "registration.cancel",
		slog.String("stage", string(conv.State)),
	)
	return m.gw.SendText(ctx, ev.ChatID, gateway.Message{Text: menu.Cancelled, Keyboard: menu.Main()})
}

func (m *Machine) acceptName(ctx context.Context, ev gateway.Event, conv Conversation) error {
	conv.Data.FullName = ev.Text
	conv.State = StageAwaitingPhone
	if err := m.save(ctx, ev.UserID, conv); err != nil {
		return m.fail(ctx, ev, err)
	}
	return m.prompt(ctx, ev.ChatID, StageAwaitingPhone)
}

func (m *Machine) acceptPhone(ctx context.Context, ev gateway.Event, conv Conversation, text string) error {
	phone, err := validate.Phone(text, m.rules)
	if err != nil {
		appmetrics.ValidationFailure("phone")
		logger.Debug(ctx, logger.CompRegistration, "registration.phone.invalid", logger.Err(err))
		reply := menu.InvalidPhone
		if errors.Is(err, validate.ErrOutOfRange) {
			reply = menu.PhoneOutOfRange
		}
		return m.gw.SendText(ctx, ev.ChatID, gateway.Message{Text: reply, Keyboard: phoneKeyboard()})
	}
	conv.Data.Phone = string(phone)
	conv.State = StageAwaitingAge
	if err := m.save(ctx, ev.UserID, conv); err != nil {
		return m.fail(ctx, ev, err)
	}
	return m.prompt(ctx, ev.ChatID, StageAwaitingAge)
}

func (m *Machine) acceptAge(ctx context.Context, ev gateway.Event, conv Conversation) error {
	age, err := validate.Age(ev.Text, m.rules)
	if err != nil {
		appmetrics.ValidationFailure("age")
		logger.Debug(ctx, logger.CompRegistration, "registration.age.invalid", logger.Err(err))
		reply := menu.InvalidAge
		if errors.Is(err, validate.ErrOutOfRange) {
			reply = menu.AgeOutOfRange
		}
		return m.gw.SendText(ctx, ev.ChatID, gateway.Message{Text: reply})
	}
	v := int(age)
	conv.Data.Age = &v
	return m.persist(ctx, ev, conv)
}

func (m *Machine) persist(ctx context.Context, ev gateway.Event, conv Conversation) error {
	d := conv.Data
	rec, err := m.users.Add(ctx, users.NewUser{
		TelegramID: ev.UserID,
		FullName:   d.FullName,
		Username:   ev.UsernamePtr(),
		Phone:      d.Phone,
		Age:        *d.Age,
	})
	switch {
	case errors.Is(err, users.ErrAlreadyExists):
		appmetrics.Registration(appmetrics.OutcomeExisting)
		logger.Info(ctx, logger.CompRegistration, "registration.exists")
		if err := m.sessions.Clear(ctx, ev.UserID); err != nil {
			logger.Warn(ctx, logger.CompRegistration, "registration.clear.fail", logger.Err(err))
		}
		return m.gw.SendText(ctx, ev.ChatID, gateway.Message{
			Text:     menu.WelcomeBack(d.FullName),
			Keyboard: menu.Main(),
		})
	case err != nil:
		appmetrics.Registration(appmetrics.OutcomeFailed)
		logger.Error(ctx, logger.CompRegistration, "registration.persist.fail", logger.Err(err))
		if err := m.save(ctx, ev.UserID, conv); err != nil {
			logger.Warn(ctx, logger.CompRegistration, "registration.save.fail", logger.Err(err))
		}
		return m.gw.SendText(ctx, ev.ChatID, gateway.Message{Text: menu.SaveFailed})
	}

	if err := m.sessions.Clear(ctx, ev.UserID); err != nil {
		logger.Warn(ctx, logger.CompRegistration, "registration.clear.fail", logger.Err(err))
	}
	appmetrics.Registration(appmetrics.OutcomeCompleted)
	logger.Info(ctx, logger.CompRegistration, "registration.complete",
		slog.Int64("record_id", rec.ID),
		slog.String("phone", rec.Phone),
		slog.Int("age", rec.Age),
	)

	sendErr := m.gw.SendText(ctx, ev.ChatID, gateway.Message{
		Text:     menu.Completed(rec.FullName, rec.Phone, rec.Age),
		Keyboard: menu.Main(),
	})
	m.notifyAdmins(ctx, rec)
	return sendErr
}

// notifyAdmins tells every admin about rec. Failures are logged and counted only.
func (m *Machine) notifyAdmins(ctx context.Context, rec *users.Record) {
	if len(m.admins) == 0 {
		return
	}
	total, err := m.users.Count(ctx)
	if err != nil {
		logger.Warn(ctx, logger.CompRegistration, "registration.count.fail", logger.Err(err))
		total = -1
	}
	msg := gateway.Message{
		Text:     menu.AdminNotice(rec.FullName, rec.TelegramID, total),
		Markdown: true,
	}

	var g errgroup.Group
	g.SetLimit(notifyConcurrency)
	for _, admin := range m.admins {
		g.Go(func() error {
			if err := m.notifier.SendText(ctx, admin, msg); err != nil {
				appmetrics.AdminNotifyFailure()
				logger.Warn(ctx, logger.CompRegistration, "admin.notify.fail",
					slog.Int64("admin_id", admin),
					logger.Err(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Machine) prompt(ctx context.Context, chatID int64, stage state.State) error {
	var msg gateway.Message
	switch stage {
	case StageAwaitingName:
		msg = gateway.Message{Text: menu.AskName}
	case StageAwaitingPhone:
		msg = gateway.Message{Text: menu.AskPhone, Keyboard: phoneKeyboard()}
	case StageAwaitingAge:
		msg = gateway.Message{Text: menu.AskAge, Keyboard: &gateway.Keyboard{Remove: true}}
	default:
		return nil
	}
	return m.gw.SendText(ctx, chatID, msg)
}

func (m *Machine) save(ctx context.Context, userID int64, conv Conversation) error {
	if err := m.sessions.Set(ctx, userID, conv); err != nil {
		return fmt.Errorf("registration: save conversation: %w", err)
	}
	return nil
}

// fail reports an infrastructure error to the user and returns it for the handler summary.
func (m *Machine) fail(ctx context.Context, ev gateway.Event, err error) error {
	logger.Error(ctx, logger.CompRegistration, "registration.fail", logger.Err(err))
	if sendErr := m.gw.SendText(ctx, ev.ChatID, gateway.Message{Text: menu.StorageUnavailable}); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	return err
}

func phoneKeyboard() *gateway.Keyboard {
	return &gateway.Keyboard{ContactLabel: menu.SharePhone}
}
