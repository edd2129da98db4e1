package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/m3rciful/satbot/core/logger"
	tghelpers "github.com/m3rciful/satbot/core/telegram/helpers"
	"github.com/m3rciful/satbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned by Telebot before Bind is called.
var ErrNotBound = errors.New("gateway: telegram api not bound")

// API is the part of *tele.Bot used by the adapter.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

var _ Gateway = (*Telebot)(nil)

// Telebot implements Gateway on the Telegram Bot API.
type Telebot struct {
	api API
}

// NewTelebot returns an adapter. api may be nil and bound later with Bind.
func NewTelebot(api API) *Telebot {
	return &Telebot{api: api}
}

// Bind sets the API once the bot has been created. It must be called before updates flow.
func (t *Telebot) Bind(api API) {
	t.api = api
}

// SendText sends msg to the chat to.
func (t *Telebot) SendText(ctx context.Context, to int64, msg Message) error {
	if t.api == nil {
		return ErrNotBound
	}
	start := time.Now()
	_, err := t.api.Send(tele.ChatID(to), msg.Text, sendOptions(msg))
	t.observe(ctx, "send.text", to, msg.Keyboard.HasButtons(), start, err)
	return err
}

// SendDocument uploads doc to the chat to.
func (t *Telebot) SendDocument(ctx context.Context, to int64, doc Document) error {
	if t.api == nil {
		return ErrNotBound
	}
	start := time.Now()
	file := &tele.Document{
		File:     tele.FromReader(doc.Content),
		FileName: doc.Name,
		Caption:  doc.Caption,
	}
	_, err := t.api.Send(tele.ChatID(to), file)
	t.observe(ctx, "send.document", to, false, start, err)
	return err
}

// EditMessage replaces the text and inline keyboard of ref.
func (t *Telebot) EditMessage(ctx context.Context, ref MessageRef, msg Message) error {
	if t.api == nil {
		return ErrNotBound
	}
	start := time.Now()
	stored := tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	}
	_, err := t.api.Edit(stored, msg.Text, sendOptions(msg))
	t.observe(ctx, "edit.text", ref.ChatID, msg.Keyboard.HasButtons(), start, err)
	return err
}

func (t *Telebot) observe(ctx context.Context, action string, chatID int64, kb bool, start time.Time, err error) {
	if err == nil {
		tghelpers.CountSent(ctx, kb)
		return
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "gateway.fail",
		slog.String("action", action),
		slog.Int64("chat_id", chatID),
		slog.Duration("duration", logger.Took(start)),
		logger.Err(err),
	)
}

func sendOptions(msg Message) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: markup(msg.Keyboard)}
	if msg.Markdown {
		opts.ParseMode = tele.ModeMarkdownV2
	}
	return opts
}

func markup(k *Keyboard) *tele.ReplyMarkup {
	switch {
	case k == nil:
		return nil
	case k.Remove:
		return keyboard.RemoveKeyboard()
	case k.ContactLabel != "":
		return keyboard.ContactRequest(k.ContactLabel)
	case len(k.Inline) > 0:
		rows := make([][]keyboard.InlineBtn, len(k.Inline))
		for i, row := range k.Inline {
			rows[i] = make([]keyboard.InlineBtn, len(row))
			for j, b := range row {
				rows[i][j] = keyboard.InlineBtn{Text: b.Text, Data: b.Data}
			}
		}
		return keyboard.InlineButtonsRows(rows...)
	case len(k.Reply) > 0:
		return keyboard.ReplyButtons(k.OneTime, k.Reply...)
	}
	return nil
}
