package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tghelpers "github.com/m3rciful/satbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/satbot/core/telegram/sender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type sentCall struct {
	to   tele.Recipient
	edit tele.Editable
	what interface{}
	opts []interface{}
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []sentCall
	err   error
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentCall{to: to, what: what, opts: opts})
	return &tele.Message{}, f.err
}

func (f *fakeAPI) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentCall{edit: msg, what: what, opts: opts})
	return &tele.Message{}, f.err
}

func (f *fakeAPI) snapshot() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.calls...)
}

func TestTelebotNotBound(t *testing.T) {
	gw := NewTelebot(nil)
	err := gw.SendText(context.Background(), 1, Message{Text: "hi"})
	assert.ErrorIs(t, err, ErrNotBound)
	err = gw.EditMessage(context.Background(), MessageRef{ChatID: 1, MessageID: 2}, Message{})
	assert.ErrorIs(t, err, ErrNotBound)
}

func TestTelebotSendTextMarkup(t *testing.T) {
	api := &fakeAPI{}
	gw := NewTelebot(nil)
	gw.Bind(api)

	ctx := tghelpers.WithSendStats(context.Background())
	err := gw.SendText(ctx, 42, Message{
		Text:     "pick",
		Markdown: true,
		Keyboard: &Keyboard{Inline: [][]Button{{{Text: "A", Data: "test:math"}}}},
	})
	require.NoError(t, err)

	calls := api.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "42", calls[0].to.Recipient())
	assert.Equal(t, "pick", calls[0].what)
	opts, ok := calls[0].opts[0].(*tele.SendOptions)
	require.True(t, ok)
	assert.Equal(t, tele.ModeMarkdownV2, opts.ParseMode)
	require.NotNil(t, opts.ReplyMarkup)
	require.Len(t, opts.ReplyMarkup.InlineKeyboard, 1)
	assert.Equal(t, "test:math", opts.ReplyMarkup.InlineKeyboard[0][0].Data)

	msgs, kbs := tghelpers.SentCounters(ctx)
	assert.Equal(t, 1, msgs)
	assert.True(t, kbs)
}

func TestTelebotKeyboards(t *testing.T) {
	assert.Nil(t, markup(nil))

	rm := markup(&Keyboard{Remove: true})
	require.NotNil(t, rm)
	assert.True(t, rm.RemoveKeyboard)

	contact := markup(&Keyboard{ContactLabel: "share"})
	require.NotNil(t, contact)
	require.Len(t, contact.ReplyKeyboard, 1)
	assert.True(t, contact.ReplyKeyboard[0][0].Contact)

	reply := markup(&Keyboard{Reply: [][]string{{"a", "b"}, {"c"}}})
	require.NotNil(t, reply)
	require.Len(t, reply.ReplyKeyboard, 2)
	assert.Equal(t, "c", reply.ReplyKeyboard[1][0].Text)
}

func TestTelebotSendDocument(t *testing.T) {
	api := &fakeAPI{}
	gw := NewTelebot(api)

	err := gw.SendDocument(context.Background(), 7, Document{Name: "a.pdf", Content: strings.NewReader("x")})
	require.NoError(t, err)

	calls := api.snapshot()
	require.Len(t, calls, 1)
	doc, ok := calls[0].what.(*tele.Document)
	require.True(t, ok)
	assert.Equal(t, "a.pdf", doc.FileName)
}

func TestTelebotEditMessage(t *testing.T) {
	api := &fakeAPI{}
	gw := NewTelebot(api)

	err := gw.EditMessage(context.Background(), MessageRef{ChatID: 5, MessageID: 9}, Message{Text: "menu"})
	require.NoError(t, err)

	calls := api.snapshot()
	require.Len(t, calls, 1)
	id, chat := calls[0].edit.MessageSig()
	assert.Equal(t, "9", id)
	assert.Equal(t, int64(5), chat)
}

func TestTelebotSendError(t *testing.T) {
	boom := errors.New("boom")
	api := &fakeAPI{err: boom}
	gw := NewTelebot(api)

	ctx := tghelpers.WithSendStats(context.Background())
	err := gw.SendText(ctx, 1, Message{Text: "x"})
	assert.ErrorIs(t, err, boom)
	msgs, _ := tghelpers.SentCounters(ctx)
	assert.Zero(t, msgs)
}

func TestQueuedSendsThroughDispatcher(t *testing.T) {
	api := &fakeAPI{}
	d := tgsender.NewDispatcher(tgsender.Options{Workers: 1, QueueSize: 4})
	q := NewQueued(NewTelebot(api), d)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.SendText(ctx, 3, Message{Text: "notice"}))
	cancel()
	d.Close()

	calls := api.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "notice", calls[0].what)
	assert.Zero(t, d.ErrorCount())
}

func TestQueuedClosed(t *testing.T) {
	d := tgsender.NewDispatcher(tgsender.Options{Workers: 1})
	d.Close()
	q := NewQueued(NewTelebot(&fakeAPI{}), d)
	err := q.SendText(context.Background(), 1, Message{Text: "x"})
	assert.ErrorIs(t, err, tgsender.ErrQueueClosed)
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"/start", "/start", true},
		{"/Start@sat_bot now", "/start", true},
		{"/", "", false},
		{"hello", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseCommand(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestEventFromContext(t *testing.T) {
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)

	user := &tele.User{ID: 11, Username: "sam", FirstName: "Sam"}
	chat := &tele.Chat{ID: 11}

	t.Run("text", func(t *testing.T) {
		c := b.NewContext(tele.Update{Message: &tele.Message{ID: 1, Sender: user, Chat: chat, Text: "hello"}})
		ev, ok := EventFromContext(c)
		require.True(t, ok)
		assert.Equal(t, KindText, ev.Kind)
		assert.Equal(t, "hello", ev.Text)
		assert.Equal(t, int64(11), ev.ChatID)
		require.NotNil(t, ev.UsernamePtr())
		assert.Equal(t, "sam", *ev.UsernamePtr())
	})

	t.Run("command", func(t *testing.T) {
		c := b.NewContext(tele.Update{Message: &tele.Message{ID: 2, Sender: user, Chat: chat, Text: "/HELP"}})
		ev, ok := EventFromContext(c)
		require.True(t, ok)
		assert.Equal(t, KindCommand, ev.Kind)
		assert.Equal(t, "/help", ev.Command)
	})

	t.Run("contact", func(t *testing.T) {
		c := b.NewContext(tele.Update{Message: &tele.Message{
			ID: 3, Sender: user, Chat: chat,
			Contact: &tele.Contact{UserID: 11, PhoneNumber: "+15550001"},
		}})
		ev, ok := EventFromContext(c)
		require.True(t, ok)
		assert.Equal(t, KindContact, ev.Kind)
		require.NotNil(t, ev.Contact)
		assert.Equal(t, "+15550001", ev.Contact.Phone)
	})

	t.Run("callback", func(t *testing.T) {
		c := b.NewContext(tele.Update{Callback: &tele.Callback{
			ID: "cb", Sender: user, Data: "test:math",
			Message: &tele.Message{ID: 77, Chat: chat},
		}})
		ev, ok := EventFromContext(c)
		require.True(t, ok)
		assert.Equal(t, KindCallback, ev.Kind)
		assert.Equal(t, "test:math", ev.Data)
		assert.Equal(t, MessageRef{ChatID: 11, MessageID: 77}, ev.Message)
	})

	t.Run("no sender", func(t *testing.T) {
		c := b.NewContext(tele.Update{Message: &tele.Message{ID: 4, Chat: chat, Text: "x"}})
		_, ok := EventFromContext(c)
		assert.False(t, ok)
	})
}
