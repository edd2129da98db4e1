package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/satbot/core/telegram/helpers"
)

func newTestBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b
}

func textUpdate(id int, userID int64) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   "hello",
		},
	}
}

func callbackUpdate(id int, userID int64) tele.Update {
	return tele.Update{
		ID: id,
		Callback: &tele.Callback{
			Sender: &tele.User{ID: userID},
			Data:   "test:math",
		},
	}
}

func TestRateLimitDropsBurst(t *testing.T) {
	b := newTestBot(t)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(b.NewContext(textUpdate(1, 10))))
	require.NoError(t, h(b.NewContext(textUpdate(2, 10))))
	require.NoError(t, h(b.NewContext(textUpdate(3, 11))))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, limited)
}

func TestRateLimitExcludesKinds(t *testing.T) {
	b := newTestBot(t)
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{KindCallback: {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		require.NoError(t, h(b.NewContext(callbackUpdate(i, 5))))
	}
	assert.Equal(t, 3, calls)
}

func TestAdminOnly(t *testing.T) {
	b := newTestBot(t)
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminIDs: []int64{1},
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(b.NewContext(textUpdate(1, 1))))
	require.NoError(t, h(b.NewContext(textUpdate(2, 2))))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rejected)
}

func TestRecoverSwallowsPanic(t *testing.T) {
	b := newTestBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	assert.NotPanics(t, func() {
		assert.NoError(t, h(b.NewContext(textUpdate(1, 1))))
	})

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	assert.ErrorIs(t, h(b.NewContext(textUpdate(2, 1))), want)
}

func TestLoggerMiddlewareStoresContext(t *testing.T) {
	b := newTestBot(t)
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		ctx, ok := tghelpers.ContextFrom(c)
		require.True(t, ok)
		tghelpers.CountSent(ctx, true)
		n, kb := tghelpers.SentCounters(ctx)
		assert.Equal(t, 1, n)
		assert.True(t, kb)
		rid, _ = c.Get("rid").(string)
		return nil
	})
	require.NoError(t, h(b.NewContext(textUpdate(77, 9))))
	assert.NotEmpty(t, rid)
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, KindMessage, UpdateKind(textUpdate(1, 1)))
	assert.Equal(t, KindCallback, UpdateKind(callbackUpdate(1, 1)))
	assert.Equal(t, KindOther, UpdateKind(tele.Update{}))
}
