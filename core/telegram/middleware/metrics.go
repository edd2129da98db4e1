package middleware

import (
	coremetrics "github.com/m3rciful/satbot/core/metrics"

	tele "gopkg.in/telebot.v4"
)

// Update kinds reported by UpdateKind.
const (
	KindCallback    = "callback"
	KindMessage     = "message"
	KindInlineQuery = "inline_query"
	KindOther       = "other"
)

// UpdateKind classifies an update for rate limiting and metrics.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return KindCallback
	case upd.Message != nil:
		return KindMessage
	case upd.Query != nil:
		return KindInlineQuery
	}
	return KindOther
}

// MetricsMiddleware counts received updates by kind.
func MetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		coremetrics.UpdateReceived(UpdateKind(c.Update()))
		return next(c)
	}
}
