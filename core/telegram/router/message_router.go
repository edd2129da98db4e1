package router

import (
	"time"

	tg "github.com/m3rciful/satbot/core/telegram"
	"github.com/m3rciful/satbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls routing of free text, shared contacts and documents.
type TextOptions struct {
	// Conversation receives every text and contact message.
	Conversation    tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds handlers for text, contact and document updates.
func TextRoutes(opts TextOptions) []tg.Route {
	conversation := func(name string) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			if opts.Conversation == nil {
				logHandlerSummary(c, name, start, "skip", "ok", nil)
				return nil
			}
			return handleWithSummary(c, name, start, "", "", func() error {
				return opts.Conversation(c)
			})
		}
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, "", "", func() error {
				return opts.UnknownDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "ok", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(conversation("text"))},
		{Endpoint: tele.OnContact, Handler: wrap(conversation("contact"))},
		{Endpoint: tele.OnDocument, Handler: wrap(docHandler)},
	}
}
