package gateway

import (
	"context"

	tgsender "github.com/m3rciful/satbot/core/telegram/sender"
)

var _ Gateway = (*Queued)(nil)

// Queued hands text sends to a background dispatcher that retries transient
// failures. Documents and edits go straight to the wrapped gateway.
type Queued struct {
	Gateway
	dispatcher *tgsender.Dispatcher
}

// NewQueued wraps gw with dispatcher d.
func NewQueued(gw Gateway, d *tgsender.Dispatcher) *Queued {
	return &Queued{Gateway: gw, dispatcher: d}
}

// SendText enqueues the send. The returned error only reports enqueue failures.
func (q *Queued) SendText(ctx context.Context, to int64, msg Message) error {
	bg := context.WithoutCancel(ctx)
	return q.dispatcher.Enqueue(ctx, "send.text", "sendMessage", func() error {
		return q.Gateway.SendText(bg, to, msg)
	})
}
