// Package gatewaytest provides an in-memory gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"io"
	"sync"

	"github.com/m3rciful/satbot/app/gateway"
)

// Sent is one recorded outbound call.
type Sent struct {
	Kind    string // "text", "document" or "edit"
	To      int64
	Message gateway.Message
	Ref     gateway.MessageRef
	Doc     gateway.Document
	Body    string
}

// Recorder records every call. FailFor makes sends to the listed chats fail.
type Recorder struct {
	mu      sync.Mutex
	sent    []Sent
	FailFor map[int64]error
	// FailAll fails every call when set.
	FailAll error
}

var _ gateway.Gateway = (*Recorder)(nil)

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{FailFor: map[int64]error{}}
}

func (r *Recorder) failure(to int64) error {
	if r.FailAll != nil {
		return r.FailAll
	}
	return r.FailFor[to]
}

// SendText implements gateway.Gateway.
func (r *Recorder) SendText(_ context.Context, to int64, msg gateway.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(to); err != nil {
		return err
	}
	r.sent = append(r.sent, Sent{Kind: "text", To: to, Message: msg})
	return nil
}

// SendDocument implements gateway.Gateway. The content is read fully.
func (r *Recorder) SendDocument(_ context.Context, to int64, doc gateway.Document) error {
	var body []byte
	if doc.Content != nil {
		b, err := io.ReadAll(doc.Content)
		if err != nil {
			return err
		}
		body = b
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(to); err != nil {
		return err
	}
	r.sent = append(r.sent, Sent{Kind: "document", To: to, Doc: doc, Body: string(body)})
	return nil
}

// EditMessage implements gateway.Gateway.
func (r *Recorder) EditMessage(_ context.Context, ref gateway.MessageRef, msg gateway.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(ref.ChatID); err != nil {
		return err
	}
	r.sent = append(r.sent, Sent{Kind: "edit", To: ref.ChatID, Ref: ref, Message: msg})
	return nil
}

// Sent returns a copy of the recorded calls.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// To returns the calls addressed to chat.
func (r *Recorder) To(chat int64) []Sent {
	var out []Sent
	for _, s := range r.Sent() {
		if s.To == chat {
			out = append(out, s)
		}
	}
	return out
}

// Last returns the most recent call, or a zero Sent.
func (r *Recorder) Last() Sent {
	all := r.Sent()
	if len(all) == 0 {
		return Sent{}
	}
	return all[len(all)-1]
}

// Reset drops recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
