// Package gateway is the messaging boundary of the bot: outbound text,
// documents and edits, plus the inbound event model.
package gateway

import (
	"context"
	"io"
)

// Button is an inline button with opaque callback data.
type Button struct {
	Text string
	Data string
}

// Keyboard describes the markup attached to a message. At most one of
// Reply, Inline, ContactLabel or Remove is expected to be set.
type Keyboard struct {
	Reply   [][]string
	OneTime bool
	Inline  [][]Button
	// ContactLabel requests a reply keyboard with a single share-contact button.
	ContactLabel string
	Remove       bool
}

// HasButtons reports whether the keyboard shows any buttons.
func (k *Keyboard) HasButtons() bool {
	return k != nil && (len(k.Reply) > 0 || len(k.Inline) > 0 || k.ContactLabel != "")
}

// Message is outbound text. Markdown selects Telegram MarkdownV2.
type Message struct {
	Text     string
	Markdown bool
	Keyboard *Keyboard
}

// Document is an outbound file.
type Document struct {
	Name    string
	Caption string
	Content io.Reader
}

// MessageRef identifies a previously sent message.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Gateway sends messages to chats.
type Gateway interface {
	SendText(ctx context.Context, to int64, msg Message) error
	SendDocument(ctx context.Context, to int64, doc Document) error
	EditMessage(ctx context.Context, ref MessageRef, msg Message) error
}
