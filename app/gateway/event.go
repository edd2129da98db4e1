package gateway

import (
	"strings"

	"github.com/m3rciful/satbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// Kind classifies an inbound event.
type Kind int

const (
	KindText Kind = iota
	KindCommand
	KindContact
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCommand:
		return "command"
	case KindContact:
		return "contact"
	case KindCallback:
		return "callback"
	}
	return "unknown"
}

// Contact is a shared phone contact.
type Contact struct {
	UserID int64
	Phone  string
}

// Event is one inbound user interaction.
type Event struct {
	Kind      Kind
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string

	// Text is the raw message text for text and command events.
	Text string
	// Command is the lowercased command name without bot suffix, e.g. "/start".
	Command string
	Contact *Contact
	// Data is the callback payload.
	Data string
	// Message refers to the message carrying the pressed button.
	Message MessageRef
}

// UsernamePtr returns the username or nil when the user has none.
func (e Event) UsernamePtr() *string {
	if e.Username == "" {
		return nil
	}
	u := e.Username
	return &u
}

// ParseCommand splits "/Start@my_bot args" into "/start". It reports false for non-command text.
func ParseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	head, _, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(head, "@")
	if len(head) < 2 {
		return "", false
	}
	return strings.ToLower(head), true
}

// EventFromContext converts a Telebot update into an Event.
func EventFromContext(c tele.Context) (Event, bool) {
	user := c.Sender()
	if user == nil {
		return Event{}, false
	}
	ev := Event{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
	}
	if chat := c.Chat(); chat != nil {
		ev.ChatID = chat.ID
	} else {
		ev.ChatID = user.ID
	}

	if cb := c.Callback(); cb != nil {
		ev.Kind = KindCallback
		_, ev.Data = callbacks.Parse(cb)
		if cb.Message != nil {
			ev.Message = MessageRef{MessageID: cb.Message.ID}
			if cb.Message.Chat != nil {
				ev.Message.ChatID = cb.Message.Chat.ID
			}
		}
		return ev, true
	}

	msg := c.Message()
	if msg == nil {
		return Event{}, false
	}
	ev.Message = MessageRef{ChatID: ev.ChatID, MessageID: msg.ID}
	if msg.Contact != nil {
		ev.Kind = KindContact
		ev.Contact = &Contact{UserID: msg.Contact.UserID, Phone: msg.Contact.PhoneNumber}
		return ev, true
	}
	ev.Text = msg.Text
	if cmd, ok := ParseCommand(msg.Text); ok {
		ev.Kind = KindCommand
		ev.Command = cmd
		return ev, true
	}
	ev.Kind = KindText
	return ev, true
}
