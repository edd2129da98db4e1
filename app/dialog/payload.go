package dialog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/satbot/app/catalog"
	"github.com/m3rciful/satbot/app/selection"
	"github.com/m3rciful/satbot/core/telegram/callbacks"
)

// ErrMalformedPayload is returned by DecodePayload for unknown button data.
var ErrMalformedPayload = errors.New("dialog: malformed payload")

// PayloadKind tags a Payload.
type PayloadKind int

const (
	PayloadSubject PayloadKind = iota + 1
	PayloadFile
	PayloadBack
)

// backToMenu is the data of the back button.
const backToMenu = "back_to_menu"

// Payload is the decoded data of an inline button.
//
//	category:subject        PayloadSubject
//	category:subject:token  PayloadFile
//	back_to_menu            PayloadBack
type Payload struct {
	Kind     PayloadKind
	Category catalog.Category
	Subject  catalog.Subject
	Token    selection.Token
}

// SubjectPayload opens the file list of (category, subject).
func SubjectPayload(category catalog.Category, subject catalog.Subject) Payload {
	return Payload{Kind: PayloadSubject, Category: category, Subject: subject}
}

// FilePayload selects one file of a listing.
func FilePayload(category catalog.Category, subject catalog.Subject, tok selection.Token) Payload {
	return Payload{Kind: PayloadFile, Category: category, Subject: subject, Token: tok}
}

// BackPayload returns to the main menu.
func BackPayload() Payload {
	return Payload{Kind: PayloadBack}
}

// Encode returns the button data for p.
func (p Payload) Encode() string {
	switch p.Kind {
	case PayloadSubject:
		return string(p.Category) + callbacks.Separator + string(p.Subject)
	case PayloadFile:
		return string(p.Category) + callbacks.Separator + string(p.Subject) + callbacks.Separator + p.Token.String()
	case PayloadBack:
		return backToMenu
	}
	return ""
}

// DecodePayload parses button data produced by Encode.
func DecodePayload(data string) (Payload, error) {
	if data == backToMenu {
		return BackPayload(), nil
	}
	parts := strings.Split(data, callbacks.Separator)
	if len(parts) < 2 || len(parts) > 3 {
		return Payload{}, fmt.Errorf("%w: %q", ErrMalformedPayload, data)
	}
	category, ok := catalog.ParseCategory(parts[0])
	if !ok {
		return Payload{}, fmt.Errorf("%w: category %q", ErrMalformedPayload, parts[0])
	}
	subject, ok := catalog.ParseSubject(parts[1])
	if !ok {
		return Payload{}, fmt.Errorf("%w: subject %q", ErrMalformedPayload, parts[1])
	}
	if len(parts) == 2 {
		return SubjectPayload(category, subject), nil
	}
	tok, err := selection.ParseToken(parts[2])
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return FilePayload(category, subject, tok), nil
}
