// Package menu holds the user-facing texts and keyboards of the bot.
package menu

import (
	"strings"

	"github.com/m3rciful/satbot/app/gateway"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Button is a main menu entry.
type Button int

const (
	ButtonNone Button = iota
	ButtonTests
	ButtonAnswers
	ButtonAsk
	ButtonAbout
)

type mainButton struct {
	button Button
	emoji  string
	label  string
}

var mainButtons = []mainButton{
	{ButtonTests, "📚", "Download Tests"},
	{ButtonAnswers, "📝", "Download Answers"},
	{ButtonAsk, "❓", "Ask a Question"},
	{ButtonAbout, "ℹ️", "About Us"},
}

func (b mainButton) text() string { return b.emoji + " " + b.label }

// Main returns the main menu reply keyboard: two rows of two buttons.
func Main() *gateway.Keyboard {
	return &gateway.Keyboard{
		Reply: [][]string{
			{mainButtons[0].text(), mainButtons[1].text()},
			{mainButtons[2].text(), mainButtons[3].text()},
		},
		OneTime: true,
	}
}

// Match maps text to a main menu button. The emoji prefix is optional and
// letter case is ignored.
func Match(text string) (Button, bool) {
	t := strings.TrimSpace(text)
	for _, b := range mainButtons {
		rest := strings.TrimPrefix(t, b.emoji)
		rest = strings.TrimPrefix(rest, strings.TrimSuffix(b.emoji, "\ufe0f"))
		if strings.EqualFold(strings.TrimSpace(rest), b.label) {
			return b.button, true
		}
	}
	return ButtonNone, false
}

// Title capitalizes each word of a person's name.
func Title(name string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}
