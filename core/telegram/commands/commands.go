package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command is a slash command. Hidden and AdminOnly commands are left out of the Telegram command menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
}
