// Package callbacks decodes inline button callback data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Separator splits segments of plain callback data such as "test:math:4.0".
const Separator = ":"

// Parse returns the routing key and payload of a callback.
//
// Telebot's "\f<unique>|<payload>" encoding yields (unique, payload). Plain
// data yields its first segment as key and the whole data as payload.
func Parse(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := cb.Data
	if strings.HasPrefix(raw, "\f") {
		unique, payload, _ := strings.Cut(strings.TrimPrefix(raw, "\f"), "|")
		return strings.TrimSpace(unique), payload
	}
	key, _, _ := strings.Cut(raw, Separator)
	return strings.TrimSpace(key), raw
}

// Data returns the callback payload of c, or "" for non-callback updates.
func Data(c tele.Context) string {
	_, payload := Parse(c.Callback())
	return payload
}

// Key returns the routing key of the callback carried by c.
func Key(c tele.Context) string {
	key, _ := Parse(c.Callback())
	return key
}
