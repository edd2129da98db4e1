package middleware

import (
	"slices"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminIDs []int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether userID is listed in AdminIDs.
func (o AdminOptions) IsAdmin(userID int64) bool {
	return slices.Contains(o.AdminIDs, userID)
}

// AdminOnlyMiddleware ensures that only configured admins can invoke downstream handlers.
// With no admins configured every caller is rejected.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || !opts.IsAdmin(user.ID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
