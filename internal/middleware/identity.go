package middleware

// identity.go holds helpers to read the session snapshot a gate admitted
// the request with.  Handlers use it instead of the live store so that a
// concurrent logout cannot change what one response renders.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-backoffice/internal/session"
)

const sessionKey = "session"

// SessionFrom returns the snapshot stored by Gate, or an empty session
// when the route was not gated.
func SessionFrom(c echo.Context) session.Session {
	if s, ok := c.Get(sessionKey).(session.Session); ok {
		return s
	}
	return session.Session{}
}

// userID returns the username of the admitted operator, or "anon".
func userID(c echo.Context) string {
	if s := SessionFrom(c); s.User != nil && s.User.Username != "" {
		return s.User.Username
	}
	return "anon"
}
