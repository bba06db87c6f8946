package middleware // middleware holds the echo adapters that gate the terminal's route tree

import (
	"net/http" // HTTP status codes for redirects

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/pos-backoffice/internal/gate"    // pure routing decisions
	"github.com/iliyamo/pos-backoffice/internal/session" // the process wide session cell
)

// Gate returns an Echo middleware that evaluates g against one snapshot of
// the store.  The snapshot is taken and judged synchronously before the
// next handler is considered, so a redirect verdict never lets the guarded
// handler run, not even partially.  On allow the snapshot is stored in the
// context so handlers render from the same state the gate saw.
func Gate(store *session.Store, g gate.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := store.Snapshot()
			v := g(gate.Context{Session: snap, Path: c.Request().URL.Path})
			if !v.Allow {
				return c.Redirect(http.StatusFound, v.Target)
			}
			c.Set(sessionKey, snap)
			return next(c)
		}
	}
}

// RequireSession admits requests only while an operator is signed in and
// redirects everybody else to the login entry point.
func RequireSession(store *session.Store, routes gate.Routes) echo.MiddlewareFunc {
	return Gate(store, gate.Authenticated(routes))
}
