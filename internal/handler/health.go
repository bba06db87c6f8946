package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project

	"github.com/iliyamo/pos-backoffice/internal/session"
)

// Health is a liveness probe.  It returns a plain text "ok" with 200 as
// long as the process serves requests.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready reports 503 until the session store has rehydrated, 200 after.
func Ready(store *session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		select {
		case <-store.Ready():
			return c.String(http.StatusOK, "ready")
		default:
			return c.String(http.StatusServiceUnavailable, "rehydrating")
		}
	}
}
