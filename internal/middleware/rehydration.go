package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-backoffice/internal/session"
)

// AwaitRehydration holds every request until the store has finished
// rehydrating, so no gate ever judges the empty pre-rehydration session.
// Requests whose context ends first get 503.
func AwaitRehydration(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			select {
			case <-store.Ready():
				return next(c)
			case <-c.Request().Context().Done():
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "session not ready"})
			}
		}
	}
}
