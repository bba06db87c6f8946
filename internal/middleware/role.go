package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/pos-backoffice/internal/gate"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

// RequireRole returns a middleware that admits the request only when the
// signed in operator's token carries one of the given roles.  Anonymous
// requests go to the login entry point; operators without a matching role
// go to the default landing.  Roles are read from the current token on
// every request, so nested groups each decide on their own.
func RequireRole(store *session.Store, routes gate.Routes, roles ...string) echo.MiddlewareFunc {
	return Gate(store, gate.RoleScoped(routes, roles...))
}
