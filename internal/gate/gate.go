// Package gate decides whether a navigation may proceed.  A Gate is a pure
// function of the session snapshot; gates compose into a chain where the
// first redirect wins.
package gate

import (
	"github.com/iliyamo/pos-backoffice/internal/claims"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

// Routes names the paths the gates redirect to.
type Routes struct {
	Login   string // login entry point, target for unauthenticated callers
	Landing string // default authenticated landing, target for under-privileged callers
	Admin   string // admin home, landing for ADMIN after login
}

// Verdict is the outcome of a gate: allow, or redirect to Target.
type Verdict struct {
	Allow  bool
	Target string
}

// Allowed lets the navigation through.
var Allowed = Verdict{Allow: true}

// Redirect sends the navigation to target.
func Redirect(target string) Verdict { return Verdict{Target: target} }

// Context is what a gate sees: one session snapshot and the requested path.
type Context struct {
	Session session.Session
	Path    string
}

// Gate maps a context to a verdict.  Gates never fail.
type Gate func(Context) Verdict

// Chain evaluates gates left to right and returns the first verdict that
// is not Allowed.  An empty chain allows.
func Chain(gates ...Gate) Gate {
	return func(ctx Context) Verdict {
		for _, g := range gates {
			if v := g(ctx); !v.Allow {
				return v
			}
		}
		return Allowed
	}
}

// Authenticated allows when the session carries a user and otherwise
// redirects to the login entry point.
func Authenticated(routes Routes) Gate {
	return func(ctx Context) Verdict {
		if !ctx.Session.Authenticated() {
			return Redirect(routes.Login)
		}
		return Allowed
	}
}

// RoleScoped allows authenticated sessions whose token roles intersect
// required.  Unauthenticated callers go to login; authenticated callers
// without a matching role go to the default landing.  Roles are derived
// from the snapshot's token on every evaluation.
func RoleScoped(routes Routes, required ...string) Gate {
	want := claims.NewRoleSet(required...)
	return Chain(Authenticated(routes), func(ctx Context) Verdict {
		if claims.Roles(ctx.Session.Token).Intersects(want) {
			return Allowed
		}
		return Redirect(routes.Landing)
	})
}

// Evaluate runs g against the store's current snapshot.
func Evaluate(store *session.Store, g Gate, path string) Verdict {
	return g(Context{Session: store.Snapshot(), Path: path})
}
