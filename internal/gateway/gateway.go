// Package gateway runs the operator's login and logout against the remote
// user service and is the only writer of the session store besides
// rehydration.
package gateway

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/pos-backoffice/internal/claims"
	"github.com/iliyamo/pos-backoffice/internal/gate"
	"github.com/iliyamo/pos-backoffice/internal/model"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

// UserService is the remote user directory.  *remote.Client implements it.
type UserService interface {
	Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	UsersByRole(ctx context.Context, role string) ([]model.User, error)
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	UpdateUser(ctx context.Context, id int64, u model.User) (model.User, error)
	DeactivateUser(ctx context.Context, id int64) error
}

// Navigator moves the operator to another route.
type Navigator interface {
	Navigate(to string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to string)

func (f NavigatorFunc) Navigate(to string) { f(to) }

// Gateway translates remote outcomes into session mutations or AuthErrors.
type Gateway struct {
	store  *session.Store
	users  UserService
	routes gate.Routes
	logger echo.Logger
}

// New returns a gateway writing to store.  A nil logger logs under the
// "gateway" prefix.
func New(store *session.Store, users UserService, routes gate.Routes, logger echo.Logger) *Gateway {
	if logger == nil {
		logger = log.New("gateway")
	}
	return &Gateway{store: store, users: users, routes: routes, logger: logger}
}

// Login sends the credentials to the remote service.  Only a response that
// carries a token signs the operator in; anything else leaves the session
// untouched and returns an *AuthError.
func (g *Gateway) Login(ctx context.Context, username, secret string) (session.Session, error) {
	res, err := g.users.Login(ctx, model.Credentials{Username: username, Password: secret})
	if err != nil {
		aerr := classify(err, MsgLoginFailed)
		g.logger.Warnf("gateway: login %q: %v", username, aerr)
		return session.Session{}, aerr
	}
	if res.Token == "" {
		g.logger.Infof("gateway: login %q: no token issued", username)
		return session.Session{}, &AuthError{Kind: InvalidCredentials, Message: MsgInvalidCredentials}
	}
	user := res.User
	if err := g.store.Set(&user, res.Token); err != nil {
		return session.Session{}, &AuthError{Kind: ServerError, Message: MsgLoginFailed, Err: err}
	}
	g.logger.Infof("gateway: login %q ok", username)
	return session.Session{User: user.Clone(), Token: res.Token}, nil
}

// Logout clears the session and sends the operator to the login entry
// point.  It always succeeds, also when nobody is signed in.
func (g *Gateway) Logout(nav Navigator) {
	g.store.Clear()
	if nav != nil {
		nav.Navigate(g.routes.Login)
	}
}

// Landing is where an operator goes right after signing in: admins to the
// admin home, everybody else to the default landing.
func (g *Gateway) Landing(s session.Session) string {
	if claims.Roles(s.Token).Has(model.RoleAdmin) && g.routes.Admin != "" {
		return g.routes.Admin
	}
	return g.routes.Landing
}

// UpdateSelf updates user id remotely.  patch is sent as the whole
// record, so callers start it from Current.  When id is the signed in
// operator the session's user is replaced and the token kept.
func (g *Gateway) UpdateSelf(ctx context.Context, id int64, patch model.User) (model.User, error) {
	patch.ID = &id
	updated, err := g.users.UpdateUser(ctx, id, patch)
	if err != nil {
		return model.User{}, classify(err, MsgRequestFailed)
	}
	g.store.ReplaceUser(id, &updated)
	return updated, nil
}
