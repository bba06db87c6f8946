package gateway

import (
	"context"

	"github.com/iliyamo/pos-backoffice/internal/model"
)

// Thin passthroughs to the remote directory used by the admin screens.
// They do not touch the session except where noted.

func (g *Gateway) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := g.users.ListUsers(ctx)
	if err != nil {
		return nil, classify(err, MsgRequestFailed)
	}
	return users, nil
}

func (g *Gateway) GetUser(ctx context.Context, id int64) (model.User, error) {
	u, err := g.users.GetUser(ctx, id)
	if err != nil {
		return model.User{}, classify(err, MsgRequestFailed)
	}
	return u, nil
}

// Current returns the record a patch for id applies to: the session's
// user when id is the signed in operator, else the remote record.
func (g *Gateway) Current(ctx context.Context, id int64) (model.User, error) {
	if u := g.store.Snapshot().User; u.HasID(id) {
		u.Password = ""
		return *u, nil
	}
	return g.GetUser(ctx, id)
}

func (g *Gateway) UsersByRole(ctx context.Context, role string) ([]model.User, error) {
	users, err := g.users.UsersByRole(ctx, role)
	if err != nil {
		return nil, classify(err, MsgRequestFailed)
	}
	return users, nil
}

// CreateUser creates u remotely.  Any id on u is dropped; the service
// assigns it.
func (g *Gateway) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	u.ID = nil
	created, err := g.users.CreateUser(ctx, u)
	if err != nil {
		return model.User{}, classify(err, MsgRequestFailed)
	}
	return created, nil
}

// DeactivateUser disables account id.  Deactivating the signed in operator
// also logs them out.
func (g *Gateway) DeactivateUser(ctx context.Context, id int64, nav Navigator) error {
	if err := g.users.DeactivateUser(ctx, id); err != nil {
		return classify(err, MsgRequestFailed)
	}
	if g.store.Snapshot().User.HasID(id) {
		g.Logout(nav)
	}
	return nil
}

// Branches lists the distinct, non-empty branches across the directory in
// first-seen order.
func (g *Gateway) Branches(ctx context.Context) ([]string, error) {
	users, err := g.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, u := range users {
		if u.Branch != "" && !seen[u.Branch] {
			seen[u.Branch] = true
			out = append(out, u.Branch)
		}
	}
	return out, nil
}
