package gate

import (
	"context"
	"testing"

	"github.com/iliyamo/pos-backoffice/internal/model"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

const (
	adminToken  = "h.eyJyb2wiOiJBRE1JTiJ9.s"    // {"rol":"ADMIN"}
	sellerToken = "h.eyJyb2wiOiJWRU5ERURPUiJ9.s" // {"rol":"VENDEDOR"}
)

var routes = Routes{Login: "/", Landing: "/c/inicio", Admin: "/admin"}

func signedIn(t *testing.T, token string) *session.Store {
	t.Helper()
	id := int64(1)
	s := session.NewStore()
	if err := s.Set(&model.User{ID: &id, Username: "admin"}, token); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAuthenticated(t *testing.T) {
	g := Authenticated(routes)
	if v := Evaluate(session.NewStore(), g, "/c/inicio"); v.Allow || v.Target != "/" {
		t.Fatalf("empty session verdict = %+v, want redirect to /", v)
	}
	if v := Evaluate(signedIn(t, adminToken), g, "/c/inicio"); !v.Allow {
		t.Fatalf("signed in verdict = %+v, want allow", v)
	}
}

func TestAuthenticatedBeforeAndAfterRehydration(t *testing.T) {
	p := &session.MemoryPersister{}
	writer := session.NewStore(session.WithPersister(p))
	id := int64(1)
	if err := writer.Set(&model.User{ID: &id}, adminToken); err != nil {
		t.Fatal(err)
	}

	s := session.NewStore(session.WithPersister(p))
	g := Authenticated(routes)
	if v := Evaluate(s, g, "/admin"); v.Allow {
		t.Fatal("evaluating before rehydration sees an empty session")
	}
	s.Rehydrate(context.Background())
	if v := Evaluate(s, g, "/admin"); !v.Allow {
		t.Fatalf("after rehydration verdict = %+v, want allow", v)
	}
}

func TestRoleScoped(t *testing.T) {
	g := RoleScoped(routes, "ADMIN")
	if v := Evaluate(signedIn(t, adminToken), g, "/admin"); !v.Allow {
		t.Fatalf("ADMIN verdict = %+v, want allow", v)
	}
	if v := Evaluate(signedIn(t, sellerToken), g, "/admin"); v.Allow || v.Target != "/c/inicio" {
		t.Fatalf("VENDEDOR verdict = %+v, want redirect to landing", v)
	}
	if v := Evaluate(session.NewStore(), g, "/admin"); v.Allow || v.Target != "/" {
		t.Fatalf("anonymous verdict = %+v, want redirect to login", v)
	}
	if v := Evaluate(signedIn(t, "garbage"), g, "/admin"); v.Allow || v.Target != "/c/inicio" {
		t.Fatalf("malformed token verdict = %+v, want redirect to landing", v)
	}
}

func TestRoleScopedAnyOf(t *testing.T) {
	g := RoleScoped(routes, "ADMIN", "VENDEDOR")
	if v := Evaluate(signedIn(t, sellerToken), g, "/c/ventas"); !v.Allow {
		t.Fatalf("verdict = %+v, want allow", v)
	}
}

func TestRoleScopedFollowsTokenSwap(t *testing.T) {
	s := signedIn(t, adminToken)
	g := RoleScoped(routes, "ADMIN")
	if !Evaluate(s, g, "/admin").Allow {
		t.Fatal("want allow for ADMIN token")
	}
	id := int64(1)
	if err := s.Set(&model.User{ID: &id}, sellerToken); err != nil {
		t.Fatal(err)
	}
	if Evaluate(s, g, "/admin").Allow {
		t.Fatal("roles must be recomputed after a token swap")
	}
}

func TestChainShortCircuits(t *testing.T) {
	calls := 0
	counting := func(Context) Verdict {
		calls++
		return Allowed
	}
	deny := func(Context) Verdict { return Redirect("/x") }

	v := Chain(counting, deny, counting)(Context{})
	if v.Allow || v.Target != "/x" || calls != 1 {
		t.Fatalf("verdict = %+v calls = %d", v, calls)
	}
	if !Chain()(Context{}).Allow {
		t.Fatal("empty chain must allow")
	}
}
