package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-backoffice/internal/gate"
	"github.com/iliyamo/pos-backoffice/internal/model"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

var routes = gate.Routes{Login: "/", Landing: "/c/inicio", Admin: "/admin"}

const (
	adminToken  = "h.eyJyb2wiOiJBRE1JTiJ9.s"
	sellerToken = "h.eyJyb2wiOiJWRU5ERURPUiJ9.s"
)

func signedIn(t *testing.T, role, token string) *session.Store {
	t.Helper()
	store := session.NewStore()
	store.Rehydrate(context.Background())
	id := int64(1)
	if err := store.Set(&model.User{ID: &id, Username: "ana", Role: role}, token); err != nil {
		t.Fatal(err)
	}
	return store
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRequireSessionRedirectsWithoutRunningHandler(t *testing.T) {
	store := session.NewStore()
	store.Rehydrate(context.Background())
	called := false
	e := echo.New()
	e.GET("/c/inicio", func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}, RequireSession(store, routes))

	rec := serve(e, http.MethodGet, "/c/inicio")
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("got %d to %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if called {
		t.Fatal("guarded handler ran on redirect")
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		token    string
		code     int
		location string
	}{
		{"admin allowed", model.RoleAdmin, adminToken, http.StatusOK, ""},
		{"seller sent to landing", model.RoleSeller, sellerToken, http.StatusFound, "/c/inicio"},
		{"malformed token sent to landing", model.RoleAdmin, "not-a-token", http.StatusFound, "/c/inicio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := signedIn(t, tt.role, tt.token)
			e := echo.New()
			e.GET("/admin", func(c echo.Context) error {
				return c.String(http.StatusOK, SessionFrom(c).User.Username)
			}, RequireRole(store, routes, model.RoleAdmin))

			rec := serve(e, http.MethodGet, "/admin")
			if rec.Code != tt.code || rec.Header().Get(echo.HeaderLocation) != tt.location {
				t.Fatalf("got %d to %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
			}
			if tt.code == http.StatusOK && rec.Body.String() != "ana" {
				t.Fatalf("handler saw %q", rec.Body.String())
			}
		})
	}
}

func TestRequireRoleAnonymousGoesToLogin(t *testing.T) {
	store := session.NewStore()
	store.Rehydrate(context.Background())
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		RequireRole(store, routes, model.RoleAdmin))
	if rec := serve(e, http.MethodGet, "/admin"); rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("anonymous redirected to %q", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestSessionFromUngatedRoute(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if s := SessionFrom(c); s.Authenticated() || userID(c) != "anon" {
		t.Fatalf("ungated route saw %+v", s)
	}
}

func TestAwaitRehydration(t *testing.T) {
	persist := &session.MemoryPersister{}
	id := int64(3)
	data, err := session.Encode(session.Session{User: &model.User{ID: &id, Username: "luis"}, Token: adminToken})
	if err != nil {
		t.Fatal(err)
	}
	if err := persist.Save(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	store := session.NewStore(session.WithPersister(persist))

	e := echo.New()
	e.GET("/c/inicio", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		AwaitRehydration(store), RequireSession(store, routes))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/c/inicio", nil).WithContext(ctx))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("before rehydration: %d", rec.Code)
	}

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- serve(e, http.MethodGet, "/c/inicio") }()
	time.Sleep(10 * time.Millisecond)
	store.Rehydrate(context.Background())
	select {
	case rec := <-done:
		if rec.Code != http.StatusOK {
			t.Fatalf("held request answered %d; it must see the restored session", rec.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request still held after rehydration")
	}
}
