package stubapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/pos-backoffice/internal/claims"
	"github.com/iliyamo/pos-backoffice/internal/model"
)

const secret = "test-secret"

func newTestServer(t *testing.T, issue bool) (*echo.Echo, *UserRepo) {
	t.Helper()
	repo := NewUserRepo(bcrypt.MinCost)
	for _, u := range []struct{ username, role string }{{"admin", model.RoleAdmin}, {"ana", model.RoleSeller}} {
		if _, err := repo.Create(model.User{Username: u.username, Name: u.username, Role: u.role, Active: true}, "secret"); err != nil {
			t.Fatalf("seed %s: %v", u.username, err)
		}
	}
	e := echo.New()
	New(Config{Secret: secret, IssueTokens: issue}, repo).Register(e)
	return e, repo
}

func call(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, username string) model.LoginResult {
	t.Helper()
	rec := call(e, http.MethodPost, "/users/login", "", `{"username":"`+username+`","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s status = %d body=%s", username, rec.Code, rec.Body)
	}
	var out model.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestLoginIssuesRoleToken(t *testing.T) {
	e, _ := newTestServer(t, true)
	res := login(t, e, "admin")
	if res.Token == "" {
		t.Fatal("token missing")
	}
	if !claims.Roles(res.Token).Has(model.RoleAdmin) {
		t.Fatalf("token roles = %v", claims.Roles(res.Token).Sorted())
	}
	if res.User.LastAccess == nil {
		t.Fatal("last access not stamped")
	}
	if _, err := parseToken([]byte(secret), res.Token); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
}

func TestLoginWithoutTokens(t *testing.T) {
	e, _ := newTestServer(t, false)
	if res := login(t, e, "admin"); res.Token != "" {
		t.Fatalf("token = %q, want none", res.Token)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e, _ := newTestServer(t, true)
	rec := call(e, http.MethodPost, "/users/login", "", `{"username":"admin","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "wrong username or password") {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	e, repo := newTestServer(t, true)
	u, _ := repo.GetByUsername("ana")
	if err := repo.Deactivate(*u.ID); err != nil {
		t.Fatal(err)
	}
	rec := call(e, http.MethodPost, "/users/login", "", `{"username":"ana","password":"secret"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDirectoryRequiresToken(t *testing.T) {
	e, _ := newTestServer(t, true)
	if rec := call(e, http.MethodGet, "/users", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d", rec.Code)
	}
	if rec := call(e, http.MethodGet, "/users", "h.eyJyb2wiOiJBRE1JTiJ9.s", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged token status = %d", rec.Code)
	}
	admin := login(t, e, "admin").Token
	rec := call(e, http.MethodGet, "/users/role/VENDEDOR", admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("by role status = %d", rec.Code)
	}
	var users []model.User
	_ = json.Unmarshal(rec.Body.Bytes(), &users)
	if len(users) != 1 || users[0].Username != "ana" {
		t.Fatalf("users = %+v", users)
	}
}

func TestSellerCannotCreateOrPromote(t *testing.T) {
	e, repo := newTestServer(t, true)
	seller := login(t, e, "ana").Token

	rec := call(e, http.MethodPost, "/users", seller, `{"username":"x","password":"y","role":"ADMIN"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("create status = %d", rec.Code)
	}

	ana, _ := repo.GetByUsername("ana")
	path := "/users/" + jsonNumber(*ana.ID)
	rec = call(e, http.MethodPut, path, seller, `{"username":"ana","name":"Ana B","role":"ADMIN","active":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("self update status = %d body=%s", rec.Code, rec.Body)
	}
	got, _ := repo.Get(*ana.ID)
	if got.Name != "Ana B" || got.Role != model.RoleSeller {
		t.Fatalf("after self update = %+v", got)
	}

	adminUser, _ := repo.GetByUsername("admin")
	rec = call(e, http.MethodPut, "/users/"+jsonNumber(*adminUser.ID), seller, `{"username":"admin"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update status = %d", rec.Code)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	e, _ := newTestServer(t, true)
	admin := login(t, e, "admin").Token
	rec := call(e, http.MethodPost, "/users", admin, `{"username":"ANA","password":"pw","role":"VENDEDOR"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
