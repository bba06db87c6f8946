package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/pos-backoffice/internal/model"
	"github.com/iliyamo/pos-backoffice/internal/session"
)

func signedIn(id int64, token string) session.Session {
	return session.Session{
		User:  &model.User{ID: &id, Username: "ana", Role: model.RoleSeller, Branch: "Centro"},
		Token: token,
	}
}

func TestDerive(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name       string
		prev, next session.Session
		kind       string
		ok         bool
	}{
		{"login", session.Session{}, signedIn(7, "a.b.c"), KindLogin, true},
		{"logout", signedIn(7, "a.b.c"), session.Session{}, KindLogout, true},
		{"token swap", signedIn(7, "a.b.c"), signedIn(8, "d.e.f"), KindLogin, true},
		{"user update", signedIn(7, "a.b.c"), signedIn(7, "a.b.c"), KindUpdate, true},
		{"still empty", session.Session{}, session.Session{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Derive(tt.prev, tt.next, at)
			if ok != tt.ok || ev.Kind != tt.kind {
				t.Fatalf("Derive = (%q, %v), want (%q, %v)", ev.Kind, ok, tt.kind, tt.ok)
			}
			if !ok {
				return
			}
			if ev.UserID == nil || ev.Username != "ana" || !ev.At.Equal(at) {
				t.Fatalf("event = %+v", ev)
			}
		})
	}
}

func TestDeriveLogoutNamesPreviousUser(t *testing.T) {
	ev, _ := Derive(signedIn(42, "a.b.c"), session.Session{}, time.Now())
	if ev.UserID == nil || *ev.UserID != 42 {
		t.Fatalf("logout must describe the user who left, got %+v", ev)
	}
}

func TestEventNeverCarriesToken(t *testing.T) {
	ev, _ := Derive(session.Session{}, signedIn(1, "secret.token.value"), time.Now())
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "secret.token.value") {
		t.Fatalf("token leaked into %s", b)
	}
}

func TestFileSinkAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "session.log")
	sink := &FileSink{Path: path}
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	login, _ := Derive(session.Session{}, signedIn(7, "a.b.c"), at)
	logout, _ := Derive(signedIn(7, "a.b.c"), session.Session{}, at.Add(time.Hour))
	for _, ev := range []SessionEvent{login, logout} {
		if err := sink.Write(context.Background(), ev); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "[2026-03-01T09:30:00Z] Session login | id=") ||
		!strings.Contains(lines[0], `username="ana" | role=VENDEDOR | branch="Centro"`) {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Session logout") || !strings.Contains(lines[1], "user_id=7") {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

type recordSink struct{ got []SessionEvent }

func (r *recordSink) Write(_ context.Context, ev SessionEvent) error {
	r.got = append(r.got, ev)
	return nil
}

func TestHandleMessage(t *testing.T) {
	sink := &recordSink{}
	ev, _ := Derive(session.Session{}, signedIn(3, "a.b.c"), time.Now())
	body, _ := json.Marshal(ev)
	if err := handleMessage(context.Background(), body, sink); err != nil {
		t.Fatal(err)
	}
	if len(sink.got) != 1 || sink.got[0].ID != ev.ID {
		t.Fatalf("sink got %+v", sink.got)
	}
	for _, bad := range []string{`not json`, `{}`, `{"kind":"login"}`} {
		if err := handleMessage(context.Background(), []byte(bad), sink); err == nil {
			t.Fatalf("%s: expected error", bad)
		}
	}
}
