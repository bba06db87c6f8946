// Package queue defines the session audit events exchanged over the
// message broker and the consumer that stores them.
package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/pos-backoffice/internal/session"
)

// QueueName is the durable queue session events travel on.
const QueueName = "session.events"

// Event kinds.
const (
	KindLogin  = "login"
	KindLogout = "logout"
	KindUpdate = "update"
)

// SessionEvent records one transition of the terminal's session.  It
// never carries the token.
type SessionEvent struct {
	ID       uuid.UUID `json:"id"`
	Kind     string    `json:"kind"`
	UserID   *int64    `json:"user_id,omitempty"`
	Username string    `json:"username"`
	Role     string    `json:"role,omitempty"`
	Branch   string    `json:"branch,omitempty"`
	Terminal string    `json:"terminal,omitempty"`
	At       time.Time `json:"at"`
}

// Derive classifies the move from prev to next.  A new token for a signed
// in terminal counts as a login, the same token with a new user as an
// update.  ok is false when nothing worth recording happened.
func Derive(prev, next session.Session, at time.Time) (ev SessionEvent, ok bool) {
	var subject session.Session
	switch {
	case !prev.Authenticated() && next.Authenticated():
		ev.Kind, subject = KindLogin, next
	case prev.Authenticated() && !next.Authenticated():
		ev.Kind, subject = KindLogout, prev
	case prev.Authenticated() && next.Authenticated() && prev.Token != next.Token:
		ev.Kind, subject = KindLogin, next
	case prev.Authenticated() && next.Authenticated():
		ev.Kind, subject = KindUpdate, next
	default:
		return SessionEvent{}, false
	}
	ev.ID = uuid.New()
	ev.At = at.UTC()
	u := subject.User
	if u.ID != nil {
		id := *u.ID
		ev.UserID = &id
	}
	ev.Username = u.Username
	ev.Role = u.Role
	ev.Branch = u.Branch
	return ev, true
}

// Line renders ev as one log line.
func (ev SessionEvent) Line() string {
	uid := "-"
	if ev.UserID != nil {
		uid = fmt.Sprint(*ev.UserID)
	}
	return fmt.Sprintf("[%s] Session %s | id=%s | user_id=%s | username=%q | role=%s | branch=%q | terminal=%q\n",
		ev.At.Format(time.RFC3339), ev.Kind, ev.ID, uid, ev.Username, ev.Role, ev.Branch, ev.Terminal)
}
