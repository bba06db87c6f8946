// Package session holds the terminal's authentication state: one Session
// value, replaced wholesale by its writers and persisted across process
// restarts within a browsing session.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/pos-backoffice/internal/model"
)

// ErrIncompleteSession is returned by Set when only one of user and token
// is present.
var ErrIncompleteSession = errors.New("session: user and token must be set together")

// persistTimeout bounds every call into the Persister.
const persistTimeout = 2 * time.Second

// Session is the user/token pair describing who is signed in on this
// terminal.  Both fields are set or both are empty.
type Session struct {
	User  *model.User
	Token string
}

// Authenticated reports whether the session carries a user.
func (s Session) Authenticated() bool { return s.User != nil }

func (s Session) clone() Session {
	return Session{User: s.User.Clone(), Token: s.Token}
}

// AuthContext receives the token that must accompany privileged calls to
// the remote services.  The remote client implements it by installing an
// Authorization header.
type AuthContext interface {
	SetAuthToken(token string)
	ClearAuthToken()
}

// Store is the single mutable session cell of the process.  Reads are lock
// free snapshots; writers are serialized and always publish a whole new
// Session, so user and token never change as two observable steps.
// Subscribers are notified synchronously, in write order, while the writer
// lock is held; they must not call back into Set, Clear or ReplaceUser.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Session]

	auth    AuthContext
	persist Persister
	logger  echo.Logger

	subMu   sync.Mutex
	subs    map[int]func(Session)
	nextSub int

	rehydrated bool
	ready      chan struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithAuthContext installs the collaborator that receives the token.
func WithAuthContext(a AuthContext) Option { return func(s *Store) { s.auth = a } }

// WithPersister enables persistence of the session record.
func WithPersister(p Persister) Option { return func(s *Store) { s.persist = p } }

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l echo.Logger) Option { return func(s *Store) { s.logger = l } }

// NewStore returns an empty, not yet rehydrated store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		subs:  map[int]func(Session){},
		ready: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.New("session")
	}
	s.current.Store(&Session{})
	return s
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	return s.current.Load().clone()
}

// Ready is closed once Rehydrate has finished, whether or not it restored
// a session.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// Set replaces the session with the given pair.  A non-empty token is
// installed on the auth context.  Passing neither user nor token empties
// the session and removes any installed token, as Clear does.
func (s *Store) Set(user *model.User, token string) error {
	if (user == nil) != (token == "") {
		return ErrIncompleteSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" && s.auth != nil {
		s.auth.ClearAuthToken()
	}
	s.publish(Session{User: user.Clone(), Token: token}, true)
	return nil
}

// Clear empties the session, removes the installed auth context and
// deletes the persisted record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auth != nil {
		s.auth.ClearAuthToken()
	}
	s.publish(Session{}, true)
}

// ReplaceUser swaps in user when the signed in user has the given id,
// keeping the token.  It reports whether the session changed.
func (s *Store) ReplaceUser(id int64, user *model.User) bool {
	if user == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current.Load()
	if !cur.User.HasID(id) {
		return false
	}
	s.publish(Session{User: user.Clone(), Token: cur.Token}, true)
	return true
}

// Rehydrate restores the persisted session, if any, and then closes Ready.
// Missing, expired or corrupt records leave the session empty.  It reports
// whether a session was restored; calls after the first are no-ops.
func (s *Store) Rehydrate(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rehydrated {
		return s.current.Load().Authenticated()
	}
	s.rehydrated = true
	defer close(s.ready)

	if s.persist == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	data, err := s.persist.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warnf("session: load persisted record: %v", err)
		}
		return false
	}
	restored, err := Decode(data)
	if err != nil {
		s.logger.Warnf("session: discard persisted record: %v", err)
		return false
	}
	if !restored.Authenticated() {
		return false
	}
	s.publish(restored, false)
	return true
}

// Subscribe registers fn to receive every new snapshot and returns a
// function that removes it.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// publish must be called with mu held.
func (s *Store) publish(next Session, persist bool) {
	s.current.Store(&next)
	if next.Token != "" && s.auth != nil {
		s.auth.SetAuthToken(next.Token)
	}
	if persist {
		s.save(next)
	}
	s.notify(next)
}

func (s *Store) save(next Session) {
	if s.persist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if !next.Authenticated() {
		if err := s.persist.Delete(ctx); err != nil {
			s.logger.Warnf("session: delete persisted record: %v", err)
		}
		return
	}
	data, err := Encode(next)
	if err == nil {
		err = s.persist.Save(ctx, data)
	}
	if err != nil {
		s.logger.Warnf("session: persist record: %v", err)
	}
}

func (s *Store) notify(next Session) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Session), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(next.clone())
	}
}
