package stubapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/pos-backoffice/internal/model"
)

var (
	// ErrUsernameExists is returned when creating a duplicate username.
	ErrUsernameExists = errors.New("username already exists")
	// ErrNotFound is returned for unknown ids or usernames.
	ErrNotFound = errors.New("user not found")
)

// userRow is a directory entry together with its password hash.
type userRow struct {
	user model.User
	hash string
}

// UserRepo is the in-memory user directory of the stand-in service.
type UserRepo struct {
	mu     sync.RWMutex
	cost   int
	nextID int64
	rows   map[int64]*userRow
}

// NewUserRepo returns an empty directory hashing passwords with cost.
func NewUserRepo(cost int) *UserRepo {
	return &UserRepo{cost: cost, nextID: 1, rows: map[int64]*userRow{}}
}

// Create inserts u with the given plain password and returns the stored
// user with its new id.
func (r *UserRepo) Create(u model.User, password string) (model.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	hash, err := hashPassword(password, r.cost)
	if err != nil {
		return model.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if strings.EqualFold(row.user.Username, u.Username) {
			return model.User{}, ErrUsernameExists
		}
	}
	id := r.nextID
	r.nextID++
	u.ID = &id
	u.Password = ""
	r.rows[id] = &userRow{user: u, hash: hash}
	return *u.Clone(), nil
}

// Authenticate checks username and password against an active account and
// stamps its last access time.
func (r *UserRepo) Authenticate(username, password string) (model.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if !strings.EqualFold(row.user.Username, strings.TrimSpace(username)) {
			continue
		}
		if !row.user.Active || !verifyPassword(row.hash, password) {
			return model.User{}, false
		}
		now := time.Now().UTC()
		row.user.LastAccess = &now
		return *row.user.Clone(), true
	}
	return model.User{}, false
}

func (r *UserRepo) Get(id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return *row.user.Clone(), nil
}

func (r *UserRepo) GetByUsername(username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, row := range r.rows {
		if strings.EqualFold(row.user.Username, username) {
			return *row.user.Clone(), nil
		}
	}
	return model.User{}, ErrNotFound
}

// List returns users ordered by id, optionally filtered by role.
func (r *UserRepo) List(role string) []model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.User, 0, len(r.rows))
	for _, row := range r.rows {
		if role == "" || strings.EqualFold(row.user.Role, role) {
			out = append(out, *row.user.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out
}

// Update replaces the profile fields of id.  A non-empty password in u
// rotates the hash.
func (r *UserRepo) Update(id int64, u model.User) (model.User, error) {
	var hash string
	if u.Password != "" {
		h, err := hashPassword(u.Password, r.cost)
		if err != nil {
			return model.User{}, err
		}
		hash = h
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	for otherID, other := range r.rows {
		if otherID != id && strings.EqualFold(other.user.Username, u.Username) {
			return model.User{}, ErrUsernameExists
		}
	}
	u.ID = &id
	u.Password = ""
	u.LastAccess = row.user.LastAccess
	row.user = u
	if hash != "" {
		row.hash = hash
	}
	return *row.user.Clone(), nil
}

// Deactivate marks id inactive; the record is kept.
func (r *UserRepo) Deactivate(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	row.user.Active = false
	return nil
}
