package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iliyamo/pos-backoffice/internal/model"
)

// ErrNotFound is returned by a Persister that holds no record.
var ErrNotFound = errors.New("session: no persisted record")

// ErrSchemaVersion marks a record written with an unknown schema.
var ErrSchemaVersion = errors.New("session: unsupported record version")

// recordVersion tags the persisted layout.  Bump it when the layout changes;
// Decode rejects anything else.
const recordVersion = 1

// record is the persisted layout, kept apart from Session so the in-memory
// shape can change without breaking stored records.
type record struct {
	Version int         `json:"v"`
	User    *model.User `json:"user"`
	Token   *string     `json:"token"`
}

// Encode serializes s into the versioned record layout.  Password material
// is never written.
func Encode(s Session) ([]byte, error) {
	rec := record{Version: recordVersion}
	if s.User != nil {
		u := s.User.Clone()
		u.Password = ""
		rec.User = u
	}
	if s.Token != "" {
		tok := s.Token
		rec.Token = &tok
	}
	return json.Marshal(rec)
}

// Decode parses a record produced by Encode.  Records with an unknown
// version, or holding a user without a token or the reverse, are rejected.
func Decode(data []byte) (Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Session{}, fmt.Errorf("decode record: %w", err)
	}
	if rec.Version != recordVersion {
		return Session{}, fmt.Errorf("%w: %d", ErrSchemaVersion, rec.Version)
	}
	var tok string
	if rec.Token != nil {
		tok = *rec.Token
	}
	if (rec.User == nil) != (tok == "") {
		return Session{}, ErrIncompleteSession
	}
	return Session{User: rec.User, Token: tok}, nil
}

// Persister stores the single serialized session record under a fixed key.
// Load returns ErrNotFound when nothing is stored.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// MemoryPersister keeps the record in process memory.  It survives Store
// instances but not the process.
type MemoryPersister struct {
	mu   sync.Mutex
	data []byte
}

func (m *MemoryPersister) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryPersister) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	m.data = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryPersister) Delete(context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// FilePersister keeps the record in a single file, normally under the
// user's runtime directory.  Records older than TTL are treated as absent
// and removed.
type FilePersister struct {
	Path string
	TTL  time.Duration
}

func (f FilePersister) Load(context.Context) ([]byte, error) {
	info, err := os.Stat(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if f.TTL > 0 && time.Since(info.ModTime()) > f.TTL {
		_ = os.Remove(f.Path)
		return nil, ErrNotFound
	}
	return os.ReadFile(f.Path)
}

// Save writes through a temp file and rename so a crash never leaves a
// half written record behind.
func (f FilePersister) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}

func (f FilePersister) Delete(context.Context) error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
