package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/pos-backoffice/internal/queue"
)

const createSessionEvents = `CREATE TABLE IF NOT EXISTS session_events (
	id          CHAR(36)     NOT NULL PRIMARY KEY,
	kind        VARCHAR(16)  NOT NULL,
	user_id     BIGINT       NULL,
	username    VARCHAR(128) NOT NULL,
	role        VARCHAR(32)  NOT NULL DEFAULT '',
	branch      VARCHAR(128) NOT NULL DEFAULT '',
	terminal    VARCHAR(128) NOT NULL DEFAULT '',
	occurred_at DATETIME(3)  NOT NULL,
	KEY idx_session_events_user (username, occurred_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// SessionEventRepo stores session audit events in MySQL.
type SessionEventRepo struct{ DB *sql.DB }

func NewSessionEventRepo(db *sql.DB) *SessionEventRepo { return &SessionEventRepo{DB: db} }

// EnsureSchema creates the session_events table when missing.
func (r *SessionEventRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, createSessionEvents)
	return err
}

// Insert stores ev.  A second insert of the same id returns
// ErrDuplicateEvent.
func (r *SessionEventRepo) Insert(ctx context.Context, ev queue.SessionEvent) error {
	var uid sql.NullInt64
	if ev.UserID != nil {
		uid = sql.NullInt64{Int64: *ev.UserID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO session_events (id, kind, user_id, username, role, branch, terminal, occurred_at) VALUES (?,?,?,?,?,?,?,?)",
		ev.ID.String(), ev.Kind, uid, ev.Username, ev.Role, ev.Branch, ev.Terminal, ev.At.UTC())
	var merr *mysql.MySQLError
	if errors.As(err, &merr) && merr.Number == mysqlDuplicateEntry {
		return ErrDuplicateEvent
	}
	return err
}

// Write implements queue.Sink.
func (r *SessionEventRepo) Write(ctx context.Context, ev queue.SessionEvent) error {
	if err := r.Insert(ctx, ev); err != nil && !errors.Is(err, ErrDuplicateEvent) {
		return err
	}
	return nil
}
