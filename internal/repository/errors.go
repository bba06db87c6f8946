// Package repository holds the SQL data access used by the audit
// consumer.
package repository

import "errors"

// ErrDuplicateEvent is returned when an event id is already stored.  The
// consumer treats it as success: redelivered messages are not errors.
var ErrDuplicateEvent = errors.New("duplicate event")
