// Package repository implements data access for the movie catalog. All writes
// that ingestion depends on are single-statement conditional inserts so that
// two concurrent loaders targeting the same key cannot create duplicates; the
// database's unique keys resolve the race, not application-level retries.
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
)

// ErrUsernameExists is returned when registering a user whose username is
// already taken. Handlers should translate this into an HTTP 409 response.
var ErrUsernameExists = errors.New("username already exists")

// ErrReferentialViolation is returned when an association or rating row
// references a movie, genre, or user that does not exist. During ingestion
// this signals an ordering bug (the referenced entity must be upserted
// first), so it carries the offending key in the wrapping error.
var ErrReferentialViolation = errors.New("referential violation")

// ErrUserNotFound is returned when a user lookup yields no rows.
var ErrUserNotFound = errors.New("user not found")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (errno 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isForeignKeyViolation reports whether err is a MySQL foreign-key failure
// (errno 1452, no parent row).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}

// IsUnavailable reports whether err indicates the store itself is gone
// (connection dropped, dial failure, or cancelled context) rather than a
// constraint problem with one record. Callers abort the run on these: a
// re-run after the store recovers is safe because every write is idempotent.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
