// Package apperr defines the error taxonomy shared by the unread and
// notification services. Callers branch on the category, not on the
// underlying driver error.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated means there is no current user; the operation is
	// rejected and must not be retried without re-authenticating.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound means a group or user document is missing. Consumers
	// treat it as zero members / zero messages rather than as fatal.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is a store-level authorization failure. It is
	// logged and surfaced as zero effect, never as a crash.
	ErrPermissionDenied = errors.New("permission denied")
)

// Transient wraps a network or store failure. Operations fail open on it:
// zero unread, empty member list, no notification shown.
func Transient(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// FromDB translates gorm lookup errors into the taxonomy.
func FromDB(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
