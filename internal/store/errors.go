package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound signals that the addressed row does not exist (or is
	// soft-disabled and therefore invisible).
	ErrNotFound = errors.New("record not found")

	// ErrConflict signals a uniqueness violation (duplicate username or
	// supplier name). The operation is a no-op.
	ErrConflict = errors.New("record already exists")

	// ErrNoFields signals a patch with every field unset.
	ErrNoFields = errors.New("no fields to update")

	// ErrValidation signals input rejected before any mutation.
	ErrValidation = errors.New("validation failed")
)

// isUniqueViolation matches the driver's constraint error text; sqlite does
// not expose a typed error for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
