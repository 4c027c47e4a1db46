package storage

import (
	"errors"
	"fmt"
)

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidInput wraps a validation failure so errors.Is(err, ErrInvalidInput) holds
// and the message keeps the offending field.
func InvalidInput(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
