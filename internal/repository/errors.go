package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrRemoteUnavailable means the remote store could not be reached or
	// rejected the operation for a reason unrelated to the data.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrValidationConflict means the write would break id uniqueness.
	ErrValidationConflict = errors.New("validation conflict")
	// ErrMalformedImport means a bulk payload did not parse into products.
	ErrMalformedImport = errors.New("malformed import")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrNotFound        = errors.New("not found")
)

// classify maps a gorm error onto the store error taxonomy
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", op, ErrValidationConflict, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrRemoteUnavailable, err)
	}
}
