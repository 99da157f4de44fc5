package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors: the caller supplied something the core cannot use.
	// They are never retried and abort only the computation they belong to.
	ErrConfiguration  = errors.New("configuration error")
	ErrColumnNotFound = fmt.Errorf("%w: column not found", ErrConfiguration)
	ErrColumnKind     = fmt.Errorf("%w: wrong column kind", ErrConfiguration)
	ErrInvalidRange   = fmt.Errorf("%w: invalid range", ErrConfiguration)
	ErrInvalidBins    = fmt.Errorf("%w: invalid bins", ErrConfiguration)
	ErrEmptyChain     = fmt.Errorf("%w: flow chain needs at least two columns", ErrConfiguration)
	ErrDuplicateKey   = fmt.Errorf("%w: duplicate key", ErrConfiguration)

	// Not found errors
	ErrNotFound     = errors.New("resource not found")
	ErrViewNotFound = fmt.Errorf("%w: view", ErrNotFound)

	// Load errors
	ErrEmptySource = errors.New("source has no data rows")
)

// Error constructors with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

func NewColumnKindError(column, want, got string) error {
	return fmt.Errorf("%w: %q is %s, need %s", ErrColumnKind, column, got, want)
}

func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrConfiguration, field, reason)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrColumnNotFound)
}
