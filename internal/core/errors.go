package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("expense not found")
	ErrDuplicateKey     = errors.New("duplicate idempotency key")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidAmount    = errors.New("invalid amount")

	// ErrNonPositiveAmount and ErrAmountOutOfRange wrap ErrInvalidAmount.
	ErrNonPositiveAmount = fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	ErrAmountOutOfRange  = fmt.Errorf("%w: out of range", ErrInvalidAmount)
)

// ValidationError lists the request fields that must be corrected before
// resubmitting.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError is returned when a concurrent request with the same
// idempotency key won the insert race. Retrying with the same key is safe.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate request processed for idempotency key %q", e.Key)
}

func (e *ConflictError) Unwrap() error { return ErrDuplicateKey }

// Unavailable wraps a backend failure so callers can classify it with
// errors.Is(err, ErrStoreUnavailable) while keeping the driver error.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
