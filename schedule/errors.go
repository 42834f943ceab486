/*
errors.go - Centralized error types for the scheduling engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP status codes; nothing in this
  package logs or renders.

ERROR CATEGORIES:
  1. Validation errors - malformed shift input, bad recurrence config
  2. Conflict errors   - overlap invariant violations
  3. Not-found errors  - operations on missing records

USAGE:
  Callers branch with errors.Is / errors.As:

    var conflict *schedule.ConflictError
    if errors.As(err, &conflict) {
        // conflict.Existing names the colliding shift
    }
*/
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a shift would overlap an existing one
	// for the same owner.
	ErrConflict = errors.New("shift overlaps an existing shift")

	// ErrNotFound is returned when a referenced shift does not exist.
	// Store implementations surface it; the service propagates it unchanged.
	ErrNotFound = errors.New("shift not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a specific invalid field or rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports which stored shift collides with the candidate
// interval.
type ConflictError struct {
	OwnerID  OwnerID
	Existing ShiftID
	StartAt  time.Time
	EndAt    time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("owner %s already has shift %s overlapping [%s, %s)",
		e.OwnerID, e.Existing,
		e.StartAt.Format(time.RFC3339), e.EndAt.Format(time.RFC3339))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
