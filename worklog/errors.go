/*
errors.go - Centralized error types for the worklog engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Normalization errors - Unparseable date input
  2. Validation errors    - Field constraint violations (block writes)
  3. Report conditions    - EmptyReport, informational not fatal
  4. Store errors         - Collaborator failures, propagated untouched

PROPAGATION POLICY:
  The engine never swallows an error except the numeric-coercion
  fallback in ParseHours. Store errors are returned to the immediate
  caller; retry policy belongs there, not here.

SEE ALSO:
  - validate.go: Produces ValidationError
  - export.go:   Produces ErrEmptyReport
  - store.go:    Store implementations wrap ErrStoreUnavailable/ErrNotFound
*/
package worklog

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateFormat is returned when a stored date is neither an
	// ISO calendar day nor a numeric serial. The record is excluded from
	// bucketing rather than aborting the aggregation.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrOutOfRange is returned when a candidate field violates its
	// numeric bounds.
	ErrOutOfRange = errors.New("value out of range")

	// ErrRequired is returned when a required candidate field is empty.
	ErrRequired = errors.New("required field missing")

	// ErrEmptyReport is returned when a month export matches no records.
	// Informational: callers surface it as a notice, not a failure.
	ErrEmptyReport = errors.New("no records in report month")

	// ErrStoreUnavailable is returned by Store implementations when the
	// backing transport or database cannot be reached.
	ErrStoreUnavailable = errors.New("worklog store unavailable")

	// ErrNotFound is returned by Store update/delete on a missing id.
	ErrNotFound = errors.New("worklog not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DateFormatError reports the raw value that failed normalization.
type DateFormatError struct {
	Raw string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid date format: %q", e.Raw)
}

func (e *DateFormatError) Unwrap() error { return ErrInvalidDateFormat }

// ValidationError identifies the first violated rule of a candidate.
// Single-error feedback matches the inline message callers surface.
type ValidationError struct {
	Field   string
	Message string
	rule    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.rule }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input
// rather than an engine or store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrRequired) ||
		errors.Is(err, ErrInvalidDateFormat)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
