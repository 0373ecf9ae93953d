/*
validate.go - Field-level constraints checked before a record is accepted

PURPOSE:
  Enforces the write-time rules for worklog candidates and, separately,
  the credential shape rules used at registration. Validation returns
  the FIRST violated rule only; the caller surfaces a single inline
  message, so aggregating violations would be wasted work.

RULES (in evaluation order):
  duration_hours  0 <= v <= 24, else OutOfRange
  reason          non-empty after trimming, else Required
  date            present, else Required

SEE ALSO:
  - errors.go: ValidationError, ErrOutOfRange, ErrRequired
*/
package worklog

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var maxDurationHours = decimal.NewFromInt(24)

// ValidateCandidate checks a candidate against the write-time rules and
// returns the first violation, or nil if the candidate is acceptable.
func ValidateCandidate(c Candidate) error {
	if c.DurationHours.IsNegative() || c.DurationHours.GreaterThan(maxDurationHours) {
		return &ValidationError{
			Field:   "duration_hours",
			Message: "must be between 0 and 24",
			rule:    ErrOutOfRange,
		}
	}
	if strings.TrimSpace(c.Reason) == "" {
		return &ValidationError{
			Field:   "reason",
			Message: "reason is required",
			rule:    ErrRequired,
		}
	}
	if strings.TrimSpace(c.Date) == "" {
		return &ValidationError{
			Field:   "date",
			Message: "date is required",
			rule:    ErrRequired,
		}
	}
	return nil
}

// =============================================================================
// CREDENTIAL SHAPE - Registration-only checks
// =============================================================================

// ValidateUsername enforces the identifier shape: at least 3 characters.
func ValidateUsername(username string) error {
	if len(strings.TrimSpace(username)) < 3 {
		return &ValidationError{
			Field:   "username",
			Message: "must be at least 3 characters",
			rule:    ErrOutOfRange,
		}
	}
	return nil
}

// ValidatePassword enforces the secret shape: length in [6,15] with at
// least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 6 || len(password) > 15 {
		return &ValidationError{
			Field:   "password",
			Message: "must be 6 to 15 characters",
			rule:    ErrOutOfRange,
		}
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return &ValidationError{
			Field:   "password",
			Message: "must contain at least one letter and one digit",
			rule:    ErrRequired,
		}
	}
	return nil
}
