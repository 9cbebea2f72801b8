/*
errors.go - Centralized error types for the assignment engine

PURPOSE:
  All engine error types in one place. Three categories, mirroring how the
  rest of the system treats them:

  1. Validation errors - user-fixable upload problems, always reported as a
     complete list so the caller sees every problem at once
  2. Gate blocks - expected, recoverable process states carried as values
     (GateDecision); wrapped in GateBlockedError only where an error type
     is needed for plumbing
  3. Fatal errors - malformed files, unknown months; propagated, no retry

USAGE:
  if errors.Is(err, engine.ErrQuotaExhausted) { ... }

  var verrs engine.ValidationErrors
  if errors.As(err, &verrs) {
      for _, ve := range verrs { display(ve) }
  }
*/
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fnfcrew/assignment-engine/crew"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrGateBlocked is the sentinel behind GateBlockedError.
	ErrGateBlocked = errors.New("month gate blocked")

	// ErrDuplicateAssignment is returned when a manual assignment would
	// create a second record for the same (influencer, brand, month).
	ErrDuplicateAssignment = errors.New("assignment already exists")

	// ErrQuotaExhausted is returned when a manual assignment targets an
	// influencer with no remaining quota for the brand.
	ErrQuotaExhausted = errors.New("no remaining quota")

	// ErrInfluencerNotFound is returned when an ID is absent from the roster.
	ErrInfluencerNotFound = errors.New("influencer not found")

	// ErrUnknownMonth is returned when a month label does not belong to the
	// active season sequence.
	ErrUnknownMonth = errors.New("month not in season sequence")

	// ErrUnknownBrand is returned for brand labels outside {MLB, DX, DV, ST}.
	ErrUnknownBrand = errors.New("unknown brand")
)

// =============================================================================
// VALIDATION ERRORS - User-fixable, reported as a complete list
// =============================================================================

type ValidationCode string

const (
	CodeMissingColumn        ValidationCode = "missing_column"
	CodeActualOutOfRange     ValidationCode = "actual_out_of_range"
	CodeNoMatchingAssignment ValidationCode = "no_matching_assignment"
	CodeDuplicateExecution   ValidationCode = "duplicate_execution"
	CodeUnknownBrand         ValidationCode = "unknown_brand"
)

// ValidationError describes one user-fixable problem in an uploaded batch.
// Key names the exact offending (influencer, brand, month) triple when the
// problem is row-scoped; batch-scoped problems (missing columns) leave it
// zero-valued.
type ValidationError struct {
	Code    ValidationCode
	Message string
	Key     crew.Key
	Name    string // influencer name, for display
}

func (e ValidationError) Error() string {
	if e.Key.InfluencerID == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s - %s (%s) %s: %s",
		e.Code, e.Key.Brand, e.Name, e.Key.InfluencerID, e.Key.Month, e.Message)
}

// ValidationErrors is the full list of problems found in one batch. It is
// an error itself so callers can return it directly, but handlers should
// unpack it and show every entry.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("%d validation error(s): %s", len(e), strings.Join(msgs, "; "))
}

// =============================================================================
// STRUCTURED ERRORS - Carry remediation context
// =============================================================================

// GateBlockedError wraps a blocked GateDecision for paths that report the
// block through an error return (manual assignment, batch CLI).
type GateBlockedError struct {
	Decision GateDecision
}

func (e *GateBlockedError) Error() string {
	return fmt.Sprintf("%s: month %s", e.Decision.Reason, e.Decision.Month)
}

func (e *GateBlockedError) Unwrap() error { return ErrGateBlocked }

// QuotaExhaustedError reports why a manual assignment was refused, with the
// counts the operator needs to remediate.
type QuotaExhaustedError struct {
	InfluencerID crew.InfluencerID
	Name         string
	Brand        crew.Brand
	Contracted   int
	Assigned     int
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("%s (%s) has no remaining %s quota (contracted: %d, assigned: %d)",
		e.Name, e.InfluencerID, e.Brand, e.Contracted, e.Assigned)
}

func (e *QuotaExhaustedError) Unwrap() error { return ErrQuotaExhausted }

// DuplicateAssignmentError names the triple that already exists.
type DuplicateAssignmentError struct {
	Key  crew.Key
	Name string
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("%s (%s) already assigned to %s for %s",
		e.Name, e.Key.InfluencerID, e.Key.Brand, e.Key.Month)
}

func (e *DuplicateAssignmentError) Unwrap() error { return ErrDuplicateAssignment }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is user- or process-fixable
// rather than an environment problem.
func IsClientError(err error) bool {
	var verrs ValidationErrors
	return errors.Is(err, ErrGateBlocked) ||
		errors.Is(err, ErrDuplicateAssignment) ||
		errors.Is(err, ErrQuotaExhausted) ||
		errors.Is(err, ErrInfluencerNotFound) ||
		errors.Is(err, ErrUnknownMonth) ||
		errors.Is(err, ErrUnknownBrand) ||
		errors.As(err, &verrs)
}
