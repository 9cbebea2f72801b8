/*
gate.go - Month-gate validation for assignment runs

PURPOSE:
  An assignment run for month m is safe only when:
  1. m has no reported executions yet - re-running assignment for a month
     that already has execution rows would corrupt remaining-quota math, and
  2. every PRIOR month's assignments have matching execution rows - the
     reporting backlog must be cleared front to back.

  The gate is a stateless two-state check (allowed / blocked) re-evaluated
  fresh on every attempt. A block is an expected process state, not a bug:
  the decision carries the precise offending records so the operator can
  remediate and resubmit.

ORDERING:
  When several prior months are incomplete, the EARLIEST one is reported;
  the caller must clear it before later months are even inspected.
*/
package engine

import (
	"github.com/fnfcrew/assignment-engine/crew"
)

// =============================================================================
// GATE DECISION
// =============================================================================

type GateReason string

const (
	// BlockedExecutionExists: the target month already has execution rows.
	BlockedExecutionExists GateReason = "BLOCKED_EXECUTION_EXISTS"

	// BlockedMissingExecution: a prior month has assignments without
	// matching execution rows.
	BlockedMissingExecution GateReason = "BLOCKED_MISSING_EXECUTION"
)

// GateDecision is the result of a month-gate check. When blocked, Month is
// the month the operator must remediate (the target month for
// BlockedExecutionExists, the earliest incomplete prior month for
// BlockedMissingExecution) and exactly one of Executions / Assignments
// lists the offending rows.
type GateDecision struct {
	Allowed bool
	Reason  GateReason
	Month   crew.Month

	// Executions already reported for the target month (BlockedExecutionExists).
	Executions []crew.ExecutionRecord

	// Assignments lacking an execution row (BlockedMissingExecution).
	Assignments []crew.AssignmentRecord
}

// Err returns a GateBlockedError for blocked decisions, nil otherwise.
func (d GateDecision) Err() error {
	if d.Allowed {
		return nil
	}
	return &GateBlockedError{Decision: d}
}

// =============================================================================
// MONTH GATE
// =============================================================================

// CheckMonthGate evaluates whether an assignment run for month may proceed.
// Returns ErrUnknownMonth if month is not part of the season sequence.
func CheckMonthGate(season crew.Season, month crew.Month, assignments []crew.AssignmentRecord, executions []crew.ExecutionRecord) (GateDecision, error) {
	if season.MonthIndex(month) < 0 {
		return GateDecision{}, ErrUnknownMonth
	}

	// 1. Pre-existing execution check on the target month.
	var existing []crew.ExecutionRecord
	for _, exec := range executions {
		if exec.Month == month {
			existing = append(existing, exec)
		}
	}
	if len(existing) > 0 {
		return GateDecision{
			Reason:     BlockedExecutionExists,
			Month:      month,
			Executions: existing,
		}, nil
	}

	// 2. Backfill completeness, earliest prior month first.
	reported := make(map[crew.Key]bool, len(executions))
	for _, exec := range executions {
		reported[exec.Key()] = true
	}
	for _, prior := range season.MonthsBefore(month) {
		var missing []crew.AssignmentRecord
		for _, rec := range assignments {
			if rec.Month == prior && !reported[rec.Key()] {
				missing = append(missing, rec)
			}
		}
		if len(missing) > 0 {
			return GateDecision{
				Reason:      BlockedMissingExecution,
				Month:       prior,
				Assignments: missing,
			}, nil
		}
	}

	return GateDecision{Allowed: true}, nil
}
