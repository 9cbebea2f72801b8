/*
reset.go - Month-scoped and full ledger resets

A month-scoped reset removes the selected month AND every later month of
the season sequence from both ledgers. Later months' records embed
remaining-quota snapshots computed assuming the earlier allocations
happened; deleting one month in isolation would silently invalidate them.
*/
package engine

import (
	"github.com/fnfcrew/assignment-engine/crew"
)

// ResetResult reports what a reset removed and the ledgers left behind.
type ResetResult struct {
	Assignments []crew.AssignmentRecord
	Executions  []crew.ExecutionRecord

	RemovedAssignments int
	RemovedExecutions  int
	RemovedMonths      []crew.Month
}

// ResetAll removes every record from both ledgers.
func ResetAll(assignments []crew.AssignmentRecord, executions []crew.ExecutionRecord) ResetResult {
	return ResetResult{
		RemovedAssignments: len(assignments),
		RemovedExecutions:  len(executions),
	}
}

// ResetFromMonth removes month and all later season months from both
// ledgers. Returns ErrUnknownMonth if month is not in the season sequence.
func ResetFromMonth(season crew.Season, month crew.Month, assignments []crew.AssignmentRecord, executions []crew.ExecutionRecord) (ResetResult, error) {
	cascade := season.MonthsFrom(month)
	if cascade == nil {
		return ResetResult{}, ErrUnknownMonth
	}
	doomed := make(map[crew.Month]bool, len(cascade))
	for _, m := range cascade {
		doomed[m] = true
	}

	result := ResetResult{RemovedMonths: cascade}
	for _, rec := range assignments {
		if doomed[rec.Month] {
			result.RemovedAssignments++
			continue
		}
		result.Assignments = append(result.Assignments, rec)
	}
	for _, exec := range executions {
		if doomed[exec.Month] {
			result.RemovedExecutions++
			continue
		}
		result.Executions = append(result.Executions, exec)
	}
	return result, nil
}
