/*
intake.go - Validated intake of uploaded execution rows

PURPOSE:
  Execution rows arrive from an external upload (spreadsheet or JSON). The
  core validates the whole batch and reports EVERY problem at once rather
  than aborting on the first:

  - actual quantity outside {0, 1} (it is a did-it-run flag, not a count)
  - row referencing a triple absent from the assignment ledger
  - row duplicating an existing execution record
  - row duplicating another row within the same batch

  A batch is accepted only when the error list is empty; there is no
  partial save. "Retry" always means the user corrects the file and
  resubmits.
*/
package engine

import (
	"fmt"

	"github.com/fnfcrew/assignment-engine/crew"
)

// ValidateExecutionIntake checks an uploaded batch against the current
// ledgers. A nil return means the batch may be appended as-is.
func ValidateExecutionIntake(batch []crew.ExecutionRecord, assignments []crew.AssignmentRecord, existing []crew.ExecutionRecord) ValidationErrors {
	assigned := make(map[crew.Key]bool, len(assignments))
	for _, rec := range assignments {
		assigned[rec.Key()] = true
	}
	reported := make(map[crew.Key]bool, len(existing))
	for _, exec := range existing {
		reported[exec.Key()] = true
	}
	inBatch := make(map[crew.Key]bool, len(batch))

	var errs ValidationErrors
	for _, row := range batch {
		key := row.Key()

		if _, ok := crew.ParseBrand(string(row.Brand)); !ok {
			errs = append(errs, ValidationError{
				Code:    CodeUnknownBrand,
				Message: fmt.Sprintf("brand %q is not one of MLB, DX, DV, ST", row.Brand),
				Key:     key,
				Name:    row.InfluencerName,
			})
			continue
		}

		if row.ActualQty != 0 && row.ActualQty != 1 {
			errs = append(errs, ValidationError{
				Code:    CodeActualOutOfRange,
				Message: fmt.Sprintf("actual quantity must be 0 or 1, got %d", row.ActualQty),
				Key:     key,
				Name:    row.InfluencerName,
			})
		}

		if !assigned[key] {
			errs = append(errs, ValidationError{
				Code:    CodeNoMatchingAssignment,
				Message: "no assignment record for this influencer, brand and month",
				Key:     key,
				Name:    row.InfluencerName,
			})
		}

		if reported[key] || inBatch[key] {
			errs = append(errs, ValidationError{
				Code:    CodeDuplicateExecution,
				Message: "execution already reported for this influencer, brand and month",
				Key:     key,
				Name:    row.InfluencerName,
			})
		}
		inBatch[key] = true
	}
	return errs
}

// BuildExecutionTemplate derives the upload template: one row per
// assignment record with the planned quantity and any already-reported
// actual quantity carried over, 0 otherwise. Operators download this,
// fill in the actual column, and upload the result.
func BuildExecutionTemplate(assignments []crew.AssignmentRecord, existing []crew.ExecutionRecord) []crew.ExecutionRecord {
	reported := make(map[crew.Key]crew.ExecutionRecord, len(existing))
	for _, exec := range existing {
		reported[exec.Key()] = exec
	}

	rows := make([]crew.ExecutionRecord, 0, len(assignments))
	for _, rec := range assignments {
		row := crew.ExecutionRecord{
			Brand:          rec.Brand,
			InfluencerID:   rec.InfluencerID,
			InfluencerName: rec.InfluencerName,
			Month:          rec.Month,
			PlannedQty:     1,
		}
		if prev, ok := reported[rec.Key()]; ok {
			row.PlannedQty = prev.PlannedQty
			row.ActualQty = prev.ActualQty
		}
		rows = append(rows, row)
	}
	return rows
}
