/*
assign_manual.go - Single-record manual assignment

Operators occasionally assign one influencer to one brand by hand instead
of running the allocator. The same month gate applies; on top of it the
manual path checks the duplicate and remaining-quota invariants itself,
because there is no sorted pool to absorb an impossible pick silently.
*/
package engine

import (
	"github.com/fnfcrew/assignment-engine/crew"
)

// AssignOne creates a single assignment record for (id, brand, month)
// after the month gate passes. The record is not yet persisted.
//
// Errors: GateBlockedError, ErrUnknownMonth, ErrInfluencerNotFound,
// DuplicateAssignmentError, QuotaExhaustedError.
func AssignOne(season crew.Season, month crew.Month, brand crew.Brand, id crew.InfluencerID, roster []crew.Influencer, assignments []crew.AssignmentRecord, executions []crew.ExecutionRecord) (crew.AssignmentRecord, error) {
	decision, err := CheckMonthGate(season, month, assignments, executions)
	if err != nil {
		return crew.AssignmentRecord{}, err
	}
	if !decision.Allowed {
		return crew.AssignmentRecord{}, decision.Err()
	}

	var inf crew.Influencer
	found := false
	for _, candidate := range roster {
		if candidate.ID == id {
			inf = candidate
			found = true
			break
		}
	}
	if !found {
		return crew.AssignmentRecord{}, ErrInfluencerNotFound
	}

	key := crew.Key{InfluencerID: id, Brand: brand, Month: month}
	for _, rec := range assignments {
		if rec.Key() == key {
			return crew.AssignmentRecord{}, &DuplicateAssignmentError{Key: key, Name: inf.Name}
		}
	}

	resolver := NewQuotaResolver(roster, assignments)
	if resolver.BrandRemaining(id, brand) <= 0 {
		return crew.AssignmentRecord{}, &QuotaExhaustedError{
			InfluencerID: id,
			Name:         inf.Name,
			Brand:        brand,
			Contracted:   inf.BrandQty(brand),
			Assigned:     resolver.BrandAssigned(id, brand),
		}
	}

	return buildRecord(inf, brand, month, resolver, NewExecutionIndex(executions)), nil
}
