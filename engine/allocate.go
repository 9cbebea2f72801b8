/*
allocate.go - The assignment allocator

PURPOSE:
  Given a month, per-brand requested quantities, and the current
  roster+ledger state, selects influencers and emits new assignment
  records. Brands are processed in fixed order (MLB, DX, DV, ST); within a
  brand, candidates are ranked by follower count descending with influencer
  ID ascending as the explicit tiebreak, so allocation is deterministic.

DECREMENT SEMANTICS:
  Every emitted record consumes quota in the resolver immediately, so an
  influencer picked for brand A shows the reduced total-remaining when
  later considered for brand B in the same run.

FAILURE MODEL:
  The allocator itself never fails: gating happens beforehand in the month
  gate, a requested quantity of 0 is a no-op, and an eligible pool smaller
  than the request under-fulfills silently. Influencers already holding an
  assignment for (brand, month) are skipped, preserving the uniqueness
  invariant even if a month is re-run.
*/
package engine

import (
	"sort"

	"github.com/fnfcrew/assignment-engine/crew"
)

// AllocationRequest maps each brand to the number of slots requested for
// the month. Missing brands request zero.
type AllocationRequest map[crew.Brand]int

// AllocationResult holds the records emitted by one allocator run plus the
// per-brand fulfillment counts.
type AllocationResult struct {
	Month    crew.Month
	Records  []crew.AssignmentRecord
	Assigned map[crew.Brand]int
}

// Allocate runs one gate-checked assignment pass. The returned records are
// not yet persisted; the caller appends them to the assignment ledger.
func Allocate(month crew.Month, requests AllocationRequest, roster []crew.Influencer, assignments []crew.AssignmentRecord, executions []crew.ExecutionRecord) AllocationResult {
	resolver := NewQuotaResolver(roster, assignments)
	execIdx := NewExecutionIndex(executions)

	taken := make(map[crew.Key]bool, len(assignments))
	for _, rec := range assignments {
		taken[rec.Key()] = true
	}

	result := AllocationResult{
		Month:    month,
		Assigned: make(map[crew.Brand]int, len(crew.Brands())),
	}

	for _, brand := range crew.Brands() {
		requested := requests[brand]
		if requested <= 0 {
			continue
		}

		eligible := make([]crew.Influencer, 0, len(roster))
		for _, inf := range roster {
			if resolver.BrandRemaining(inf.ID, brand) <= 0 {
				continue
			}
			if taken[crew.Key{InfluencerID: inf.ID, Brand: brand, Month: month}] {
				continue
			}
			eligible = append(eligible, inf)
		}

		// Follower descending, ID ascending as the explicit tiebreak.
		sort.SliceStable(eligible, func(i, j int) bool {
			if eligible[i].Follower != eligible[j].Follower {
				return eligible[i].Follower > eligible[j].Follower
			}
			return eligible[i].ID < eligible[j].ID
		})

		if len(eligible) > requested {
			eligible = eligible[:requested]
		}

		for _, inf := range eligible {
			rec := buildRecord(inf, brand, month, resolver, execIdx)
			resolver.Consume(inf.ID, brand)
			taken[rec.Key()] = true
			result.Records = append(result.Records, rec)
			result.Assigned[brand]++
		}
	}

	return result
}

// buildRecord snapshots the influencer's state into a new ledger row. The
// remaining-after values reflect the decrement this record itself applies.
func buildRecord(inf crew.Influencer, brand crew.Brand, month crew.Month, resolver *QuotaResolver, execIdx *ExecutionIndex) crew.AssignmentRecord {
	brandRemaining, totalRemaining := resolver.Remaining(inf.ID, brand)
	return crew.AssignmentRecord{
		Brand:          brand,
		InfluencerID:   inf.ID,
		InfluencerName: inf.Name,
		Month:          month,
		Follower:       inf.Follower,
		BrandContract:  inf.BrandQty(brand),
		BrandActual:    execIdx.BrandActual(inf.ID, brand),
		BrandRemaining: clampZero(brandRemaining - 1),
		TotalContract:  inf.TotalContractedQty,
		TotalActual:    execIdx.TotalActual(inf.ID),
		TotalRemaining: clampZero(totalRemaining - 1),
	}
}
