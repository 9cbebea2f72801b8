/*
quota.go - Remaining-quota resolution

PURPOSE:
  Computes, for any influencer and brand, the remaining brand-level and
  total-level quota given the roster's contracted numbers and the
  accumulated assignment ledger.

ACCOUNTING POLICY:
  An assignment permanently consumes one quota unit at allocation time.
  Execution records NEVER apply a second decrement, and a confirmed
  non-execution (actual 0) does not free the unit for reassignment. The
  assignment ledger is the single source of truth for remaining quota; the
  execution ledger feeds reconciliation only.

GUARANTEES:
  - Remaining values are never negative; exhaustion is zero, not an error.
  - Remaining never exceeds the roster's contracted quantity.
  - Resolution is a pure function of the roster and ledger snapshots passed
    in; there are no hidden counters.
*/
package engine

import (
	"github.com/fnfcrew/assignment-engine/crew"
)

type brandKey struct {
	id    crew.InfluencerID
	brand crew.Brand
}

// QuotaResolver answers remaining-quota questions over a fixed roster and
// assignment-ledger snapshot. Consume applies in-memory decrements so one
// allocation run observes its own earlier picks; the underlying snapshot is
// not modified.
type QuotaResolver struct {
	roster        map[crew.InfluencerID]crew.Influencer
	brandAssigned map[brandKey]int
	totalAssigned map[crew.InfluencerID]int
}

// NewQuotaResolver indexes the roster and counts accumulated assignments.
func NewQuotaResolver(roster []crew.Influencer, assignments []crew.AssignmentRecord) *QuotaResolver {
	q := &QuotaResolver{
		roster:        make(map[crew.InfluencerID]crew.Influencer, len(roster)),
		brandAssigned: make(map[brandKey]int),
		totalAssigned: make(map[crew.InfluencerID]int),
	}
	for _, inf := range roster {
		q.roster[inf.ID] = inf
	}
	for _, rec := range assignments {
		q.brandAssigned[brandKey{rec.InfluencerID, rec.Brand}]++
		q.totalAssigned[rec.InfluencerID]++
	}
	return q
}

// BrandRemaining returns max(0, contracted - assigned) for the brand.
// Unknown influencers have zero remaining.
func (q *QuotaResolver) BrandRemaining(id crew.InfluencerID, b crew.Brand) int {
	inf, ok := q.roster[id]
	if !ok {
		return 0
	}
	return clampZero(inf.BrandQty(b) - q.brandAssigned[brandKey{id, b}])
}

// TotalRemaining returns max(0, total contracted - assignments across all
// brands).
func (q *QuotaResolver) TotalRemaining(id crew.InfluencerID) int {
	inf, ok := q.roster[id]
	if !ok {
		return 0
	}
	return clampZero(inf.TotalContractedQty - q.totalAssigned[id])
}

// Remaining returns both levels at once.
func (q *QuotaResolver) Remaining(id crew.InfluencerID, b crew.Brand) (brandRemaining, totalRemaining int) {
	return q.BrandRemaining(id, b), q.TotalRemaining(id)
}

// BrandAssigned returns the accumulated assignment count for the brand,
// including in-memory consumption.
func (q *QuotaResolver) BrandAssigned(id crew.InfluencerID, b crew.Brand) int {
	return q.brandAssigned[brandKey{id, b}]
}

// Consume records one in-memory assignment so subsequent queries within the
// same run see the decrement.
func (q *QuotaResolver) Consume(id crew.InfluencerID, b crew.Brand) {
	q.brandAssigned[brandKey{id, b}]++
	q.totalAssigned[id]++
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
