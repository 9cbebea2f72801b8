package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fnfcrew/assignment-engine/crew"
	"github.com/fnfcrew/assignment-engine/engine"
)

func TestQuotaResolver_EmptyLedger_FullContract(t *testing.T) {
	// GIVEN: a roster influencer with MLB=2, total=5 and no assignments
	// THEN: remaining equals the contracted amounts
	roster := []crew.Influencer{influencer("inf-1", "해나", 50000, 2, 1, 1, 1)}
	resolver := engine.NewQuotaResolver(roster, nil)

	brandRem, totalRem := resolver.Remaining("inf-1", crew.BrandMLB)
	assert.Equal(t, 2, brandRem)
	assert.Equal(t, 5, totalRem)
}

func TestQuotaResolver_AssignmentsDecrement(t *testing.T) {
	// GIVEN: two MLB assignments against a contract of 2
	roster := []crew.Influencer{influencer("inf-1", "해나", 50000, 2, 1, 0, 0)}
	ledger := []crew.AssignmentRecord{
		assignment("inf-1", "해나", crew.BrandMLB, "9월"),
		assignment("inf-1", "해나", crew.BrandMLB, "10월"),
	}
	resolver := engine.NewQuotaResolver(roster, ledger)

	brandRem, totalRem := resolver.Remaining("inf-1", crew.BrandMLB)
	assert.Equal(t, 0, brandRem, "brand quota exhausted")
	assert.Equal(t, 1, totalRem, "total contracted 3 minus 2 assignments")
}

func TestQuotaResolver_NeverNegative(t *testing.T) {
	// GIVEN: more ledger rows than the contract allows (corrupted input)
	// THEN: remaining clamps at zero instead of going negative
	roster := []crew.Influencer{influencer("inf-1", "해나", 50000, 1, 0, 0, 0)}
	ledger := []crew.AssignmentRecord{
		assignment("inf-1", "해나", crew.BrandMLB, "9월"),
		assignment("inf-1", "해나", crew.BrandMLB, "10월"),
		assignment("inf-1", "해나", crew.BrandMLB, "11월"),
	}
	resolver := engine.NewQuotaResolver(roster, ledger)

	brandRem, totalRem := resolver.Remaining("inf-1", crew.BrandMLB)
	assert.Equal(t, 0, brandRem)
	assert.Equal(t, 0, totalRem)
}

func TestQuotaResolver_NeverExceedsContract(t *testing.T) {
	// Execution rows, even over-reported ones, never touch quota: the
	// assignment ledger is the single source of truth.
	roster := []crew.Influencer{influencer("inf-1", "해나", 50000, 2, 0, 0, 0)}
	resolver := engine.NewQuotaResolver(roster, nil)

	for _, b := range crew.Brands() {
		rem := resolver.BrandRemaining("inf-1", b)
		assert.LessOrEqual(t, rem, roster[0].BrandQty(b))
		assert.GreaterOrEqual(t, rem, 0)
	}
}

func TestQuotaResolver_NonExecutionDoesNotFreeQuota(t *testing.T) {
	// GIVEN: an assignment whose execution was reported as 0 (did not run)
	// THEN: the quota unit stays consumed
	roster := []crew.Influencer{influencer("inf-1", "해나", 50000, 2, 0, 0, 0)}
	ledger := []crew.AssignmentRecord{assignment("inf-1", "해나", crew.BrandMLB, "9월")}
	resolver := engine.NewQuotaResolver(roster, ledger)

	assert.Equal(t, 1, resolver.BrandRemaining("inf-1", crew.BrandMLB))
}

func TestQuotaResolver_UnknownInfluencer_ZeroRemaining(t *testing.T) {
	resolver := engine.NewQuotaResolver(nil, nil)
	brandRem, totalRem := resolver.Remaining("ghost", crew.BrandDX)
	assert.Zero(t, brandRem)
	assert.Zero(t, totalRem)
}

func TestQuotaResolver_ConsumeAppliesInMemory(t *testing.T) {
	// Consume must affect both brand and total remaining without touching
	// the snapshot the resolver was built from.
	roster := []crew.Influencer{influencer("inf-1", "해나", 50000, 2, 2, 0, 0)}
	resolver := engine.NewQuotaResolver(roster, nil)

	resolver.Consume("inf-1", crew.BrandMLB)

	assert.Equal(t, 1, resolver.BrandRemaining("inf-1", crew.BrandMLB))
	assert.Equal(t, 2, resolver.BrandRemaining("inf-1", crew.BrandDX))
	assert.Equal(t, 3, resolver.TotalRemaining("inf-1"))
}
