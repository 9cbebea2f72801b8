/*
Package crew defines the domain model for the influencer brand-slot
assignment system.

PURPOSE:
  Influencers sign seasonal contracts granting a fixed number of promotional
  slots per brand (and in total). This package holds the value types shared
  by every other package:
  - Brand: one of four fixed promotional categories
  - Influencer: a roster row with contracted quotas and a unit fee
  - AssignmentRecord: one row of the append-only assignment ledger
  - ExecutionRecord: one row of the independently uploaded execution ledger

DESIGN PRINCIPLES:
  1. Immutability: ledger records are never mutated, only appended or
     removed wholesale by a reset
  2. Precision: unit fees use decimal.Decimal, never float64
  3. Type safety: InfluencerID and Brand are distinct string types so they
     cannot be mixed up in map keys or function arguments

SEE ALSO:
  - season.go: the ordered month calendar assignments progress through
  - engine package: the algorithms operating on these types
*/
package crew

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// BRAND - Fixed promotional categories
// =============================================================================

type Brand string

const (
	BrandMLB Brand = "MLB"
	BrandDX  Brand = "DX"
	BrandDV  Brand = "DV"
	BrandST  Brand = "ST"
)

// Brands lists all brands in allocation order. The allocator processes
// brands in exactly this order, so an influencer picked for MLB has a
// reduced total-remaining by the time DX is considered.
func Brands() []Brand {
	return []Brand{BrandMLB, BrandDX, BrandDV, BrandST}
}

// ParseBrand returns the brand for s, or false if s is not a known brand.
func ParseBrand(s string) (Brand, bool) {
	switch Brand(s) {
	case BrandMLB, BrandDX, BrandDV, BrandST:
		return Brand(s), true
	}
	return "", false
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type InfluencerID string

// =============================================================================
// INFLUENCER - One roster row
// =============================================================================

// Influencer is a roster row. Rows are immutable during an operation and
// reloaded fresh from the roster store at the start of each one.
type Influencer struct {
	ID       InfluencerID
	Name     string
	Follower int
	UnitFee  decimal.Decimal

	// Contracted slot counts per brand for the season.
	ContractedQty map[Brand]int

	// Stored independently of the per-brand sum; the batch conversion step
	// is responsible for keeping it consistent.
	TotalContractedQty int
}

// BrandQty returns the contracted quantity for a brand, 0 if absent.
func (inf Influencer) BrandQty(b Brand) int {
	return inf.ContractedQty[b]
}

// =============================================================================
// ASSIGNMENT RECORD - One row of the assignment ledger
// =============================================================================

// AssignmentRecord is one influencer x brand x month assignment. Created
// only by the allocator (or manual assignment); never mutated afterwards,
// only deleted wholesale by a reset.
//
// INVARIANT: at most one record exists per (InfluencerID, Brand, Month).
type AssignmentRecord struct {
	Brand          Brand
	InfluencerID   InfluencerID
	InfluencerName string
	Month          Month

	// Snapshots taken at assignment time.
	Follower       int
	BrandContract  int // contracted qty for Brand from the roster
	BrandActual    int // executed count known at assignment time
	BrandRemaining int // remaining after this assignment
	TotalContract  int
	TotalActual    int
	TotalRemaining int
}

// Key identifies the uniqueness triple of a ledger row.
type Key struct {
	InfluencerID InfluencerID
	Brand        Brand
	Month        Month
}

func (r AssignmentRecord) Key() Key {
	return Key{InfluencerID: r.InfluencerID, Brand: r.Brand, Month: r.Month}
}

// =============================================================================
// EXECUTION RECORD - One row of the execution ledger
// =============================================================================

// ExecutionRecord reports whether an assignment actually ran. ActualQty is
// a 0/1 flag, not a count. Records enter the ledger only through validated
// intake; the core never creates them.
//
// Every record SHOULD reference an existing AssignmentRecord; intake
// enforces this for new rows, reconciliation flags historical exceptions.
type ExecutionRecord struct {
	Brand          Brand
	InfluencerID   InfluencerID
	InfluencerName string
	Month          Month
	PlannedQty     int // conventionally 1
	ActualQty      int // 0 or 1
}

func (r ExecutionRecord) Key() Key {
	return Key{InfluencerID: r.InfluencerID, Brand: r.Brand, Month: r.Month}
}
