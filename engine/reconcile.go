/*
reconcile.go - Merging the assignment ledger with the execution ledger

PURPOSE:
  The assignment ledger says what was committed; the execution ledger says
  what actually ran. This file merges the two for display and export:

  - ReportRow: an assignment row enriched with live execution sums
  - Mismatches: assignments with no execution row at all (warnings, never
    hard failures outside the month gate)
  - InfluencerSummary: per-influencer cross-tab, one column per season
    month with the comma-joined brands assigned that month

IDEMPOTENCE:
  Reconcile is a pure function of the two ledgers; running it twice on
  unchanged input yields identical output.
*/
package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fnfcrew/assignment-engine/crew"
)

// =============================================================================
// EXECUTION INDEX - Aggregated actual counts
// =============================================================================

// ExecutionIndex precomputes actual-quantity sums over the execution
// ledger, keyed per (influencer, brand) and per influencer.
type ExecutionIndex struct {
	brandActual map[brandKey]int
	totalActual map[crew.InfluencerID]int
	byKey       map[crew.Key]bool
}

func NewExecutionIndex(executions []crew.ExecutionRecord) *ExecutionIndex {
	x := &ExecutionIndex{
		brandActual: make(map[brandKey]int),
		totalActual: make(map[crew.InfluencerID]int),
		byKey:       make(map[crew.Key]bool, len(executions)),
	}
	for _, exec := range executions {
		x.brandActual[brandKey{exec.InfluencerID, exec.Brand}] += exec.ActualQty
		x.totalActual[exec.InfluencerID] += exec.ActualQty
		x.byKey[exec.Key()] = true
	}
	return x
}

// BrandActual returns the summed actual quantity for (id, brand), 0 when
// nothing was reported.
func (x *ExecutionIndex) BrandActual(id crew.InfluencerID, b crew.Brand) int {
	return x.brandActual[brandKey{id, b}]
}

// TotalActual returns the summed actual quantity across all brands.
func (x *ExecutionIndex) TotalActual(id crew.InfluencerID) int {
	return x.totalActual[id]
}

// Has reports whether any execution row exists for the exact triple.
func (x *ExecutionIndex) Has(key crew.Key) bool {
	return x.byKey[key]
}

// =============================================================================
// RECONCILIATION REPORT
// =============================================================================

// ReportRow is an assignment record enriched with live execution sums. The
// embedded record keeps its at-assignment-time snapshots; BrandActualTotal
// and TotalActualTotal reflect the execution ledger as of reconciliation.
type ReportRow struct {
	crew.AssignmentRecord

	BrandActualTotal int
	TotalActualTotal int
}

// Report is the read path for any UI: enriched rows in ledger order plus
// the assignment-without-execution mismatches.
type Report struct {
	Rows       []ReportRow
	Mismatches []crew.AssignmentRecord
}

// Reconcile merges the two ledgers. Rows keep the assignment ledger's
// order; mismatches are informational.
func Reconcile(assignments []crew.AssignmentRecord, executions []crew.ExecutionRecord) Report {
	idx := NewExecutionIndex(executions)

	report := Report{Rows: make([]ReportRow, 0, len(assignments))}
	for _, rec := range assignments {
		report.Rows = append(report.Rows, ReportRow{
			AssignmentRecord: rec,
			BrandActualTotal: idx.BrandActual(rec.InfluencerID, rec.Brand),
			TotalActualTotal: idx.TotalActual(rec.InfluencerID),
		})
		if !idx.Has(rec.Key()) {
			report.Mismatches = append(report.Mismatches, rec)
		}
	}
	return report
}

// FilterRows narrows a row set for display. Empty month or brand means no
// filter on that dimension.
func FilterRows(rows []ReportRow, month crew.Month, brand crew.Brand) []ReportRow {
	out := make([]ReportRow, 0, len(rows))
	for _, row := range rows {
		if month != "" && row.Month != month {
			continue
		}
		if brand != "" && row.Brand != brand {
			continue
		}
		out = append(out, row)
	}
	return out
}

// =============================================================================
// INFLUENCER SUMMARY - Per-influencer cross-tab
// =============================================================================

// InfluencerSummary is the human-auditable per-influencer view: contract
// totals, accumulated assignment count, per-brand remaining, and one entry
// per season month holding the comma-joined brands assigned that month
// (empty string when none).
type InfluencerSummary struct {
	ID             crew.InfluencerID
	Name           string
	Follower       int
	UnitFee        decimal.Decimal
	TotalContract  int
	TotalAssigned  int
	BrandRemaining map[crew.Brand]int
	MonthlyBrands  map[crew.Month]string
}

// SummarizeRoster builds the cross-tab for every roster influencer, in
// roster order. Months come from the season sequence.
func SummarizeRoster(season crew.Season, roster []crew.Influencer, assignments []crew.AssignmentRecord) []InfluencerSummary {
	resolver := NewQuotaResolver(roster, assignments)

	// Month -> brand labels per influencer, in ledger order so the joined
	// string reflects assignment order.
	monthly := make(map[crew.InfluencerID]map[crew.Month][]string)
	totalAssigned := make(map[crew.InfluencerID]int)
	for _, rec := range assignments {
		if monthly[rec.InfluencerID] == nil {
			monthly[rec.InfluencerID] = make(map[crew.Month][]string)
		}
		monthly[rec.InfluencerID][rec.Month] = append(monthly[rec.InfluencerID][rec.Month], string(rec.Brand))
		totalAssigned[rec.InfluencerID]++
	}

	summaries := make([]InfluencerSummary, 0, len(roster))
	for _, inf := range roster {
		s := InfluencerSummary{
			ID:             inf.ID,
			Name:           inf.Name,
			Follower:       inf.Follower,
			UnitFee:        inf.UnitFee,
			TotalContract:  inf.TotalContractedQty,
			TotalAssigned:  totalAssigned[inf.ID],
			BrandRemaining: make(map[crew.Brand]int, len(crew.Brands())),
			MonthlyBrands:  make(map[crew.Month]string, len(season.Months())),
		}
		for _, b := range crew.Brands() {
			s.BrandRemaining[b] = resolver.BrandRemaining(inf.ID, b)
		}
		for _, m := range season.Months() {
			s.MonthlyBrands[m] = strings.Join(monthly[inf.ID][m], ", ")
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// SortRowsForExport orders rows by month sequence, then brand order, then
// follower descending with ID as tiebreak. Used by exports where a stable
// human-readable ordering matters more than ledger order.
func SortRowsForExport(season crew.Season, rows []ReportRow) {
	brandOrder := make(map[crew.Brand]int, len(crew.Brands()))
	for i, b := range crew.Brands() {
		brandOrder[b] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		mi, mj := season.MonthIndex(rows[i].Month), season.MonthIndex(rows[j].Month)
		if mi != mj {
			return mi < mj
		}
		if brandOrder[rows[i].Brand] != brandOrder[rows[j].Brand] {
			return brandOrder[rows[i].Brand] < brandOrder[rows[j].Brand]
		}
		if rows[i].Follower != rows[j].Follower {
			return rows[i].Follower > rows[j].Follower
		}
		return rows[i].InfluencerID < rows[j].InfluencerID
	})
}
