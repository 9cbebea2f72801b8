/*
Package xlsxio is the spreadsheet interchange layer: single-sheet xlsx
workbooks mirroring the canonical CSV columns, for human download and
upload. The core never depends on this package; it serves the API and
batch binaries only.
*/
package xlsxio

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/fnfcrew/assignment-engine/crew"
	"github.com/fnfcrew/assignment-engine/engine"
)

const sheetName = "Sheet1"

// =============================================================================
// EXPORTS - Canonical columns, one sheet
// =============================================================================

// WriteAssignmentReport exports enriched reconciliation rows. The actual
// columns carry the live reconciled sums, not the at-assignment snapshots.
func WriteAssignmentReport(w io.Writer, rows []engine.ReportRow) error {
	cells := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []interface{}{
			string(row.Brand),
			string(row.InfluencerID),
			row.InfluencerName,
			string(row.Month),
			row.Follower,
			row.BrandContract,
			row.BrandActualTotal,
			row.BrandRemaining,
			row.TotalContract,
			row.TotalActualTotal,
			row.TotalRemaining,
		})
	}
	header := []string{
		"브랜드", "ID", "이름", "배정월", "FLW",
		"브랜드_계약수", "브랜드_실집행수", "브랜드_잔여수",
		"전체_계약수", "전체_실집행수", "전체_잔여수",
	}
	return writeSheet(w, header, cells)
}

// WriteExecutions exports the current execution ledger.
func WriteExecutions(w io.Writer, records []crew.ExecutionRecord) error {
	cells := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		cells = append(cells, executionCells(rec))
	}
	return writeSheet(w, executionHeader(), cells)
}

// WriteExecutionTemplate exports the upload template: assignment rows with
// planned quantity and any already-reported actuals pre-filled.
func WriteExecutionTemplate(w io.Writer, rows []crew.ExecutionRecord) error {
	return WriteExecutions(w, rows)
}

// WriteInfluencerSummary exports the per-influencer cross-tab: contract
// totals, per-brand remaining and one column per season month.
func WriteInfluencerSummary(w io.Writer, season crew.Season, summaries []engine.InfluencerSummary) error {
	header := []string{"ID", "이름", "FLW", "1회계약단가", "전체계약횟수", "전체배정횟수"}
	for _, b := range crew.Brands() {
		header = append(header, "잔여횟수_"+string(b))
	}
	for _, m := range season.Months() {
		header = append(header, string(m))
	}

	cells := make([][]interface{}, 0, len(summaries))
	for _, s := range summaries {
		row := []interface{}{
			string(s.ID), s.Name, s.Follower, s.UnitFee.String(),
			s.TotalContract, s.TotalAssigned,
		}
		for _, b := range crew.Brands() {
			row = append(row, s.BrandRemaining[b])
		}
		for _, m := range season.Months() {
			row = append(row, s.MonthlyBrands[m])
		}
		cells = append(cells, row)
	}
	return writeSheet(w, header, cells)
}

func executionHeader() []string {
	return []string{"브랜드", "ID", "이름", "배정월", "계획수", "실제집행수"}
}

func executionCells(rec crew.ExecutionRecord) []interface{} {
	return []interface{}{
		string(rec.Brand),
		string(rec.InfluencerID),
		rec.InfluencerName,
		string(rec.Month),
		rec.PlannedQty,
		rec.ActualQty,
	}
}

func writeSheet(w io.Writer, header []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
