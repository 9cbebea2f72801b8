/*
convert.go - Raw contract workbook -> roster CSV batch conversion

The contract team maintains a workbook with raw columns (sns_id, mlb_cnt,
...) that the assignment system never reads directly. This batch step maps
them onto the roster contract and derives the per-slot unit fee:

  unit_fee = (total_amt_incl2nd + total_amt_exc2nd) / total_cnt

truncated to whole currency units, 0 when no slots are contracted. The
core treats the roster as read-only; this is the only writer.
*/
package csvfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/fnfcrew/assignment-engine/crew"
)

// Raw workbook column -> roster column mapping.
var rawRequiredColumns = []string{
	"sns_id", "name", "follower",
	"mlb_cnt", "dx_cnt", "dv_cnt", "st_cnt", "total_cnt",
	"total_amt_incl2nd", "total_amt_exc2nd",
}

// ConvertRosterWorkbook reads the raw contract workbook from r and writes
// the canonical roster CSV to the store's path. sheet selects the workbook
// sheet; empty means the first sheet.
func (s *RosterStore) ConvertRosterWorkbook(r io.Reader, sheet string) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("sheet %q: empty", sheet)
	}

	col, err := indexColumns(rows[0], rawRequiredColumns)
	if err != nil {
		return 0, fmt.Errorf("workbook: %w", err)
	}

	out := make([][]string, 0, len(rows)-1)
	for i, raw := range rows[1:] {
		get := func(name string) string {
			idx := col[name]
			if idx >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[idx])
		}
		if get("sns_id") == "" {
			continue // trailing blank rows are common in hand-edited sheets
		}

		fee, err := deriveUnitFee(get("total_amt_incl2nd"), get("total_amt_exc2nd"), get("total_cnt"))
		if err != nil {
			return 0, fmt.Errorf("workbook row %d: %w", i+2, err)
		}

		record := []string{
			get("sns_id"),
			get("name"),
			get("follower"),
			fee.String(),
		}
		for _, b := range crew.Brands() {
			qty, err := parseIntField(string(b)+" count", get(strings.ToLower(string(b))+"_cnt"))
			if err != nil {
				return 0, fmt.Errorf("workbook row %d: %w", i+2, err)
			}
			record = append(record, strconv.Itoa(qty))
		}
		total, err := parseIntField("total_cnt", get("total_cnt"))
		if err != nil {
			return 0, fmt.Errorf("workbook row %d: %w", i+2, err)
		}
		record = append(record, strconv.Itoa(total))
		out = append(out, record)
	}

	if err := writeCSV(s.Path, rosterColumns, out); err != nil {
		return 0, err
	}
	return len(out), nil
}

func deriveUnitFee(inclStr, excStr, totalStr string) (decimal.Decimal, error) {
	total, err := decimal.NewFromString(zeroWhenEmpty(totalStr))
	if err != nil {
		return decimal.Zero, fmt.Errorf("total_cnt %q: %w", totalStr, err)
	}
	if total.IsZero() {
		return decimal.Zero, nil
	}
	incl, err := decimal.NewFromString(zeroWhenEmpty(inclStr))
	if err != nil {
		return decimal.Zero, fmt.Errorf("total_amt_incl2nd %q: %w", inclStr, err)
	}
	exc, err := decimal.NewFromString(zeroWhenEmpty(excStr))
	if err != nil {
		return decimal.Zero, fmt.Errorf("total_amt_exc2nd %q: %w", excStr, err)
	}
	return incl.Add(exc).Div(total).Truncate(0), nil
}
