/*
upload.go - Parsing uploaded execution workbooks

The upload mirror of the execution ledger columns. Column problems are
user-fixable, so they come back as engine.ValidationErrors (the full list,
code missing_column) rather than aborting on the first; an unreadable
workbook is fatal.
*/
package xlsxio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fnfcrew/assignment-engine/crew"
	"github.com/fnfcrew/assignment-engine/engine"
)

// ParseExecutionUpload reads an uploaded workbook into execution records.
// The returned ValidationErrors, when non-nil, lists every structural
// problem (missing columns, non-numeric quantities); content validation
// against the ledgers happens in engine.ValidateExecutionIntake.
func ParseExecutionUpload(r io.Reader) ([]crew.ExecutionRecord, engine.ValidationErrors, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, engine.ValidationErrors{{
			Code:    engine.CodeMissingColumn,
			Message: "workbook has no header row",
		}}, nil
	}

	required := executionHeader()
	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}
	var verrs engine.ValidationErrors
	for _, name := range required {
		if _, ok := col[name]; !ok {
			verrs = append(verrs, engine.ValidationError{
				Code:    engine.CodeMissingColumn,
				Message: fmt.Sprintf("required column %q is missing", name),
			})
		}
	}
	if len(verrs) > 0 {
		return nil, verrs, nil
	}

	records := make([]crew.ExecutionRecord, 0, len(rows)-1)
	for i, raw := range rows[1:] {
		get := func(name string) string {
			idx := col[name]
			if idx >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[idx])
		}
		if get("ID") == "" && get("브랜드") == "" {
			continue // blank padding rows
		}

		rec := crew.ExecutionRecord{
			Brand:          crew.Brand(get("브랜드")),
			InfluencerID:   crew.InfluencerID(get("ID")),
			InfluencerName: get("이름"),
			Month:          crew.Month(get("배정월")),
		}
		var rowErr bool
		if rec.PlannedQty, err = parseCellInt(get("계획수")); err != nil {
			verrs = append(verrs, cellError(i+2, "계획수", get("계획수"), rec))
			rowErr = true
		}
		if rec.ActualQty, err = parseCellInt(get("실제집행수")); err != nil {
			verrs = append(verrs, cellError(i+2, "실제집행수", get("실제집행수"), rec))
			rowErr = true
		}
		if !rowErr {
			records = append(records, rec)
		}
	}
	if len(verrs) > 0 {
		return nil, verrs, nil
	}
	return records, nil, nil
}

func cellError(rowNum int, column, value string, rec crew.ExecutionRecord) engine.ValidationError {
	return engine.ValidationError{
		Code:    engine.CodeActualOutOfRange,
		Message: fmt.Sprintf("row %d: %s %q is not a number", rowNum, column, value),
		Key:     rec.Key(),
		Name:    rec.InfluencerName,
	}
}

func parseCellInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), nil
	}
	return strconv.Atoi(s)
}
