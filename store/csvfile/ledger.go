package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fnfcrew/assignment-engine/crew"
)

// =============================================================================
// LEDGER STORE - assignment_history.csv + execution_status.csv
// =============================================================================

// Canonical ledger columns. The Korean headers ARE the external contract;
// spreadsheets round-trip through these exact names.
var (
	assignmentColumns = []string{
		"브랜드", "ID", "이름", "배정월", "FLW",
		"브랜드_계약수", "브랜드_실집행수", "브랜드_잔여수",
		"전체_계약수", "전체_실집행수", "전체_잔여수",
	}
	executionColumns = []string{
		"브랜드", "ID", "이름", "배정월", "계획수", "실제집행수",
	}
)

// ExecutionColumns returns the canonical execution-ledger header, shared
// with the xlsx interchange layer.
func ExecutionColumns() []string { return executionColumns }

// AssignmentColumns returns the canonical assignment-ledger header.
func AssignmentColumns() []string { return assignmentColumns }

// LedgerStore reads and writes both append-only ledgers with full-file
// replace semantics. Single actor; no locking.
type LedgerStore struct {
	AssignmentPath string
	ExecutionPath  string
}

func NewLedgerStore(dataDir string) *LedgerStore {
	return &LedgerStore{
		AssignmentPath: filepath.Join(dataDir, AssignmentFileName),
		ExecutionPath:  filepath.Join(dataDir, ExecutionFileName),
	}
}

// -----------------------------------------------------------------------------
// Assignment ledger
// -----------------------------------------------------------------------------

// LoadAssignments reads the assignment ledger; a missing file is an empty
// ledger, anything else unreadable is fatal.
func (s *LedgerStore) LoadAssignments() ([]crew.AssignmentRecord, error) {
	rows, err := readCSV(s.AssignmentPath, assignmentColumns)
	if err != nil {
		return nil, err
	}
	records := make([]crew.AssignmentRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := parseAssignmentRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.AssignmentPath, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveAssignments replaces the whole ledger file atomically.
func (s *LedgerStore) SaveAssignments(records []crew.AssignmentRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			string(rec.Brand),
			string(rec.InfluencerID),
			rec.InfluencerName,
			string(rec.Month),
			strconv.Itoa(rec.Follower),
			strconv.Itoa(rec.BrandContract),
			strconv.Itoa(rec.BrandActual),
			strconv.Itoa(rec.BrandRemaining),
			strconv.Itoa(rec.TotalContract),
			strconv.Itoa(rec.TotalActual),
			strconv.Itoa(rec.TotalRemaining),
		})
	}
	return writeCSV(s.AssignmentPath, assignmentColumns, rows)
}

func parseAssignmentRow(row map[string]string) (crew.AssignmentRecord, error) {
	rec := crew.AssignmentRecord{
		Brand:          crew.Brand(row["브랜드"]),
		InfluencerID:   crew.InfluencerID(row["ID"]),
		InfluencerName: row["이름"],
		Month:          crew.Month(row["배정월"]),
	}
	var err error
	fields := []struct {
		name string
		dst  *int
	}{
		{"FLW", &rec.Follower},
		{"브랜드_계약수", &rec.BrandContract},
		{"브랜드_실집행수", &rec.BrandActual},
		{"브랜드_잔여수", &rec.BrandRemaining},
		{"전체_계약수", &rec.TotalContract},
		{"전체_실집행수", &rec.TotalActual},
		{"전체_잔여수", &rec.TotalRemaining},
	}
	for _, f := range fields {
		if *f.dst, err = parseIntField(f.name, row[f.name]); err != nil {
			return crew.AssignmentRecord{}, err
		}
	}
	return rec, nil
}

// -----------------------------------------------------------------------------
// Execution ledger
// -----------------------------------------------------------------------------

// LoadExecutions reads the execution ledger; missing file means empty.
func (s *LedgerStore) LoadExecutions() ([]crew.ExecutionRecord, error) {
	rows, err := readCSV(s.ExecutionPath, executionColumns)
	if err != nil {
		return nil, err
	}
	records := make([]crew.ExecutionRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := parseExecutionRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.ExecutionPath, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveExecutions replaces the whole ledger file atomically. An empty
// ledger removes the file, matching the missing-file-means-empty read.
func (s *LedgerStore) SaveExecutions(records []crew.ExecutionRecord) error {
	if len(records) == 0 {
		if err := os.Remove(s.ExecutionPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", s.ExecutionPath, err)
		}
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			string(rec.Brand),
			string(rec.InfluencerID),
			rec.InfluencerName,
			string(rec.Month),
			strconv.Itoa(rec.PlannedQty),
			strconv.Itoa(rec.ActualQty),
		})
	}
	return writeCSV(s.ExecutionPath, executionColumns, rows)
}

// RemoveAssignmentLedger deletes the assignment ledger file (full reset).
func (s *LedgerStore) RemoveAssignmentLedger() error {
	if err := os.Remove(s.AssignmentPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.AssignmentPath, err)
	}
	return nil
}

func parseExecutionRow(row map[string]string) (crew.ExecutionRecord, error) {
	rec := crew.ExecutionRecord{
		Brand:          crew.Brand(row["브랜드"]),
		InfluencerID:   crew.InfluencerID(row["ID"]),
		InfluencerName: row["이름"],
		Month:          crew.Month(row["배정월"]),
	}
	var err error
	if rec.PlannedQty, err = parseIntField("계획수", row["계획수"]); err != nil {
		return crew.ExecutionRecord{}, err
	}
	if rec.ActualQty, err = parseIntField("실제집행수", row["실제집행수"]); err != nil {
		return crew.ExecutionRecord{}, err
	}
	return rec, nil
}

// -----------------------------------------------------------------------------
// CSV plumbing
// -----------------------------------------------------------------------------

// readCSV returns header-keyed rows. A missing file yields no rows and no
// error; ledgers start out as absent files.
func readCSV(path string, required []string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	col, err := indexColumns(records[0], required)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, raw := range records[1:] {
		row := make(map[string]string, len(required))
		for _, name := range required {
			if idx := col[name]; idx < len(raw) {
				row[name] = raw[idx]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}
