package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fnfcrew/assignment-engine/crew"
)

// =============================================================================
// ROSTER STORE - influencer.csv
// =============================================================================

// Roster columns. Raw source columns beyond these are tolerated and
// ignored; they belong to the upstream conversion step.
var rosterColumns = []string{
	"id", "name", "follower", "unit_fee",
	"mlb_qty", "dx_qty", "dv_qty", "st_qty", "total_qty",
}

// RosterStore loads the influencer roster. Read-only: the roster is
// mutated only by the batch conversion step (see convert.go).
type RosterStore struct {
	Path string
}

func NewRosterStore(dataDir string) *RosterStore {
	return &RosterStore{Path: filepath.Join(dataDir, RosterFileName)}
}

// Load reads the full roster. A missing or malformed file is a fatal
// error: without a roster no operation makes sense.
func (s *RosterStore) Load() ([]crew.Influencer, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("roster %s: empty file", s.Path)
	}

	col, err := indexColumns(records[0], rosterColumns)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", s.Path, err)
	}

	roster := make([]crew.Influencer, 0, len(records)-1)
	for i, row := range records[1:] {
		inf, err := parseInfluencer(row, col)
		if err != nil {
			return nil, fmt.Errorf("roster %s row %d: %w", s.Path, i+2, err)
		}
		roster = append(roster, inf)
	}
	return roster, nil
}

func parseInfluencer(row []string, col map[string]int) (crew.Influencer, error) {
	get := func(name string) string {
		idx := col[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	follower, err := parseIntField("follower", get("follower"))
	if err != nil {
		return crew.Influencer{}, err
	}
	fee, err := decimal.NewFromString(zeroWhenEmpty(get("unit_fee")))
	if err != nil {
		return crew.Influencer{}, fmt.Errorf("unit_fee %q: %w", get("unit_fee"), err)
	}

	inf := crew.Influencer{
		ID:            crew.InfluencerID(get("id")),
		Name:          get("name"),
		Follower:      follower,
		UnitFee:       fee,
		ContractedQty: make(map[crew.Brand]int, len(crew.Brands())),
	}
	if inf.ID == "" {
		return crew.Influencer{}, fmt.Errorf("missing id")
	}

	for _, b := range crew.Brands() {
		qty, err := parseIntField(brandQtyColumn(b), get(brandQtyColumn(b)))
		if err != nil {
			return crew.Influencer{}, err
		}
		inf.ContractedQty[b] = qty
	}
	inf.TotalContractedQty, err = parseIntField("total_qty", get("total_qty"))
	if err != nil {
		return crew.Influencer{}, err
	}
	return inf, nil
}

func brandQtyColumn(b crew.Brand) string {
	return strings.ToLower(string(b)) + "_qty"
}

// indexColumns maps required column names to their positions, trimming
// header whitespace the way upstream exports sometimes leave it.
func indexColumns(header []string, required []string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return col, nil
}

func parseIntField(name, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	// Exports occasionally render counts as "3.0".
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f), nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, value, err)
	}
	return n, nil
}

func zeroWhenEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
