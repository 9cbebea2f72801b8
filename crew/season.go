package crew

// =============================================================================
// SEASON CALENDAR - The ordered month sequence assignments progress through
// =============================================================================

// Month is a season-month label such as "9월". Labels carry no calendar
// semantics; only their position in the season sequence matters.
type Month string

// Season selects which six-month sequence is in effect.
type Season string

const (
	Season25FW Season = "25FW"
	Season26SS Season = "26SS"
	Season26FW Season = "26FW"
	Season27SS Season = "27SS"

	DefaultSeason = Season25FW
)

var (
	fwMonths = []Month{"9월", "10월", "11월", "12월", "1월", "2월"}
	ssMonths = []Month{"3월", "4월", "5월", "6월", "7월", "8월"}
)

// Seasons lists the selectable seasons in display order.
func Seasons() []Season {
	return []Season{Season25FW, Season26SS, Season26FW, Season27SS}
}

// ParseSeason returns the season for s, or false for unknown labels.
func ParseSeason(s string) (Season, bool) {
	switch Season(s) {
	case Season25FW, Season26SS, Season26FW, Season27SS:
		return Season(s), true
	}
	return "", false
}

// Months returns the ordered month sequence for the season. FW seasons run
// 9월..2월, SS seasons 3월..8월. The slice must not be mutated.
func (s Season) Months() []Month {
	switch s {
	case Season26SS, Season27SS:
		return ssMonths
	default:
		return fwMonths
	}
}

// MonthIndex returns the position of m in the season sequence, or -1 if m
// does not belong to the season.
func (s Season) MonthIndex(m Month) int {
	for i, candidate := range s.Months() {
		if candidate == m {
			return i
		}
	}
	return -1
}

// MonthsBefore returns the months strictly preceding m in sequence order.
// Unknown months yield nil.
func (s Season) MonthsBefore(m Month) []Month {
	i := s.MonthIndex(m)
	if i <= 0 {
		return nil
	}
	return s.Months()[:i]
}

// MonthsFrom returns m and every later month of the sequence. This is the
// cascade set for a month-scoped reset: deleting a month without deleting
// its successors would invalidate their remaining-quota snapshots.
func (s Season) MonthsFrom(m Month) []Month {
	i := s.MonthIndex(m)
	if i < 0 {
		return nil
	}
	return s.Months()[i:]
}
