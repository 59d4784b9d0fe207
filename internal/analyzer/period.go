package analyzer

import (
	"fmt"
	"strings"
	"time"
)

// Period is a calendar-aligned window selectable on the dashboard.
type Period int

const (
	Today Period = iota
	ThisWeek
	ThisMonth
	LastMonth
	TwoMonthsAgo
)

// Periods lists every period in display order.
var Periods = []Period{Today, ThisWeek, ThisMonth, LastMonth, TwoMonthsAgo}

var periodKeys = map[Period]string{
	Today:        "today",
	ThisWeek:     "this-week",
	ThisMonth:    "this-month",
	LastMonth:    "last-month",
	TwoMonthsAgo: "two-months-ago",
}

var periodNames = map[Period]string{
	Today:        "today",
	ThisWeek:     "this week",
	ThisMonth:    "this month",
	LastMonth:    "last month",
	TwoMonthsAgo: "two months ago",
}

// String returns the period's key, e.g. "this-week".
func (p Period) String() string {
	if k, ok := periodKeys[p]; ok {
		return k
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// Name returns the human-readable name used for chart labels.
func (p Period) Name() string {
	return periodNames[p]
}

// MarshalText encodes the period as its key.
func (p Period) MarshalText() ([]byte, error) {
	if _, ok := periodKeys[p]; !ok {
		return nil, fmt.Errorf("invalid period %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a period key.
func (p *Period) UnmarshalText(b []byte) error {
	v, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePeriod accepts a period key, case-insensitively. Underscores and
// spaces are accepted in place of hyphens.
func ParsePeriod(s string) (Period, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	for _, p := range Periods {
		if periodKeys[p] == key {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown period %q (want one of today, this-week, this-month, last-month, two-months-ago)", s)
}

// Window is a time interval with an inclusive start and an inclusive end.
// A nil End means the window is open-ended.
type Window struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return w.End == nil || !t.After(*w.End)
}

// Bounds are the concrete windows derived from a period and a reference time.
type Bounds struct {
	Current Window `json:"current"`
	// Previous is meaningful only when HasPrevious is set; otherwise the
	// comparison baseline is zero.
	Previous        Window `json:"previous"`
	HasPrevious     bool   `json:"has_previous"`
	ComparisonLabel string `json:"comparison_label"`
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// month returns the window of the month offset months away from t's month.
func month(t time.Time, offset int) Window {
	start := time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Window{Start: start, End: &end}
}

// Boundaries computes the current and comparison windows of p relative to
// now. Calendar arithmetic happens in now's location.
func Boundaries(now time.Time, p Period) Bounds {
	switch p {
	case Today:
		return Bounds{
			Current:         Window{Start: midnight(now)},
			ComparisonLabel: "yesterday",
		}
	case ThisWeek:
		// weeks start on Monday; Sunday is day 7
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := time.Date(now.Year(), now.Month(), now.Day()-(weekday-1), 0, 0, 0, 0, now.Location())
		prevEnd := start.Add(-time.Millisecond)
		return Bounds{
			Current:         Window{Start: start},
			Previous:        Window{Start: start.AddDate(0, 0, -7), End: &prevEnd},
			HasPrevious:     true,
			ComparisonLabel: "last week",
		}
	case ThisMonth:
		return Bounds{
			Current:         Window{Start: month(now, 0).Start},
			Previous:        month(now, -1),
			HasPrevious:     true,
			ComparisonLabel: "last month",
		}
	case LastMonth:
		return Bounds{
			Current:         month(now, -1),
			Previous:        month(now, -2),
			HasPrevious:     true,
			ComparisonLabel: "two months ago",
		}
	case TwoMonthsAgo:
		return Bounds{
			Current:         month(now, -2),
			ComparisonLabel: "no comparison",
		}
	default:
		// unknown values behave like the dashboard default
		return Boundaries(now, ThisWeek)
	}
}
