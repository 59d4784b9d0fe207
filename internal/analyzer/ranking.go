package analyzer

import (
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/solvaholic/gh-issue-dash/internal/api"
)

// DefaultLabelLimit is the size of the label ranking on the dashboard.
const DefaultLabelLimit = 5

// LabelStat tallies the issues carrying one label.
type LabelStat struct {
	Label  api.Label `json:"label"`
	Open   int       `json:"open_count"`
	Closed int       `json:"closed_count"`
	Total  int       `json:"total_count"`
}

// labelTally accumulates LabelStats keyed by case-folded label name and
// remembers the order in which labels were first seen.
type labelTally struct {
	order []string
	stats map[string]*LabelStat
}

func newLabelTally() *labelTally {
	return &labelTally{stats: make(map[string]*LabelStat)}
}

func (t *labelTally) add(l api.Label, state api.State) {
	key := strings.ToLower(l.Name)
	st, ok := t.stats[key]
	if !ok {
		st = &LabelStat{Label: l}
		t.stats[key] = st
		t.order = append(t.order, key)
	}
	if state == api.StateOpen {
		st.Open++
	} else {
		st.Closed++
	}
	st.Total++
}

// ranked returns the stats by Total descending; equal totals keep first-seen order.
func (t *labelTally) ranked() []LabelStat {
	out := make([]LabelStat, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, *t.stats[k])
	}
	slices.SortStableFunc(out, func(a, b LabelStat) int {
		return b.Total - a.Total
	})
	return out
}

// RankLabels ranks the labels of the issues created in p's current window,
// regardless of any label selection, and yields at most limit entries
// (DefaultLabelLimit when limit <= 0). Label names are compared
// case-insensitively, so "Bug" and "bug" share one tally under the first-seen
// spelling. Each iteration recomputes the ranking from issues.
func RankLabels(issues []api.Issue, p Period, now time.Time, limit int) iter.Seq[LabelStat] {
	if limit <= 0 {
		limit = DefaultLabelLimit
	}
	return func(yield func(LabelStat) bool) {
		b := Boundaries(now, p)
		tally := newLabelTally()
		for _, it := range Filter(issues, DateIn(Created, b.Current)) {
			for _, l := range it.Labels {
				tally.add(l, it.State)
			}
		}
		for i, st := range tally.ranked() {
			if i >= limit || !yield(st) {
				return
			}
		}
	}
}

// TopLabels collects RankLabels into a slice.
func TopLabels(issues []api.Issue, p Period, now time.Time, limit int) []LabelStat {
	out := slices.Collect(RankLabels(issues, p, now, limit))
	if out == nil {
		out = []LabelStat{}
	}
	return out
}
