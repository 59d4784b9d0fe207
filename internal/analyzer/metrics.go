package analyzer

import (
	"time"

	"github.com/solvaholic/gh-issue-dash/internal/api"
)

// SeriesPoint is one bar of a comparison chart.
type SeriesPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Metrics is the comparative view of one period. It is recomputed on every
// input change and never stored.
//
// CurrentOpen and PreviousOpen count issues created in the window whatever
// their live state, i.e. the volume of new work, not the issues still open.
type Metrics struct {
	Period          Period        `json:"period"`
	ComparisonLabel string        `json:"comparison_label"`
	Bounds          Bounds        `json:"bounds"`
	CurrentOpen     int           `json:"current_open"`
	CurrentClosed   int           `json:"current_closed"`
	PreviousOpen    int           `json:"previous_open"`
	PreviousClosed  int           `json:"previous_closed"`
	OpenChange      float64       `json:"open_change"`
	ClosedChange    float64       `json:"closed_change"`
	ResolutionRate  int           `json:"resolution_rate"`
	Totals          Totals        `json:"totals"`
	TopLabels       []LabelStat   `json:"top_labels"`
	OpenSeries      []SeriesPoint `json:"open_series"`
	ClosedSeries    []SeriesPoint `json:"closed_series"`
}

// Aggregate computes the metrics of period p at now for the issues carrying
// any of selectedLabels (all issues when none are selected). It never fails:
// an empty collection gives all-zero metrics.
func Aggregate(issues []api.Issue, p Period, selectedLabels []string, now time.Time) Metrics {
	b := Boundaries(now, p)
	labelled := Filter(issues, HasAnyLabel(selectedLabels))

	m := Metrics{
		Period:          p,
		ComparisonLabel: b.ComparisonLabel,
		Bounds:          b,
		CurrentOpen:     Count(labelled, DateIn(Created, b.Current)),
		CurrentClosed:   Count(labelled, ClosedWithin(b.Current)),
	}
	if b.HasPrevious {
		m.PreviousOpen = Count(labelled, DateIn(Created, b.Previous))
		m.PreviousClosed = Count(labelled, ClosedWithin(b.Previous))
	}

	m.OpenChange = PercentChange(m.CurrentOpen, m.PreviousOpen)
	m.ClosedChange = PercentChange(m.CurrentClosed, m.PreviousClosed)

	m.Totals = CountTotals(labelled)
	m.ResolutionRate = m.Totals.ResolutionRate()

	m.TopLabels = TopLabels(issues, p, now, DefaultLabelLimit)

	m.OpenSeries = []SeriesPoint{
		{Label: p.Name(), Value: m.CurrentOpen},
		{Label: b.ComparisonLabel, Value: m.PreviousOpen},
	}
	m.ClosedSeries = []SeriesPoint{
		{Label: p.Name(), Value: m.CurrentClosed},
		{Label: b.ComparisonLabel, Value: m.PreviousClosed},
	}
	return m
}

// PercentChange is the change from previous to current in percent, rounded
// to one decimal. It is 0 when previous is 0.
func PercentChange(current, previous int) float64 {
	if previous <= 0 {
		return 0
	}
	pct := float64(current-previous) / float64(previous) * 100
	return roundHalfUp(pct*10) / 10
}
