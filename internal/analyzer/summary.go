package analyzer

import (
	"math"
	"time"

	"github.com/solvaholic/gh-issue-dash/internal/api"
)

// Totals are all-time counts over a collection, independent of any period.
type Totals struct {
	Total  int `json:"total"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// Summary describes a whole issue collection.
type Summary struct {
	Totals
	AvgDaysToClose float64        `json:"avg_days_to_close"`
	AssigneeCounts map[string]int `json:"assignee_counts"`
}

// CountTotals tallies issues by live state.
func CountTotals(issues []api.Issue) Totals {
	var t Totals
	for _, it := range issues {
		t.Total++
		switch it.State {
		case api.StateOpen:
			t.Open++
		case api.StateClosed:
			t.Closed++
		}
	}
	return t
}

// ResolutionRate is closed as a whole-number percentage of total, or 0 for
// an empty collection.
func (t Totals) ResolutionRate() int {
	if t.Total == 0 {
		return 0
	}
	return int(roundHalfUp(float64(t.Closed) / float64(t.Total) * 100))
}

// Summarize computes totals, average time to close and assignee counts.
func Summarize(issues []api.Issue) Summary {
	s := Summary{
		Totals:         CountTotals(issues),
		AssigneeCounts: make(map[string]int),
	}

	var totalCloseDuration time.Duration
	var closedCountForAvg int
	for _, it := range issues {
		if it.ClosedAt != nil {
			dur := it.ClosedAt.Sub(it.CreatedAt)
			if dur > 0 {
				totalCloseDuration += dur
				closedCountForAvg++
			}
		}
		if len(it.Assignees) == 0 {
			s.AssigneeCounts["unassigned"]++
		}
		for _, a := range it.Assignees {
			s.AssigneeCounts[a]++
		}
	}

	if closedCountForAvg > 0 {
		avg := totalCloseDuration / time.Duration(closedCountForAvg)
		s.AvgDaysToClose = math.Round(avg.Hours()/24.0*10) / 10
	}
	return s
}

// roundHalfUp rounds to the nearest integer with halves going towards +Inf.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
