package analyzer

import (
	"testing"
	"time"

	"github.com/solvaholic/gh-issue-dash/internal/api"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return tm
}

// issue builds an issue; an empty closed string leaves ClosedAt nil.
func issue(t *testing.T, n int, state api.State, created, closed string, labels ...string) api.Issue {
	t.Helper()
	it := api.Issue{
		Number:    n,
		State:     state,
		CreatedAt: mustTime(t, created),
		UpdatedAt: mustTime(t, created),
	}
	if closed != "" {
		c := mustTime(t, closed)
		it.ClosedAt = &c
		it.UpdatedAt = c
	}
	for _, l := range labels {
		it.Labels = append(it.Labels, api.Label{Name: l, Color: "ededed"})
	}
	return it
}

func numbers(issues []api.Issue) []int {
	out := make([]int, 0, len(issues))
	for _, it := range issues {
		out = append(out, it.Number)
	}
	return out
}
