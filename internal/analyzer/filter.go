package analyzer

import (
	"strings"

	"github.com/samber/lo"

	"github.com/solvaholic/gh-issue-dash/internal/api"
)

// DateField selects which issue timestamp a date filter inspects.
type DateField int

const (
	Created DateField = iota
	Closed
)

// Predicate reports whether an issue passes a filter.
type Predicate func(api.Issue) bool

// Filter returns the issues that pass every predicate. Predicates are
// combined by conjunction, so their order never changes the result. The
// input slice is not modified.
func Filter(issues []api.Issue, preds ...Predicate) []api.Issue {
	return lo.Filter(issues, func(it api.Issue, _ int) bool {
		for _, p := range preds {
			if !p(it) {
				return false
			}
		}
		return true
	})
}

// Count returns how many issues pass every predicate.
func Count(issues []api.Issue, preds ...Predicate) int {
	return lo.CountBy(issues, func(it api.Issue) bool {
		for _, p := range preds {
			if !p(it) {
				return false
			}
		}
		return true
	})
}

// DateIn matches issues whose field timestamp lies in w. An issue without a
// closing timestamp never matches Closed.
func DateIn(field DateField, w Window) Predicate {
	return func(it api.Issue) bool {
		switch field {
		case Closed:
			return it.ClosedAt != nil && w.Contains(*it.ClosedAt)
		default:
			return w.Contains(it.CreatedAt)
		}
	}
}

// HasState matches issues in the given state.
func HasState(state api.State) Predicate {
	return func(it api.Issue) bool {
		return it.State == state
	}
}

// HasAnyLabel matches issues carrying at least one of names, compared
// case-insensitively. An empty name set matches every issue.
func HasAnyLabel(names []string) Predicate {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			want[strings.ToLower(n)] = struct{}{}
		}
	}
	if len(want) == 0 {
		return func(api.Issue) bool { return true }
	}
	return func(it api.Issue) bool {
		return lo.ContainsBy(it.Labels, func(l api.Label) bool {
			_, ok := want[strings.ToLower(l.Name)]
			return ok
		})
	}
}

// ClosedWithin matches issues that were both opened and resolved inside w:
// closed state, a closing timestamp, and creation and closure both in w.
// Issues opened before w and closed inside it do not match; use
// DateIn(Closed, w) for raw closure activity.
func ClosedWithin(w Window) Predicate {
	return func(it api.Issue) bool {
		return it.State == api.StateClosed &&
			it.ClosedAt != nil &&
			w.Contains(it.CreatedAt) &&
			w.Contains(*it.ClosedAt)
	}
}

// ByDateField returns the issues whose field timestamp lies in w.
func ByDateField(issues []api.Issue, field DateField, w Window) []api.Issue {
	return Filter(issues, DateIn(field, w))
}

// ByState returns the issues in the given state.
func ByState(issues []api.Issue, state api.State) []api.Issue {
	return Filter(issues, HasState(state))
}

// ByLabels returns the issues carrying any of names; an empty set passes all.
func ByLabels(issues []api.Issue, names []string) []api.Issue {
	return Filter(issues, HasAnyLabel(names))
}
