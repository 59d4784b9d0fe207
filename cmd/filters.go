package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/solvaholic/gh-issue-dash/internal/analyzer"
	"github.com/solvaholic/gh-issue-dash/internal/api"
)

// labelSpec holds compiled label matching rules. Matching is case-insensitive.
type labelSpec struct {
	exact    map[string]bool
	prefixes []string
}

// parseLabelSpecs takes a comma-separated list of label specs like
// "initiative,epic,batch,foo-*" and returns a labelSpec for matching.
func parseLabelSpecs(raw string) labelSpec {
	s := labelSpec{exact: map[string]bool{}}
	if raw == "" {
		return s
	}
	for _, part := range strings.Split(raw, ",") {
		p := strings.ToLower(strings.TrimSpace(part))
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "*") {
			s.prefixes = append(s.prefixes, strings.TrimSuffix(p, "*"))
		} else {
			s.exact[p] = true
		}
	}
	return s
}

func (ls *labelSpec) empty() bool {
	return ls == nil || (len(ls.exact) == 0 && len(ls.prefixes) == 0)
}

// matchesName reports whether one label name satisfies the spec.
func (ls *labelSpec) matchesName(name string) bool {
	name = strings.ToLower(name)
	if ls.exact[name] {
		return true
	}
	for _, p := range ls.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// matches returns true if any label matches the spec
func (ls *labelSpec) matches(labels []string) bool {
	if ls == nil {
		return false
	}
	for _, l := range labels {
		if ls.matchesName(l) {
			return true
		}
	}
	return false
}

func (ls labelSpec) predicate() analyzer.Predicate {
	return func(it api.Issue) bool { return ls.matches(it.LabelNames()) }
}

// expandLabelSpecs resolves specs against the repository labels: exact names
// pass through, wildcard specs become every matching label. Wildcards that
// match nothing are returned as unmatched.
func expandLabelSpecs(raw string, repoLabels []api.Label) ([]string, []string) {
	var exact, unmatched []string
	for _, part := range strings.Split(raw, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if !strings.HasSuffix(p, "*") {
			exact = append(exact, p)
			continue
		}
		spec := parseLabelSpecs(p)
		found := false
		for _, rl := range repoLabels {
			if spec.matchesName(rl.Name) {
				exact = append(exact, rl.Name)
				found = true
			}
		}
		if !found {
			unmatched = append(unmatched, p)
		}
	}
	return exact, unmatched
}

// filterOptions are the client-side filters of the fetch command. Time
// filters are raw strings:
// - relative: `7d` means issues from now-7days..now
// - date: `2025-01-02` means that day
// - range: `2025-01-01..2025-01-31` inclusive
type filterOptions struct {
	State   string
	Labels  string
	Created string
	Updated string
	Closed  string
}

// filterIssues applies state, label, and time-range filters to the fetched
// issue list.
func filterIssues(issueList []api.Issue, opts filterOptions, now time.Time) ([]api.Issue, error) {
	var preds []analyzer.Predicate

	switch state := strings.ToLower(opts.State); state {
	case "", "all":
	case string(api.StateOpen), string(api.StateClosed):
		preds = append(preds, analyzer.HasState(api.State(state)))
	default:
		return nil, fmt.Errorf("invalid state %q (want open, closed or all)", opts.State)
	}

	if ls := parseLabelSpecs(opts.Labels); !ls.empty() {
		preds = append(preds, ls.predicate())
	}

	ranges := []struct {
		raw  string
		name string
		pred func(analyzer.Window) analyzer.Predicate
	}{
		{opts.Created, "created", func(w analyzer.Window) analyzer.Predicate { return analyzer.DateIn(analyzer.Created, w) }},
		{opts.Updated, "updated", updatedIn},
		{opts.Closed, "closed", func(w analyzer.Window) analyzer.Predicate { return analyzer.DateIn(analyzer.Closed, w) }},
	}
	for _, r := range ranges {
		if r.raw == "" {
			continue
		}
		w, err := analyzer.ParseRange(r.raw, now)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", r.name, err)
		}
		preds = append(preds, r.pred(w))
	}

	return analyzer.Filter(issueList, preds...), nil
}

func updatedIn(w analyzer.Window) analyzer.Predicate {
	return func(it api.Issue) bool { return w.Contains(it.UpdatedAt) }
}
