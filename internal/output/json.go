package output

import (
	"encoding/json"
	"io"

	"github.com/solvaholic/gh-issue-dash/internal/analyzer"
	"github.com/solvaholic/gh-issue-dash/internal/api"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteIssuesJSON writes fetch results as JSON: { repository: <repo>, count: n, issues: [...] }
func WriteIssuesJSON(w io.Writer, repo string, issues []api.Issue) error {
	if issues == nil {
		issues = []api.Issue{}
	}
	return writeJSON(w, map[string]any{"repository": repo, "count": len(issues), "issues": issues})
}

// WriteLabelsJSON writes repository labels as JSON: { repository: <repo>, labels: [...] }
func WriteLabelsJSON(w io.Writer, repo string, labels []api.Label) error {
	if labels == nil {
		labels = []api.Label{}
	}
	return writeJSON(w, map[string]any{"repository": repo, "labels": labels})
}

// WriteMetricsJSON writes period metrics and the all-time summary as JSON:
// { repository: <repo>, metrics: {...}, summary: {...} }
func WriteMetricsJSON(w io.Writer, repo string, m analyzer.Metrics, s analyzer.Summary) error {
	return writeJSON(w, map[string]any{"repository": repo, "metrics": m, "summary": s})
}

// WriteTrendJSON writes trend buckets as JSON: { repository: <repo>, bucket: <b>, points: [...] }
func WriteTrendJSON(w io.Writer, repo string, bucket analyzer.Bucket, points []analyzer.TrendPoint) error {
	if points == nil {
		points = []analyzer.TrendPoint{}
	}
	return writeJSON(w, map[string]any{"repository": repo, "bucket": bucket, "points": points})
}
