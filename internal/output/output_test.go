package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvaholic/gh-issue-dash/internal/analyzer"
	"github.com/solvaholic/gh-issue-dash/internal/api"
)

var now = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func sampleIssues() []api.Issue {
	closed := time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC)
	return []api.Issue{
		{Number: 1, Title: "Crash on start", State: api.StateOpen, CreatedAt: time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC),
			Labels: []api.Label{{Name: "bug", Color: "d73a4a"}}, Assignees: []string{"alice"}, Comments: 3},
		{Number: 2, Title: "Fix typo", State: api.StateClosed, CreatedAt: time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC), ClosedAt: &closed,
			Labels: []api.Label{{Name: "docs", Color: "0075ca"}}},
	}
}

func TestWriteIssuesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIssuesJSON(&buf, "o/r", sampleIssues()))

	var got struct {
		Repository string      `json:"repository"`
		Count      int         `json:"count"`
		Issues     []api.Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "o/r", got.Repository)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "Fix typo", got.Issues[1].Title)

	buf.Reset()
	require.NoError(t, WriteIssuesJSON(&buf, "o/r", nil))
	assert.Contains(t, buf.String(), `"issues": []`)
}

func TestWriteMetricsJSON(t *testing.T) {
	issues := sampleIssues()
	m := analyzer.Aggregate(issues, analyzer.ThisWeek, nil, now)

	var buf bytes.Buffer
	require.NoError(t, WriteMetricsJSON(&buf, "o/r", m, analyzer.Summarize(issues)))

	var got struct {
		Repository string         `json:"repository"`
		Metrics    map[string]any `json:"metrics"`
		Summary    map[string]any `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "o/r", got.Repository)
	assert.Equal(t, "this-week", got.Metrics["period"])
	assert.EqualValues(t, 50, got.Metrics["resolution_rate"])
	assert.EqualValues(t, 2, got.Summary["total"])
	assert.Contains(t, got.Summary, "avg_days_to_close")
}

func TestWriteTrendJSON(t *testing.T) {
	points := analyzer.Trend(sampleIssues(), analyzer.Day, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), now)

	var buf bytes.Buffer
	require.NoError(t, WriteTrendJSON(&buf, "o/r", analyzer.Day, points))
	assert.Contains(t, buf.String(), `"bucket": "day"`)
	assert.Contains(t, buf.String(), `"label": "2025-06-17"`)
}

func TestWriteIssuesText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIssuesText(&buf, sampleIssues(), 80))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "#1")
	assert.Contains(t, lines[0], "Crash on start")
	assert.Contains(t, lines[0], "alice")
	assert.Contains(t, lines[1], "unassigned")
	assert.Contains(t, lines[1], "2025-06-17")
}

func TestWriteLabelsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLabelsText(&buf, []api.Label{{Name: "bug", Color: "d73a4a", Description: "Something is broken"}}))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "#d73a4a")
	assert.Contains(t, out, "Something is broken")
}

func TestWriteMetricsText(t *testing.T) {
	issues := sampleIssues()
	m := analyzer.Aggregate(issues, analyzer.ThisWeek, nil, now)

	var buf bytes.Buffer
	require.NoError(t, WriteMetricsText(&buf, "o/r", m, analyzer.Summarize(issues), 80))

	out := buf.String()
	assert.Contains(t, out, "o/r")
	assert.Contains(t, out, "this week opened")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "+0%")
	assert.Contains(t, out, "vs last week")
	assert.Contains(t, out, "Top labels (this week):")
	assert.Contains(t, out, "bug")
	assert.Contains(t, out, "alice")
	// no ANSI colour when the writer is not a terminal
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteTrendText(t *testing.T) {
	points := []analyzer.TrendPoint{
		{Label: "2025-W24", Opened: 4, Closed: 2},
		{Label: "2025-W25", Opened: 0, Closed: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteTrendText(&buf, points, 60))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	// bars are 15 cells wide at the largest value
	assert.Equal(t, 15+7, strings.Count(lines[1], "█"))
	assert.Equal(t, 3, strings.Count(lines[2], "█"))
}

func TestChangeText(t *testing.T) {
	assert.Equal(t, "+12.5%", changeText(12.5))
	assert.Equal(t, "-100%", changeText(-100))
	assert.Equal(t, "+0%", changeText(0))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", truncateString("hello", 10))
	assert.Equal(t, "hel…", truncateString("hello", 4))
	assert.Equal(t, "", truncateString("hello", 0))
}
