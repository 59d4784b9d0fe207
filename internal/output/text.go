package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/solvaholic/gh-issue-dash/internal/analyzer"
	"github.com/solvaholic/gh-issue-dash/internal/api"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// WriteIssuesText prints one line per issue, truncating titles to width.
func WriteIssuesText(w io.Writer, issues []api.Issue, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range issues {
		labels := strings.Join(it.LabelNames(), ",")
		assignee := "unassigned"
		if len(it.Assignees) > 0 {
			assignee = strings.Join(it.Assignees, ",")
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			it.Number,
			it.State,
			truncateString(it.Title, width/2),
			labels,
			assignee,
			it.CreatedAt.Format("2006-01-02"),
			it.Comments,
		)
	}
	return tw.Flush()
}

// WriteLabelsText prints the repository labels as a table.
func WriteLabelsText(w io.Writer, labels []api.Label) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCOLOR\tDESCRIPTION")
	for _, l := range labels {
		fmt.Fprintf(tw, "%s\t#%s\t%s\n", l.Name, l.Color, l.Description)
	}
	return tw.Flush()
}

// WriteMetricsText renders the period cards, comparison bars, label ranking
// and the all-time summary.
func WriteMetricsText(w io.Writer, repo string, m analyzer.Metrics, s analyzer.Summary, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	muted := r.NewStyle().Faint(true)
	card := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 2).
		MarginRight(1)

	name := m.Period.Name()
	renderCard := func(label string, value string, change *float64) string {
		lines := []string{muted.Render(label), title.Render(value)}
		if change != nil {
			color := lipgloss.Color("2")
			if *change < 0 {
				color = lipgloss.Color("1")
			}
			lines = append(lines, r.NewStyle().Foreground(color).Render(changeText(*change))+" "+muted.Render("vs "+m.ComparisonLabel))
		}
		return card.Render(strings.Join(lines, "\n"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", title.Render("Repository:"), repo)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		renderCard(name+" opened", strconv.Itoa(m.CurrentOpen), &m.OpenChange),
		renderCard(name+" closed", strconv.Itoa(m.CurrentClosed), &m.ClosedChange),
		renderCard("resolution rate", strconv.Itoa(m.ResolutionRate)+"%", nil),
	))
	b.WriteString("\n\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	barWidth := max(width/3, 10)
	fmt.Fprintln(tw, "Opened:")
	writeSeries(tw, m.OpenSeries, barWidth)
	fmt.Fprintln(tw, "Closed:")
	writeSeries(tw, m.ClosedSeries, barWidth)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Top labels (%s):\n", name)
	if len(m.TopLabels) == 0 {
		fmt.Fprintln(tw, "  none")
	}
	for i, ls := range m.TopLabels {
		fmt.Fprintf(tw, "  #%d\t%s\topen %d\tclosed %d\ttotal %d\n", i+1, ls.Label.Name, ls.Open, ls.Closed, ls.Total)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "All time:")
	fmt.Fprintf(tw, "  Open:\t%d\n  Closed:\t%d\n  Total:\t%d\n", s.Open, s.Closed, s.Total)
	fmt.Fprintf(tw, "  Avg time to close:\t%.1f days\n", s.AvgDaysToClose)
	if len(s.AssigneeCounts) > 0 {
		fmt.Fprintln(tw, "Assignees:")
		for i, kv := range sortedCounts(s.AssigneeCounts) {
			if i >= 10 {
				break
			}
			fmt.Fprintf(tw, "  %s\t%d\n", kv.key, kv.count)
		}
	}
	return tw.Flush()
}

// WriteTrendText prints one row per bucket with proportional bars.
func WriteTrendText(w io.Writer, points []analyzer.TrendPoint, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	top := 0
	for _, p := range points {
		top = max(top, p.Opened, p.Closed)
	}
	barWidth := max((width-30)/2, 5)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUCKET\tOPENED\t\tCLOSED\t")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n", p.Label, p.Opened, bar(p.Opened, top, barWidth), p.Closed, bar(p.Closed, top, barWidth))
	}
	return tw.Flush()
}

func writeSeries(w io.Writer, series []analyzer.SeriesPoint, width int) {
	top := 0
	for _, p := range series {
		top = max(top, p.Value)
	}
	for _, p := range series {
		fmt.Fprintf(w, "  %s\t%s\t%d\n", p.Label, bar(p.Value, top, width), p.Value)
	}
}

func bar(v, top, width int) string {
	if top <= 0 || v <= 0 {
		return ""
	}
	n := max(v*width/top, 1)
	return strings.Repeat("█", n)
}

func changeText(c float64) string {
	s := strconv.FormatFloat(c, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	if c >= 0 {
		return "+" + s + "%"
	}
	return s + "%"
}

type keyCount struct {
	key   string
	count int
}

func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

// truncateString truncates s to max runes and appends an ellipsis if truncated.
func truncateString(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
