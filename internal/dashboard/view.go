package dashboard

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/solvaholic/gh-issue-dash/internal/analyzer"
	"github.com/solvaholic/gh-issue-dash/internal/api"
)

// Card is one metric tile.
type Card struct {
	Title       string
	Value       int
	Suffix      string
	Description string
	HasChange   bool
	Change      float64
}

// Increase reports whether the change renders as an increase. Zero counts
// as an increase.
func (c Card) Increase() bool { return c.Change >= 0 }

// ChangeText formats the change as "+12.5%" or "-3%".
func (c Card) ChangeText() string {
	sign := ""
	if c.Increase() {
		sign = "+"
	}
	return fmt.Sprintf("%s%s%%", sign, formatFloat(c.Change))
}

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value int
	// Width is the bar length relative to the largest value, in percent.
	Width float64
}

// Chart is a titled bar chart.
type Chart struct {
	Title string
	Color string
	Bars  []Bar
}

// RankRow is one entry of the label ranking.
type RankRow struct {
	Rank   int
	Name   string
	Color  string
	Open   int
	Closed int
	Total  int
}

// Chip is a label filter toggle.
type Chip struct {
	Name        string
	Color       string
	Description string
	Selected    bool
	// Href toggles this label in the current selection.
	Href string
}

// Tab is a period selector entry.
type Tab struct {
	Key    string
	Name   string
	Active bool
	Href   string
}

// View is everything the dashboard template renders.
type View struct {
	Repository string
	Tabs       []Tab
	Chips      []Chip
	ClearHref  string
	AllActive  bool
	Cards      []Card
	Totals     []Card
	Charts     []Chart
	Ranking    []RankRow
	FetchedAt  time.Time
	Error      string
}

// BuildView maps metrics into renderable shapes.
func BuildView(repo string, m analyzer.Metrics, labels []api.Label, selected []string) View {
	v := View{
		Repository: repo,
		Tabs:       buildTabs(m.Period, selected),
		Chips:      buildChips(m.Period, labels, selected),
		ClearHref:  pageHref(m.Period, nil),
		AllActive:  len(selected) == 0,
	}

	desc := "vs " + m.ComparisonLabel
	name := capitalize(m.Period.Name())
	v.Cards = []Card{
		{Title: name + " opened", Value: m.CurrentOpen, Description: desc, HasChange: true, Change: m.OpenChange},
		{Title: name + " closed", Value: m.CurrentClosed, Description: desc, HasChange: true, Change: m.ClosedChange},
	}
	v.Totals = []Card{
		{Title: "Total issues", Value: m.Totals.Total},
		{Title: "Open", Value: m.Totals.Open},
		{Title: "Closed", Value: m.Totals.Closed},
		{Title: "Resolution rate", Value: m.ResolutionRate, Suffix: "%"},
	}

	v.Charts = []Chart{
		{Title: "Opened issues", Color: "blue", Bars: Bars(m.OpenSeries)},
		{Title: "Closed issues", Color: "green", Bars: Bars(m.ClosedSeries)},
	}

	v.Ranking = lo.Map(m.TopLabels, func(s analyzer.LabelStat, i int) RankRow {
		return RankRow{
			Rank:   i + 1,
			Name:   s.Label.Name,
			Color:  colorOrDefault(s.Label.Color),
			Open:   s.Open,
			Closed: s.Closed,
			Total:  s.Total,
		}
	})
	return v
}

// ErrorView is rendered when no snapshot is available.
func ErrorView(repo string, err error) View {
	msg := "Issues have not been loaded yet."
	if err != nil {
		msg = err.Error()
	}
	return View{Repository: repo, Error: msg}
}

// Bars scales a series against its largest value. An all-zero series has
// zero-width bars.
func Bars(series []analyzer.SeriesPoint) []Bar {
	top := lo.MaxBy(series, func(a, b analyzer.SeriesPoint) bool { return a.Value > b.Value })
	return lo.Map(series, func(p analyzer.SeriesPoint, _ int) Bar {
		b := Bar{Label: p.Label, Value: p.Value}
		if top.Value > 0 {
			b.Width = float64(p.Value) / float64(top.Value) * 100
		}
		return b
	})
}

func buildTabs(active analyzer.Period, selected []string) []Tab {
	return lo.Map(analyzer.Periods, func(p analyzer.Period, _ int) Tab {
		return Tab{
			Key:    p.String(),
			Name:   capitalize(p.Name()),
			Active: p == active,
			Href:   pageHref(p, selected),
		}
	})
}

func buildChips(p analyzer.Period, labels []api.Label, selected []string) []Chip {
	return lo.Map(labels, func(l api.Label, _ int) Chip {
		isSelected := lo.ContainsBy(selected, func(s string) bool { return strings.EqualFold(s, l.Name) })
		next := lo.Reject(selected, func(s string, _ int) bool { return strings.EqualFold(s, l.Name) })
		if !isSelected {
			next = append(next, l.Name)
		}
		return Chip{
			Name:        l.Name,
			Color:       colorOrDefault(l.Color),
			Description: lo.Ternary(l.Description != "", l.Description, l.Name),
			Selected:    isSelected,
			Href:        pageHref(p, next),
		}
	})
}

func pageHref(p analyzer.Period, labels []string) string {
	q := url.Values{}
	q.Set("period", p.String())
	for _, l := range labels {
		q.Add("label", l)
	}
	return "/?" + q.Encode()
}

func colorOrDefault(c string) string {
	c = strings.TrimPrefix(c, "#")
	if c == "" {
		return "ededed"
	}
	return c
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}
