package cmd

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solvaholic/gh-issue-dash/internal/analyzer"
	"github.com/solvaholic/gh-issue-dash/internal/cache"
	"github.com/solvaholic/gh-issue-dash/internal/output"
)

var metricsSource sourceFlags
var metricsPeriod string
var metricsLabel string
var metricsNow string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show period metrics, comparison and top labels",
	Long: `Show opened and closed counts for a period compared with the one before,
the resolution rate and the five most used labels among issues opened in the period.

Periods: today, this-week, this-month, last-month, two-months-ago.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := analyzer.ParsePeriod(metricsPeriod)
		if err != nil {
			return err
		}
		now, err := parseNow(metricsNow)
		if err != nil {
			return err
		}
		src, err := metricsSource.source(cmd)
		if err != nil {
			return err
		}

		store := cache.NewStore(src, cache.WithTimeout(cfg.FetchTimeout))
		snap, err := store.Refresh(cmd.Context())
		if err != nil {
			return err
		}

		selected, unmatched := expandLabelSpecs(metricsLabel, snap.Labels)
		if len(unmatched) > 0 {
			log.Warn().Str("specs", strings.Join(unmatched, ",")).Msg("Label specs matched no repository label")
			if len(selected) == 0 {
				// keep the filter non-empty so it matches nothing rather than everything
				selected = unmatched
			}
		}

		m := analyzer.Aggregate(snap.Issues, period, selected, now)
		summary := analyzer.Summarize(analyzer.ByLabels(snap.Issues, selected))

		w, closeOut, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer closeOut()

		if outputFormat == "json" {
			return output.WriteMetricsJSON(w, snap.Repository, m, summary)
		}
		return output.WriteMetricsText(w, snap.Repository, m, summary, termWidth(w))
	},
}

func init() {
	metricsSource.register(metricsCmd)
	metricsCmd.Flags().StringVar(&metricsPeriod, "period", analyzer.ThisWeek.String(), "Period: today, this-week, this-month, last-month, two-months-ago")
	metricsCmd.Flags().StringVar(&metricsLabel, "label", "", "Comma-separated label specs (exact or prefix*) to filter counts by")
	metricsCmd.Flags().StringVar(&metricsNow, "now", "", "Reference time (RFC3339 or YYYY-MM-DD, default: now)")
	rootCmd.AddCommand(metricsCmd)
}
