package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solvaholic/gh-issue-dash/internal/analyzer"
	"github.com/solvaholic/gh-issue-dash/internal/output"
)

var trendSource sourceFlags
var trendBucket string
var trendSince string
var trendLabel string
var trendNow string

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show opened and closed issues per day, week or month",
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, err := analyzer.ParseBucket(trendBucket)
		if err != nil {
			return err
		}
		now, err := parseNow(trendNow)
		if err != nil {
			return err
		}
		from, to, err := analyzer.TrendRange(trendSince, bucket, now)
		if err != nil {
			return err
		}

		src, err := trendSource.source(cmd)
		if err != nil {
			return err
		}
		issues, err := src.FetchIssues(cmd.Context())
		if err != nil {
			return err
		}

		var preds []analyzer.Predicate
		if ls := parseLabelSpecs(trendLabel); !ls.empty() {
			preds = append(preds, ls.predicate())
		}
		points := analyzer.Trend(issues, bucket, from, to, preds...)

		w, closeOut, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer closeOut()

		if outputFormat == "json" {
			return output.WriteTrendJSON(w, src.Repository(), bucket, points)
		}
		return output.WriteTrendText(w, points, termWidth(w))
	},
}

func init() {
	trendSource.register(trendCmd)
	trendCmd.Flags().StringVar(&trendBucket, "bucket", string(analyzer.Week), "Bucket size: day, week, month")
	trendCmd.Flags().StringVar(&trendSince, "since", "", "Time range (30d, 2025-01-01..2025-03-31; default: 14 days, 12 weeks or 6 months)")
	trendCmd.Flags().StringVar(&trendLabel, "label", "", "Comma-separated label specs (exact or prefix*)")
	trendCmd.Flags().StringVar(&trendNow, "now", "", "Reference time (RFC3339 or YYYY-MM-DD, default: now)")
	rootCmd.AddCommand(trendCmd)
}
