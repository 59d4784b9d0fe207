package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solvaholic/gh-issue-dash/internal/output"
)

var fetchSource sourceFlags
var fetchFilters filterOptions
var fetchNow string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch list of issues from a repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		now, err := parseNow(fetchNow)
		if err != nil {
			return err
		}
		src, err := fetchSource.source(cmd)
		if err != nil {
			return err
		}

		issues, err := src.FetchIssues(ctx)
		if err != nil {
			return err
		}
		log.Debug().Str("repo", src.Repository()).Int("fetched", len(issues)).Msg("Fetched issues")

		issues, err = filterIssues(issues, fetchFilters, now)
		if err != nil {
			return err
		}

		w, closeOut, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer closeOut()

		if outputFormat == "json" {
			return output.WriteIssuesJSON(w, src.Repository(), issues)
		}
		return output.WriteIssuesText(w, issues, termWidth(w))
	},
}

func init() {
	fetchSource.register(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchFilters.State, "state", "", "Filter by issue state: open, closed, all")
	fetchCmd.Flags().StringVar(&fetchFilters.Labels, "label", "", "Comma-separated label specs (exact or prefix*). Matches issues containing any of these labels")
	fetchCmd.Flags().StringVar(&fetchFilters.Created, "created", "", "Created time range (7d, 2025-01-02, 2025-01-01..2025-01-31)")
	fetchCmd.Flags().StringVar(&fetchFilters.Updated, "updated", "", "Updated time range")
	fetchCmd.Flags().StringVar(&fetchFilters.Closed, "closed", "", "Closed time range")
	fetchCmd.Flags().StringVar(&fetchNow, "now", "", "Reference time for relative ranges (RFC3339 or YYYY-MM-DD)")
}
