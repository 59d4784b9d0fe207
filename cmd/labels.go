package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solvaholic/gh-issue-dash/internal/output"
)

var labelsSource sourceFlags

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List the labels of a repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := labelsSource.source(cmd)
		if err != nil {
			return err
		}
		labels, err := src.FetchLabels(cmd.Context())
		if err != nil {
			return err
		}

		w, closeOut, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer closeOut()

		if outputFormat == "json" {
			return output.WriteLabelsJSON(w, src.Repository(), labels)
		}
		return output.WriteLabelsText(w, labels)
	},
}

func init() {
	labelsSource.register(labelsCmd)
	rootCmd.AddCommand(labelsCmd)
}
