package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/solvaholic/gh-issue-dash/internal/api"
	"github.com/solvaholic/gh-issue-dash/internal/config"
	"github.com/solvaholic/gh-issue-dash/internal/logging"
	"github.com/solvaholic/gh-issue-dash/internal/output"
	"github.com/solvaholic/gh-issue-dash/internal/util"
)

var outputFormat string
var outputFile string
var verbose bool
var configPath string

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "issue-dash",
	Short:         "Analyze GitHub issues over time",
	Long:          "issue-dash: period metrics, label rankings and a web dashboard for the issues of one GitHub repository (gh extension)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		if err := logging.Init(logging.Options{Verbose: verbose, Dir: cfg.LogDir, JSON: cfg.IsProduction()}); err != nil {
			return err
		}
		switch outputFormat {
		case "text", "json":
		default:
			return fmt.Errorf("unsupported format %q (want text or json)", outputFormat)
		}
		return nil
	},
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $ISSUEDASH_CONFIG)")

	rootCmd.AddCommand(fetchCmd)
}

// sourceFlags are the repository selection flags shared by data commands.
type sourceFlags struct {
	repo       string
	limit      int
	includePRs bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.repo, "repo", "", "Repository as owner/repo or URL (default: config, GH_REPO, then current repo)")
	cmd.Flags().IntVar(&f.limit, "limit", 100, "Maximum number of issues to fetch (default: ISSUE_LIMIT)")
	cmd.Flags().BoolVar(&f.includePRs, "include-prs", false, "Include pull requests in results")
}

// source resolves the repository and builds a GitHub source. Flags the user
// set win over configuration.
func (f *sourceFlags) source(cmd *cobra.Command) (*api.Source, error) {
	repo, err := util.DetectRepo(f.repo, cfg.Repo, ".")
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(api.Options{
		Host:     cfg.Host,
		Token:    cfg.Token,
		Timeout:  cfg.FetchTimeout,
		Attempts: cfg.FetchAttempts,
	})
	if err != nil {
		return nil, err
	}
	opts := api.ListOptions{Limit: cfg.IssueLimit, IncludePRs: cfg.IncludePRs}
	if cmd.Flags().Changed("limit") {
		opts.Limit = f.limit
	}
	if cmd.Flags().Changed("include-prs") {
		opts.IncludePRs = f.includePRs
	}
	return api.NewSource(client, repo, opts), nil
}

// openOutput returns the writer selected by --output and a func to close it.
func openOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outputFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// termWidth is the terminal width of w, or the default for pipes and files.
func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return output.DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return output.DefaultWidth
	}
	return width
}

// parseNow resolves the --now flag: RFC3339 or YYYY-MM-DD, in the configured
// location. Empty means the current time.
func parseNow(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().In(cfg.Location), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(cfg.Location), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, cfg.Location); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --now %q: want RFC3339 or YYYY-MM-DD", raw)
}
