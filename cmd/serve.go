package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solvaholic/gh-issue-dash/internal/cache"
	"github.com/solvaholic/gh-issue-dash/internal/dashboard"
)

var serveSource sourceFlags
var serveAddr string
var serveOpen bool
var serveCron string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the issue dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		src, err := serveSource.source(cmd)
		if err != nil {
			return err
		}

		addr := cfg.HTTPAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		spec := cfg.RefreshCron
		if cmd.Flags().Changed("refresh-cron") {
			spec = serveCron
		}

		store := cache.NewStore(src, cache.WithTimeout(cfg.FetchTimeout))
		defer store.Close()

		if spec != "" {
			sched, err := cache.NewScheduler(store, spec, cfg.Location)
			if err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()
			log.Info().Str("schedule", spec).Msg("Scheduled snapshot refresh")
		}

		// the dashboard shows its error state until the first refresh lands
		go func() {
			if _, err := store.Refresh(ctx); err != nil && !errors.Is(err, cache.ErrSuperseded) {
				log.Error().Err(err).Msg("Initial refresh failed")
			}
		}()

		router := dashboard.NewRouter(dashboard.Options{
			Repository: src.Repository(),
			Store:      store,
			Searcher:   src,
			Location:   cfg.Location,
			Release:    cfg.IsProduction(),
		})

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

		url := dashboardURL(ln.Addr())
		log.Info().Str("repo", src.Repository()).Str("url", url).Msg("Serving dashboard")
		if serveOpen {
			if err := browser.OpenURL(url); err != nil {
				log.Warn().Err(err).Msg("Could not open browser")
			}
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(ln) }()

		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down...")
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/"
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "localhost"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("http://%s:%s/", host, port)
}

func init() {
	serveSource.register(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address (default: HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "Open the dashboard in a browser")
	serveCmd.Flags().StringVar(&serveCron, "refresh-cron", "", "Refresh schedule, cron syntax; empty disables (default: REFRESH_CRON)")
	rootCmd.AddCommand(serveCmd)
}
