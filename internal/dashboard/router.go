package dashboard

import (
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/solvaholic/gh-issue-dash/internal/api"
	"github.com/solvaholic/gh-issue-dash/internal/cache"
)

//go:embed templates/*.html
var templateFS embed.FS

// Store is the snapshot holder the handlers read from. *cache.Store satisfies it.
type Store interface {
	Snapshot() (cache.Snapshot, bool)
	Status() cache.Status
	LastError() error
	Refresh(ctx context.Context) (cache.Snapshot, error)
}

// Searcher runs the date-range queries against GitHub. *api.Source satisfies it.
type Searcher interface {
	CreatedBetween(ctx context.Context, start, end time.Time, state string) ([]api.Issue, error)
	ClosedBetween(ctx context.Context, start, end time.Time) ([]api.Issue, error)
}

// Options wires the dashboard server.
type Options struct {
	Repository string
	Store      Store
	Searcher   Searcher
	// Location is where period boundaries are computed. Defaults to time.Local.
	Location *time.Location
	// Now defaults to time.Now.
	Now     func() time.Time
	Release bool
}

// NewRouter builds the gin engine serving the HTML dashboard and JSON API.
func NewRouter(opts Options) *gin.Engine {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http")
	})

	r.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"),
	))

	h := NewHandlers(opts)

	r.GET("/", h.Index)
	r.GET("/healthz", h.Healthz)

	apiGroup := r.Group("/api")
	apiGroup.GET("/metrics", h.Metrics)
	apiGroup.GET("/issues", h.Issues)
	apiGroup.GET("/issues/date-range", h.DateRange)
	apiGroup.GET("/labels", h.Labels)
	apiGroup.GET("/trend", h.Trend)
	apiGroup.POST("/refresh", h.Refresh)

	return r
}

var templateFuncs = template.FuncMap{
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Format("2006-01-02 15:04 MST")
	},
	"pct": func(f float64) string { return formatFloat(f) },
}
