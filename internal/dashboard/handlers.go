package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/solvaholic/gh-issue-dash/internal/analyzer"
	"github.com/solvaholic/gh-issue-dash/internal/api"
	"github.com/solvaholic/gh-issue-dash/internal/cache"
)

var errNoSnapshot = errors.New("issues have not been loaded yet")

// Handlers serves the dashboard routes.
type Handlers struct {
	repo     string
	store    Store
	searcher Searcher
	loc      *time.Location
	now      func() time.Time
}

// NewHandlers returns handlers for opts, filling in defaults.
func NewHandlers(opts Options) *Handlers {
	h := &Handlers{
		repo:     opts.Repository,
		store:    opts.Store,
		searcher: opts.Searcher,
		loc:      opts.Location,
		now:      opts.Now,
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

func (h *Handlers) clock() time.Time {
	return h.now().In(h.loc)
}

// Healthz reports liveness and the snapshot status.
func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "repository": h.repo, "snapshot": h.store.Status()})
}

// Index renders the HTML dashboard, or its error state when there is no
// snapshot to aggregate.
func (h *Handlers) Index(c *gin.Context) {
	snap, ok := h.store.Snapshot()
	if !ok {
		err := h.store.LastError()
		if err == nil {
			err = errNoSnapshot
		}
		c.HTML(http.StatusServiceUnavailable, "dashboard.html", ErrorView(h.repo, err))
		return
	}

	// unknown periods fall back to this week
	p, err := analyzer.ParsePeriod(c.DefaultQuery("period", analyzer.ThisWeek.String()))
	if err != nil {
		p = analyzer.ThisWeek
	}
	selected := queryLabels(c)

	m := analyzer.Aggregate(snap.Issues, p, selected, h.clock())
	v := BuildView(snap.Repository, m, snap.Labels, selected)
	v.FetchedAt = snap.FetchedAt
	if err := h.store.LastError(); err != nil {
		v.Error = "Last refresh failed: " + err.Error()
	}
	c.HTML(http.StatusOK, "dashboard.html", v)
}

// Metrics returns the aggregated metrics of a period as JSON.
func (h *Handlers) Metrics(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	p, err := analyzer.ParsePeriod(c.DefaultQuery("period", analyzer.ThisWeek.String()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now := h.clock()
	if raw := c.Query("now"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid now: want RFC3339"})
			return
		}
		now = t.In(h.loc)
	}

	m := analyzer.Aggregate(snap.Issues, p, queryLabels(c), now)
	c.JSON(http.StatusOK, gin.H{"repository": snap.Repository, "metrics": m})
}

// Issues lists the snapshot's issues, filtered by state and labels.
func (h *Handlers) Issues(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	issues := snap.Issues
	switch state := strings.ToLower(c.DefaultQuery("state", "all")); state {
	case "all":
	case string(api.StateOpen), string(api.StateClosed):
		issues = analyzer.ByState(issues, api.State(state))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state: want open, closed or all"})
		return
	}
	if labels := queryLabels(c); len(labels) > 0 {
		issues = analyzer.ByLabels(issues, labels)
	}
	c.JSON(http.StatusOK, gin.H{
		"repository": snap.Repository,
		"fetched_at": snap.FetchedAt,
		"count":      len(issues),
		"issues":     nonNil(issues),
	})
}

// Labels lists the repository labels from the snapshot.
func (h *Handlers) Labels(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"repository": snap.Repository, "labels": nonNil(snap.Labels)})
}

// DateRange queries GitHub directly: state closed searches by closure date,
// open and all by creation date.
func (h *Handlers) DateRange(c *gin.Context) {
	startRaw, endRaw := c.Query("startDate"), c.Query("endDate")
	if startRaw == "" || endRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameters: startDate, endDate"})
		return
	}
	start, err := analyzer.ParseDate(startRaw, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate: want YYYY-MM-DD"})
		return
	}
	end, err := analyzer.ParseDate(endRaw, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate: want YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate is before startDate"})
		return
	}
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	state := strings.ToLower(c.DefaultQuery("state", "open"))
	var issues []api.Issue
	switch state {
	case "closed":
		issues, err = h.searcher.ClosedBetween(c.Request.Context(), start, end)
	case "open", "all":
		issues, err = h.searcher.CreatedBetween(c.Request.Context(), start, end, state)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state: want open, closed or all"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("start", startRaw).Str("end", endRaw).Str("state", state).Msg("date range search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"repository": h.repo, "count": len(issues), "issues": nonNil(issues)})
}

// Trend returns opened and closed counts per bucket.
func (h *Handlers) Trend(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	bucket, err := analyzer.ParseBucket(c.DefaultQuery("bucket", string(analyzer.Week)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, to, err := analyzer.TrendRange(c.Query("since"), bucket, h.clock())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var preds []analyzer.Predicate
	if labels := queryLabels(c); len(labels) > 0 {
		preds = append(preds, analyzer.HasAnyLabel(labels))
	}
	points := analyzer.Trend(snap.Issues, bucket, from, to, preds...)
	c.JSON(http.StatusOK, gin.H{"repository": snap.Repository, "bucket": bucket, "points": nonNil(points)})
}

// Refresh starts a refresh in the background, superseding any in flight.
func (h *Handlers) Refresh(c *gin.Context) {
	go func() {
		if _, err := h.store.Refresh(context.Background()); err != nil && !errors.Is(err, cache.ErrSuperseded) {
			log.Error().Err(err).Msg("manual refresh failed")
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// snapshot writes a 503 and reports false when nothing has been loaded.
func (h *Handlers) snapshot(c *gin.Context) (cache.Snapshot, bool) {
	snap, ok := h.store.Snapshot()
	if ok {
		return snap, true
	}
	msg := errNoSnapshot.Error()
	if err := h.store.LastError(); err != nil {
		msg = err.Error()
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": msg})
	return cache.Snapshot{}, false
}

// queryLabels accepts repeated and comma-separated label parameters.
func queryLabels(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("label") {
		for _, l := range strings.Split(raw, ",") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
