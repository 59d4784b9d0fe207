package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/solvaholic/gh-issue-dash/internal/api"
)

// ErrSuperseded is returned by a refresh that was cancelled because a newer
// one started.
var ErrSuperseded = errors.New("refresh superseded")

// Fetcher is the data source a Store refreshes from. *api.Source satisfies it.
type Fetcher interface {
	FetchIssues(ctx context.Context) ([]api.Issue, error)
	FetchLabels(ctx context.Context) ([]api.Label, error)
	Repository() string
}

// Snapshot is one successfully fetched view of the repository. Callers must
// treat the slices as read-only.
type Snapshot struct {
	Repository string      `json:"repository"`
	Issues     []api.Issue `json:"issues"`
	Labels     []api.Label `json:"labels"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

// Status describes the store for health checks and the dashboard header.
type Status struct {
	Loaded     bool      `json:"loaded"`
	FetchedAt  time.Time `json:"fetched_at,omitempty"`
	Issues     int       `json:"issues"`
	Labels     int       `json:"labels"`
	Refreshing bool      `json:"refreshing"`
	LastError  string    `json:"last_error,omitempty"`
	FailedAt   time.Time `json:"failed_at,omitempty"`
}

// Store holds the latest snapshot. A new Refresh cancels any refresh still
// in flight; whichever refresh completes last wins. Failed refreshes leave
// the previous snapshot in place.
type Store struct {
	fetcher Fetcher
	timeout time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	snap     *Snapshot
	lastErr  error
	failedAt time.Time
	gen      uint64
	cancel   context.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout bounds each refresh.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithClock replaces time.Now for FetchedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store reading from f.
func NewStore(f Fetcher, opts ...Option) *Store {
	s := &Store{fetcher: f, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns the latest snapshot, if any refresh has succeeded.
func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return Snapshot{}, false
	}
	return *s.snap, true
}

// LastError returns the error of the most recent failed refresh, cleared by
// the next successful one.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Status reports the current state of the store.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{Refreshing: s.cancel != nil, FailedAt: s.failedAt}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.snap != nil {
		st.Loaded = true
		st.FetchedAt = s.snap.FetchedAt
		st.Issues = len(s.snap.Issues)
		st.Labels = len(s.snap.Labels)
	}
	return st
}

// Refresh fetches issues and labels concurrently and replaces the snapshot.
// It is never retried here; callers decide whether to trigger another one.
func (s *Store) Refresh(ctx context.Context) (Snapshot, error) {
	rctx, cancel := context.WithCancel(ctx)
	if s.timeout > 0 {
		var tcancel context.CancelFunc
		rctx, tcancel = context.WithTimeout(rctx, s.timeout)
		inner := cancel
		cancel = func() { tcancel(); inner() }
	}
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	repo := s.fetcher.Repository()
	log.Debug().Str("repo", repo).Uint64("generation", gen).Msg("Refreshing snapshot")

	var issues []api.Issue
	var labels []api.Label
	g, gctx := errgroup.WithContext(rctx)
	g.Go(func() error {
		var err error
		issues, err = s.fetcher.FetchIssues(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		labels, err = s.fetcher.FetchLabels(gctx)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	superseded := s.gen != gen
	if !superseded {
		s.cancel = nil
	}

	if err != nil {
		if superseded && ctx.Err() == nil && errors.Is(rctx.Err(), context.Canceled) {
			log.Debug().Uint64("generation", gen).Msg("Refresh superseded")
			return Snapshot{}, fmt.Errorf("%w: %v", ErrSuperseded, err)
		}
		s.lastErr = err
		s.failedAt = s.now()
		log.Warn().Err(err).Str("repo", repo).Msg("Refresh failed, keeping previous snapshot")
		return Snapshot{}, err
	}

	snap := &Snapshot{
		Repository: repo,
		Issues:     issues,
		Labels:     labels,
		FetchedAt:  s.now(),
	}
	s.snap = snap
	s.lastErr = nil
	s.failedAt = time.Time{}
	log.Info().Str("repo", repo).Int("issues", len(issues)).Int("labels", len(labels)).Msg("Snapshot refreshed")
	return *snap, nil
}

// Close cancels any refresh in flight.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
