package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvaholic/gh-issue-dash/internal/api"
)

type fakeFetcher struct {
	mu        sync.Mutex
	issues    []api.Issue
	labels    []api.Label
	issuesErr error
	labelsErr error
	// block, when set, makes FetchIssues wait for release or cancellation.
	block   chan struct{}
	started chan struct{}
	calls   int
}

func (f *fakeFetcher) FetchIssues(ctx context.Context) ([]api.Issue, error) {
	f.mu.Lock()
	f.calls++
	block, started := f.block, f.started
	issues, err := f.issues, f.issuesErr
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return issues, err
}

func (f *fakeFetcher) FetchLabels(ctx context.Context) ([]api.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.labels, f.labelsErr
}

func (f *fakeFetcher) Repository() string { return "o/r" }

var fixedNow = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func TestStore_EmptyBeforeRefresh(t *testing.T) {
	s := NewStore(&fakeFetcher{})

	_, ok := s.Snapshot()
	assert.False(t, ok)
	assert.False(t, s.Status().Loaded)
	assert.NoError(t, s.LastError())
}

func TestStore_RefreshStoresSnapshot(t *testing.T) {
	f := &fakeFetcher{
		issues: []api.Issue{{Number: 1}, {Number: 2}},
		labels: []api.Label{{Name: "bug"}},
	}
	s := NewStore(f, WithClock(func() time.Time { return fixedNow }))

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o/r", snap.Repository)
	assert.Len(t, snap.Issues, 2)
	assert.Len(t, snap.Labels, 1)
	assert.Equal(t, fixedNow, snap.FetchedAt)

	got, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, snap, got)

	st := s.Status()
	assert.True(t, st.Loaded)
	assert.False(t, st.Refreshing)
	assert.Equal(t, 2, st.Issues)
	assert.Equal(t, 1, st.Labels)
}

func TestStore_FailureKeepsPreviousSnapshot(t *testing.T) {
	f := &fakeFetcher{issues: []api.Issue{{Number: 1}}}
	s := NewStore(f, WithClock(func() time.Time { return fixedNow }))
	_, err := s.Refresh(context.Background())
	require.NoError(t, err)

	fetchErr := &api.FetchError{Kind: api.KindAPI, Op: "list labels", StatusCode: 502, Err: errors.New("bad gateway")}
	f.mu.Lock()
	f.issues = nil
	f.labelsErr = fetchErr
	f.mu.Unlock()

	_, err = s.Refresh(context.Background())
	require.Error(t, err)
	var fe *api.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, api.KindAPI, fe.Kind)

	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Len(t, snap.Issues, 1)
	assert.ErrorIs(t, s.LastError(), fetchErr)
	assert.Equal(t, fixedNow, s.Status().FailedAt)
	assert.NotEmpty(t, s.Status().LastError)

	// a later success clears the error
	f.mu.Lock()
	f.labelsErr = nil
	f.mu.Unlock()
	_, err = s.Refresh(context.Background())
	require.NoError(t, err)
	assert.NoError(t, s.LastError())
}

func TestStore_NewRefreshSupersedesInFlight(t *testing.T) {
	f := &fakeFetcher{
		issues:  []api.Issue{{Number: 7}},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := NewStore(f)

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		firstErr <- err
	}()
	<-f.started
	assert.True(t, s.Status().Refreshing)

	// the second refresh does not block
	f.mu.Lock()
	f.block = nil
	f.started = nil
	f.mu.Unlock()

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Issues, 1)

	err = <-firstErr
	require.ErrorIs(t, err, ErrSuperseded)
	assert.NoError(t, s.LastError(), "a superseded refresh is not a failure")
	assert.False(t, s.Status().Refreshing)
	assert.Equal(t, 2, f.calls)
}

func TestStore_Timeout(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{})}
	s := NewStore(f, WithTimeout(10*time.Millisecond))

	_, err := s.Refresh(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Error(t, s.LastError())
	_, ok := s.Snapshot()
	assert.False(t, ok)
}

func TestStore_CloseCancelsInFlight(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewStore(f)

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		done <- err
	}()
	<-f.started
	s.Close()

	require.ErrorIs(t, <-done, context.Canceled)
}
