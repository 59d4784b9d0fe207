package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler refreshes a Store on a cron schedule.
type Scheduler struct {
	store *Store
	c     *cron.Cron
}

// NewScheduler registers spec (five-field cron or a descriptor such as
// @hourly) against store. Times are interpreted in loc.
func NewScheduler(store *Store, spec string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))
	s := &Scheduler{store: store, c: c}
	if _, err := c.AddFunc(spec, s.refresh); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() { s.c.Start() }

// Stop halts the schedule and waits for a running refresh to return.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}

// Next returns the next scheduled refresh time.
func (s *Scheduler) Next() time.Time {
	entries := s.c.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) refresh() {
	log.Info().Msg("cron: refreshing snapshot")
	if _, err := s.store.Refresh(context.Background()); err != nil && !errors.Is(err, ErrSuperseded) {
		log.Error().Err(err).Msg("cron: refresh failed")
	}
}
