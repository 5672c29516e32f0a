// Package scheduler triggers the opening announcement on a cron schedule
// evaluated in the venue's time zone.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/example/venue-opener/internal/application/usecases"
)

type Announcer interface {
	Execute(ctx context.Context) (usecases.Result, error)
}

// Scheduler runs Announcer once per cron tick. A tick that fires while the
// previous run is still waiting for the opening time is skipped.
type Scheduler struct {
	Announcer Announcer
	Spec      string
	Location  *time.Location
	Logger    zerolog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

// Next returns the next scheduled run, or the zero time before Run starts.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Run blocks until ctx is done. A run in progress is not waited for.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.Announcer == nil {
		return fmt.Errorf("scheduler: announcer is nil")
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	log := s.Logger.With().Str("component", "scheduler").Logger()
	cronLog := cron.PrintfLogger(&log)

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	id, err := c.AddFunc(s.Spec, func() { s.tick(ctx, log) })
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", s.Spec, err)
	}

	s.mu.Lock()
	s.cron, s.entryID = c, id
	s.mu.Unlock()

	c.Start()
	log.Info().Str("schedule", s.Spec).Str("tz", loc.String()).Time("next_run", s.Next()).Msg("scheduler started")

	<-ctx.Done()
	c.Stop()
	log.Info().Msg("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) tick(ctx context.Context, log zerolog.Logger) {
	if ctx.Err() != nil {
		return
	}
	res, err := s.Announcer.Execute(ctx)
	if err != nil {
		log.Error().Err(err).Msg("announcement run failed")
		return
	}
	log.Info().Str("run_id", res.RunID).Str("state", string(res.State)).Bool("sent", res.Sent()).
		Time("next_run", s.Next()).Msg("announcement run finished")
}

// NextRun reports when spec fires next after from, in loc.
func NextRun(spec string, loc *time.Location, from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from.In(loc)), nil
}
