package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/venue-opener/internal/clock"
	"github.com/example/venue-opener/internal/domain/venue"
	"github.com/example/venue-opener/internal/internaltypes"
	"github.com/example/venue-opener/internal/telemetry"
)

type HoursSource interface {
	WeeklyHours(ctx context.Context, venueID string) (venue.WeeklyHours, error)
}

type Notifier interface {
	Send(ctx context.Context, content string) error
}

// CounterStore persists the day number to announce next. Get returns
// internaltypes.ErrNotFound when nothing is stored yet.
type CounterStore interface {
	Get(ctx context.Context, venueID string) (int, error)
	Set(ctx context.Context, venueID string, days int) error
}

type State string

const (
	StateFetching       State = "fetching"
	StateTimeoutDecided State = "timeout_decided"
	StateWaiting        State = "waiting"
	StateSending        State = "sending"
	StatePersisting     State = "persisting"
	StateDone           State = "done"
	StateSkipped        State = "skipped"
)

// Result describes how one run ended.
type Result struct {
	RunID    string
	State    State
	Decision venue.Decision
	// FetchErr is set when the fallback timeout was used.
	FetchErr error
	// SkipErr is set when State is StateSkipped.
	SkipErr     error
	DayNumber   int
	Message     string
	DispatchErr error
	PersistErr  error
}

func (r Result) Sent() bool {
	return r.State == StateDone && r.DispatchErr == nil && r.Message != ""
}

// AnnounceOpening waits until the venue opens, then posts the day-of-operation
// message and advances the stored counter. Only a misconfigured use case
// returns an error; collaborator failures are logged and reported in Result.
type AnnounceOpening struct {
	Profile  venue.Profile
	Hours    HoursSource
	Notifier Notifier
	Counter  CounterStore
	Clock    clock.Clock
	// Sleep blocks for d. It is not cancellable; defaults to time.Sleep.
	Sleep  func(d time.Duration)
	Logger zerolog.Logger
}

func (u AnnounceOpening) validate() error {
	if u.Hours == nil {
		return fmt.Errorf("hours source is nil")
	}
	if u.Notifier == nil {
		return fmt.Errorf("notifier is nil")
	}
	if u.Counter == nil {
		return fmt.Errorf("counter store is nil")
	}
	return u.Profile.Validate()
}

func (u AnnounceOpening) now() time.Time {
	if u.Clock == nil {
		return u.Profile.NowIn(time.Now())
	}
	return u.Profile.NowIn(u.Clock.Now())
}

// Execute runs fetch, decide, wait, send and persist once.
func (u AnnounceOpening) Execute(ctx context.Context) (Result, error) {
	res, log, err := u.decide(ctx)
	if err != nil || res.State == StateSkipped {
		return res, err
	}

	res.State = StateWaiting
	if !res.Decision.Immediate() {
		log.Info().Dur("delay", res.Decision.Delay).Time("until", res.Decision.Target).Msg("waiting for opening")
		sleep := u.Sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		sleep(res.Decision.Delay)
	}

	res.State = StateSending
	res.DayNumber = u.dayNumber(ctx, log)
	res.Message = u.Profile.Message(res.DayNumber)
	// Delivery is at most once. A failed send still advances the counter so
	// the day number keeps tracking the calendar.
	if err := u.Notifier.Send(ctx, res.Message); err != nil {
		res.DispatchErr = err
		telemetry.RunsTotal.WithLabelValues("dispatch_failed").Inc()
		log.Error().Err(err).Int("day", res.DayNumber).Msg("announcement not delivered")
	} else {
		telemetry.RunsTotal.WithLabelValues("sent").Inc()
		telemetry.MarkNotified(u.now(), res.DayNumber)
		log.Info().Int("day", res.DayNumber).Str("message", res.Message).Msg("announcement sent")
	}

	res.State = StatePersisting
	next := res.DayNumber + 1
	if err := u.Counter.Set(ctx, u.Profile.ID, next); err != nil {
		res.PersistErr = err
		telemetry.PersistFailuresTotal.WithLabelValues("write").Inc()
		log.Error().Err(err).Int("next_day", next).Msg("could not persist day counter")
	} else {
		log.Debug().Int("next_day", next).Msg("day counter advanced")
	}

	res.State = StateDone
	return res, nil
}

// Plan runs only the fetch and decide steps and previews the message without
// waiting, sending or writing anything.
func (u AnnounceOpening) Plan(ctx context.Context) (Result, error) {
	res, log, err := u.decide(ctx)
	if err != nil || res.State == StateSkipped {
		return res, err
	}
	res.DayNumber = u.dayNumber(ctx, log)
	res.Message = u.Profile.Message(res.DayNumber)
	return res, nil
}

func (u AnnounceOpening) decide(ctx context.Context) (Result, zerolog.Logger, error) {
	res := Result{RunID: uuid.NewString(), State: StateFetching}
	log := u.Logger.With().Str("run_id", res.RunID).Str("venue_id", u.Profile.ID).Logger()
	if err := u.validate(); err != nil {
		return res, log, fmt.Errorf("announce opening: %w", err)
	}

	now := u.now()
	hours, err := u.Hours.WeeklyHours(ctx, u.Profile.ID)
	if err != nil {
		res.FetchErr = err
		res.Decision = u.Profile.FallbackTimeout(now)
		telemetry.FetchFailuresTotal.Inc()
		log.Warn().Err(err).Str("source", string(res.Decision.Source)).Dur("delay", res.Decision.Delay).
			Msg("hours unavailable, using fallback timeout")
	} else {
		d, ok, err := u.Profile.ResolveTimeout(now, hours)
		if !ok {
			res.State = StateSkipped
			res.SkipErr = err
			reason := venue.SkipReason(err)
			telemetry.RunsTotal.WithLabelValues("skipped").Inc()
			telemetry.SkipsTotal.WithLabelValues(reason).Inc()
			log.Warn().Err(err).Str("reason", reason).Str("weekday", venue.WeekdayKey(now)).
				Msg("no opening time today, nothing announced")
			return res, log, nil
		}
		res.Decision = d
	}

	res.State = StateTimeoutDecided
	telemetry.ObserveDelay(string(res.Decision.Source), res.Decision.Delay)
	log.Debug().Str("source", string(res.Decision.Source)).Dur("delay", res.Decision.Delay).Msg("timeout decided")
	return res, log, nil
}

func (u AnnounceOpening) dayNumber(ctx context.Context, log zerolog.Logger) int {
	var persisted *int
	n, err := u.Counter.Get(ctx, u.Profile.ID)
	switch {
	case err == nil:
		persisted = &n
	case errors.Is(err, internaltypes.ErrNotFound):
		log.Info().Msg("no stored day counter, estimating from opening date")
	default:
		telemetry.PersistFailuresTotal.WithLabelValues("read").Inc()
		log.Warn().Err(err).Msg("could not read day counter, estimating from opening date")
	}
	return u.Profile.DayNumber(persisted, u.now())
}
