package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/venue-opener/internal/clock"
	"github.com/example/venue-opener/internal/domain/venue"
	"github.com/example/venue-opener/internal/internaltypes"
)

// CounterStatus is what an operator sees for the day counter.
type CounterStatus struct {
	VenueID   string `json:"venue_id"`
	Persisted *int   `json:"persisted"`
	Estimate  int    `json:"estimate"`
	// Next is the day number the next announcement will use.
	Next int `json:"next"`
}

type CounterAdmin struct {
	Profile venue.Profile
	Counter CounterStore
	Clock   clock.Clock
}

func (u CounterAdmin) Status(ctx context.Context) (CounterStatus, error) {
	if u.Counter == nil {
		return CounterStatus{}, fmt.Errorf("counter store is nil")
	}
	now := time.Now()
	if u.Clock != nil {
		now = u.Clock.Now()
	}
	st := CounterStatus{VenueID: u.Profile.ID, Estimate: u.Profile.EstimateDayNumber(now)}
	n, err := u.Counter.Get(ctx, u.Profile.ID)
	switch {
	case err == nil:
		st.Persisted = &n
	case errors.Is(err, internaltypes.ErrNotFound):
	default:
		return CounterStatus{}, fmt.Errorf("read counter: %w", err)
	}
	st.Next = u.Profile.DayNumber(st.Persisted, now)
	return st, nil
}

// Override replaces the stored day number, e.g. to resync after a missed
// write.
func (u CounterAdmin) Override(ctx context.Context, days int) error {
	if u.Counter == nil {
		return fmt.Errorf("counter store is nil")
	}
	if days < 0 {
		return fmt.Errorf("days must be >= 0 (got %d)", days)
	}
	if err := u.Counter.Set(ctx, u.Profile.ID, days); err != nil {
		return fmt.Errorf("write counter: %w", err)
	}
	return nil
}
