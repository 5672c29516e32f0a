package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/venue-opener/internal/clock"
	"github.com/example/venue-opener/internal/domain/venue"
	"github.com/example/venue-opener/internal/internaltypes"
)

type fakeHours struct {
	hours venue.WeeklyHours
	err   error
	calls int
}

func (f *fakeHours) WeeklyHours(ctx context.Context, venueID string) (venue.WeeklyHours, error) {
	f.calls++
	return f.hours, f.err
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, content string) error {
	f.sent = append(f.sent, content)
	return f.err
}

type fakeCounter struct {
	values map[string]int
	getErr error
	setErr error
	gets   int
	sets   []int
}

func newFakeCounter() *fakeCounter { return &fakeCounter{values: map[string]int{}} }

func (f *fakeCounter) Get(ctx context.Context, venueID string) (int, error) {
	f.gets++
	if f.getErr != nil {
		return 0, f.getErr
	}
	n, ok := f.values[venueID]
	if !ok {
		return 0, internaltypes.ErrNotFound
	}
	return n, nil
}

func (f *fakeCounter) Set(ctx context.Context, venueID string, days int) error {
	f.sets = append(f.sets, days)
	if f.setErr != nil {
		return f.setErr
	}
	f.values[venueID] = days
	return nil
}

type sleepRecorder struct{ calls []time.Duration }

func (s *sleepRecorder) sleep(d time.Duration) { s.calls = append(s.calls, d) }

func testProfile(t *testing.T) venue.Profile {
	t.Helper()
	loc, err := venue.LoadZone("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return venue.Profile{
		ID:             "plaza-bonita",
		Name:           "Round1 Plaza Bonita",
		Location:       loc,
		FallbackOpenAt: &venue.TimeOfDay{Hour: 10},
		FallbackDelay:  3 * time.Minute,
		OpenedOn:       time.Date(2023, 12, 20, 0, 0, 0, 0, loc),
	}
}

type harness struct {
	uc       AnnounceOpening
	hours    *fakeHours
	notifier *fakeNotifier
	counter  *fakeCounter
	sleeper  *sleepRecorder
}

// newHarness runs on Monday 2024-01-01 at the given local time.
func newHarness(t *testing.T, hour, minute int) *harness {
	t.Helper()
	p := testProfile(t)
	h := &harness{
		hours:    &fakeHours{hours: venue.WeeklyHours{"monday": "10am-2am"}},
		notifier: &fakeNotifier{},
		counter:  newFakeCounter(),
		sleeper:  &sleepRecorder{},
	}
	h.uc = AnnounceOpening{
		Profile:  p,
		Hours:    h.hours,
		Notifier: h.notifier,
		Counter:  h.counter,
		Clock:    clock.NewFixed(time.Date(2024, 1, 1, hour, minute, 0, 0, p.Location)),
		Sleep:    h.sleeper.sleep,
		Logger:   zerolog.Nop(),
	}
	return h
}

func TestAnnounceOpening_EndToEnd(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 9, 0)
	h.counter.values["plaza-bonita"] = 7

	res, err := h.uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.State != StateDone || !res.Sent() {
		t.Fatalf("expected done and sent, got %+v", res)
	}
	if res.Decision.Source != venue.SourceHours || res.Decision.Delay != time.Hour {
		t.Fatalf("expected 60m resolved delay, got %+v", res.Decision)
	}
	if len(h.sleeper.calls) != 1 || h.sleeper.calls[0] != time.Hour {
		t.Fatalf("expected one 1h sleep, got %v", h.sleeper.calls)
	}
	if len(h.notifier.sent) != 1 || h.notifier.sent[0] != "Round1 Plaza Bonita Day 7: START" {
		t.Fatalf("unexpected messages %v", h.notifier.sent)
	}
	if len(h.counter.sets) != 1 || h.counter.sets[0] != 8 {
		t.Fatalf("expected a single write of 8, got %v", h.counter.sets)
	}
	if res.RunID == "" {
		t.Fatalf("expected run id")
	}
}

func TestAnnounceOpening_FetchFailureUsesFallback(t *testing.T) {
	t.Parallel()

	t.Run("time of day tier", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, 9, 30)
		h.hours.err = errors.New("http 503")
		h.counter.values["plaza-bonita"] = 7

		res, err := h.uc.Execute(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.FetchErr == nil || res.Decision.Source != venue.SourceFallbackClock || res.Decision.Delay != 30*time.Minute {
			t.Fatalf("expected 30m time-of-day fallback, got %+v", res)
		}
		if len(h.notifier.sent) != 1 || len(h.counter.sets) != 1 {
			t.Fatalf("expected best-effort send and persist, got sent=%v sets=%v", h.notifier.sent, h.counter.sets)
		}
	})

	t.Run("fixed tier", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, 9, 30)
		h.hours.err = errors.New("dial tcp: timeout")
		h.uc.Profile.FallbackOpenAt = nil

		res, err := h.uc.Execute(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Decision.Source != venue.SourceFallbackFixed || res.Decision.Delay != 3*time.Minute {
			t.Fatalf("expected 3m fixed fallback, got %+v", res.Decision)
		}
		if len(h.sleeper.calls) != 1 || h.sleeper.calls[0] != 3*time.Minute {
			t.Fatalf("expected 3m sleep, got %v", h.sleeper.calls)
		}
	})
}

func TestAnnounceOpening_Skips(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		hours venue.WeeklyHours
		want  error
	}{
		{name: "weekday missing", hours: venue.WeeklyHours{"tuesday": "10am-2am"}, want: venue.ErrClosedToday},
		{name: "unparseable", hours: venue.WeeklyHours{"monday": "Closed"}, want: venue.ErrUnparseableHours},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, 9, 0)
			h.hours.hours = tc.hours

			res, err := h.uc.Execute(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if res.State != StateSkipped || !errors.Is(res.SkipErr, tc.want) {
				t.Fatalf("expected skipped with %v, got %+v", tc.want, res)
			}
			if len(h.notifier.sent) != 0 || h.counter.gets != 0 || len(h.counter.sets) != 0 || len(h.sleeper.calls) != 0 {
				t.Fatalf("expected no collaborator calls, got sent=%v gets=%d sets=%v sleeps=%v",
					h.notifier.sent, h.counter.gets, h.counter.sets, h.sleeper.calls)
			}
		})
	}
}

func TestAnnounceOpening_OpeningPassedSendsImmediately(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 10, 10)
	h.counter.values["plaza-bonita"] = 3

	res, err := h.uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Decision.Delay != -10*time.Minute {
		t.Fatalf("expected -10m delay, got %s", res.Decision.Delay)
	}
	if len(h.sleeper.calls) != 0 {
		t.Fatalf("expected no sleep, got %v", h.sleeper.calls)
	}
	if len(h.notifier.sent) != 1 || h.counter.values["plaza-bonita"] != 4 {
		t.Fatalf("expected send and advance to 4, got sent=%v counter=%v", h.notifier.sent, h.counter.values)
	}
}

func TestAnnounceOpening_DispatchFailureStillAdvancesCounter(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 9, 0)
	h.counter.values["plaza-bonita"] = 7
	h.notifier.err = errors.New("webhook 500")

	res, err := h.uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.State != StateDone || res.DispatchErr == nil || res.Sent() {
		t.Fatalf("expected done with dispatch error, got %+v", res)
	}
	if len(h.notifier.sent) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(h.notifier.sent))
	}
	if len(h.counter.sets) != 1 || h.counter.sets[0] != 8 {
		t.Fatalf("expected counter advanced to 8, got %v", h.counter.sets)
	}
	if res.PersistErr != nil {
		t.Fatalf("expected persist to succeed, got %v", res.PersistErr)
	}
}

func TestAnnounceOpening_PersistenceFailures(t *testing.T) {
	t.Parallel()

	t.Run("read failure estimates from opening date", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, 9, 0)
		h.counter.getErr = errors.New("connection refused")

		res, err := h.uc.Execute(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// opened 2023-12-20, today 2024-01-01: 12 days later
		if res.DayNumber != 13 {
			t.Fatalf("expected estimated day 13, got %d", res.DayNumber)
		}
		if len(h.counter.sets) != 1 || h.counter.sets[0] != 14 {
			t.Fatalf("expected write of 14, got %v", h.counter.sets)
		}
	})

	t.Run("missing value estimates from opening date", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, 9, 0)

		res, _ := h.uc.Execute(context.Background())
		if res.DayNumber != 13 || res.Message != "Round1 Plaza Bonita Day 13: START" {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("write failure is reported not raised", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, 9, 0)
		h.counter.values["plaza-bonita"] = 7
		h.counter.setErr = errors.New("read-only")

		res, err := h.uc.Execute(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.State != StateDone || res.PersistErr == nil || !res.Sent() {
			t.Fatalf("expected sent with persist error, got %+v", res)
		}
		if len(h.counter.sets) != 1 {
			t.Fatalf("expected a single write attempt, got %v", h.counter.sets)
		}
	})
}

func TestAnnounceOpening_Plan(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 9, 0)
	h.counter.values["plaza-bonita"] = 7

	res, err := h.uc.Plan(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.State != StateTimeoutDecided || res.Message != "Round1 Plaza Bonita Day 7: START" {
		t.Fatalf("unexpected plan %+v", res)
	}
	if len(h.sleeper.calls) != 0 || len(h.notifier.sent) != 0 || len(h.counter.sets) != 0 {
		t.Fatalf("plan must not wait, send or write")
	}
}

func TestAnnounceOpening_Misconfigured(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 9, 0)
	h.uc.Notifier = nil

	if _, err := h.uc.Execute(context.Background()); err == nil {
		t.Fatalf("expected error for missing notifier")
	}
	if h.hours.calls != 0 {
		t.Fatalf("expected no fetch when misconfigured")
	}
}
