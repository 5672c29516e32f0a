package venue

import (
	"errors"
	"testing"
	"time"
)

func testProfile(t *testing.T) Profile {
	t.Helper()
	loc := mustZone(t)
	return Profile{
		ID:             "plaza-bonita",
		Name:           "Round1 Plaza Bonita",
		Location:       loc,
		FallbackOpenAt: &TimeOfDay{Hour: 10},
		FallbackDelay:  3 * time.Minute,
		OpenedOn:       time.Date(2023, 12, 27, 0, 0, 0, 0, loc),
	}
}

func TestTimeoutUntil(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	ahead := TimeoutUntil(now, now.Add(90*time.Minute))
	if ahead.Delay <= 89*time.Minute || ahead.Delay > 90*time.Minute {
		t.Fatalf("expected ~90m, got %s", ahead.Delay)
	}
	if ahead.Source != SourceHours || ahead.Immediate() {
		t.Fatalf("unexpected decision %+v", ahead)
	}

	behind := TimeoutUntil(now, now.Add(-10*time.Minute))
	if behind.Delay >= 0 {
		t.Fatalf("expected negative delay, got %s", behind.Delay)
	}
	if !behind.Immediate() {
		t.Fatalf("expected past opening to be immediate")
	}
}

func TestFallbackTimeout(t *testing.T) {
	t.Parallel()
	p := testProfile(t)

	t.Run("uses opening time of day in venue zone", func(t *testing.T) {
		// 17:00 UTC is 09:00 in Los Angeles in January.
		now := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)
		d := p.FallbackTimeout(now)
		if d.Source != SourceFallbackClock {
			t.Fatalf("expected %s, got %s", SourceFallbackClock, d.Source)
		}
		if d.Delay != time.Hour {
			t.Fatalf("expected 1h, got %s", d.Delay)
		}
	})

	t.Run("falls back to fixed delay without a time of day", func(t *testing.T) {
		p := p
		p.FallbackOpenAt = nil
		d := p.FallbackTimeout(time.Now())
		if d.Source != SourceFallbackFixed || d.Delay != 3*time.Minute {
			t.Fatalf("unexpected decision %+v", d)
		}
	})
}

func TestResolveTimeout(t *testing.T) {
	t.Parallel()
	p := testProfile(t)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, p.Location)

	d, ok, err := p.ResolveTimeout(now, WeeklyHours{"monday": "10am-2am"})
	if err != nil || !ok {
		t.Fatalf("expected decision, got ok=%v err=%v", ok, err)
	}
	if d.Delay != time.Hour || d.Source != SourceHours {
		t.Fatalf("unexpected decision %+v", d)
	}

	_, ok, err = p.ResolveTimeout(now, WeeklyHours{"tuesday": "10am-2am"})
	if ok || !errors.Is(err, ErrClosedToday) || SkipReason(err) != "closed" {
		t.Fatalf("expected closed skip, got ok=%v err=%v", ok, err)
	}

	_, ok, err = p.ResolveTimeout(now, WeeklyHours{"monday": "Closed"})
	if ok || !errors.Is(err, ErrUnparseableHours) || SkipReason(err) != "unparseable" {
		t.Fatalf("expected unparseable skip, got ok=%v err=%v", ok, err)
	}
}
