package venue

import (
	"errors"
	"time"
)

// Source records how a Decision's delay was derived.
type Source string

const (
	SourceHours         Source = "resolved-from-hours"
	SourceFallbackFixed Source = "fallback-fixed"
	SourceFallbackClock Source = "fallback-time-of-day"
)

// Decision is how long to wait before announcing. Delay may be negative when
// the target instant has already passed.
type Decision struct {
	Delay  time.Duration
	Source Source
	// Target is the instant waited for. Zero for SourceFallbackFixed.
	Target time.Time
}

// Immediate reports whether no waiting is needed.
func (d Decision) Immediate() bool { return d.Delay <= 0 }

// TimeoutUntil returns the signed delay between now and opening.
func TimeoutUntil(now, opening time.Time) Decision {
	return Decision{Delay: opening.Sub(now), Source: SourceHours, Target: opening}
}

// FallbackTimeout is used when the hours source could not be reached. It
// prefers the configured opening time of day and falls back to the fixed
// delay when none is configured.
func (p Profile) FallbackTimeout(now time.Time) Decision {
	if p.FallbackOpenAt != nil && p.Location != nil {
		local := p.NowIn(now)
		target := p.FallbackOpenAt.On(local)
		return Decision{Delay: target.Sub(local), Source: SourceFallbackClock, Target: target}
	}
	return Decision{Delay: p.FallbackDelay, Source: SourceFallbackFixed}
}

// ResolveTimeout derives today's Decision from a successfully fetched hours
// map. ok is false when nothing should be announced today; err then carries
// ErrClosedToday or ErrUnparseableHours.
func (p Profile) ResolveTimeout(now time.Time, hours WeeklyHours) (d Decision, ok bool, err error) {
	local := p.NowIn(now)
	text, err := hours.Today(local)
	if err != nil {
		return Decision{}, false, err
	}
	opening, err := ParseOpening(text, local)
	if err != nil {
		return Decision{}, false, err
	}
	return TimeoutUntil(local, opening), true, nil
}

// SkipReason classifies a ResolveTimeout error for logs and metrics.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrClosedToday):
		return "closed"
	case errors.Is(err, ErrUnparseableHours):
		return "unparseable"
	default:
		return "unknown"
	}
}
