package venue

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time in the venue's zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q (want HH:MM)", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Profile is the immutable per-venue configuration every computation in
// this package is parameterised by.
type Profile struct {
	ID       string
	Name     string
	Location *time.Location

	// FallbackOpenAt is the assumed opening time when the hours source is
	// unreachable. Nil disables that tier and FallbackDelay is used instead.
	FallbackOpenAt *TimeOfDay
	FallbackDelay  time.Duration

	// OpenedOn is the first day of operation; it reports as day 1.
	OpenedOn time.Time
}

func (p Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("venue id required")
	}
	if p.Name == "" {
		return fmt.Errorf("venue name required")
	}
	if p.Location == nil {
		return fmt.Errorf("venue location required")
	}
	if p.FallbackDelay < 0 {
		return fmt.Errorf("fallback delay must be >= 0")
	}
	if p.OpenedOn.IsZero() {
		return fmt.Errorf("opened-on date required")
	}
	return nil
}

// Message is the announcement text for the given day of operation.
func (p Profile) Message(day int) string {
	return fmt.Sprintf("%s Day %d: START", p.Name, day)
}
