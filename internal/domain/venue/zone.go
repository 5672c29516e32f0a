package venue

import (
	"fmt"
	"time"
)

// LoadZone resolves an IANA zone name. A failure here means the host has no
// usable tz database, which callers treat as fatal.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("timezone required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// NowIn returns now expressed in the venue's civil zone. All scheduling
// arithmetic uses this rather than the process-local zone.
func (p Profile) NowIn(now time.Time) time.Time {
	return now.In(p.Location)
}

// WeekdayKey is the lowercase weekday name used by the hours source.
func WeekdayKey(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}
