package venue

import "time"

// DayNumber is the day of operation to announce today. A persisted value
// wins; otherwise it is estimated from OpenedOn so that OpenedOn itself is
// day 1.
func (p Profile) DayNumber(persisted *int, now time.Time) int {
	if persisted != nil {
		return *persisted
	}
	return p.EstimateDayNumber(now)
}

// EstimateDayNumber depends only on the civil date of now in the venue's zone:
// whole calendar days since OpenedOn, plus one. The time of day never rounds
// the count up.
func (p Profile) EstimateDayNumber(now time.Time) int {
	today := civilDate(p.NowIn(now))
	opened := civilDate(p.OpenedOn.In(p.Location))
	n := int(today.Sub(opened)/(24*time.Hour)) + 1
	if n < 1 {
		return 1
	}
	return n
}

// civilDate drops the clock and zone so date differences are whole days even
// across DST transitions.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
