package venue

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnparseableHours means the day's text had no recognisable opening hour.
	ErrUnparseableHours = errors.New("unparseable hours text")
	// ErrClosedToday means the hours map had no entry for today's weekday.
	ErrClosedToday = errors.New("no hours listed for today")
)

// WeeklyHours maps a lowercase weekday name to its free-text hours.
type WeeklyHours map[string]string

// Today returns the hours text for the weekday of t.
func (w WeeklyHours) Today(t time.Time) (string, error) {
	text, ok := w[WeekdayKey(t)]
	if !ok {
		return "", fmt.Errorf("%w (%s)", ErrClosedToday, WeekdayKey(t))
	}
	return text, nil
}

// Accepted opening-hour tokens, tried in order: "10AM", then "10 AM".
var openingLayouts = []string{"3PM", "3 PM"}

// ParseOpening resolves the opening instant on today's date from texts like
// "10AM - 2AM", "10am-2am" or "10am to 2am". today's location is kept.
func ParseOpening(text string, today time.Time) (time.Time, error) {
	token := openingToken(text)
	if token == "" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableHours, text)
	}
	upper := strings.ToUpper(token)
	for _, layout := range openingLayouts {
		t, err := time.Parse(layout, upper)
		if err != nil {
			continue
		}
		return time.Date(today.Year(), today.Month(), today.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), today.Location()), nil
	}
	return time.Time{}, fmt.Errorf("%w: opening token %q", ErrUnparseableHours, token)
}

func openingToken(text string) string {
	parts := strings.Split(text, "-")
	if !twoNonEmpty(parts) {
		parts = strings.Split(text, "to")
	}
	return strings.TrimSpace(parts[0])
}

func twoNonEmpty(parts []string) bool {
	if len(parts) != 2 {
		return false
	}
	return strings.TrimSpace(parts[0]) != "" && strings.TrimSpace(parts[1]) != ""
}
