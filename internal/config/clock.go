package config

import (
	"fmt"
	"time"
)

// ClockTime is a wall-clock time of day with minute precision, e.g. 09:15.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" in 24-hour notation.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Offset returns the duration since midnight.
func (c ClockTime) Offset() time.Duration {
	return time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute
}

// On returns the instant this clock time falls on for the calendar day of
// date, in loc.
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, 0, 0, loc)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
