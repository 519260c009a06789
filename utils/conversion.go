package utils

import (
	"fmt"
	"time"
)

// Boundary formats: calendar dates without time-of-day and clock times
// without timezone offsets.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDate validates and normalizes a "YYYY-MM-DD" calendar date.
func ParseDate(s string) (string, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t.Format(DateLayout), nil
}

// ParseClock validates an "HH:mm" time-of-day and returns minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (want HH:mm): %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Today returns the current calendar date in the boundary format.
func Today() string {
	return time.Now().Format(DateLayout)
}
