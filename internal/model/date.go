package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for booking dates.
const DateLayout = "2006-01-02"

// ParseDate validates a plain YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as a plain YYYY-MM-DD date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayOf returns the weekday (0=Sunday .. 6=Saturday) of a date string.
// The date must already be validated.
func WeekdayOf(date string) int {
	t, _ := time.Parse(DateLayout, date)
	return int(t.Weekday())
}

// Today returns the current UTC date string.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}
