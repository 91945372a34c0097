package utils

import (
	"strings"
	"time"
)

// DateLayout is the canonical calendar date form used by booking records.
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "2006/01/02", time.RFC3339, "2006-01-02 15:04:05"}

// ParseDate parses a calendar date. Time-of-day components are dropped.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// SameDate reports whether a record date refers to the same calendar day as
// want. Record dates that do not parse are compared as raw strings.
func SameDate(recordDate string, want time.Time) bool {
	d, ok := ParseDate(recordDate)
	if !ok {
		return strings.TrimSpace(recordDate) == want.Format(DateLayout)
	}
	return d.Equal(want)
}
