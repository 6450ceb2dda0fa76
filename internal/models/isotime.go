package models

import (
	"fmt"
	"strings"
	"time"
)

// isoLayouts are the ISO-8601 forms accepted for timestamps, most specific first.
// Layouts without an offset are read as UTC, the archive API's default timezone.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseISO8601 parses s in any of the accepted ISO-8601 forms and returns it in UTC.
func ParseISO8601(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", s)
}
