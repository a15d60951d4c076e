package timex

import (
	"strings"
	"time"
)

// DateLayouts are tried in order by ParseDate. Date-only values are
// interpreted as local midnight.
var DateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
}

// ParseDate parses the date formats records carry. ok is false for empty or
// unrecognised input.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Today formats now as a date-only string.
func Today(now time.Time) string {
	return now.Format(time.DateOnly)
}
