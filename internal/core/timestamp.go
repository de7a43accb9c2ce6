package core

import (
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp reads the timestamps found in package metadata: decimal
// seconds since the epoch, or one of a few textual layouts. Anything
// else yields the zero time.
func ParseTimestamp(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	if secs, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
