package types

import "time"

// isoMillis renders UTC instants with millisecond precision and a literal
// Z suffix, matching the timestamps stored in status records.
const isoMillis = "2006-01-02T15:04:05.000Z"

// NowISO returns the current UTC time as a status-record timestamp.
func NowISO() string {
	return FormatISO(time.Now())
}

// FormatISO renders t as a status-record timestamp.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// ParseISO parses a status-record timestamp. Both the Z suffix and an
// explicit +00:00 offset are accepted.
func ParseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
