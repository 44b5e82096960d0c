package utils

import (
	"strings"
	"time"
)

// layoutTripDate matches the ingestion feed, e.g. "21-May-2025".
const layoutTripDate = "02-Jan-2006"

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// TodayTripDate formats the caller's current calendar day the way trip
// departure dates are stored.
func TodayTripDate() string {
	return FormatTripDate(time.Now())
}

// FormatTripDate formats a time as a DD-MMM-YYYY departure date.
func FormatTripDate(t time.Time) string {
	return t.Format(layoutTripDate)
}

// ParseTripDate parses a DD-MMM-YYYY departure date. Calendar day only;
// no time zone conversion is applied.
func ParseTripDate(s string) (time.Time, error) {
	return time.Parse(layoutTripDate, strings.TrimSpace(s))
}
