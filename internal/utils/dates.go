package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for all dates accepted and returned by the API.
const DateLayout = "2006-01-02"

// DateToUnix converts a YYYY-MM-DD date string to a Unix timestamp at
// midnight UTC. All dates are stored this way so range queries compare
// plain integers.
func DateToUnix(date string) (int64, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", date, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix(), nil
}

// UnixToDate formats a Unix timestamp as a YYYY-MM-DD string in UTC.
func UnixToDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(DateLayout)
}

// EndOfDayUnix converts a YYYY-MM-DD date string to the last second of that
// day (23:59:59) in UTC. Used for inclusive end-date range filters.
func EndOfDayUnix(date string) (int64, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", date, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC).Unix(), nil
}

// DaysBetweenUnix returns the number of whole days from one midnight-UTC
// timestamp to another. Negative when to precedes from.
func DaysBetweenUnix(from, to int64) int {
	return int(time.Unix(to, 0).UTC().Sub(time.Unix(from, 0).UTC()).Hours() / 24)
}

// FormatExpiry renders a midnight-UTC timestamp in the broker-statement
// style used in ledger descriptions, e.g. 21-MAR-25.
func FormatExpiry(ts int64) string {
	return strings.ToUpper(time.Unix(ts, 0).UTC().Format("02-Jan-06"))
}
