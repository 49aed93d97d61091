// Package dates handles the DD.MM.YYYY calendar-date format used everywhere a
// user types or sees a date: memory records, event date input and history
// ranges. Dates are days, not instants; all values are truncated to midnight.
package dates

import "time"

// Layout is the wire format for user-facing dates.
const Layout = "02.01.2006"

// ISOLayout is the normalized form stored alongside the literal text so the
// database can compare and order by calendar date.
const ISOLayout = "2006-01-02"

// Parse parses a DD.MM.YYYY string into a date at midnight local time.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.Local)
}

// Format renders a date back to DD.MM.YYYY.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatISO renders a date as YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// Day truncates a time to its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// After reports whether a falls on a later calendar day than b.
func After(a, b time.Time) bool {
	return Day(a).After(Day(b))
}
