package core

import "time"

// DateFormat is the calendar-date wire format used everywhere; the scheduling
// engine is date-granular only.
const DateFormat = "2006-01-02"

// Date truncates t to a calendar date: midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate builds a calendar date at midnight UTC.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today is the current calendar date.
func Today() time.Time {
	return Date(time.Now())
}

// ParseDate parses a DateFormat string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

// DaysBetween returns the number of whole days from `from` to `to`; negative
// when `to` precedes `from`. Both arguments are normalized to calendar dates
// first.
func DaysBetween(from, to time.Time) int {
	return int(Date(to).Sub(Date(from)).Hours() / 24)
}
