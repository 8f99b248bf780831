// Path: internal/domain/dates.go
package domain

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-day format used for every date key.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for malformed or inverted date arguments.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate formats t as a date key, dropping the time of day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange returns every date from from to to, both inclusive.
func DateRange(from, to time.Time) ([]string, error) {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s is before start %s", ErrInvalidDate, FormatDate(to), FormatDate(from))
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
