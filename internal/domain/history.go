// Path: internal/domain/history.go
package domain

import (
	"errors"
	"sort"
)

// ErrInvalidDay marks a day whose denominator came back as zero. That points
// at an API or date anomaly, so the record must not replace stored data.
var ErrInvalidDay = errors.New("invalid day: total commit count is zero")

// History maps a date (YYYY-MM-DD) to the record computed for it.
type History map[string]DailyRecord

// Merge returns a new History with records overlaid by date. A record for an
// existing date replaces it entirely; invalid records are skipped so that a
// previously stored value survives. Dates not mentioned are kept as-is.
func (h History) Merge(records ...DailyRecord) History {
	merged := make(History, len(h)+len(records))
	for date, rec := range h {
		merged[date] = rec
	}
	for _, rec := range records {
		if !rec.Valid() {
			continue
		}
		merged[rec.Date] = rec
	}
	return merged
}

// Has reports whether a record exists for date.
func (h History) Has(date string) bool {
	_, ok := h[date]
	return ok
}

// Dates returns the stored dates in ascending order.
func (h History) Dates() []string {
	dates := make([]string, 0, len(h))
	for date := range h {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Records returns the stored records in ascending date order.
func (h History) Records() []DailyRecord {
	out := make([]DailyRecord, 0, len(h))
	for _, date := range h.Dates() {
		out = append(out, h[date])
	}
	return out
}
