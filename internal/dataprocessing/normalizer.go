package dataprocessing

import (
	"sort"
	"time"

	"stockboard/pkg/contracts/domain"
)

// Normalize derives the calendar fields for every record in place.
// Idempotent; safe to run as a second pass over already-normalized rows.
func Normalize(records []domain.PriceRecord) {
	for i := range records {
		records[i].DeriveCalendar()
	}
}

// parseDate coerces a date cell through the fixed layout list.
// Returns the zero time when no layout matches.
func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Months returns the distinct MonthStr values present, descending, the
// order the month selector presents them in.
func Months(records []domain.PriceRecord) []string {
	seen := make(map[string]bool)
	var months []string
	for _, r := range records {
		if r.MonthStr == "" || seen[r.MonthStr] {
			continue
		}
		seen[r.MonthStr] = true
		months = append(months, r.MonthStr)
	}
	// Descending lexicographic order is descending chronological order
	// for YYYY-MM keys.
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// Industries returns "All" plus the distinct non-empty industry tags,
// ascending.
func Industries(records []domain.PriceRecord) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, r := range records {
		if r.IndustryTag == "" || seen[r.IndustryTag] {
			continue
		}
		seen[r.IndustryTag] = true
		tags = append(tags, r.IndustryTag)
	}
	sort.Strings(tags)
	return append([]string{"All"}, tags...)
}

// DateRange returns the earliest and latest parseable dates in the table.
func DateRange(records []domain.PriceRecord) (time.Time, time.Time) {
	var first, last time.Time
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		if first.IsZero() || r.Date.Before(first) {
			first = r.Date
		}
		if last.IsZero() || r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}
