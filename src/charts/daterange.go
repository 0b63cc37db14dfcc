package charts

import (
	"fmt"
	"math"
	"time"
)

// DateRange is a preset window applied to date x axes.
type DateRange string

const (
	Range7Days   DateRange = "7d"
	Range30Days  DateRange = "30d"
	Range3Months DateRange = "3m"
	Range6Months DateRange = "6m"
	Range1Year   DateRange = "1y"
	RangeAll     DateRange = "all"
)

// RangeOption is a selectable preset with its label.
type RangeOption struct {
	Value DateRange `json:"value"`
	Label string    `json:"label"`
}

// DateRangeOptions lists the presets in display order.
var DateRangeOptions = []RangeOption{
	{Range7Days, "Last 7 days"},
	{Range30Days, "Last 30 days"},
	{Range3Months, "Last 3 months"},
	{Range6Months, "Last 6 months"},
	{Range1Year, "Last year"},
	{RangeAll, "All data"},
}

// ParseDateRange validates a preset name. The empty string means RangeAll.
func ParseDateRange(s string) (DateRange, error) {
	if s == "" {
		return RangeAll, nil
	}
	for _, opt := range DateRangeOptions {
		if string(opt.Value) == s {
			return opt.Value, nil
		}
	}
	return "", fmt.Errorf("unknown date range %q", s)
}

// Cutoff returns the earliest instant kept by the range when ref is the most
// recent date. Day presets subtract fixed durations, month and year presets
// move along the calendar.
func (r DateRange) Cutoff(ref time.Time) (time.Time, bool) {
	switch r {
	case Range7Days:
		return ref.Add(-7 * 24 * time.Hour), true
	case Range30Days:
		return ref.Add(-30 * 24 * time.Hour), true
	case Range3Months:
		return ref.AddDate(0, -3, 0), true
	case Range6Months:
		return ref.AddDate(0, -6, 0), true
	case Range1Year:
		return ref.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// FilterByDateRange keeps the records whose x value falls within the range,
// measured back from the x value of the last record (data is expected to be
// sorted ascending). Records with unparseable dates are dropped.
//
// RangeAll, empty data, or a last record without a parseable date return data
// unchanged.
func FilterByDateRange(data []map[string]any, xKey string, r DateRange) []map[string]any {
	if r == RangeAll || r == "" || len(data) == 0 {
		return data
	}

	ref, ok := ParseDate(data[len(data)-1][xKey])
	if !ok {
		return data
	}
	cutoff, ok := r.Cutoff(ref)
	if !ok {
		return data
	}

	out := make([]map[string]any, 0, len(data))
	for _, rec := range data {
		d, ok := ParseDate(rec[xKey])
		if !ok {
			continue
		}
		if !d.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
	"2006-01",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDate interprets a cell value as a date. Strings are parsed against the
// common ISO-8601 layouts in UTC, numbers are taken as Unix milliseconds.
func ParseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, !val.IsZero()
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(val)).UTC(), true
	case int64:
		return time.UnixMilli(val).UTC(), true
	case int:
		return time.UnixMilli(int64(val)).UTC(), true
	}
	return time.Time{}, false
}
