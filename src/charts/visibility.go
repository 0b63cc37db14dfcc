package charts

import (
	"sort"

	"github.com/elee1766/naochat/src/schema"
)

// SeriesVisibility tracks which series the viewer has hidden. It never touches
// the chart configuration itself.
type SeriesVisibility struct {
	hidden map[string]struct{}
}

// NewSeriesVisibility starts with the given keys hidden.
func NewSeriesVisibility(hidden ...string) *SeriesVisibility {
	v := &SeriesVisibility{hidden: make(map[string]struct{}, len(hidden))}
	for _, k := range hidden {
		if k != "" {
			v.hidden[k] = struct{}{}
		}
	}
	return v
}

// Toggle flips a series and reports whether it is now hidden.
func (v *SeriesVisibility) Toggle(dataKey string) bool {
	if _, ok := v.hidden[dataKey]; ok {
		delete(v.hidden, dataKey)
		return false
	}
	v.hidden[dataKey] = struct{}{}
	return true
}

// IsHidden reports whether the series is hidden.
func (v *SeriesVisibility) IsHidden(dataKey string) bool {
	_, ok := v.hidden[dataKey]
	return ok
}

// Reconcile drops hidden keys that are no longer configured. Call it whenever
// the series list changes.
func (v *SeriesVisibility) Reconcile(series []schema.SeriesConfig) {
	keep := make(map[string]struct{}, len(v.hidden))
	for _, s := range series {
		if _, ok := v.hidden[s.DataKey]; ok {
			keep[s.DataKey] = struct{}{}
		}
	}
	v.hidden = keep
}

// Visible returns the series that are not hidden, in configuration order.
func (v *SeriesVisibility) Visible(series []schema.SeriesConfig) []schema.SeriesConfig {
	out := make([]schema.SeriesConfig, 0, len(series))
	for _, s := range series {
		if !v.IsHidden(s.DataKey) {
			out = append(out, s)
		}
	}
	return out
}

// Hidden returns the hidden keys, sorted.
func (v *SeriesVisibility) Hidden() []string {
	out := make([]string, 0, len(v.hidden))
	for k := range v.hidden {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
