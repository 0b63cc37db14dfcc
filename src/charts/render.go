package charts

import "github.com/elee1766/naochat/src/schema"

// SeriesModel is one series as drawn.
type SeriesModel struct {
	DataKey string `json:"data_key"`
	Label   string `json:"label"`
	Color   string `json:"color"`
	Hidden  bool   `json:"hidden"`
}

// ChartModel is everything a client needs to draw a bound chart.
type ChartModel struct {
	Status    Status           `json:"status"`
	Message   string           `json:"message,omitempty"`
	Error     string           `json:"error,omitempty"`
	Title     string           `json:"title,omitempty"`
	ChartType schema.ChartType `json:"chart_type,omitempty"`
	XAxisKey  string           `json:"x_axis_key,omitempty"`
	XAxisType schema.XAxisType `json:"x_axis_type,omitempty"`
	XLabel    string           `json:"x_label,omitempty"`

	// Range is the applied preset. RangeOptions is only set when the chart
	// supports range selection.
	Range        DateRange     `json:"range,omitempty"`
	RangeOptions []RangeOption `json:"range_options,omitempty"`

	Series []SeriesModel    `json:"series,omitempty"`
	Slices []Slice          `json:"slices,omitempty"`
	Data   []map[string]any `json:"data,omitempty"`
}

// SupportsRange reports whether range selection applies to the chart.
func SupportsRange(in *schema.DisplayChartInput) bool {
	return in != nil && in.ChartType != schema.ChartPie && in.AxisType() == schema.XAxisDate
}

// Render shapes a binding for drawing. visibility may be nil.
func Render(b Binding, r DateRange, visibility *SeriesVisibility) ChartModel {
	m := ChartModel{Status: b.Status, Error: b.Error}
	if b.Status != StatusReady {
		m.Message = b.Status.Message()
		if b.Input != nil {
			m.Title = b.Input.Title
		}
		return m
	}

	in := b.Input
	if visibility == nil {
		visibility = NewSeriesVisibility()
	}
	visibility.Reconcile(in.Series)

	m.Title = in.Title
	m.ChartType = in.ChartType
	m.XAxisKey = in.XAxisKey
	m.XAxisType = in.AxisType()
	m.XLabel = Labelize(in.XAxisKey)

	m.Data = b.Source.Data
	m.Range = RangeAll
	if SupportsRange(in) {
		m.RangeOptions = DateRangeOptions
		if r != "" {
			m.Range = r
		}
		m.Data = FilterByDateRange(b.Source.Data, in.XAxisKey, m.Range)
	}

	for idx, s := range in.Series {
		m.Series = append(m.Series, SeriesModel{
			DataKey: s.DataKey,
			Label:   Labelize(s.DataKey),
			Color:   SeriesColor(s, idx),
			Hidden:  visibility.IsHidden(s.DataKey),
		})
	}
	if in.ChartType == schema.ChartPie {
		m.Slices = PieSlices(m.Data, in.XAxisKey)
	}
	return m
}
