package charts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqlPart(t *testing.T, callID string, out schema.ExecuteSQLOutput) aisdk.Part {
	t.Helper()
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	return aisdk.Part{
		Type:       aisdk.ToolPartType(schema.ToolExecuteSQL),
		ToolCallID: callID,
		State:      string(aisdk.ToolOutputAvailable),
		Input:      json.RawMessage(`{"sql_query":"select 1"}`),
		Output:     raw,
	}
}

func chartPart(t *testing.T, state aisdk.ToolState, in schema.DisplayChartInput, out *schema.DisplayChartOutput) aisdk.Part {
	t.Helper()
	rawIn, err := json.Marshal(in)
	require.NoError(t, err)
	p := aisdk.Part{
		Type:       aisdk.ToolPartType(schema.ToolDisplayChart),
		ToolCallID: "chart-1",
		State:      string(state),
		Input:      rawIn,
	}
	if out != nil {
		p.Output, err = json.Marshal(out)
		require.NoError(t, err)
	}
	return p
}

func dateAxis() *schema.XAxisType {
	d := schema.XAxisDate
	return &d
}

func chartInput(queryID string) schema.DisplayChartInput {
	return schema.DisplayChartInput{
		QueryID:   queryID,
		ChartType: schema.ChartLine,
		XAxisKey:  "d",
		XAxisType: dateAxis(),
		Series:    []schema.SeriesConfig{{DataKey: "v"}},
		Title:     "Value over time",
	}
}

func TestIndexFirstMatchWins(t *testing.T) {
	messages := []aisdk.UIMessage{
		{Role: aisdk.RoleAssistant, Parts: []aisdk.Part{
			sqlPart(t, "c1", schema.ExecuteSQLOutput{ID: "q1", Columns: []string{"v"}, Data: []map[string]any{{"v": 1.0}}, RowCount: 1}),
		}},
		{Role: aisdk.RoleAssistant, Parts: []aisdk.Part{
			sqlPart(t, "c2", schema.ExecuteSQLOutput{ID: "q1", Columns: []string{"v"}, Data: []map[string]any{{"v": 2.0}, {"v": 3.0}}, RowCount: 2}),
			sqlPart(t, "c3", schema.ExecuteSQLOutput{ID: "q2", RowCount: 0}),
		}},
	}

	ix := NewIndex(messages)
	assert.Equal(t, 2, ix.Len())

	out, ok := ix.Lookup("q1")
	require.True(t, ok)
	assert.Equal(t, 1, out.RowCount)

	_, ok = ix.Lookup("nope")
	assert.False(t, ok)
}

func TestBind(t *testing.T) {
	withRows := sqlPart(t, "c1", schema.ExecuteSQLOutput{ID: "q1", Data: []map[string]any{{"d": "2024-01-01", "v": 1.0}}, RowCount: 1})
	noRows := sqlPart(t, "c2", schema.ExecuteSQLOutput{ID: "q-empty", Data: []map[string]any{}})
	ix := NewIndex([]aisdk.UIMessage{{Role: aisdk.RoleAssistant, Parts: []aisdk.Part{withRows, noRows}}})

	noSeries := chartInput("q1")
	noSeries.Series = nil

	failed := chartPart(t, aisdk.ToolOutputError, chartInput("q1"), nil)
	failed.ErrorText = "boom"

	tests := []struct {
		name string
		part aisdk.Part
		want Status
	}{
		{"streaming input", chartPart(t, aisdk.ToolInputStreaming, chartInput("q1"), nil), StatusLoading},
		{"validation error", chartPart(t, aisdk.ToolOutputAvailable, chartInput("q1"), &schema.DisplayChartOutput{Error: "column x not found"}), StatusError},
		{"tool failure", failed, StatusToolError},
		{"no series", chartPart(t, aisdk.ToolInputAvailable, noSeries, nil), StatusNoSeries},
		{"missing query", chartPart(t, aisdk.ToolOutputAvailable, chartInput("q9"), &schema.DisplayChartOutput{Success: true}), StatusMissing},
		{"empty result", chartPart(t, aisdk.ToolOutputAvailable, chartInput("q-empty"), &schema.DisplayChartOutput{Success: true}), StatusEmpty},
		{"ready", chartPart(t, aisdk.ToolOutputAvailable, chartInput("q1"), &schema.DisplayChartOutput{Success: true}), StatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bind(ix, tt.part)
			assert.Equal(t, tt.want, b.Status)
		})
	}
}

func TestBindMissingIsNotError(t *testing.T) {
	part := chartPart(t, aisdk.ToolOutputAvailable, chartInput("q1"), &schema.DisplayChartOutput{Success: true})
	b := Bind(NewIndex(nil), part)

	assert.Equal(t, StatusMissing, b.Status)
	assert.True(t, b.Status.DataMissing())
	assert.Empty(t, b.Error)
}

func TestBindAll(t *testing.T) {
	messages := []aisdk.UIMessage{{Role: aisdk.RoleAssistant, Parts: []aisdk.Part{
		sqlPart(t, "c1", schema.ExecuteSQLOutput{ID: "q1", Data: []map[string]any{{"d": "2024-01-01", "v": 1.0}}}),
		chartPart(t, aisdk.ToolOutputAvailable, chartInput("q1"), &schema.DisplayChartOutput{Success: true}),
	}}}

	bindings := BindAll(messages)
	require.Contains(t, bindings, "chart-1")
	assert.Equal(t, StatusReady, bindings["chart-1"].Status)
}

func records(dates ...string) []map[string]any {
	out := make([]map[string]any, len(dates))
	for i, d := range dates {
		out[i] = map[string]any{"d": d, "v": float64(i + 1)}
	}
	return out
}

func TestFilterByDateRange30Days(t *testing.T) {
	data := records("2024-01-01", "2024-01-15", "2024-02-01")

	got := FilterByDateRange(data, "d", Range30Days)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-15", got[0]["d"])
	assert.Equal(t, "2024-02-01", got[1]["d"])
}

func TestFilterByDateRangeCalendarAware(t *testing.T) {
	data := records("2023-11-30", "2023-12-01", "2024-02-29", "2024-03-01")

	got := FilterByDateRange(data, "d", Range3Months)
	require.Len(t, got, 3)
	assert.Equal(t, "2023-12-01", got[0]["d"])

	yearData := records("2023-02-28", "2023-03-01", "2024-03-01")
	got = FilterByDateRange(yearData, "d", Range1Year)
	require.Len(t, got, 2)
	assert.Equal(t, "2023-03-01", got[0]["d"])
}

func TestFilterByDateRangeAllIsIdentity(t *testing.T) {
	data := records("2020-01-01", "not a date", "2024-01-01")
	assert.Equal(t, data, FilterByDateRange(data, "d", RangeAll))
	assert.Empty(t, FilterByDateRange(nil, "d", Range7Days))
}

func TestFilterByDateRangeIsIdempotent(t *testing.T) {
	data := records("2023-01-01", "2023-06-01", "2023-12-01", "2024-01-01", "2024-01-05")
	for _, r := range []DateRange{Range7Days, Range30Days, Range3Months, Range6Months, Range1Year} {
		once := FilterByDateRange(data, "d", r)
		twice := FilterByDateRange(once, "d", r)
		assert.Equal(t, once, twice, "range %s", r)
	}
}

func TestFilterByDateRangeUnparseable(t *testing.T) {
	data := records("2024-01-20", "garbage", "2024-01-25")
	got := FilterByDateRange(data, "d", Range7Days)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-20", got[0]["d"])

	// An unusable reference date leaves the data untouched.
	bad := records("2024-01-20", "garbage")
	assert.Equal(t, bad, FilterByDateRange(bad, "d", Range7Days))
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("")
	require.NoError(t, err)
	assert.Equal(t, RangeAll, r)

	r, err = ParseDateRange("6m")
	require.NoError(t, err)
	assert.Equal(t, Range6Months, r)

	_, err = ParseDateRange("2w")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)

	for _, v := range []any{"2024-01-15T12:30:00Z", "2024-01-15T12:30:00.000Z", "2024-01-15 12:30:00", float64(want.UnixMilli())} {
		got, ok := ParseDate(v)
		require.True(t, ok, "%v", v)
		assert.True(t, want.Equal(got), "%v parsed as %v", v, got)
	}

	_, ok := ParseDate(true)
	assert.False(t, ok)
}

func TestLabelize(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"total_revenue", "Total Revenue"},
		{"month", "Month"},
		{"already Title", "Already Title"},
		{"2024-01-15", "Mon Jan 15 2024"},
		{"2024-01-05T08:00:00Z", "Fri Jan 05 2024"},
		{"2024-13-45", "2024-13-45"},
		{float64(42), "42"},
		{1.5, "1.5"},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Labelize(tt.in), "Labelize(%v)", tt.in)
	}
}

func TestToKey(t *testing.T) {
	assert.Equal(t, int64(0), ToKey(""))
	assert.Equal(t, int64(97), ToKey("a"))
	assert.Equal(t, int64(3105), ToKey("ab"))
	assert.GreaterOrEqual(t, ToKey("a fairly long category name that overflows"), int64(0))
	assert.Equal(t, ToKey("north"), ToKey("north"))
}

func TestColors(t *testing.T) {
	series := []schema.SeriesConfig{{DataKey: "a"}, {DataKey: "b", Color: "#ff0000"}, {DataKey: "c"}}
	assert.Equal(t, "var(--chart-1)", SeriesColor(series[0], 0))
	assert.Equal(t, "#ff0000", SeriesColor(series[1], 1))
	assert.Equal(t, "var(--chart-3)", SeriesColor(series[2], 2))
	assert.Equal(t, "var(--chart-1)", PaletteColor(5))

	data := []map[string]any{{"region": "north"}, {"region": "south"}, {"region": "north"}, {"region": "east_coast"}}
	slices := PieSlices(data, "region")
	require.Len(t, slices, 3)
	assert.Equal(t, "north", slices[0].Value)
	assert.Equal(t, "var(--chart-1)", slices[0].Color)
	assert.Equal(t, "var(--chart-2)", slices[1].Color)
	assert.Equal(t, "East Coast", slices[2].Label)
	assert.Equal(t, ToKey("east_coast"), slices[2].Key)
}

func TestSeriesVisibility(t *testing.T) {
	series := []schema.SeriesConfig{{DataKey: "revenue"}, {DataKey: "cost"}, {DataKey: "margin"}}
	v := NewSeriesVisibility()

	assert.True(t, v.Toggle("cost"))
	assert.True(t, v.Toggle("margin"))
	assert.Equal(t, []schema.SeriesConfig{{DataKey: "revenue"}}, v.Visible(series))

	assert.False(t, v.Toggle("margin"))
	assert.Equal(t, []string{"cost"}, v.Hidden())

	v.Reconcile([]schema.SeriesConfig{{DataKey: "revenue"}, {DataKey: "margin"}})
	assert.Empty(t, v.Hidden(), "cost was removed from the config")
	assert.Len(t, series, 3, "config is never mutated")
}

func TestRender(t *testing.T) {
	src := &schema.ExecuteSQLOutput{ID: "q1", Data: records("2024-01-01", "2024-01-15", "2024-02-01")}
	in := chartInput("q1")
	in.Series = append(in.Series, schema.SeriesConfig{DataKey: "other_value", Color: "red"})

	m := Render(Binding{Status: StatusReady, Input: &in, Source: src}, Range30Days, NewSeriesVisibility("other_value", "gone"))
	assert.Equal(t, StatusReady, m.Status)
	assert.Equal(t, "Value over time", m.Title)
	assert.Equal(t, Range30Days, m.Range)
	assert.NotEmpty(t, m.RangeOptions)
	assert.Len(t, m.Data, 2)
	require.Len(t, m.Series, 2)
	assert.Equal(t, "V", m.Series[0].Label)
	assert.False(t, m.Series[0].Hidden)
	assert.Equal(t, "Other Value", m.Series[1].Label)
	assert.Equal(t, "red", m.Series[1].Color)
	assert.True(t, m.Series[1].Hidden)

	pie := in
	pie.ChartType = schema.ChartPie
	m = Render(Binding{Status: StatusReady, Input: &pie, Source: src}, Range30Days, nil)
	assert.Equal(t, RangeAll, m.Range, "pie charts ignore the range")
	assert.Len(t, m.Data, 3)
	assert.Len(t, m.Slices, 3)

	m = Render(Binding{Status: StatusMissing, Input: &in}, RangeAll, nil)
	assert.Equal(t, StatusMissing.Message(), m.Message)
	assert.Nil(t, m.Data)
}
