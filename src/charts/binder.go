// Package charts binds display_chart tool calls to the execute_sql results
// they reference and shapes the data for rendering.
package charts

import (
	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/schema"
)

// Status describes how far a chart could be bound.
type Status string

const (
	// StatusLoading means the chart input is still streaming.
	StatusLoading Status = "loading"
	// StatusError means display_chart rejected its own configuration.
	StatusError Status = "error"
	// StatusToolError means the display_chart call itself failed or was denied.
	StatusToolError Status = "tool-error"
	// StatusNoSeries means the configuration has no series to plot.
	StatusNoSeries Status = "no-series"
	// StatusMissing means no execute_sql result carries the referenced id.
	StatusMissing Status = "missing"
	// StatusEmpty means the referenced result has no rows.
	StatusEmpty Status = "empty"
	// StatusReady means data is bound.
	StatusReady Status = "ready"
)

// DataMissing reports the degraded states that are not errors.
func (s Status) DataMissing() bool {
	return s == StatusMissing || s == StatusEmpty
}

// Message returns the inline text shown in place of a chart that cannot be drawn.
func (s Status) Message() string {
	switch s {
	case StatusLoading:
		return "Loading chart"
	case StatusError, StatusToolError:
		return "Could not display the chart"
	case StatusNoSeries:
		return "Could not display the chart because no series are configured."
	case StatusMissing:
		return "Could not display the chart because the data is missing."
	case StatusEmpty:
		return "Could not display the chart because the data is empty."
	}
	return ""
}

// Index maps execute_sql result ids to their outputs for one snapshot of the
// message list. Build it once per snapshot and share it between charts.
type Index struct {
	outputs map[string]*schema.ExecuteSQLOutput
}

// NewIndex scans messages in order, parts in order. When two results share an
// id the first one wins.
func NewIndex(messages []aisdk.UIMessage) *Index {
	ix := &Index{outputs: make(map[string]*schema.ExecuteSQLOutput)}
	sqlType := aisdk.ToolPartType(schema.ToolExecuteSQL)

	for _, msg := range messages {
		for _, part := range msg.Parts {
			if part.Type != sqlType || len(part.Output) == 0 {
				continue
			}
			var out schema.ExecuteSQLOutput
			if !part.DecodeOutput(&out) || out.ID == "" {
				continue
			}
			if _, seen := ix.outputs[out.ID]; seen {
				continue
			}
			ix.outputs[out.ID] = &out
		}
	}
	return ix
}

// Lookup returns the execute_sql output with the given id.
func (ix *Index) Lookup(queryID string) (*schema.ExecuteSQLOutput, bool) {
	if ix == nil || queryID == "" {
		return nil, false
	}
	out, ok := ix.outputs[queryID]
	return out, ok
}

// Len returns the number of indexed results.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.outputs)
}

// Binding is the result of resolving one display_chart call.
type Binding struct {
	Status Status
	Input  *schema.DisplayChartInput
	Source *schema.ExecuteSQLOutput
	// Error holds the validation error reported by the tool, or the tool
	// failure text for StatusToolError.
	Error string
}

// Bind resolves a display_chart part against the index.
func Bind(ix *Index, part aisdk.Part) Binding {
	state := part.ToolState()

	if state == aisdk.ToolOutputAvailable {
		var out schema.DisplayChartOutput
		if part.DecodeOutput(&out) && out.Error != "" {
			return Binding{Status: StatusError, Error: out.Error}
		}
	}
	if state == aisdk.ToolOutputError || state == aisdk.ToolOutputDenied {
		return Binding{Status: StatusToolError, Error: part.ErrorText}
	}

	var in schema.DisplayChartInput
	if state == aisdk.ToolInputStreaming || !part.DecodeInput(&in) {
		return Binding{Status: StatusLoading}
	}

	b := Binding{Input: &in}
	if len(in.Series) == 0 {
		b.Status = StatusNoSeries
		return b
	}

	src, ok := ix.Lookup(in.QueryID)
	if !ok {
		b.Status = StatusMissing
		return b
	}
	b.Source = src
	if len(src.Data) == 0 {
		b.Status = StatusEmpty
		return b
	}

	b.Status = StatusReady
	return b
}

// BindAll resolves every display_chart part in the snapshot, keyed by tool call id.
func BindAll(messages []aisdk.UIMessage) map[string]Binding {
	ix := NewIndex(messages)
	chartType := aisdk.ToolPartType(schema.ToolDisplayChart)

	out := make(map[string]Binding)
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if part.Type == chartType {
				out[part.ToolCallID] = Bind(ix, part)
			}
		}
	}
	return out
}
