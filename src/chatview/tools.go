package chatview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/charts"
	"github.com/elee1766/naochat/src/schema"
)

// ToolKind identifies a renderer. Unrecognised tool names map to KindUnknown.
type ToolKind string

const (
	KindDisplayChart ToolKind = schema.ToolDisplayChart
	KindExecuteSQL   ToolKind = schema.ToolExecuteSQL
	KindGrep         ToolKind = schema.ToolGrep
	KindList         ToolKind = schema.ToolList
	KindRead         ToolKind = schema.ToolRead
	KindSearch       ToolKind = schema.ToolSearch
	KindUnknown      ToolKind = "unknown"
)

// KindOf maps a tool name to its kind.
func KindOf(toolName string) ToolKind {
	switch k := ToolKind(toolName); k {
	case KindDisplayChart, KindExecuteSQL, KindGrep, KindList, KindRead, KindSearch:
		return k
	}
	return KindUnknown
}

// Table is a tabular tool result with every cell already formatted.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ToolView is the presentation of one tool part.
type ToolView struct {
	Kind       ToolKind        `json:"kind"`
	Name       string          `json:"name"`
	ToolCallID string          `json:"tool_call_id"`
	State      aisdk.ToolState `json:"state"`
	Settled    bool            `json:"settled"`
	IsError    bool            `json:"is_error"`
	ErrorText  string          `json:"error_text,omitempty"`

	// Title is the verb phrase ("Executing", "Grepped"), Subject what it
	// applies to (the query, the pattern, the file name).
	Title   string `json:"title"`
	Subject string `json:"subject,omitempty"`
	Badge   string `json:"badge,omitempty"`

	Body  string             `json:"body,omitempty"`
	Table *Table             `json:"table,omitempty"`
	Chart *charts.ChartModel `json:"chart,omitempty"`
}

// RenderContext carries snapshot-wide state shared by every renderer.
type RenderContext struct {
	// Charts holds the display_chart bindings of the snapshot, keyed by tool
	// call id.
	Charts map[string]charts.Binding
}

// Renderer builds the view of a tool part. The base view already carries the
// lifecycle fields.
type Renderer func(base ToolView, part aisdk.Part, rc *RenderContext) ToolView

// Registry dispatches tool parts to renderers by kind.
type Registry struct {
	renderers map[ToolKind]Renderer
	fallback  Renderer
}

// NewRegistry returns a registry with the built-in renderers.
func NewRegistry() *Registry {
	r := &Registry{
		renderers: make(map[ToolKind]Renderer),
		fallback:  renderDefault,
	}
	r.Register(KindDisplayChart, renderDisplayChart)
	r.Register(KindExecuteSQL, renderExecuteSQL)
	r.Register(KindGrep, renderGrep)
	r.Register(KindList, renderList)
	r.Register(KindRead, renderRead)
	r.Register(KindSearch, renderSearch)
	return r
}

// Register installs or replaces the renderer for kind.
func (r *Registry) Register(kind ToolKind, fn Renderer) {
	r.renderers[kind] = fn
}

// Render builds the view of a tool part.
func (r *Registry) Render(part aisdk.Part, rc *RenderContext) ToolView {
	if rc == nil {
		rc = &RenderContext{}
	}
	state := part.ToolState()
	base := ToolView{
		Kind:       KindOf(part.ToolName()),
		Name:       part.ToolName(),
		ToolCallID: part.ToolCallID,
		State:      state,
		Settled:    aisdk.IsToolSettled(part),
		IsError:    state == aisdk.ToolOutputError,
		ErrorText:  part.ErrorText,
	}

	fn, ok := r.renderers[base.Kind]
	if !ok {
		fn = r.fallback
	}
	view := fn(base, part, rc)
	if view.ErrorText != "" && view.Body == "" {
		view.Body = view.ErrorText
	}
	return view
}

func pick(settled bool, done, pending string) string {
	if settled {
		return done
	}
	return pending
}

func renderExecuteSQL(v ToolView, part aisdk.Part, _ *RenderContext) ToolView {
	var in schema.ExecuteSQLInput
	part.DecodeInput(&in)
	v.Title = pick(v.Settled, "Executed", "Executing")
	v.Subject = in.SQLQuery

	var out schema.ExecuteSQLOutput
	if !part.DecodeOutput(&out) {
		return v
	}
	if out.RowCount > 0 {
		v.Badge = fmt.Sprintf("%d rows", out.RowCount)
	}
	v.Table = &Table{Columns: out.Columns, Rows: make([][]string, 0, len(out.Data))}
	for _, rec := range out.Data {
		row := make([]string, len(out.Columns))
		for i, col := range out.Columns {
			row[i] = formatCell(rec[col])
		}
		v.Table.Rows = append(v.Table.Rows, row)
	}
	if out.RowCount == 0 {
		v.Body = "No rows returned"
	}
	return v
}

func renderDisplayChart(v ToolView, part aisdk.Part, rc *RenderContext) ToolView {
	b, ok := rc.Charts[part.ToolCallID]
	if !ok {
		b = charts.Bind(nil, part)
	}
	model := charts.Render(b, charts.RangeAll, nil)
	v.Chart = &model
	v.Title = pick(v.Settled, "Displayed chart", "Preparing chart")
	if b.Input != nil {
		v.Subject = b.Input.Title
	}
	switch b.Status {
	case charts.StatusError, charts.StatusToolError:
		v.Title = b.Status.Message()
		v.IsError = true
		v.Body = b.Error
	case charts.StatusReady:
	default:
		v.Body = b.Status.Message()
	}
	return v
}

func renderGrep(v ToolView, part aisdk.Part, _ *RenderContext) ToolView {
	var in schema.GrepInput
	part.DecodeInput(&in)
	v.Title = pick(v.Settled, "Grepped", "Searching for")
	v.Subject = in.Pattern
	if in.Glob != "" && v.Settled {
		v.Subject += " in " + in.Glob
	}

	var out schema.GrepOutput
	if !part.DecodeOutput(&out) {
		return v
	}
	if out.Truncated {
		v.Badge = fmt.Sprintf("(%d+ of %d matches)", len(out.Matches), out.TotalMatches)
	} else {
		v.Badge = fmt.Sprintf("(%d matches)", out.TotalMatches)
	}
	if len(out.Matches) == 0 {
		v.Body = "No matches found"
		return v
	}
	var sb strings.Builder
	for _, m := range out.Matches {
		fmt.Fprintf(&sb, "%s:%d: %s\n", m.Path, m.LineNumber, m.LineContent)
	}
	v.Body = strings.TrimSuffix(sb.String(), "\n")
	return v
}

func renderRead(v ToolView, part aisdk.Part, _ *RenderContext) ToolView {
	var in schema.ReadInput
	part.DecodeInput(&in)
	v.Title = pick(v.Settled, "Read", "Reading...")
	v.Subject = path.Base(in.FilePath)
	if in.FilePath == "" {
		v.Subject = ""
	}

	var out schema.ReadOutput
	if !part.DecodeOutput(&out) {
		return v
	}
	v.Badge = fmt.Sprintf("(%d lines)", out.NumberOfTotalLines)
	v.Body = out.Content
	return v
}

func renderList(v ToolView, part aisdk.Part, _ *RenderContext) ToolView {
	var in schema.ListInput
	part.DecodeInput(&in)
	v.Title = pick(v.Settled, "Listed", "Listing")
	v.Subject = in.Path
	if v.Subject == "" {
		v.Subject = "."
	}

	var out schema.ListOutput
	if !part.DecodeOutput(&out) {
		return v
	}
	v.Badge = fmt.Sprintf("(%d entries)", len(out.Entries))
	names := make([]string, 0, len(out.Entries))
	for _, e := range out.Entries {
		if e.Type == "directory" {
			names = append(names, e.Name+"/")
			continue
		}
		names = append(names, e.Name)
	}
	v.Body = strings.Join(names, "\n")
	return v
}

func renderSearch(v ToolView, part aisdk.Part, _ *RenderContext) ToolView {
	var in schema.SearchInput
	part.DecodeInput(&in)
	v.Title = pick(v.Settled, "Searched", "Searching for")
	v.Subject = in.Pattern

	var out schema.SearchOutput
	if !part.DecodeOutput(&out) {
		return v
	}
	v.Badge = fmt.Sprintf("(%d files)", out.Total)
	paths := make([]string, 0, len(out.Files))
	for _, f := range out.Files {
		paths = append(paths, f.Path)
	}
	v.Body = strings.Join(paths, "\n")
	return v
}

func renderDefault(v ToolView, part aisdk.Part, _ *RenderContext) ToolView {
	v.Title = pick(v.Settled, "Called", "Calling")
	v.Subject = v.Name
	if len(part.Output) > 0 {
		v.Body = indentJSON(part.Output)
	}
	return v
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
