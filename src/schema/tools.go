package schema

// Tool names as exposed to the model.
const (
	ToolDisplayChart = "display_chart"
	ToolExecuteSQL   = "execute_sql"
	ToolGrep         = "grep"
	ToolList         = "list"
	ToolRead         = "read"
	ToolSearch       = "search"
)

// ExecuteSQLInput is the input of execute_sql.
type ExecuteSQLInput struct {
	SQLQuery  string `json:"sql_query" required:"true" description:"The SQL query to execute. Only read queries are allowed."`
	Warehouse string `json:"warehouse,omitempty" description:"Name of the warehouse to query (defaults to the first configured one)"`
}

// ExecuteSQLOutput is the output of execute_sql. ID is referenced by
// display_chart through query_id.
type ExecuteSQLOutput struct {
	ID        string           `json:"id" description:"Identifier of this result, to pass as query_id to display_chart"`
	Columns   []string         `json:"columns" description:"Column names in result order"`
	Data      []map[string]any `json:"data" description:"Result rows keyed by column name"`
	RowCount  int              `json:"row_count" description:"Number of rows returned"`
	Truncated bool             `json:"truncated,omitempty" description:"Whether rows beyond the limit were dropped"`
}

// ChartType is the kind of chart display_chart draws.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

// Valid reports whether t is a known chart type.
func (t ChartType) Valid() bool {
	return t == ChartBar || t == ChartLine || t == ChartPie
}

// XAxisType drives range controls for the x axis.
type XAxisType string

const (
	XAxisDate     XAxisType = "date"
	XAxisNumber   XAxisType = "number"
	XAxisCategory XAxisType = "category"
)

// Valid reports whether t is a known axis type.
func (t XAxisType) Valid() bool {
	return t == XAxisDate || t == XAxisNumber || t == XAxisCategory
}

// SeriesConfig is one plotted column.
type SeriesConfig struct {
	DataKey string `json:"data_key" required:"true" description:"Column name from SQL result to plot."`
	Color   string `json:"color,omitempty" description:"CSS color (defaults to theme colors)."`
}

// DisplayChartInput is the input of display_chart.
type DisplayChartInput struct {
	QueryID   string         `json:"query_id" required:"true" description:"The id of a previous execute_sql tool call's output to get data from."`
	ChartType ChartType      `json:"chart_type" required:"true" enum:"bar,line,pie" description:"Type of chart to display."`
	XAxisKey  string         `json:"x_axis_key" required:"true" description:"Column name for X-axis/category labels."`
	XAxisType *XAxisType     `json:"x_axis_type" enum:"date,number,category" description:"Type of x-axis data for range controls. Use \"date\" only if values are ISO dates. Set to null for simple count filtering."`
	Series    []SeriesConfig `json:"series" required:"true" minItems:"1" description:"Columns to plot as data series (at least one series required)."`
	Title     string         `json:"title" required:"true" description:"A concise and descriptive title of what the chart shows. Do not include the type of chart in the title."`
}

// AxisType returns the x axis type, or "" when unset.
func (in DisplayChartInput) AxisType() XAxisType {
	if in.XAxisType == nil {
		return ""
	}
	return *in.XAxisType
}

// DisplayChartOutput is either {error} when the configuration was rejected or
// {success:true}.
type DisplayChartOutput struct {
	Error   string `json:"error,omitempty" description:"Error message if validation failed"`
	Success bool   `json:"success,omitempty"`
}

// GrepInput is the input of grep.
type GrepInput struct {
	Pattern         string `json:"pattern" required:"true" description:"The regular expression to search for"`
	Path            string `json:"path,omitempty" description:"Directory to search in, relative to the project context (defaults to the root)"`
	Glob            string `json:"glob,omitempty" description:"Only search files whose name matches this glob (e.g. \"*.sql\")"`
	CaseInsensitive bool   `json:"case_insensitive,omitempty" description:"Match without regard to case"`
	ContextLines    int    `json:"context_lines,omitempty" description:"Lines of context to include before and after each match"`
	MaxResults      int    `json:"max_results,omitempty" description:"Maximum number of matches to return (default: 100)"`
}

// GrepMatch is one matching line.
type GrepMatch struct {
	Path          string   `json:"path"`
	LineNumber    int      `json:"line_number"`
	LineContent   string   `json:"line_content"`
	ContextBefore []string `json:"context_before,omitempty"`
	ContextAfter  []string `json:"context_after,omitempty"`
}

// GrepOutput is the output of grep.
type GrepOutput struct {
	Matches      []GrepMatch `json:"matches"`
	TotalMatches int         `json:"total_matches"`
	Truncated    bool        `json:"truncated"`
}

// ReadInput is the input of read.
type ReadInput struct {
	FilePath string `json:"file_path" required:"true" description:"Path of the file to read, relative to the project context"`
	Offset   int    `json:"offset,omitempty" description:"Line number to start reading from (1-based)"`
	Limit    int    `json:"limit,omitempty" description:"Maximum number of lines to return"`
}

// ReadOutput is the output of read.
type ReadOutput struct {
	Content            string `json:"content"`
	NumberOfTotalLines int    `json:"numberOfTotalLines"`
	Converted          string `json:"converted,omitempty"`
}

// ListInput is the input of list.
type ListInput struct {
	Path string `json:"path,omitempty" description:"Directory to list, relative to the project context (defaults to the root)"`
}

// ListEntry is one directory entry.
type ListEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size,omitempty"`
}

// ListOutput is the output of list.
type ListOutput struct {
	Path    string      `json:"path"`
	Entries []ListEntry `json:"entries"`
}

// SearchInput is the input of search.
type SearchInput struct {
	Pattern string `json:"pattern" required:"true" description:"Glob matched against file paths (e.g. \"**/*.md\", \"*orders*\")"`
}

// SearchFile is one matching file.
type SearchFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// SearchOutput is the output of search.
type SearchOutput struct {
	Files []SearchFile `json:"files"`
	Total int          `json:"total"`
}
