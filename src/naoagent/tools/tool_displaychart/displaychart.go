package tool_displaychart

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/elee1766/naochat/src/agent"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/schema"
)

// Tool name constant
const Name = schema.ToolDisplayChart

const displayChartPrompt = "Display a chart visualization of the data from a previous `execute_sql` tool call."

// Tool returns the display_chart tool. Configurations are checked against
// the columns of the referenced execute_sql result; problems come back as
// {error} so the model can fix the call.
func Tool(results *toolsutil.QueryResults) (agent.Tool, error) {
	return agent.NewGenericTool(Name, displayChartPrompt, func(ctx context.Context, input schema.DisplayChartInput) (schema.DisplayChartOutput, error) {
		if msg := Validate(input, results); msg != "" {
			toolsutil.GetLogger().Info("chart rejected", "query_id", input.QueryID, "reason", msg)
			return schema.DisplayChartOutput{Error: msg}, nil
		}
		return schema.DisplayChartOutput{Success: true}, nil
	})
}

// Validate returns a description of what is wrong with the chart
// configuration, or "" when it can be drawn.
func Validate(input schema.DisplayChartInput, results *toolsutil.QueryResults) string {
	if !input.ChartType.Valid() {
		return fmt.Sprintf("Invalid chart_type %q. Use one of: bar, line, pie.", input.ChartType)
	}
	if at := input.AxisType(); at != "" && !at.Valid() {
		return fmt.Sprintf("Invalid x_axis_type %q. Use one of: date, number, category, or null.", at)
	}
	if len(input.Series) == 0 {
		return "At least one series is required."
	}

	out, ok := results.Get(input.QueryID)
	if !ok {
		return fmt.Sprintf("No execute_sql result found with id %q.", input.QueryID)
	}
	available := strings.Join(out.Columns, ", ")
	if !slices.Contains(out.Columns, input.XAxisKey) {
		return fmt.Sprintf("Column %q not found in query results. Available columns: %s.", input.XAxisKey, available)
	}
	for _, s := range input.Series {
		if !slices.Contains(out.Columns, s.DataKey) {
			return fmt.Sprintf("Series column %q not found in query results. Available columns: %s.", s.DataKey, available)
		}
	}
	if input.ChartType == schema.ChartPie && len(input.Series) > 1 {
		return "Pie charts take exactly one series."
	}
	return ""
}
