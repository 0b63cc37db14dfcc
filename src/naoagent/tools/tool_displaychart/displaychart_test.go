package tool_displaychart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayChartTool(t *testing.T) {
	results := toolsutil.NewQueryResults(nil)
	results.Put(schema.ExecuteSQLOutput{ID: "query_1", Columns: []string{"day", "revenue", "orders"}})

	tool, err := Tool(results)
	require.NoError(t, err)

	tests := []struct {
		name      string
		args      string
		wantError string
	}{
		{
			name: "valid line chart",
			args: `{"query_id":"query_1","chart_type":"line","x_axis_key":"day","x_axis_type":"date","series":[{"data_key":"revenue"}],"title":"Revenue"}`,
		},
		{
			name: "null axis type",
			args: `{"query_id":"query_1","chart_type":"bar","x_axis_key":"day","x_axis_type":null,"series":[{"data_key":"revenue"},{"data_key":"orders","color":"#f00"}],"title":"Daily"}`,
		},
		{
			name:      "unknown query",
			args:      `{"query_id":"query_9","chart_type":"bar","x_axis_key":"day","series":[{"data_key":"revenue"}],"title":"t"}`,
			wantError: `No execute_sql result found with id "query_9".`,
		},
		{
			name:      "unknown x column",
			args:      `{"query_id":"query_1","chart_type":"bar","x_axis_key":"date","series":[{"data_key":"revenue"}],"title":"t"}`,
			wantError: `Column "date" not found in query results. Available columns: day, revenue, orders.`,
		},
		{
			name:      "unknown series column",
			args:      `{"query_id":"query_1","chart_type":"bar","x_axis_key":"day","series":[{"data_key":"profit"}],"title":"t"}`,
			wantError: `Series column "profit" not found in query results. Available columns: day, revenue, orders.`,
		},
		{
			name:      "empty series",
			args:      `{"query_id":"query_1","chart_type":"bar","x_axis_key":"day","series":[],"title":"t"}`,
			wantError: "At least one series is required.",
		},
		{
			name:      "bad chart type",
			args:      `{"query_id":"query_1","chart_type":"area","x_axis_key":"day","series":[{"data_key":"revenue"}],"title":"t"}`,
			wantError: `Invalid chart_type "area". Use one of: bar, line, pie.`,
		},
		{
			name:      "pie with two series",
			args:      `{"query_id":"query_1","chart_type":"pie","x_axis_key":"day","series":[{"data_key":"revenue"},{"data_key":"orders"}],"title":"t"}`,
			wantError: "Pie charts take exactly one series.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{
				Function: aisdk.FunctionCall{Name: Name, Arguments: json.RawMessage(tt.args)},
			})
			require.NoError(t, err)
			require.False(t, resp.IsError, string(resp.Content))

			var out schema.DisplayChartOutput
			require.NoError(t, json.Unmarshal(resp.Content, &out))
			if tt.wantError == "" {
				assert.True(t, out.Success)
				assert.Empty(t, out.Error)
				return
			}
			assert.False(t, out.Success)
			assert.Equal(t, tt.wantError, out.Error)
		})
	}
}
