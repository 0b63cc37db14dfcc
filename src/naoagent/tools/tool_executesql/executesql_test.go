package tool_executesql

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/elee1766/naochat/src/agent"
	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/config"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/schema"
	"github.com/elee1766/naochat/src/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWarehouses(t *testing.T) *warehouse.Set {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE sales (day TEXT, amount INTEGER);
		INSERT INTO sales VALUES ('2024-01-01', 5), ('2024-01-02', 7), ('2024-01-03', 9);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	w, err := warehouse.Open(config.WarehouseConfig{Name: "sales", Driver: config.DriverSQLite, DSN: path})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return warehouse.NewSet(w)
}

func run(t *testing.T, tool agent.Tool, args string) *aisdk.ToolResponse {
	t.Helper()
	resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{
		ID:       "call_1",
		Function: aisdk.FunctionCall{Name: Name, Arguments: json.RawMessage(args)},
	})
	require.NoError(t, err)
	return resp
}

func TestExecuteSQLTool(t *testing.T) {
	results := toolsutil.NewQueryResults(nil)
	tool, err := Tool(newWarehouses(t), results, Options{MaxRows: 2})
	require.NoError(t, err)

	resp := run(t, tool, `{"sql_query": "SELECT day, amount FROM sales ORDER BY day"}`)
	require.False(t, resp.IsError, string(resp.Content))

	var out schema.ExecuteSQLOutput
	require.NoError(t, json.Unmarshal(resp.Content, &out))
	assert.Equal(t, "query_1", out.ID)
	assert.Equal(t, []string{"day", "amount"}, out.Columns)
	assert.Equal(t, 2, out.RowCount)
	assert.True(t, out.Truncated)
	assert.Equal(t, "2024-01-01", out.Data[0]["day"])

	stored, ok := results.Get("query_1")
	require.True(t, ok)
	assert.Equal(t, out.Columns, stored.Columns)

	resp = run(t, tool, `{"sql_query": "SELECT COUNT(*) AS n FROM sales", "warehouse": "sales"}`)
	require.False(t, resp.IsError)
	require.NoError(t, json.Unmarshal(resp.Content, &out))
	assert.Equal(t, "query_2", out.ID)
}

func TestExecuteSQLErrors(t *testing.T) {
	tool, err := Tool(newWarehouses(t), toolsutil.NewQueryResults(nil), Options{})
	require.NoError(t, err)

	tests := []struct {
		name     string
		args     string
		contains string
	}{
		{"missing query", `{}`, "required field 'sql_query' is missing"},
		{"write query", `{"sql_query": "DELETE FROM sales"}`, "only read queries are allowed"},
		{"unknown warehouse", `{"sql_query": "SELECT 1", "warehouse": "crm"}`, "unknown warehouse"},
		{"bad sql", `{"sql_query": "SELECT * FROM nope"}`, "no such table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := run(t, tool, tt.args)
			assert.True(t, resp.IsError)
			assert.Contains(t, string(resp.Content), tt.contains)
		})
	}
}

func TestExecuteSQLWithoutWarehouse(t *testing.T) {
	tool, err := Tool(warehouse.NewSet(), toolsutil.NewQueryResults(nil), Options{})
	require.NoError(t, err)
	resp := run(t, tool, `{"sql_query": "SELECT 1"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "no warehouse is configured")
}
