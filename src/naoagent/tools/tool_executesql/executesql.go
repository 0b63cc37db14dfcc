package tool_executesql

import (
	"context"
	"fmt"
	"time"

	"github.com/elee1766/naochat/src/agent"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/schema"
	"github.com/elee1766/naochat/src/warehouse"
)

// Tool name constant
const Name = schema.ToolExecuteSQL

const executeSQLPrompt = `Execute a SQL query against one of the configured data warehouses and return the result rows.

Usage:
- Only read queries (SELECT, WITH, EXPLAIN) are allowed. One statement per call.
- Look up table and column names in the synced schema docs (databases/ folder) before writing a query.
- Results are capped; aggregate in SQL rather than fetching raw rows.
- The returned id can be passed as query_id to display_chart to visualize the result.`

// Options tune query execution.
type Options struct {
	// MaxRows caps the rows returned to the model. Zero means 500.
	MaxRows int
	// Timeout bounds a single query. Zero means no bound beyond the caller's context.
	Timeout time.Duration
}

// Tool returns the execute_sql tool. Outputs are recorded in results so
// display_chart can validate against them.
func Tool(set *warehouse.Set, results *toolsutil.QueryResults, opts Options) (agent.Tool, error) {
	if opts.MaxRows <= 0 {
		opts.MaxRows = 500
	}
	return agent.NewGenericTool(Name, executeSQLPrompt, makeExecuteSQLHandler(set, results, opts))
}

func makeExecuteSQLHandler(set *warehouse.Set, results *toolsutil.QueryResults, opts Options) func(ctx context.Context, input schema.ExecuteSQLInput) (schema.ExecuteSQLOutput, error) {
	return func(ctx context.Context, input schema.ExecuteSQLInput) (schema.ExecuteSQLOutput, error) {
		logger := toolsutil.GetLogger()

		w, err := set.Get(input.Warehouse)
		if err != nil {
			return schema.ExecuteSQLOutput{}, err
		}

		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}

		start := time.Now()
		res, err := w.Query(ctx, input.SQLQuery, opts.MaxRows)
		if err != nil {
			logger.Warn("query failed", "warehouse", w.Name, "error", err)
			return schema.ExecuteSQLOutput{}, fmt.Errorf("query failed: %w", err)
		}

		out := schema.ExecuteSQLOutput{
			ID:        results.NextID(),
			Columns:   res.Columns,
			Data:      res.Rows,
			RowCount:  len(res.Rows),
			Truncated: res.Truncated,
		}
		results.Put(out)

		logger.Info("query executed", "warehouse", w.Name, "id", out.ID, "rows", out.RowCount, "truncated", out.Truncated, "duration", time.Since(start))
		return out, nil
	}
}
