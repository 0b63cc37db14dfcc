package tool_search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/schema"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTool(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/databases/type=sqlite/database=shop/schema=main/table=orders/columns.md",
		"/databases/type=sqlite/database=shop/schema=main/table=orders/preview.md",
		"/databases/type=sqlite/database=shop/schema=main/table=customers/columns.md",
		"/docs/kpis.md",
		"/docs/queries.sql",
		"/agent.md",
	} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}

	tool, err := Tool(fs)
	require.NoError(t, err)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"*.md", []string{
			"agent.md",
			"databases/type=sqlite/database=shop/schema=main/table=customers/columns.md",
			"databases/type=sqlite/database=shop/schema=main/table=orders/columns.md",
			"databases/type=sqlite/database=shop/schema=main/table=orders/preview.md",
			"docs/kpis.md",
		}},
		{"**/table=orders/*", []string{
			"databases/type=sqlite/database=shop/schema=main/table=orders/columns.md",
			"databases/type=sqlite/database=shop/schema=main/table=orders/preview.md",
		}},
		{"docs/*.{md,sql}", []string{"docs/kpis.md", "docs/queries.sql"}},
		{"*.md/", []string{}},
		{"nothing*", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			args, err := json.Marshal(map[string]string{"pattern": tt.pattern})
			require.NoError(t, err)
			resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{Function: aisdk.FunctionCall{Name: Name, Arguments: args}})
			require.NoError(t, err)
			require.False(t, resp.IsError, string(resp.Content))

			var out schema.SearchOutput
			require.NoError(t, json.Unmarshal(resp.Content, &out))
			paths := []string{}
			for _, f := range out.Files {
				paths = append(paths, f.Path)
				assert.Equal(t, int64(1), f.Size)
			}
			assert.Equal(t, tt.want, paths)
			assert.Equal(t, len(tt.want), out.Total)
		})
	}
}
