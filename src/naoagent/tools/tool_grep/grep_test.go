package tool_grep

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/schema"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContextFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/databases/type=sqlite/database=shop/schema=main/table=orders/columns.md": "## Columns (3)\n\n| id | INTEGER |\n| customer_id | INTEGER |\n| amount | REAL |\n",
		"/databases/type=sqlite/database=shop/schema=main/table=customers/columns.md": "## Columns (2)\n\n| id | INTEGER |\n| Name | TEXT |\n",
		"/docs/metrics.md": "Revenue is the sum of order amount.\nrefunds are excluded\nsee orders table\n",
		"/blob.bin":        string([]byte{0x00, 0x01, 'i', 'd'}),
	}
	for p, c := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(c), 0o644))
	}
	return fs
}

func grep(t *testing.T, fs afero.Fs, args string) *aisdk.ToolResponse {
	t.Helper()
	tool, err := Tool(fs)
	require.NoError(t, err)
	resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{Function: aisdk.FunctionCall{Name: Name, Arguments: []byte(args)}})
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *aisdk.ToolResponse) schema.GrepOutput {
	t.Helper()
	require.False(t, resp.IsError, string(resp.Content))
	var out schema.GrepOutput
	require.NoError(t, json.Unmarshal(resp.Content, &out))
	return out
}

func TestGrep(t *testing.T) {
	fs := newContextFs(t)

	tests := []struct {
		name  string
		args  string
		total int
		paths []string
	}{
		{
			name:  "whole context",
			args:  `{"pattern": "customer"}`,
			total: 1,
			paths: []string{"databases/type=sqlite/database=shop/schema=main/table=orders/columns.md"},
		},
		{
			name:  "glob on base name",
			args:  `{"pattern": "orders?", "glob": "*.md", "path": "docs"}`,
			total: 2,
			paths: []string{"docs/metrics.md", "docs/metrics.md"},
		},
		{
			name:  "case sensitive by default",
			args:  `{"pattern": "^revenue"}`,
			total: 0,
		},
		{
			name:  "case insensitive",
			args:  `{"pattern": "^revenue", "case_insensitive": true}`,
			total: 1,
			paths: []string{"docs/metrics.md"},
		},
		{
			name:  "binary files skipped",
			args:  `{"pattern": "id", "glob": "*.bin"}`,
			total: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := decode(t, grep(t, fs, tt.args))
			assert.Equal(t, tt.total, out.TotalMatches)
			assert.False(t, out.Truncated)
			var paths []string
			for _, m := range out.Matches {
				paths = append(paths, m.Path)
			}
			assert.Equal(t, tt.paths, paths)
		})
	}
}

func TestGrepContextLines(t *testing.T) {
	out := decode(t, grep(t, newContextFs(t), `{"pattern": "refunds", "context_lines": 1}`))
	require.Len(t, out.Matches, 1)
	m := out.Matches[0]
	assert.Equal(t, 2, m.LineNumber)
	assert.Equal(t, "refunds are excluded", m.LineContent)
	assert.Equal(t, []string{"Revenue is the sum of order amount."}, m.ContextBefore)
	assert.Equal(t, []string{"see orders table"}, m.ContextAfter)
}

func TestGrepTruncationCountsEverything(t *testing.T) {
	fs := afero.NewMemMapFs()
	var b strings.Builder
	for i := range 12 {
		fmt.Fprintf(&b, "row %d\n", i)
	}
	require.NoError(t, afero.WriteFile(fs, "/rows.txt", []byte(b.String()), 0o644))

	out := decode(t, grep(t, fs, `{"pattern": "row", "max_results": 5}`))
	assert.Len(t, out.Matches, 5)
	assert.Equal(t, 12, out.TotalMatches)
	assert.True(t, out.Truncated)
}

func TestGrepErrors(t *testing.T) {
	fs := newContextFs(t)
	tests := []struct {
		args     string
		contains string
	}{
		{`{"pattern": "("}`, "invalid regex pattern"},
		{`{"pattern": "x", "path": "../etc"}`, "unsafe path"},
		{`{"pattern": "x", "path": "missing"}`, "path not found: missing"},
	}
	for _, tt := range tests {
		resp := grep(t, fs, tt.args)
		assert.True(t, resp.IsError)
		assert.Contains(t, string(resp.Content), tt.contains)
	}
}
