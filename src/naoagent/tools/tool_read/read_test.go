package tool_read

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

func newReadTool(t *testing.T) func(args string) *aisdk.ToolResponse {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/docs/kpis.md": "# KPIs\nrevenue\norders\naov\n",
		"/docs/empty.md": "",
		"/docs/page.html": `<html><head><style>p{color:red}</style><script>track()</script></head>
<body><h1>Churn</h1><p>Customers who <strong>left</strong>.</p></body></html>`,
		"/blob.bin": string([]byte{0x00, 0x10, 0x20}),
	}
	for p, c := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(c), 0o644))
	}
	tool, err := Tool(fs)
	require.NoError(t, err)

	return func(args string) *aisdk.ToolResponse {
		resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{Function: aisdk.FunctionCall{Name: Name, Arguments: []byte(args)}})
		require.NoError(t, err)
		return resp
	}
}

func decode(t *testing.T, resp *aisdk.ToolResponse) schema.ReadOutput {
	t.Helper()
	require.False(t, resp.IsError, string(resp.Content))
	var out schema.ReadOutput
	require.NoError(t, json.Unmarshal(resp.Content, &out))
	return out
}

func TestRead(t *testing.T) {
	read := newReadTool(t)

	tests := []struct {
		name    string
		args    string
		content string
		total   int
	}{
		{"whole file", `{"file_path": "docs/kpis.md"}`, "# KPIs\nrevenue\norders\naov", 4},
		{"leading slash", `{"file_path": "/docs/kpis.md"}`, "# KPIs\nrevenue\norders\naov", 4},
		{"offset and limit", `{"file_path": "docs/kpis.md", "offset": 2, "limit": 2}`, "revenue\norders", 4},
		{"offset past end", `{"file_path": "docs/kpis.md", "offset": 10}`, "", 4},
		{"empty file", `{"file_path": "docs/empty.md"}`, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := decode(t, read(tt.args))
			assert.Equal(t, tt.content, out.Content)
			assert.Equal(t, tt.total, out.NumberOfTotalLines)
			assert.Empty(t, out.Converted)
		})
	}
}

func TestReadHTML(t *testing.T) {
	out := decode(t, newReadTool(t)(`{"file_path": "docs/page.html"}`))
	assert.Equal(t, ConvertedMarkdown, out.Converted)
	assert.Contains(t, out.Content, "# Churn")
	assert.Contains(t, out.Content, "Customers who **left**.")
	assert.NotContains(t, out.Content, "track()")
	assert.NotContains(t, out.Content, "color:red")
}

func TestReadErrors(t *testing.T) {
	read := newReadTool(t)
	tests := []struct {
		args string
		want string
	}{
		{`{"file_path": "docs/missing.md"}`, "file not found: docs/missing.md"},
		{`{"file_path": "docs"}`, "docs is a directory, use list instead"},
		{`{"file_path": "blob.bin"}`, "not a text file: blob.bin"},
		{`{}`, "validation failed: required field 'file_path' is missing"},
	}
	for _, tt := range tests {
		resp := read(tt.args)
		assert.True(t, resp.IsError)
		assert.Contains(t, string(resp.Content), tt.want)
	}
}
