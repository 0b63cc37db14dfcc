package tool_search

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/elee1766/naochat/src/agent"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/schema"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = schema.ToolSearch

const searchPrompt = `Find files in the project context by glob pattern.

Usage:
- "**" matches across folders, "*" and "?" stay within one path segment
- Patterns without a "/" match file names at any depth ("*orders*", "*.md")
- Examples: "databases/**/columns.md", "**/table=orders/*", "docs/*.{md,sql}"
- Results are sorted by path`

// Tool returns the search tool rooted at fs.
func Tool(fs afero.Fs) (agent.Tool, error) {
	return agent.NewGenericTool(Name, searchPrompt, makeSearchHandler(fs))
}

func makeSearchHandler(fs afero.Fs) func(context.Context, schema.SearchInput) (schema.SearchOutput, error) {
	return func(ctx context.Context, input schema.SearchInput) (schema.SearchOutput, error) {
		logger := toolsutil.GetLogger()

		re, err := toolsutil.GlobToRegexp(input.Pattern)
		if err != nil {
			return schema.SearchOutput{}, fmt.Errorf("invalid pattern: %v", err)
		}

		out := schema.SearchOutput{Files: []schema.SearchFile{}}
		err = afero.Walk(fs, "/", func(p string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil || info.IsDir() {
				return nil
			}
			rel := toolsutil.DisplayPath(p)
			if toolsutil.MatchGlob(re, input.Pattern, rel) {
				out.Files = append(out.Files, schema.SearchFile{Path: rel, Size: info.Size()})
			}
			return nil
		})
		if err != nil {
			return schema.SearchOutput{}, fmt.Errorf("search failed: %w", err)
		}

		sort.Slice(out.Files, func(i, j int) bool { return out.Files[i].Path < out.Files[j].Path })
		out.Total = len(out.Files)

		logger.Info("search completed", "pattern", input.Pattern, "files", out.Total)
		return out, nil
	}
}
