package tool_grep

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/elee1766/naochat/src/agent"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/schema"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = schema.ToolGrep

// DefaultMaxResults is used when the model does not set max_results.
const DefaultMaxResults = 100

const grepPrompt = `Search file contents in the project context with a regular expression.

Usage:
- Supports full regex syntax (e.g., "revenue", "order_(id|date)", "CREATE\\s+VIEW")
- Filter files with the glob parameter (e.g., "*.md", "databases/**/columns.md")
- Synced warehouse schemas live under databases/; grep there to find tables and columns
- total_matches counts every match even when the returned list is truncated`

// Tool returns the grep tool rooted at fs.
func Tool(fs afero.Fs) (agent.Tool, error) {
	return agent.NewGenericTool(Name, grepPrompt, makeGrepHandler(fs))
}

func makeGrepHandler(fs afero.Fs) func(ctx context.Context, input schema.GrepInput) (schema.GrepOutput, error) {
	return func(ctx context.Context, input schema.GrepInput) (schema.GrepOutput, error) {
		logger := toolsutil.GetLogger()

		root, err := toolsutil.ResolvePath(input.Path)
		if err != nil {
			logger.Error("unsafe path rejected", "path", input.Path)
			return schema.GrepOutput{}, err
		}
		if _, err := fs.Stat(root); err != nil {
			if os.IsNotExist(err) {
				return schema.GrepOutput{}, fmt.Errorf("path not found: %s", toolsutil.DisplayPath(root))
			}
			return schema.GrepOutput{}, err
		}
		if input.MaxResults <= 0 {
			input.MaxResults = DefaultMaxResults
		}
		if input.ContextLines < 0 {
			input.ContextLines = 0
		}

		pattern := input.Pattern
		if input.CaseInsensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return schema.GrepOutput{}, fmt.Errorf("invalid regex pattern: %v", err)
		}

		var globRe *regexp.Regexp
		if input.Glob != "" {
			if globRe, err = toolsutil.GlobToRegexp(input.Glob); err != nil {
				return schema.GrepOutput{}, fmt.Errorf("invalid glob: %v", err)
			}
		}

		out := schema.GrepOutput{Matches: []schema.GrepMatch{}}
		err = afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil || info.IsDir() {
				return nil
			}
			rel := toolsutil.DisplayPath(p)
			if globRe != nil && !toolsutil.MatchGlob(globRe, input.Glob, rel) {
				return nil
			}
			if toolsutil.ValidateFileSize(info.Size()) != nil {
				return nil
			}
			content, err := afero.ReadFile(fs, p)
			if err != nil || !toolsutil.IsTextFile(content) {
				return nil
			}

			lines := splitLines(content)
			for i, line := range lines {
				if !re.MatchString(line) {
					continue
				}
				out.TotalMatches++
				if len(out.Matches) >= input.MaxResults {
					out.Truncated = true
					continue
				}
				m := schema.GrepMatch{Path: rel, LineNumber: i + 1, LineContent: line}
				if input.ContextLines > 0 {
					m.ContextBefore = lines[max(0, i-input.ContextLines):i]
					m.ContextAfter = lines[i+1 : min(len(lines), i+1+input.ContextLines)]
				}
				out.Matches = append(out.Matches, m)
			}
			return nil
		})
		if err != nil {
			return schema.GrepOutput{}, fmt.Errorf("grep failed: %w", err)
		}

		logger.Info("grep completed", "pattern", input.Pattern, "path", root, "matches", out.TotalMatches, "truncated", out.Truncated)
		return out, nil
	}
}

func splitLines(content []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), toolsutil.MaxFileSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
