package tool_read

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/elee1766/naochat/src/agent"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/schema"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = schema.ToolRead

// DefaultLimit is the number of lines returned when no limit is given.
const DefaultLimit = 2000

// ConvertedMarkdown marks content that was converted from HTML.
const ConvertedMarkdown = "markdown"

const readPrompt = `Reads a file from the project context.

Usage:
- file_path is relative to the context folder (e.g. "databases/type=sqlite/database=shop/schema=main/table=orders/columns.md")
- By default up to 2000 lines are returned from the start of the file
- Use offset (1-based line number) and limit to page through long files
- HTML files are returned converted to markdown
- numberOfTotalLines is the line count of the whole file`

// Tool returns the read tool rooted at fs.
func Tool(fs afero.Fs) (agent.Tool, error) {
	return agent.NewGenericTool(Name, readPrompt, makeReadHandler(fs))
}

func makeReadHandler(fs afero.Fs) func(context.Context, schema.ReadInput) (schema.ReadOutput, error) {
	return func(ctx context.Context, input schema.ReadInput) (schema.ReadOutput, error) {
		logger := toolsutil.GetLogger()

		p, err := toolsutil.ResolvePath(input.FilePath)
		if err != nil {
			logger.Error("unsafe path rejected", "path", input.FilePath)
			return schema.ReadOutput{}, err
		}

		info, err := fs.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return schema.ReadOutput{}, fmt.Errorf("file not found: %s", toolsutil.DisplayPath(p))
			}
			return schema.ReadOutput{}, fmt.Errorf("failed to stat file: %w", err)
		}
		if info.IsDir() {
			return schema.ReadOutput{}, fmt.Errorf("%s is a directory, use list instead", toolsutil.DisplayPath(p))
		}
		if err := toolsutil.ValidateFileSize(info.Size()); err != nil {
			return schema.ReadOutput{}, err
		}

		content, err := afero.ReadFile(fs, p)
		if err != nil {
			return schema.ReadOutput{}, fmt.Errorf("failed to read file: %w", err)
		}
		if !toolsutil.IsTextFile(content) {
			return schema.ReadOutput{}, fmt.Errorf("%w: %s", toolsutil.ErrNotTextFile, toolsutil.DisplayPath(p))
		}

		text := string(content)
		out := schema.ReadOutput{}
		switch strings.ToLower(path.Ext(p)) {
		case ".html", ".htm":
			converted, err := htmlToMarkdown(text)
			if err != nil {
				return schema.ReadOutput{}, fmt.Errorf("failed to convert html: %w", err)
			}
			text = converted
			out.Converted = ConvertedMarkdown
		}

		lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		if text == "" {
			lines = nil
		}
		out.NumberOfTotalLines = len(lines)

		offset := max(input.Offset, 1)
		limit := input.Limit
		if limit <= 0 {
			limit = DefaultLimit
		}
		if offset > len(lines) {
			out.Content = ""
		} else {
			end := min(len(lines), offset-1+limit)
			out.Content = strings.Join(lines[offset-1:end], "\n")
		}

		logger.Info("read file", "path", p, "lines", out.NumberOfTotalLines, "offset", offset, "converted", out.Converted)
		return out, nil
	}
}

// htmlToMarkdown drops script and style content and converts the rest.
func htmlToMarkdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return "", err
	}
	converter := md.NewConverter("", true, nil)
	return converter.ConvertString(cleaned)
}
