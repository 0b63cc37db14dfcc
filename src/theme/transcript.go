package theme

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/chatview"
)

// Transcript writes grouped chat views as styled terminal text.
type Transcript struct {
	Palette Palette
	Styles  Styles
	// Width wraps prose. Zero leaves lines as they are.
	Width int
	// Color enables chroma highlighting of SQL and JSON.
	Color bool
	// MaxRows caps the table rows shown per query result.
	MaxRows int
	// CellWidth truncates table cells, measured in terminal cells.
	CellWidth int
}

// NewTranscript returns a transcript renderer with the usual limits.
func NewTranscript(p Palette, width int, color bool) *Transcript {
	return &Transcript{
		Palette:   p,
		Styles:    NewStyles(p),
		Width:     width,
		Color:     color,
		MaxRows:   20,
		CellWidth: 24,
	}
}

// Render writes the transcript of one chat.
func (t *Transcript) Render(w io.Writer, title string, groups []chatview.GroupView) error {
	var b strings.Builder
	b.WriteString(t.Styles.Header.Render(title))
	b.WriteString("\n")
	for _, g := range groups {
		b.WriteString("\n")
		t.message(&b, g.User)
		for _, r := range g.Responses {
			b.WriteString("\n")
			t.message(&b, r)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *Transcript) message(b *strings.Builder, m chatview.MessageView) {
	who := t.Styles.Assistant.Render("Assistant")
	if m.Role == aisdk.RoleUser {
		who = t.Styles.User.Render("You")
	}
	b.WriteString(who)
	if m.TimeAgo != "" {
		b.WriteString(" " + t.Styles.Badge.Render(m.TimeAgo))
	}
	b.WriteString("\n")

	for _, p := range m.Parts {
		switch {
		case p.Tool != nil:
			t.tool(b, *p.Tool)
		case p.Type == aisdk.PartReasoning:
			b.WriteString(t.prose(t.Styles.Muted, p.Text))
		case p.Type == aisdk.PartText:
			b.WriteString(t.prose(t.Styles.Text, p.Text))
		}
	}
}

func (t *Transcript) prose(style lipgloss.Style, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if t.Width > 0 {
		text = ansi.Wordwrap(text, t.Width, "")
	}
	return style.Render(text) + "\n"
}

func (t *Transcript) tool(b *strings.Builder, v chatview.ToolView) {
	marker := "○"
	if v.Settled {
		marker = "●"
	}
	line := marker + " " + v.Title
	if v.Subject != "" && v.Kind != chatview.KindExecuteSQL {
		line += " " + v.Subject
	}
	if v.Badge != "" {
		line += " " + t.Styles.Badge.Render("("+v.Badge+")")
	}
	if v.IsError {
		b.WriteString(t.Styles.Error.Render(line) + "\n")
	} else {
		b.WriteString(line + "\n")
	}

	if v.Kind == chatview.KindExecuteSQL && v.Subject != "" {
		b.WriteString(t.Styles.Box.Render(t.highlight(strings.TrimSpace(v.Subject), "sql")) + "\n")
	}
	if v.ErrorText != "" {
		b.WriteString(t.Styles.Error.Render(v.ErrorText) + "\n")
	}
	if v.Table != nil && len(v.Table.Columns) > 0 {
		b.WriteString(t.table(*v.Table))
	}
	if v.Body != "" {
		body := v.Body
		if v.Kind == chatview.KindUnknown {
			body = t.highlight(body, "json")
		}
		b.WriteString(t.Styles.Muted.Render(body) + "\n")
	}
}

// highlight colors code with chroma. It returns code unchanged when color is
// off or the lexer fails.
func (t *Transcript) highlight(code, lexer string) string {
	if !t.Color {
		return code
	}
	var b strings.Builder
	if err := quick.Highlight(&b, code, lexer, "terminal256", t.Palette.CodeStyle); err != nil {
		return code
	}
	return strings.TrimRight(b.String(), "\n")
}

func (t *Transcript) table(tbl chatview.Table) string {
	rows := tbl.Rows
	hidden := 0
	if t.MaxRows > 0 && len(rows) > t.MaxRows {
		hidden = len(rows) - t.MaxRows
		rows = rows[:t.MaxRows]
	}

	widths := make([]int, len(tbl.Columns))
	cell := func(s string) string {
		s = strings.ReplaceAll(s, "\n", " ")
		if t.CellWidth > 0 {
			s = ansi.Truncate(s, t.CellWidth, "…")
		}
		return s
	}
	header := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		header[i] = cell(c)
		widths[i] = ansi.StringWidth(header[i])
	}
	body := make([][]string, len(rows))
	for r, row := range rows {
		body[r] = make([]string, len(tbl.Columns))
		for i := range tbl.Columns {
			if i < len(row) {
				body[r][i] = cell(row[i])
			}
			widths[i] = max(widths[i], ansi.StringWidth(body[r][i]))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteString(" │ ")
			}
			b.WriteString(c)
			b.WriteString(strings.Repeat(" ", widths[i]-ansi.StringWidth(c)))
		}
		b.WriteString("\n")
	}
	writeRow(header)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	b.WriteString(t.Styles.Badge.Render(strings.Join(sep, "─┼─")) + "\n")
	for _, row := range body {
		writeRow(row)
	}
	if hidden > 0 {
		b.WriteString(t.Styles.Muted.Render(fmt.Sprintf("… %d more rows", hidden)) + "\n")
	}
	return b.String()
}
