// Package theme renders chat transcripts for the terminal.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/elee1766/naochat/src/config"
)

// Palette is the set of colors a transcript is drawn with.
type Palette struct {
	Primary   lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Border    lipgloss.Color

	// CodeStyle is the chroma style used for SQL and JSON.
	CodeStyle string
}

var (
	Dark = Palette{
		Primary:   lipgloss.Color("#7aa2f7"),
		Text:      lipgloss.Color("#c0caf5"),
		TextMuted: lipgloss.Color("#565f89"),
		Error:     lipgloss.Color("#f7768e"),
		Success:   lipgloss.Color("#9ece6a"),
		Border:    lipgloss.Color("#3b4261"),
		CodeStyle: "monokai",
	}
	Light = Palette{
		Primary:   lipgloss.Color("#2e7de9"),
		Text:      lipgloss.Color("#3760bf"),
		TextMuted: lipgloss.Color("#848cb5"),
		Error:     lipgloss.Color("#f52a65"),
		Success:   lipgloss.Color("#587539"),
		Border:    lipgloss.Color("#a8aecb"),
		CodeStyle: "github",
	}
)

// For returns the palette of a user theme. The system theme follows the
// terminal background.
func For(t config.Theme) Palette {
	switch t {
	case config.ThemeLight:
		return Light
	case config.ThemeDark:
		return Dark
	}
	if lipgloss.HasDarkBackground() {
		return Dark
	}
	return Light
}

// Styles are the lipgloss styles derived from a palette.
type Styles struct {
	Header    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Badge     lipgloss.Style
	Box       lipgloss.Style
}

// NewStyles builds the styles for p.
func NewStyles(p Palette) Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		User:      lipgloss.NewStyle().Bold(true).Foreground(p.Success),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Text:      lipgloss.NewStyle().Foreground(p.Text),
		Muted:     lipgloss.NewStyle().Foreground(p.TextMuted).Italic(true),
		Error:     lipgloss.NewStyle().Foreground(p.Error),
		Badge:     lipgloss.NewStyle().Foreground(p.TextMuted),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
	}
}
