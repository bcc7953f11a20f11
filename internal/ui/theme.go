package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/linksync/internal/config"
)

// Catppuccin Mocha palette, mutable so config can override.
var (
	ColorGreen  = lipgloss.Color("#a6e3a1")
	ColorYellow = lipgloss.Color("#f9e2af")
	ColorRed    = lipgloss.Color("#f38ba8")
	ColorMuted  = lipgloss.Color("#5a6278")
	ColorBright = lipgloss.Color("#cdd6f4")
)

// ApplyTheme overrides colors from a config ThemeConfig.
func ApplyTheme(tc config.ThemeConfig) {
	if tc.Green != nil {
		ColorGreen = lipgloss.Color(*tc.Green)
	}
	if tc.Yellow != nil {
		ColorYellow = lipgloss.Color(*tc.Yellow)
	}
	if tc.Red != nil {
		ColorRed = lipgloss.Color(*tc.Red)
	}
	if tc.Muted != nil {
		ColorMuted = lipgloss.Color(*tc.Muted)
	}
	if tc.Bright != nil {
		ColorBright = lipgloss.Color(*tc.Bright)
	}
}

// theme holds the styles of one presenter, built from the palette at
// construction time.
type theme struct {
	added   lipgloss.Style
	removed lipgloss.Style
	warn    lipgloss.Style
	failed  lipgloss.Style
	muted   lipgloss.Style
	path    lipgloss.Style
	color   bool
}

func newTheme(w io.Writer, color bool) theme {
	if !color || w == nil {
		return theme{}
	}
	r := lipgloss.NewRenderer(w)
	return theme{
		added:   r.NewStyle().Foreground(ColorGreen),
		removed: r.NewStyle().Foreground(ColorRed),
		warn:    r.NewStyle().Foreground(ColorYellow),
		failed:  r.NewStyle().Foreground(ColorRed).Bold(true),
		muted:   r.NewStyle().Foreground(ColorMuted),
		path:    r.NewStyle().Foreground(ColorBright),
		color:   true,
	}
}

// paint renders s in st, or returns s unchanged when color is off.
func (t theme) paint(st lipgloss.Style, s string) string {
	if !t.color {
		return s
	}
	return st.Render(s)
}
