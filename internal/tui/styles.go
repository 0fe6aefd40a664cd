package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette for both screens.
type Theme struct {
	Title      lipgloss.Color
	Highlight  lipgloss.Color
	Text       lipgloss.Color
	Gauge      lipgloss.Color
	Border     lipgloss.Color
	Background lipgloss.Color
	// Chroma is the syntax highlighting style for fragment text.
	Chroma string
}

var themes = map[string]Theme{
	"synthwave": {
		Title:      lipgloss.Color("#f861b4"),
		Highlight:  lipgloss.Color("#00d3bb"),
		Text:       lipgloss.Color("#a1b1ff"),
		Gauge:      lipgloss.Color("#500323"),
		Border:     lipgloss.Color("#422ad5"),
		Background: lipgloss.Color("#09002f"),
		Chroma:     "dracula",
	},
	// Okabe-Ito colors, distinguishable with common color vision deficiencies.
	"accessibility": {
		Title:      lipgloss.Color("#cc79a7"),
		Highlight:  lipgloss.Color("#009e73"),
		Text:       lipgloss.Color("#56b4e9"),
		Gauge:      lipgloss.Color("#e69f00"),
		Border:     lipgloss.Color("#422ad5"),
		Background: lipgloss.Color("#000000"),
		Chroma:     "bw",
	},
}

// LookupTheme returns the named theme.
func LookupTheme(name string) (Theme, error) {
	t, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
	return t, nil
}

type styles struct {
	title     lipgloss.Style
	subtitle  lipgloss.Style
	success   lipgloss.Style
	err       lipgloss.Style
	warn      lipgloss.Style
	dim       lipgloss.Style
	text      lipgloss.Style
	selected  lipgloss.Style
	listItem  lipgloss.Style
	statusBar lipgloss.Style
	help      lipgloss.Style
	pane      lipgloss.Style
	focused   lipgloss.Style
	gutter    lipgloss.Style
}

func newStyles(t Theme) styles {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Title),

		subtitle: lipgloss.NewStyle().
			Foreground(t.Text),

		success: lipgloss.NewStyle().
			Foreground(t.Highlight),

		err: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		warn: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),

		dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),

		text: lipgloss.NewStyle().
			Foreground(t.Text),

		selected: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Highlight).
			Bold(true),

		listItem: lipgloss.NewStyle().
			Foreground(t.Text),

		statusBar: lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Background).
			Padding(0, 1),

		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),

		pane: pane,

		focused: pane.BorderForeground(t.Title),

		gutter: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}
