package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	defaultForeground = lipgloss.Color("#FFFFFF")
	defaultBackground = lipgloss.Color("#000000")
)

func orDefault(c string, def lipgloss.Color) lipgloss.Color {
	if c == "" {
		return def
	}
	return lipgloss.Color(c)
}

func barStyle(colors Colors) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(orDefault(colors.Foreground, defaultForeground)).
		Background(orDefault(colors.Background, defaultBackground))
}

// segmentStyle resolves a segment's colors against the bar defaults.
// Terminals draw underlines in the text color, so the underline color is
// not shown.
func (m model) segmentStyle(seg segment) lipgloss.Style {
	fg := orDefault(seg.fg, orDefault(m.colors.Foreground, defaultForeground))
	bg := orDefault(seg.bg, orDefault(m.colors.Background, defaultBackground))
	if seg.reverse {
		fg, bg = bg, fg
	}
	return lipgloss.NewStyle().
		Foreground(fg).
		Background(bg).
		Underline(seg.underline)
}
