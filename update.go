package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type lineMsg string

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case lineMsg:
		m.line = strings.TrimSuffix(string(msg), "\n")
		m.segments = parseMarkup(m.line)
	}
	return m, nil
}
