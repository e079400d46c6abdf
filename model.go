package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

// model previews the feed in a terminal: the latest composed line, styled
// the way lemonbar would draw it.
type model struct {
	line     string
	segments []segment
	colors   Colors

	width  int
	height int
}

func initialModel(colors Colors) model {
	return model{colors: colors}
}

func (m model) Init() tea.Cmd {
	return nil
}

type programSender interface {
	Send(msg tea.Msg)
	Quit()
}

// PreviewSink hands composed lines to a running preview program.
type PreviewSink struct {
	program programSender
}

func NewPreviewSink(p programSender) *PreviewSink {
	return &PreviewSink{program: p}
}

func (s *PreviewSink) WriteLine(line string) error {
	s.program.Send(lineMsg(line))
	return nil
}

func (s *PreviewSink) Close() error {
	s.program.Quit()
	return nil
}
