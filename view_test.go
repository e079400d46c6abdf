package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
)

func TestParseMarkup(t *testing.T) {
	got := parseMarkup("%{l}L%{c}%{F#ff0000}mid%{F-}%{r}%{R}R%{R}%{U#80ff00ff}%{!u}u")
	want := []segment{
		{text: "L", align: AlignLeft},
		{text: "mid", align: AlignCenter, fg: "#ff0000"},
		{text: "R", align: AlignRight, reverse: true},
		{text: "u", align: AlignRight, ul: "#ff00ff", underline: true},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(segment{})); diff != "" {
		t.Errorf("parseMarkup() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMarkupEdgeCases(t *testing.T) {
	tests := []struct {
		in   string
		want []segment
	}{
		{"plain", []segment{{text: "plain", align: AlignLeft}}},
		{"%{F#fff B#000}x", []segment{{text: "x", align: AlignLeft, fg: "#fff", bg: "#000"}}},
		{"%{A:cmd:}click%{A}", []segment{{text: "click", align: AlignLeft}}},
		{"50%{ broken", []segment{{text: "50%{ broken", align: AlignLeft}}},
		{"", nil},
	}
	for _, tt := range tests {
		got := parseMarkup(tt.in)
		if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(segment{})); diff != "" {
			t.Errorf("parseMarkup(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestModelUpdate(t *testing.T) {
	var m tea.Model = initialModel(Colors{Foreground: "#ffffff", Background: "#000000"})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 20, Height: 1})
	m, _ = m.Update(lineMsg("%{l}L%{c}mid%{r}R\n"))

	mm := m.(model)
	if mm.line != "%{l}L%{c}mid%{r}R" {
		t.Errorf("line = %q", mm.line)
	}
	if len(mm.segments) != 3 {
		t.Errorf("segments = %+v", mm.segments)
	}
	if w := lipgloss.Width(mm.View()); w != 20 {
		t.Errorf("View() width = %d, want 20", w)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not produce tea.QuitMsg")
	}
}

func TestViewBeforeResize(t *testing.T) {
	if got := initialModel(Colors{}).View(); got != "Waiting for the first line.." {
		t.Errorf("View() = %q", got)
	}
}

type fakeProgram struct {
	msgs []tea.Msg
	quit bool
}

func (p *fakeProgram) Send(msg tea.Msg) { p.msgs = append(p.msgs, msg) }
func (p *fakeProgram) Quit()            { p.quit = true }

func TestPreviewSink(t *testing.T) {
	p := &fakeProgram{}
	sink := NewPreviewSink(p)
	if err := sink.WriteLine("%{c}x\n"); err != nil {
		t.Fatal(err)
	}
	if len(p.msgs) != 1 || p.msgs[0] != lineMsg("%{c}x\n") {
		t.Errorf("sent %v", p.msgs)
	}
	sink.Close()
	if !p.quit {
		t.Error("Close() did not quit the program")
	}
}
