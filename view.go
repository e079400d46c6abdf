package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// segment is a run of text sharing one set of lemonbar attributes.
type segment struct {
	text      string
	align     Alignment
	fg, bg    string
	ul        string
	reverse   bool
	underline bool
}

// parseMarkup splits a lemonbar line into styled segments. Directives the
// preview cannot show (actions, offsets, fonts) are dropped.
func parseMarkup(line string) []segment {
	var (
		out []segment
		cur = segment{align: AlignLeft}
		sb  strings.Builder
	)
	flush := func() {
		if sb.Len() > 0 {
			s := cur
			s.text = sb.String()
			out = append(out, s)
			sb.Reset()
		}
	}

	for len(line) > 0 {
		start := strings.Index(line, "%{")
		if start < 0 {
			sb.WriteString(line)
			break
		}
		end := strings.IndexByte(line[start:], '}')
		if end < 0 {
			sb.WriteString(line)
			break
		}
		sb.WriteString(line[:start])
		flush()
		for _, cmd := range strings.Fields(line[start+2 : start+end]) {
			applyDirective(&cur, cmd)
		}
		line = line[start+end+1:]
	}
	flush()
	return out
}

func applyDirective(s *segment, cmd string) {
	arg := cmd[1:]
	switch cmd[0] {
	case 'l', 'c', 'r':
		if arg == "" {
			s.align = Alignment(cmd)
		}
	case 'F':
		s.fg = colorArg(arg)
	case 'B':
		s.bg = colorArg(arg)
	case 'U':
		s.ul = colorArg(arg)
	case 'R':
		s.reverse = !s.reverse
	case '+':
		if arg == "u" {
			s.underline = true
		}
	case '-':
		if arg == "u" {
			s.underline = false
		}
	case '!':
		if arg == "u" {
			s.underline = !s.underline
		}
	}
}

// colorArg maps lemonbar colors to lipgloss ones. "-" resets, and #AARRGGBB
// loses its alpha.
func colorArg(arg string) string {
	if arg == "-" {
		return ""
	}
	if len(arg) == 9 && arg[0] == '#' {
		return "#" + arg[3:]
	}
	return arg
}

func (m model) View() string {
	if m.width == 0 {
		return "Waiting for the first line.."
	}

	groups := map[Alignment][]string{}
	for _, seg := range m.segments {
		groups[seg.align] = append(groups[seg.align], m.segmentStyle(seg).Render(seg.text))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, groups[AlignLeft]...)
	center := lipgloss.JoinHorizontal(lipgloss.Top, groups[AlignCenter]...)
	right := lipgloss.JoinHorizontal(lipgloss.Top, groups[AlignRight]...)

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	leftPadding := max(0, (m.width-centerWidth)/2-leftWidth)
	rightPadding := max(0, m.width-leftWidth-leftPadding-centerWidth-rightWidth)

	gap := barStyle(m.colors)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		left,
		gap.Render(strings.Repeat(" ", leftPadding)),
		center,
		gap.Render(strings.Repeat(" ", rightPadding)),
		right,
	)
}
