package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const valuePlaceholder = "{value}"

// Icon is either plain text or text with its own colors.
type Icon struct {
	Str        string `yaml:"str"`
	Foreground string `yaml:"foreground"`
	Background string `yaml:"background"`
}

func (i *Icon) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&i.Str)
	}
	type plain Icon
	var p plain
	if err := decodeStrict(node, &p); err != nil {
		return err
	}
	if p.Str == "" {
		return fmt.Errorf("icon: missing str")
	}
	*i = Icon(p)
	return nil
}

// Spacing is a left/right run of spaces. YAML accepts `2` or `[1, 3]`.
type Spacing struct {
	Left, Right int
}

func (s Spacing) IsZero() bool { return s.Left == 0 && s.Right == 0 }

func (s *Spacing) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var n int
		if err := node.Decode(&n); err != nil {
			return err
		}
		s.Left, s.Right = n, n
	case yaml.SequenceNode:
		var pair []int
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("spacing: want [left, right], got %d values", len(pair))
		}
		s.Left, s.Right = pair[0], pair[1]
	default:
		return fmt.Errorf("spacing: want int or [left, right]")
	}
	if s.Left < 0 || s.Right < 0 {
		return fmt.Errorf("spacing: negative value")
	}
	return nil
}

func foreground(s, color string) string { return "%{F" + color + "}" + s + "%{F-}" }
func background(s, color string) string { return "%{B" + color + "}" + s + "%{B-}" }
func underline(s, color string) string  { return "%{U" + color + "}" + s + "%{U-}" }
func swap(s string) string              { return "%{R}" + s + "%{R}" }
func noUnderline(s string) string       { return "%{!u}" + s + "%{!u}" }

func spaced(s string, sp Spacing) string {
	return strings.Repeat(" ", sp.Left) + s + strings.Repeat(" ", sp.Right)
}

func formatIcon(icon Icon) string {
	s := icon.Str
	if icon.Foreground != "" {
		s = foreground(s, icon.Foreground)
	}
	if icon.Background != "" {
		s = background(s, icon.Background)
	}
	return s
}

// buildTemplate decorates the value placeholder. Padding sits inside the
// colored region, margin outside it.
func buildTemplate(c Common) string {
	t := valuePlaceholder
	if c.Icon.Str != "" {
		t = formatIcon(c.Icon) + " " + t
	}
	if !c.Padding.IsZero() {
		t = spaced(t, c.Padding)
	}
	if c.Foreground != "" {
		t = foreground(t, c.Foreground)
	}
	if c.Background != "" {
		t = background(t, c.Background)
	}
	if c.Swap {
		t = swap(t)
	}
	if !c.Margin.IsZero() {
		t = spaced(t, c.Margin)
	}
	return t
}

// fill replaces the value placeholder only; any other brace token is kept as
// literal text.
func fill(template, value string) string {
	return strings.ReplaceAll(template, valuePlaceholder, value)
}
