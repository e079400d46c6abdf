package main

import (
	"fmt"
	"math"
)

const (
	chargingGlyph = "󰂄"
	// Discharge glyphs from empty to full.
	dischargeGlyphs = "󰁺󰁻󰁼󰁽󰁾󰁿󰂀󰂁󰂂󰁹"
)

// batteryGlyph picks the discharge glyph proportional to level.
func batteryGlyph(level int, glyphs string) string {
	runes := []rune(glyphs)
	if len(runes) == 0 {
		return ""
	}
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	i := int(math.Round(float64(level) / 100 * float64(len(runes)-1)))
	return string(runes[i])
}

func formatBattery(level int, charging bool, icons batteryIcons) string {
	glyph := icons.Charging
	if !charging {
		glyph = batteryGlyph(level, icons.Discharging)
	}
	return fmt.Sprintf("%s %d%%", glyph, level)
}
