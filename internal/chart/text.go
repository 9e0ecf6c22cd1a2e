package chart

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// TextWidth estimates the rendered width in pixels of s at the given font
// size, using the advance widths of a fixed 7x13 face scaled to size.
func TextWidth(s string, size float64) float64 {
	adv := font.MeasureString(basicfont.Face7x13, s)
	return float64(adv) / 64 * size / 13
}

// Wrap breaks s into lines no wider than width pixels at the given font size.
// A single word wider than width gets a line to itself.
func Wrap(s string, width, size float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if TextWidth(candidate, size) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line = candidate
	}
	return append(lines, line)
}
