package chart

import (
	"image/color"
	"strconv"
	"strings"
)

// Named colours used by the scenes.
const (
	Blue   = "#0000ff"
	Green  = "#008000"
	Orange = "#ffa500"
	Red    = "#ff0000"
	Black  = "#000000"
	Grey   = "#666666"
	White  = "#ffffff"
)

// Palette is the ordered colour list given to series in order.
var Palette = []string{Blue, Green, Orange, Red, Black}

// ParseHex parses "#rrggbb" or "#rgb". Anything else is opaque black.
func ParseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{A: 0xff}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
