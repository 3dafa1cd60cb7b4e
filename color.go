package tiled

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an ARGB color as written in map documents ("#AARRGGBB" or
// "#RRGGBB", the leading '#' being optional).
type Color struct {
	R, G, B, A uint8
}

// ParseColor parses a document color string.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	var c Color
	switch len(hex) {
	case 6:
		c.A = 0xff
	case 8:
		a, err := strconv.ParseUint(hex[:2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		c.A = uint8(a)
		hex = hex[2:]
	default:
		return Color{}, fmt.Errorf("parse color %q: expected 6 or 8 hex digits", s)
	}
	r, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	g, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	b, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	c.R, c.G, c.B = uint8(r), uint8(g), uint8(b)
	return c, nil
}

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}
