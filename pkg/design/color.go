package design

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Black is opaque black.
var Black = color.NRGBA{A: 0xff}

// ParseColor parses a CSS color as used in design records: "#rgb",
// "#rrggbb", "rgb(r,g,b)", "rgba(r,g,b,a)" or "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		if len(s) != 4 && len(s) != 7 {
			return color.NRGBA{}, fmt.Errorf("parse color %q: want #rgb or #rrggbb", s)
		}
		c, err := colorful.Hex(expandShortHex(s))
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
	case strings.HasPrefix(s, "rgb"):
		return parseFunctional(s)
	}
	return color.NRGBA{}, fmt.Errorf("parse color %q: unsupported format", s)
}

// MustParseColor is ParseColor that returns fallback on error.
func MustParseColor(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// Brightness returns the perceived brightness of c on a 0-255 scale,
// (299R + 587G + 114B) / 1000.
func Brightness(c color.NRGBA) float64 {
	return (299*float64(c.R) + 587*float64(c.G) + 114*float64(c.B)) / 1000
}

// IsLight reports whether text of color c needs a dark outline to stay
// legible. The threshold is strict: mid-grey #808080 counts as dark.
func IsLight(c color.NRGBA) bool {
	return Brightness(c) > 128
}

// HexString formats c as "#rrggbb".
func HexString(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func expandShortHex(s string) string {
	if len(s) != 4 {
		return s
	}
	return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
}

func parseFunctional(s string) (color.NRGBA, error) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, fmt.Errorf("parse color %q: malformed", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("parse color %q: want 3 or 4 components", s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		ch[i] = uint8(clamp(v, 0, 255))
	}

	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		alpha = clamp(a, 0, 1)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(alpha*255 + 0.5)}, nil
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
