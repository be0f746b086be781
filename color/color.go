// Package color holds terminal colour values and the mappings used to
// degrade them for terminals with smaller palettes.
package color

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a terminal colour. The zero value is the terminal's default colour.
// The high byte holds the kind, the low bytes the index or packed RGB value.
type Color uint32

const (
	Default Color = 0

	kindBasic Color = 1 << 24
	kind256   Color = 2 << 24
	kindRGB   Color = 3 << 24
	kindMask  Color = 0xff << 24
)

// Basic ANSI colours.
const (
	Black Color = kindBasic | iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	BrightBlack
	BrightRed
	BrightGreen
	BrightYellow
	BrightBlue
	BrightMagenta
	BrightCyan
	BrightWhite
)

var basicNames = []string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
}

// Basic returns one of the 16 ANSI colours. n is clamped to 0-15.
func Basic(n int) Color {
	if n < 0 {
		n = 0
	}
	return kindBasic | Color(n&0xf)
}

// Indexed returns a colour from the 256-colour palette.
func Indexed(n int) Color {
	return kind256 | Color(n&0xff)
}

// RGB returns a 24-bit colour.
func RGB(r, g, b uint8) Color {
	return kindRGB | Color(r)<<16 | Color(g)<<8 | Color(b)
}

func (c Color) IsDefault() bool { return c == Default }
func (c Color) IsBasic() bool   { return c&kindMask == kindBasic }
func (c Color) Is256() bool     { return c&kindMask == kind256 }
func (c Color) IsRGB() bool     { return c&kindMask == kindRGB }

// Index returns the palette index of a basic or 256 colour, or -1.
func (c Color) Index() int {
	switch c & kindMask {
	case kindBasic:
		return int(c & 0xf)
	case kind256:
		return int(c & 0xff)
	}
	return -1
}

// Bright reports whether c is one of the bright basic colours (8-15).
func (c Color) Bright() bool {
	return c.IsBasic() && c.Index() >= 8
}

// Components returns the red, green and blue components of c. Palette
// colours use the xterm palette; the default colour returns zeros.
func (c Color) Components() (r, g, b uint8) {
	switch c & kindMask {
	case kindRGB:
		return uint8(c >> 16), uint8(c >> 8), uint8(c)
	case kindBasic, kind256:
		return xterm256[c.Index()].rgb()
	}
	return 0, 0, 0
}

func (c Color) String() string {
	switch c & kindMask {
	case kindBasic:
		n := c.Index()
		if n >= 8 {
			return "bright" + basicNames[n-8]
		}
		return basicNames[n]
	case kind256:
		return fmt.Sprintf("colour%d", c.Index())
	case kindRGB:
		r, g, b := c.Components()
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return "default"
}

// Parse reads a colour name as written in configuration and on the command
// line: "default", a basic name such as "red" or "brightred", "colourN" or
// "colorN", or "#rrggbb".
func Parse(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "default":
		return Default, nil
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return Default, fmt.Errorf("failed to parse colour %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return RGB(r, g, b), nil
	case strings.HasPrefix(s, "colour") || strings.HasPrefix(s, "color"):
		digits := strings.TrimPrefix(strings.TrimPrefix(s, "colour"), "color")
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 || n > 255 {
			return Default, fmt.Errorf("invalid colour index %q", s)
		}
		return Indexed(n), nil
	}

	name := strings.TrimPrefix(s, "bright")
	for i, basic := range basicNames {
		if basic != name {
			continue
		}
		if name != s {
			i += 8
		}
		return Basic(i), nil
	}
	return Default, fmt.Errorf("unknown colour %q", s)
}
