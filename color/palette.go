package color

import (
	"github.com/lucasb-eyer/go-colorful"
)

type entry struct {
	r, g, b uint8
}

func (e entry) rgb() (uint8, uint8, uint8) { return e.r, e.g, e.b }

func (e entry) colorful() colorful.Color {
	return colorful.Color{R: float64(e.r) / 255, G: float64(e.g) / 255, B: float64(e.b) / 255}
}

var basic16 = [16]entry{
	{0x00, 0x00, 0x00}, {0xcd, 0x00, 0x00}, {0x00, 0xcd, 0x00}, {0xcd, 0xcd, 0x00},
	{0x00, 0x00, 0xee}, {0xcd, 0x00, 0xcd}, {0x00, 0xcd, 0xcd}, {0xe5, 0xe5, 0xe5},
	{0x7f, 0x7f, 0x7f}, {0xff, 0x00, 0x00}, {0x00, 0xff, 0x00}, {0xff, 0xff, 0x00},
	{0x5c, 0x5c, 0xff}, {0xff, 0x00, 0xff}, {0x00, 0xff, 0xff}, {0xff, 0xff, 0xff},
}

// Levels of the 6x6x6 xterm colour cube.
var q2c = [6]uint8{0x00, 0x5f, 0x87, 0xaf, 0xd7, 0xff}

// Levels of the 4x4x4 rxvt-unicode 88-colour cube and its grey ramp.
var (
	q4c    = [4]uint8{0x00, 0x8b, 0xcd, 0xff}
	grey88 = [8]uint8{0x2e, 0x5c, 0x73, 0x8b, 0xa2, 0xb9, 0xd0, 0xe7}
)

var (
	xterm256 [256]entry
	rxvt88   [88]entry

	to88 [256]uint8
	to16 [256]uint8
)

func init() {
	copy(xterm256[:], basic16[:])
	for i := 0; i < 216; i++ {
		xterm256[16+i] = entry{q2c[i/36], q2c[(i/6)%6], q2c[i%6]}
	}
	for i := 0; i < 24; i++ {
		v := uint8(8 + 10*i)
		xterm256[232+i] = entry{v, v, v}
	}

	copy(rxvt88[:], basic16[:])
	for i := 0; i < 64; i++ {
		rxvt88[16+i] = entry{q4c[i/16], q4c[(i/4)%4], q4c[i%4]}
	}
	for i, v := range grey88 {
		rxvt88[80+i] = entry{v, v, v}
	}

	for i := 0; i < 256; i++ {
		if i < 16 {
			to88[i] = uint8(i)
			to16[i] = uint8(i)
			continue
		}
		to88[i] = uint8(nearest(xterm256[i], rxvt88[16:]) + 16)
		to16[i] = uint8(nearest(xterm256[i], basic16[:]))
	}
}

// nearest returns the index in palette closest to e by CIE L*a*b* distance.
func nearest(e entry, palette []entry) int {
	target := e.colorful()
	best, bestDist := 0, -1.0
	for i, p := range palette {
		d := target.DistanceLab(p.colorful())
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func distSq(r1, g1, b1, r2, g2, b2 int) int {
	return (r1-r2)*(r1-r2) + (g1-g2)*(g1-g2) + (b1-b2)*(b1-b2)
}

func to6Cube(v int) int {
	if v < 48 {
		return 0
	}
	if v < 114 {
		return 1
	}
	return (v - 35) / 40
}

// FindRGB returns the 256-colour palette index closest to an RGB value,
// choosing between the colour cube and the grey ramp.
func FindRGB(r, g, b uint8) int {
	ir, ig, ib := int(r), int(g), int(b)

	qr, qg, qb := to6Cube(ir), to6Cube(ig), to6Cube(ib)
	cr, cg, cb := int(q2c[qr]), int(q2c[qg]), int(q2c[qb])
	cube := 16 + 36*qr + 6*qg + qb
	if cr == ir && cg == ig && cb == ib {
		return cube
	}

	avg := (ir + ig + ib) / 3
	greyIdx := 23
	if avg <= 238 {
		greyIdx = (avg - 3) / 10
	}
	grey := 8 + 10*greyIdx

	if distSq(grey, grey, grey, ir, ig, ib) < distSq(cr, cg, cb, ir, ig, ib) {
		return 232 + greyIdx
	}
	return cube
}

// To256 converts an RGB colour to its nearest 256-colour palette entry.
// Other colours are returned unchanged.
func To256(c Color) Color {
	if !c.IsRGB() {
		return c
	}
	r, g, b := c.Components()
	return Indexed(FindRGB(r, g, b))
}

// Map256To88 maps a 256-colour palette index onto the 88-colour palette.
func Map256To88(n int) int {
	return int(to88[n&0xff])
}

// Map256To16 maps a 256-colour palette index onto the 16 ANSI colours.
func Map256To16(n int) int {
	return int(to16[n&0xff])
}

// To16 converts any non-default colour to a basic colour.
func To16(c Color) Color {
	switch {
	case c.IsDefault() || c.IsBasic():
		return c
	case c.IsRGB():
		c = To256(c)
	}
	return Basic(Map256To16(c.Index()))
}
