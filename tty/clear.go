package tty

import (
	"bytes"
	"ttycodec/capability"
)

// Clears shorter than this are written as spaces.
const shortClear = 3

// genuineBCE reports whether erase sequences fill with bg on this terminal.
func (o *Output) genuineBCE(bg Rendition) bool {
	if o.forceSpaces {
		return false
	}
	return o.cat.Flag(capability.Bce) || bg.Bg.IsDefault()
}

func blankRendition(defaults Rendition) Rendition {
	return Rendition{Fg: defaults.Fg, Bg: defaults.Bg}
}

// ClearRegion blanks n cells of row y starting at column x using the
// background of defaults. wrapped says row y continues row y-1, so a pending
// wrap can be used instead of positioning.
func (o *Output) ClearRegion(x, y, n int, defaults Rendition, wrapped bool) {
	if n <= 0 {
		return
	}
	blank := blankRendition(defaults)
	o.ApplyAttributes(blank)

	if n >= shortClear && o.genuineBCE(blank) {
		if x+n >= o.WritableWidth(y) && o.cat.Has(capability.El) {
			o.MoveCursor(x, y)
			o.putcode(capability.El)
			return
		}
		if x == 0 && o.cat.Has(capability.El1) {
			o.MoveCursor(x+n-1, y)
			o.putcode(capability.El1)
			return
		}
		if o.cat.Has(capability.Ech) {
			o.MoveCursor(x, y)
			o.putcode(capability.Ech, n)
			return
		}
	}

	if !(wrapped && o.AtPendingWrap(x, y)) {
		o.MoveCursor(x, y)
	}
	if limit := o.WritableWidth(y); x+n > limit {
		n = limit - x
	}
	if n > 0 {
		o.WriteGlyphs(bytes.Repeat([]byte{' '}, n), n)
	}
}

// ClearArea blanks an nx by ny rectangle with its top left at (x, y).
func (o *Output) ClearArea(x, y, nx, ny int, defaults Rendition) {
	if nx <= 0 || ny <= 0 {
		return
	}
	blank := blankRendition(defaults)
	o.ApplyAttributes(blank)

	fullWidth := x == 0 && x+nx >= o.width
	if o.genuineBCE(blank) {
		if fullWidth && y == 0 && ny >= o.height && blank.Bg.IsDefault() {
			o.putcode(capability.Clear)
			o.cx, o.cy = 0, 0
			return
		}
		if fullWidth && y+ny >= o.height && o.cat.Has(capability.Ed) {
			o.MoveCursor(0, y)
			o.putcode(capability.Ed)
			return
		}
		// DECFRA does not use the default background after sgr0.
		if o.cat.Flags().Has(capability.FlagDECFRA) && o.cat.Has(capability.Rect) && !blank.Bg.IsDefault() {
			o.putcode(capability.Rect, int(' '), y+1, x+1, y+ny, x+nx)
			return
		}
		if fullWidth && ny > 2 && o.cat.Has(capability.Csr) && o.cat.Has(capability.Indn) {
			o.SetRegion(y, y+ny-1, 0)
			o.MarginOff()
			o.MoveCursor(0, y)
			o.putcode(capability.Indn, ny)
			return
		}
	}

	for yy := y; yy < y+ny; yy++ {
		o.ClearRegion(x, yy, nx, defaults, false)
	}
}

// ClearScreen clears the whole screen to the default rendition and homes
// the cursor.
func (o *Output) ClearScreen() {
	o.ApplyAttributes(Rendition{})
	o.putcode(capability.Clear)
	o.cx, o.cy = 0, 0
}
