package tty

import (
	"ttycodec/log"
)

func printableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] >= 0x7f {
			return false
		}
	}
	return true
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}

func cellWidth(c *Cell) int {
	if c.Width < 1 {
		return 1
	}
	return c.Width
}

// AppendGlyph appends the bytes that draw c. Glyphs the terminal cannot show
// become one placeholder per column.
func (o *Output) AppendGlyph(dst []byte, c *Cell) []byte {
	if c.Glyph == "" {
		return append(dst, ' ')
	}
	if hasControl(c.Glyph) || (!o.utf8 && !printableASCII(c.Glyph)) {
		if o.glyphLog.ShouldLog() {
			log.Debug("%v: %q, writing %q", ErrUnsupportedGlyph, c.Glyph, o.placeholder)
		}
		for i := 0; i < cellWidth(c); i++ {
			dst = append(dst, o.placeholder)
		}
		return dst
	}
	return append(dst, c.Glyph...)
}

// WriteGlyphs writes already encoded glyphs covering width columns at the
// cursor with the current rendition.
func (o *Output) WriteGlyphs(b []byte, width int) {
	o.buf.Write(b)
	o.advance(width)
}

// EmitCell writes one cell at the cursor. Padding cells are skipped, as
// are cells that would scroll the screen.
func (o *Output) EmitCell(c *Cell) {
	if c.IsPadding() {
		return
	}
	w := cellWidth(c)
	if o.cy != Unknown && o.cx != Unknown {
		if limit := o.WritableWidth(o.cy); limit < o.width && o.cx+w > limit {
			return
		}
	}
	o.ApplyAttributes(c.Rendition)

	var scratch [32]byte
	o.WriteGlyphs(o.AppendGlyph(scratch[:0], c), w)
}
