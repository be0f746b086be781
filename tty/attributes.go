package tty

import (
	"fmt"
	"ttycodec/capability"
	"ttycodec/color"
)

// ResetAttributes returns the rendition to the default. It is the only way
// attributes are turned off and does nothing when already at the default.
func (o *Output) ResetAttributes() {
	o.requested = Rendition{}
	if o.cur.IsDefault() {
		return
	}
	if o.cur.Attr&AttrCharset != 0 && o.cat.Has(capability.Rmacs) {
		o.putcode(capability.Rmacs)
	}
	o.putcode(capability.Sgr0)
	o.cur = Rendition{}
	o.syntheticBold = false
}

// Rendition returns the rendition the terminal currently has.
func (o *Output) Rendition() Rendition { return o.cur }

// ApplyAttributes changes the terminal rendition to target. Colours are
// first reduced to what the terminal supports. If target lacks any attribute
// currently set, the rendition is reset and rebuilt; otherwise only the new
// attributes are sent.
func (o *Output) ApplyAttributes(target Rendition) {
	want := target
	var bright bool
	want.Fg, bright = o.checkColour(want.Fg, true)
	want.Bg, _ = o.checkColour(want.Bg, false)
	synthetic := bright && want.Attr&AttrBold == 0
	if synthetic {
		want.Attr |= AttrBold
	}

	if o.cur.Attr&^want.Attr != 0 {
		o.ResetAttributes()
	}

	// This may reset, so must come before the attributes.
	o.colours(want)

	changed := want.Attr &^ o.cur.Attr
	o.cur.Attr = want.Attr
	o.syntheticBold = synthetic
	o.requested = target

	if changed&AttrBold != 0 {
		o.putcode(capability.Bold)
	}
	if changed&AttrDim != 0 {
		o.putcode(capability.Dim)
	}
	if changed&AttrItalics != 0 {
		o.putAlt(capability.Sitm, capability.Smso)
	}
	if changed&AttrUnderline != 0 {
		o.putcode(capability.Smul)
	}
	if changed&AttrBlink != 0 {
		o.putcode(capability.Blink)
	}
	if changed&AttrReverse != 0 {
		o.putAlt(capability.Rev, capability.Smso)
	}
	if changed&AttrHidden != 0 {
		o.putcode(capability.Invis)
	}
	if changed&AttrStrikethrough != 0 {
		o.putcode(capability.Smxx)
	}
	if changed&AttrOverline != 0 {
		o.putcode(capability.Smol)
	}
	if changed&AttrCharset != 0 {
		o.putcode(capability.Smacs)
	}
}

func (o *Output) putAlt(id, fallback capability.ID) {
	if o.cat.Has(id) {
		o.putcode(id)
	} else {
		o.putcode(fallback)
	}
}

// SetForeground changes only the foreground colour of the last requested
// rendition.
func (o *Output) SetForeground(c color.Color) {
	r := o.requested
	r.Fg = c
	o.ApplyAttributes(r)
}

// SetBackground changes only the background colour of the last requested
// rendition.
func (o *Output) SetBackground(c color.Color) {
	r := o.requested
	r.Bg = c
	o.ApplyAttributes(r)
}

func (o *Output) canColour(fg bool) bool {
	if fg {
		return o.cat.Has(capability.Setaf)
	}
	return o.cat.Has(capability.Setab)
}

// checkColour reduces c to the best colour the terminal can show. bright is
// set when a bright foreground had to be shown as bold on an 8-colour
// terminal.
func (o *Output) checkColour(c color.Color, fg bool) (color.Color, bool) {
	if c.IsDefault() {
		return c, false
	}
	flags := o.cat.Flags()

	if c.IsRGB() {
		if flags.Has(capability.FlagRGB) {
			return c, false
		}
		c = color.To256(c)
	}
	if c.Is256() {
		if flags.Has(capability.Flag256) {
			return c, false
		}
		if flags.Has(capability.Flag88) && o.canColour(fg) {
			return color.Indexed(color.Map256To88(c.Index())), false
		}
		c = color.To16(c)
	}

	if !o.canColour(fg) {
		return color.Default, false
	}
	if c.Bright() && o.cat.Number(capability.Colors) < 16 {
		return color.Basic(c.Index() - 8), fg
	}
	return c, false
}

func (o *Output) colours(want Rendition) {
	if want.Fg == o.cur.Fg && want.Bg == o.cur.Bg {
		return
	}

	fgToDefault := want.Fg.IsDefault() && !o.cur.Fg.IsDefault()
	bgToDefault := want.Bg.IsDefault() && !o.cur.Bg.IsDefault()
	if fgToDefault || bgToDefault {
		// Without AX, op cannot be trusted to differ from sgr0, so reset
		// both colours with sgr0 instead.
		haveAX := o.cat.Flag(capability.AX)
		if !haveAX && o.cat.Has(capability.Op) {
			o.ResetAttributes()
		} else {
			if fgToDefault {
				if haveAX {
					o.puts("\x1b[39m")
				} else if o.cur.Fg != color.White {
					o.putcode(capability.Setaf, 7)
				}
				o.cur.Fg = color.Default
			}
			if bgToDefault {
				if haveAX {
					o.puts("\x1b[49m")
				} else if o.cur.Bg != color.Black {
					o.putcode(capability.Setab, 0)
				}
				o.cur.Bg = color.Default
			}
		}
	}

	if !want.Fg.IsDefault() && want.Fg != o.cur.Fg {
		o.setColour(want.Fg, true)
		o.cur.Fg = want.Fg
	}
	if !want.Bg.IsDefault() && want.Bg != o.cur.Bg {
		o.setColour(want.Bg, false)
		o.cur.Bg = want.Bg
	}
}

func (o *Output) setColour(c color.Color, fg bool) {
	setrgb, set, sgr := capability.Setrgbb, capability.Setab, 48
	if fg {
		setrgb, set, sgr = capability.Setrgbf, capability.Setaf, 38
	}

	switch {
	case c.IsRGB():
		r, g, b := c.Components()
		if o.cat.Has(setrgb) {
			o.putcode(setrgb, int(r), int(g), int(b))
		} else {
			o.puts(fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", sgr, r, g, b))
		}
	case c.Is256():
		if o.cat.Has(set) {
			o.putcode(set, c.Index())
		} else {
			o.puts(fmt.Sprintf("\x1b[%d;5;%dm", sgr, c.Index()))
		}
	case c.Bright():
		// aixterm bright colours
		if o.cat.Flags().Has(capability.Flag256) {
			base := 90
			if !fg {
				base = 100
			}
			o.puts(fmt.Sprintf("\x1b[%dm", base+c.Index()-8))
		} else {
			o.putcode(set, c.Index())
		}
	default:
		o.putcode(set, c.Index())
	}
}
