// Package tty turns cursor, attribute and editing requests into the
// shortest correct byte stream for one connected terminal, tracking what the
// terminal is believed to show so redundant sequences are skipped.
package tty

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"ttycodec/capability"
	"ttycodec/log"
)

// Unknown is the value of a shadow coordinate that must be re-sent before use.
const Unknown = -1

// Options configure an Output.
type Options struct {
	Width, Height int
	// UTF8 says the terminal accepts UTF-8. Without it, non-ASCII glyphs are
	// replaced with Placeholder once per column.
	UTF8        bool
	Placeholder byte
	// ForceSpaces disables escape-based clearing for terminals known to get
	// background colour erase wrong.
	ForceSpaces bool
}

type mode uint8

const (
	modeUnknown mode = iota
	modeOn
	modeOff
)

// Output is the shadow state of one terminal. It is not safe for concurrent
// use; one goroutine owns each Output.
type Output struct {
	cat *capability.Catalog
	buf bytes.Buffer

	width, height int
	utf8          bool
	placeholder   byte
	forceSpaces   bool

	cx, cy int

	cur           Rendition // what the terminal has
	requested     Rendition // what the caller last asked for
	syntheticBold bool

	rupper, rlower int
	rleft, rright  int
	margins        bool

	cursor   mode
	glyphLog *log.Every
}

// New returns an Output for catalog c. Every shadow value starts unknown.
func New(c *capability.Catalog, opts Options) *Output {
	o := &Output{
		cat:         c,
		width:       opts.Width,
		height:      opts.Height,
		utf8:        opts.UTF8,
		placeholder: opts.Placeholder,
		forceSpaces: opts.ForceSpaces,
		glyphLog:    log.NewEvery(time.Minute),
	}
	if o.width <= 0 {
		o.width = c.Number(capability.Cols)
	}
	if o.width <= 0 {
		o.width = 80
	}
	if o.height <= 0 {
		o.height = c.Number(capability.Lines)
	}
	if o.height <= 0 {
		o.height = 24
	}
	if o.placeholder == 0 {
		o.placeholder = '_'
	}
	o.forget()
	return o
}

func (o *Output) forget() {
	o.cx, o.cy = Unknown, Unknown
	o.rupper, o.rlower = Unknown, Unknown
	o.rleft, o.rright = Unknown, Unknown
}

// Catalog returns the capabilities this Output writes for.
func (o *Output) Catalog() *capability.Catalog { return o.cat }

// Has reports whether the terminal has capability id. Callers use it to pick
// a fallback where a primitive would be a no-op, such as SetRegion.
func (o *Output) Has(id capability.ID) bool { return o.cat.Has(id) }

func (o *Output) Size() (int, int) { return o.width, o.height }

// Resize changes the screen size and forgets the cursor and region.
func (o *Output) Resize(width, height int) {
	if width == o.width && height == o.height {
		return
	}
	o.width, o.height = width, height
	o.cx, o.cy = Unknown, Unknown
	o.rupper, o.rlower = Unknown, Unknown
	o.rleft, o.rright = Unknown, Unknown
}

func (o *Output) UTF8() bool { return o.utf8 }

// SetUTF8 records the result of UTF-8 detection.
func (o *Output) SetUTF8(on bool) { o.utf8 = on }

// Bytes returns the pending output without consuming it.
func (o *Output) Bytes() []byte { return o.buf.Bytes() }

func (o *Output) Len() int { return o.buf.Len() }

// WriteTo writes the pending output to w and empties the buffer.
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	return o.buf.WriteTo(w)
}

// ResetBuffer drops any pending output.
func (o *Output) ResetBuffer() { o.buf.Reset() }

func (o *Output) putcode(id capability.ID, args ...interface{}) {
	o.buf.WriteString(o.cat.Expand(id, args...))
}

func (o *Output) puts(s string) { o.buf.WriteString(s) }

func (o *Output) earlyWrap() bool {
	return o.cat.Flags().Has(capability.FlagEarlyWrap)
}

// WritableWidth returns how many columns of row y can be written without
// scrolling the screen. Early wrap terminals lose the last column of the
// bottom row.
func (o *Output) WritableWidth(y int) int {
	if o.earlyWrap() && y >= o.height-1 {
		return o.width - 1
	}
	return o.width
}

func (o *Output) regionBottom() int {
	if o.rlower == Unknown {
		return o.height - 1
	}
	return o.rlower
}

func (o *Output) regionTop() int {
	if o.rupper == Unknown {
		return 0
	}
	return o.rupper
}

// Cursor returns the believed cursor position, or Unknown for both.
// x equals the width when the terminal is holding a pending wrap.
func (o *Output) Cursor() (int, int) { return o.cx, o.cy }

// MoveCursor positions the cursor absolutely unless it is already there.
func (o *Output) MoveCursor(x, y int) {
	if x == o.cx && y == o.cy {
		return
	}
	o.putcode(capability.Cup, y, x)
	o.cx, o.cy = x, y
}

// AtPendingWrap reports whether writing at (x, y) would continue from a
// pending wrap at the end of the row above without moving the cursor.
func (o *Output) AtPendingWrap(x, y int) bool {
	return x == 0 &&
		o.cx >= o.width &&
		o.cy != Unknown &&
		o.cy == y-1 &&
		o.cy < o.regionBottom()
}

// advance moves the shadow cursor after width columns were written.
func (o *Output) advance(width int) {
	if o.cx == Unknown || o.cy == Unknown {
		return
	}
	if o.cx >= o.width {
		// The terminal wrapped before the first column was written.
		if o.cy >= o.regionBottom() {
			o.cx, o.cy = Unknown, Unknown
			return
		}
		o.cx, o.cy = 0, o.cy+1
	}

	if width > 1 && o.cx+width > o.width {
		// Where a wide glyph that does not fit ends up varies.
		o.cx, o.cy = Unknown, Unknown
		return
	}
	o.cx += width
	if o.cx < o.width {
		return
	}
	switch {
	case !o.cat.Flag(capability.AM):
		o.cx = o.width - 1
	case o.earlyWrap():
		if o.cy >= o.regionBottom() {
			o.cx, o.cy = Unknown, Unknown
			return
		}
		o.cx, o.cy = 0, o.cy+1
	default:
		o.cx = o.width
	}
}

// SetRegion sets the scroll region to rows top to bottom, both offset by
// offset. Without csr it does nothing.
func (o *Output) SetRegion(top, bottom, offset int) {
	if !o.cat.Has(capability.Csr) {
		return
	}
	top, bottom = top+offset, bottom+offset
	if top == o.rupper && bottom == o.rlower {
		return
	}
	o.rupper, o.rlower = top, bottom

	// Some terminals keep a pending wrap across the region change, so
	// move off the last column first.
	if o.cx >= o.width {
		if o.cy == Unknown {
			o.MoveCursor(0, 0)
		} else {
			o.MoveCursor(0, o.cy)
		}
	}

	o.putcode(capability.Csr, top, bottom)
	o.cx, o.cy = Unknown, Unknown
}

// RegionOff sets the scroll region to the whole screen.
func (o *Output) RegionOff() {
	o.SetRegion(0, o.height-1, 0)
}

// Region returns the programmed scroll region, or Unknown for both.
func (o *Output) Region() (int, int) { return o.rupper, o.rlower }

func (o *Output) useMargins() bool {
	return o.cat.Flags().Has(capability.FlagDECSLRM) && o.cat.Has(capability.Cmg)
}

// SetMargins sets the left and right margins on terminals with DECSLRM.
func (o *Output) SetMargins(left, right int) {
	if !o.useMargins() {
		return
	}
	if left == o.rleft && right == o.rright {
		return
	}
	if !o.margins {
		o.putcode(capability.Enmg)
		o.margins = true
	}

	// The margins only take effect with the scroll region reprogrammed.
	top, bottom := o.regionTop(), o.regionBottom()
	if o.cat.Has(capability.Csr) {
		o.putcode(capability.Csr, top, bottom)
		o.rupper, o.rlower = top, bottom
	}

	o.rleft, o.rright = left, right
	if left == 0 && right == o.width-1 && o.cat.Has(capability.Clmg) {
		o.putcode(capability.Clmg)
	} else {
		o.putcode(capability.Cmg, left, right)
	}
	o.cx, o.cy = Unknown, Unknown
}

// MarginOff resets the margins to the full width.
func (o *Output) MarginOff() {
	o.SetMargins(0, o.width-1)
}

// SetCursorVisible shows or hides the cursor when the terminal can.
func (o *Output) SetCursorVisible(visible bool) {
	want := modeOff
	if visible {
		want = modeOn
	}
	if o.cursor == want {
		return
	}
	id := capability.Civis
	if visible {
		id = capability.Cnorm
	}
	if !o.cat.Has(id) {
		return
	}
	o.putcode(id)
	o.cursor = want
}

// SetTitle sets the window title. It does nothing unless the terminal has
// both tsl and fsl.
func (o *Output) SetTitle(title string) {
	if !o.cat.Has(capability.Tsl) || !o.cat.Has(capability.Fsl) {
		return
	}
	title = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return -1
		}
		return r
	}, title)
	o.putcode(capability.Tsl, 0)
	o.puts(title)
	o.putcode(capability.Fsl)
}

// Invalidate forgets the cursor, region and margins, and resets the
// rendition so it is known again. Use it after something else has written
// to the terminal.
func (o *Output) Invalidate() {
	o.forget()
	if o.margins {
		o.putcode(capability.Enmg)
	}
	o.putcode(capability.Sgr0)
	o.cur = Rendition{}
	o.requested = Rendition{}
	o.syntheticBold = false
	o.cursor = modeUnknown
}

// Reset returns the terminal to its defaults before the connection closes.
func (o *Output) Reset() {
	o.ResetAttributes()
	if o.cat.Has(capability.Csr) && (o.rupper != 0 || o.rlower != o.height-1) {
		o.putcode(capability.Csr, 0, o.height-1)
		o.rupper, o.rlower = 0, o.height-1
	}
	if o.margins {
		if o.cat.Has(capability.Clmg) {
			o.putcode(capability.Clmg)
		}
		o.putcode(capability.Dsmg)
		o.margins = false
	}
	if o.cursor == modeOff && o.cat.Has(capability.Cnorm) {
		o.putcode(capability.Cnorm)
	}
	o.cursor = modeUnknown
	o.cx, o.cy = Unknown, Unknown
	o.rleft, o.rright = Unknown, Unknown
}

// State is a snapshot of the shadow state.
type State struct {
	Width, Height int
	UTF8          bool
	CursorX       int
	CursorY       int
	Rendition     Rendition
	SyntheticBold bool
	RegionTop     int
	RegionBottom  int
	MarginLeft    int
	MarginRight   int
	Margins       bool
}

func (o *Output) State() State {
	return State{
		Width:         o.width,
		Height:        o.height,
		UTF8:          o.utf8,
		CursorX:       o.cx,
		CursorY:       o.cy,
		Rendition:     o.cur,
		SyntheticBold: o.syntheticBold,
		RegionTop:     o.rupper,
		RegionBottom:  o.rlower,
		MarginLeft:    o.rleft,
		MarginRight:   o.rright,
		Margins:       o.margins,
	}
}

func (s State) String() string {
	return fmt.Sprintf("%dx%d cursor=(%d,%d) attr=%s fg=%s bg=%s region=%d-%d",
		s.Width, s.Height, s.CursorX, s.CursorY,
		s.Rendition.Attr, s.Rendition.Fg, s.Rendition.Bg, s.RegionTop, s.RegionBottom)
}
