package tty

import (
	"bytes"
	"ttycodec/capability"
)

// repeat sends id with n, or single n times when id is missing.
func (o *Output) repeat(n int, id, single capability.ID) {
	if o.cat.Has(id) {
		o.putcode(id, n)
		return
	}
	for i := 0; i < n; i++ {
		o.putcode(single)
	}
}

// InsertChars inserts n blanks at the cursor, shifting the rest of the row
// right. Without ich or ich1, spaces are written in insert mode.
func (o *Output) InsertChars(n int) {
	if n <= 0 {
		return
	}
	if o.cat.Has(capability.Ich) || o.cat.Has(capability.Ich1) {
		o.repeat(n, capability.Ich, capability.Ich1)
		return
	}

	x, y := o.cx, o.cy
	o.putcode(capability.Smir)
	o.buf.Write(bytes.Repeat([]byte{' '}, n))
	o.putcode(capability.Rmir)
	o.cx, o.cy = Unknown, Unknown
	if x != Unknown && y != Unknown && x < o.width {
		o.MoveCursor(x, y)
	}
}

// DeleteChars deletes n cells at the cursor.
func (o *Output) DeleteChars(n int) {
	if n <= 0 {
		return
	}
	o.repeat(n, capability.Dch, capability.Dch1)
}

// InsertLines inserts n blank lines at the cursor row. The cursor is unknown
// afterwards.
func (o *Output) InsertLines(n int) {
	if n <= 0 {
		return
	}
	o.repeat(n, capability.Il, capability.Il1)
	o.cx, o.cy = Unknown, Unknown
}

// DeleteLines deletes n lines at the cursor row. The cursor is unknown
// afterwards.
func (o *Output) DeleteLines(n int) {
	if n <= 0 {
		return
	}
	o.repeat(n, capability.Dl, capability.Dl1)
	o.cx, o.cy = Unknown, Unknown
}

// ScrollUp scrolls the scroll region up by n lines.
func (o *Output) ScrollUp(n int) {
	if n <= 0 {
		return
	}
	if n == 1 || !o.cat.Has(capability.Indn) {
		o.MoveCursor(0, o.regionBottom())
		o.buf.Write(bytes.Repeat([]byte{'\n'}, n))
		return
	}
	if o.cy == Unknown {
		o.MoveCursor(0, 0)
	} else {
		o.MoveCursor(0, o.cy)
	}
	o.putcode(capability.Indn, n)
}

// ScrollDown scrolls the scroll region down by n lines.
func (o *Output) ScrollDown(n int) {
	if n <= 0 {
		return
	}
	x := o.cx
	if x == Unknown || x >= o.width {
		x = 0
	}
	o.MoveCursor(x, o.regionTop())
	o.repeat(n, capability.Rin, capability.Ri)
}
