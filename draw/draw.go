// Package draw renders grid rows through a tty.Output, grouping cells into
// runs so each run costs one positioning, one rendition change and either
// one write or one clear.
package draw

import (
	"time"
	"ttycodec/log"
	"ttycodec/tty"
)

// Glyph bytes are collected in a buffer of this size and written when the
// rendition changes or it fills.
const bufferSize = 512

// Grid is the screen model rows are drawn from.
type Grid interface {
	// CellAt returns the cell at row, col, or nil past the end of the row.
	CellAt(row, col int) *tty.Cell
	// LineUsedWidth returns the number of columns of row that hold cells.
	LineUsedWidth(row int) int
	// RowWrapped reports whether row continues on the row below.
	RowWrapped(row int) bool
}

// SelectionOverlay changes how selected cells are drawn.
type SelectionOverlay interface {
	// Selected returns the rendition for the cell at row, col and whether
	// the cell is selected.
	Selected(row, col int) (tty.Rendition, bool)
}

type state uint8

const (
	stateFirst state = iota
	stateFlush
	stateNew
	stateSame
	stateEmpty
	statePad
	stateDone
)

func (s state) String() string {
	switch s {
	case stateFirst:
		return "FIRST"
	case stateFlush:
		return "FLUSH"
	case stateNew:
		return "NEW"
	case stateSame:
		return "SAME"
	case stateEmpty:
		return "EMPTY"
	case statePad:
		return "PAD"
	case stateDone:
		return "DONE"
	}
	return "UNKNOWN"
}

// Renderer draws rows. The zero value is ready to use; a Renderer is not
// safe for concurrent use.
type Renderer struct {
	Overlay SelectionOverlay

	out      *tty.Output
	defaults tty.Rendition
	y        int
	wrapped  bool

	state state
	rend  tty.Rendition
	start int // terminal column where the run begins
	cols  int
	buf   [bufferSize]byte
	n     int
}

// Draw draws one row with a temporary Renderer.
func Draw(out *tty.Output, grid Grid, row, px, nx, atx, aty int, defaults tty.Rendition) {
	var r Renderer
	r.Draw(out, grid, row, px, nx, atx, aty, defaults)
}

// Draw draws nx columns of grid row starting at column px, placing them at
// terminal column atx of row aty. Colours left at the default in cells are
// drawn with the colours of defaults. Columns past the row's used width are
// cleared. The cursor is left at the end of the last run written.
func (r *Renderer) Draw(out *tty.Output, grid Grid, row, px, nx, atx, aty int, defaults tty.Rendition) {
	if nx <= 0 {
		return
	}
	done := log.GetProfiler().Start("draw-line")
	before := out.Len()
	defer func() { done(out.Len() - before) }()

	r.out, r.defaults, r.y = out, defaults, aty
	r.wrapped = row > 0 && px == 0 && atx == 0 && grid.RowWrapped(row-1)
	r.state, r.n, r.cols, r.start = stateFirst, 0, 0, atx

	used := grid.LineUsedWidth(row) - px
	if used > nx {
		used = nx
	}
	if used < 0 {
		used = 0
	}

	var scratch [64]byte
	ownerEmpty := false
	i := 0
	for ; i < used; i++ {
		x, tx := px+i, atx+i
		cell := grid.CellAt(row, x)
		if cell == nil {
			blank := tty.Blank
			cell = &blank
		}

		if cell.IsPadding() {
			switch {
			case i == 0:
				// The glyph owning this column starts before the span, so
				// only its background can be shown.
				owner := ownerOf(grid, row, x)
				r.empty(tx, r.resolve(owner.Rendition))
				ownerEmpty = true
			case ownerEmpty:
				r.cols++
			default:
				r.trace(statePad, tx)
			}
			continue
		}

		view := *cell
		if r.Overlay != nil {
			if sel, ok := r.Overlay.Selected(row, x); ok {
				// A selected cell is drawn even if it was erased.
				view.Rendition, view.Flags = sel, view.Flags&^tty.CellCleared
			}
		}
		view.Rendition = r.resolve(view.Rendition)

		w := view.Width
		if w < 1 {
			w = 1
		}
		if view.IsEmpty() || i+w > nx {
			r.empty(tx, view.Rendition)
			ownerEmpty = true
			continue
		}
		ownerEmpty = false
		if tx+w > out.WritableWidth(aty) {
			r.trace(statePad, tx)
			continue
		}
		r.glyph(tx, view.Rendition, out.AppendGlyph(scratch[:0], &view), w)
	}

	if i < nx {
		if r.state == stateEmpty && r.rend.Bg == defaults.Bg && r.start+r.cols == atx+i {
			r.cols += nx - i
		} else {
			r.flush()
			r.state, r.rend, r.start, r.cols = stateEmpty, defaults, atx+i, nx-i
		}
	}
	r.flush()
	r.state = stateDone
}

// DrawScreen draws height rows of width columns each and records the frame
// with the refresh profiler.
func (r *Renderer) DrawScreen(out *tty.Output, grid Grid, width, height int, defaults tty.Rendition) {
	start := time.Now()
	before := out.Len()
	for row := 0; row < height; row++ {
		r.Draw(out, grid, row, 0, width, 0, row, defaults)
	}
	log.GetProfiler().RecordFrame(time.Since(start), out.Len()-before)
}

func (r *Renderer) resolve(rend tty.Rendition) tty.Rendition {
	if rend.Fg.IsDefault() {
		rend.Fg = r.defaults.Fg
	}
	if rend.Bg.IsDefault() {
		rend.Bg = r.defaults.Bg
	}
	return rend
}

func ownerOf(grid Grid, row, col int) tty.Cell {
	for col--; col >= 0; col-- {
		if c := grid.CellAt(row, col); c != nil && !c.IsPadding() {
			return *c
		}
	}
	return tty.Blank
}

func (r *Renderer) empty(tx int, rend tty.Rendition) {
	if r.state == stateEmpty && r.rend.Bg == rend.Bg {
		r.cols++
		return
	}
	r.flush()
	r.state, r.rend, r.start, r.cols = stateEmpty, rend, tx, 1
}

func (r *Renderer) glyph(tx int, rend tty.Rendition, g []byte, w int) {
	if len(g) > len(r.buf) {
		// Too long to collect, so it is written on its own.
		r.flush()
		r.state, r.rend, r.start = stateFlush, rend, tx
		r.write(g, w)
		return
	}
	inRun := r.state == stateNew || r.state == stateSame
	switch {
	case !inRun || r.rend != rend:
		r.flush()
		r.state, r.rend, r.start = stateNew, rend, tx
	case r.n+len(g) > len(r.buf):
		r.state = stateFlush
		r.flush()
		r.state, r.start = stateNew, tx
	default:
		r.state = stateSame
	}
	r.n += copy(r.buf[r.n:], g)
	r.cols += w
}

// flush writes out the current run.
func (r *Renderer) flush() {
	switch {
	case r.state == stateEmpty && r.cols > 0:
		r.trace(stateEmpty, r.start)
		r.out.ClearRegion(r.start, r.y, r.cols, r.rend, r.wrapped)
	case r.n > 0:
		r.write(r.buf[:r.n], r.cols)
	}
	r.n, r.cols = 0, 0
}

func (r *Renderer) write(b []byte, cols int) {
	r.trace(r.state, r.start)
	r.out.ApplyAttributes(r.rend)
	if !(r.wrapped && r.out.AtPendingWrap(r.start, r.y)) {
		r.out.MoveCursor(r.start, r.y)
	}
	r.out.WriteGlyphs(b, cols)
}

func (r *Renderer) trace(s state, x int) {
	if log.DebugEnabled {
		log.DrawTrace("row %d col %d: %s cols=%d bytes=%d", r.y, x, s, r.cols, r.n)
	}
}
