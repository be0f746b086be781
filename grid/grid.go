// Package grid is a small in-memory screen that implements draw.Grid. It is
// what the CLI draws from and what renderer tests build their input with.
package grid

import (
	"ttycodec/color"
	"ttycodec/draw"
	"ttycodec/tty"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

var _ draw.Grid = (*Grid)(nil)

type line struct {
	cells   []tty.Cell
	wrapped bool
}

// Grid is a fixed-size screen of cells. Rows only hold as many cells as
// have been written, so LineUsedWidth can be shorter than the width.
type Grid struct {
	width, height int
	lines         []line
}

// New returns an empty grid.
func New(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		lines:  make([]line, height),
	}
}

func (g *Grid) Size() (int, int) { return g.width, g.height }

// Resize changes the size, dropping rows and cells that no longer fit.
func (g *Grid) Resize(width, height int) {
	lines := make([]line, height)
	copy(lines, g.lines)
	for i := range lines {
		if len(lines[i].cells) > width {
			lines[i].cells = lines[i].cells[:width]
			fixTail(lines[i].cells)
		}
	}
	g.width, g.height, g.lines = width, height, lines
}

func (g *Grid) CellAt(row, col int) *tty.Cell {
	if row < 0 || row >= g.height || col < 0 || col >= len(g.lines[row].cells) {
		return nil
	}
	return &g.lines[row].cells[col]
}

func (g *Grid) LineUsedWidth(row int) int {
	if row < 0 || row >= g.height {
		return 0
	}
	return len(g.lines[row].cells)
}

func (g *Grid) RowWrapped(row int) bool {
	if row < 0 || row >= g.height {
		return false
	}
	return g.lines[row].wrapped
}

// SetWrapped marks row as continuing on the row below.
func (g *Grid) SetWrapped(row int, wrapped bool) {
	if row >= 0 && row < g.height {
		g.lines[row].wrapped = wrapped
	}
}

// GlyphWidth returns the number of columns a grapheme cluster occupies.
func GlyphWidth(cluster string) int {
	return runewidth.StringWidth(cluster)
}

func (g *Grid) extend(row, n int) {
	l := &g.lines[row]
	for len(l.cells) < n {
		l.cells = append(l.cells, tty.Blank)
	}
}

// Set stores one grapheme at row, col and returns its width. A glyph that
// would run past the right edge is not stored and 0 is returned.
func (g *Grid) Set(row, col int, glyph string, r tty.Rendition) int {
	if row < 0 || row >= g.height || col < 0 {
		return 0
	}
	w := GlyphWidth(glyph)
	if w < 1 {
		w = 1
	}
	if col+w > g.width {
		return 0
	}
	g.extend(row, col+w)
	cells := g.lines[row].cells

	g.unlink(row, col, w)
	cells[col] = tty.Cell{Glyph: glyph, Width: w, Rendition: r}
	for i := 1; i < w; i++ {
		cells[col+i] = tty.Cell{Rendition: r, Flags: tty.CellPadding}
	}
	return w
}

// unlink blanks what is left of any wide glyph that cells col to col+n-1
// overlap.
func (g *Grid) unlink(row, col, n int) {
	cells := g.lines[row].cells
	if col < len(cells) && cells[col].IsPadding() {
		for i := col - 1; i >= 0; i-- {
			padding := cells[i].IsPadding()
			cells[i] = blankLike(cells[i])
			if !padding {
				break
			}
		}
	}
	for i := col + n; i < len(cells) && cells[i].IsPadding(); i++ {
		cells[i] = blankLike(cells[i])
	}
}

func blankLike(c tty.Cell) tty.Cell {
	return tty.Cell{Glyph: " ", Width: 1, Rendition: tty.Rendition{Fg: c.Fg, Bg: c.Bg}}
}

// fixTail blanks a wide glyph cut in half at the end of cells.
func fixTail(cells []tty.Cell) {
	n := len(cells)
	if n == 0 {
		return
	}
	if last := cells[n-1]; !last.IsPadding() && last.Width > 1 {
		cells[n-1] = blankLike(last)
	}
}

// Print writes s from row, col like a terminal with auto-margins: text
// wraps onto the next row, marking the row wrapped, and '\n' starts a new
// row. It stops at the bottom and returns the position after the text.
func (g *Grid) Print(row, col int, s string, r tty.Rendition) (int, int) {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() && row < g.height {
		cluster := gr.Str()
		if cluster == "\n" || cluster == "\r\n" {
			row, col = row+1, 0
			continue
		}
		if cluster == "\r" {
			col = 0
			continue
		}
		w := GlyphWidth(cluster)
		if w == 0 {
			continue
		}
		if col+w > g.width {
			g.SetWrapped(row, true)
			row, col = row+1, 0
			if row >= g.height {
				break
			}
		}
		col += g.Set(row, col, cluster, r)
	}
	return row, col
}

// Clear erases n cells of row from col with background bg. Clearing to the
// end of the row with the default background shortens the row.
func (g *Grid) Clear(row, col, n int, bg color.Color) {
	if row < 0 || row >= g.height || col < 0 || n <= 0 {
		return
	}
	if col+n > g.width {
		n = g.width - col
	}
	l := &g.lines[row]
	if col+n >= len(l.cells) && bg.IsDefault() {
		if col < len(l.cells) {
			g.unlink(row, col, len(l.cells)-col)
			l.cells = l.cells[:col]
			fixTail(l.cells)
		}
		l.wrapped = false
		return
	}

	g.extend(row, col+n)
	g.unlink(row, col, n)
	for i := col; i < col+n; i++ {
		l.cells[i] = tty.Cell{Glyph: " ", Width: 1, Rendition: tty.Rendition{Bg: bg}, Flags: tty.CellCleared}
	}
}

// ClearAll empties every row.
func (g *Grid) ClearAll() {
	for i := range g.lines {
		g.lines[i] = line{}
	}
}

// Text returns row as a string, with padding columns omitted.
func (g *Grid) Text(row int) string {
	if row < 0 || row >= g.height {
		return ""
	}
	var b []byte
	for _, c := range g.lines[row].cells {
		if c.IsPadding() {
			continue
		}
		if c.Glyph == "" {
			b = append(b, ' ')
			continue
		}
		b = append(b, c.Glyph...)
	}
	return string(b)
}
