package tty

import (
	imagecolor "image/color"
	"testing"
	"ttycodec/color"
	"ttycodec/testing/harness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sequences the reference emulator understands.
const emulatorCaps = `am, xenl, colors#8, op=\E[39;49m,
	clear=\E[H\E[2J, ri=\EM, cup=\E[%i%p1%d;%p2%dH, cud1=\n, il1=\E[L, dl1=\E[M, ich1=\E[@, dch1=\E[P,
	el=\E[K, sgr0=\E[0m, bold=\E[1m, smul=\E[4m, blink=\E[5m, rev=\E[7m,
	setaf=\E[3%p1%dm, setab=\E[4%p1%dm`

// The same with 256 colours, which the harness decodes itself.
const emulator256Caps = `am, xenl, colors#256, op=\E[39;49m,
	clear=\E[H\E[2J, ri=\EM, cup=\E[%i%p1%d;%p2%dH, cud1=\n, il1=\E[L, dl1=\E[M, ich1=\E[@, dch1=\E[P,
	el=\E[K, sgr0=\E[0m, bold=\E[1m, smul=\E[4m, rev=\E[7m,
	setaf=\E[%?%p1%{8}%<%t3%p1%d%e%p1%{16}%<%t9%p1%{8}%-%d%e38;5;%p1%d%;m,
	setab=\E[%?%p1%{8}%<%t4%p1%d%e%p1%{16}%<%t10%p1%{8}%-%d%e48;5;%p1%d%;m`

func styledRow(text string, r Rendition) []Cell {
	cells := make([]Cell, 0, len(text))
	for _, ch := range text {
		cells = append(cells, Cell{Glyph: string(ch), Width: 1, Rendition: r})
	}
	return cells
}

func join(rows ...[]Cell) []Cell {
	var out []Cell
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func replayRows() [][]Cell {
	bold := Rendition{Attr: AttrBold}
	red := Rendition{Fg: color.Red}
	boldUnder := Rendition{Attr: AttrBold | AttrUnderline, Bg: color.Blue}
	rev := Rendition{Attr: AttrReverse}

	return [][]Cell{
		join(styledRow("plain ", Rendition{}), styledRow("bold", bold), styledRow(" red", red)),
		join(styledRow("ul", boldUnder), styledRow("rev", rev), styledRow("x", bold), styledRow("  tail", Rendition{})),
		join(styledRow("red", red), styledRow("blnk", Rendition{Attr: AttrBlink, Fg: color.Green}), styledRow("end", red)),
	}
}

// naive draws every cell from scratch: reset, position, then the cell.
func naive(t *testing.T, rows [][]Cell, width, height int) *harness.Screen {
	t.Helper()
	screen := harness.New(width, height)
	cat := newCatalog(t, emulatorCaps)
	for y, row := range rows {
		for x := range row {
			o := New(cat, Options{Width: width, Height: height, UTF8: true})
			o.Invalidate()
			o.MoveCursor(x, y)
			o.EmitCell(&row[x])
			_, err := screen.Write(o.Bytes())
			require.NoError(t, err)
		}
	}
	return screen
}

func TestReplayMatchesNaive(t *testing.T) {
	const width, height = 30, 6
	rows := replayRows()

	o := New(newCatalog(t, emulatorCaps), Options{Width: width, Height: height, UTF8: true})
	o.Invalidate()
	for y, row := range rows {
		o.MoveCursor(0, y)
		for x := range row {
			o.EmitCell(&row[x])
		}
	}
	o.ResetAttributes()

	screen := harness.New(width, height)
	_, err := screen.Write(o.Bytes())
	require.NoError(t, err)

	reference := naive(t, rows, width, height)
	assert.Empty(t, screen.Diff(reference))

	assert.Equal(t, "plain bold red", screen.Line(0))
	assert.True(t, screen.Cell(6, 0).Bold())
	assert.False(t, screen.Cell(10, 0).Bold(), "bold removed by reset")
	assert.True(t, screen.Cell(0, 1).Format.Underscore)
	assert.True(t, screen.Cell(2, 1).Format.Inverse)
	assert.False(t, screen.Cell(2, 1).Format.Underscore)

	// The optimised stream is shorter than drawing every cell alone.
	assert.Less(t, o.Len(), 20*len(join(rows...)))
	assert.Equal(t, len(join(rows...)), harness.PrintableWidth(o.Bytes()))
}

func TestReplayCursor(t *testing.T) {
	const width, height = 30, 6
	o := New(newCatalog(t, emulatorCaps), Options{Width: width, Height: height, UTF8: true})
	screen := harness.New(width, height)

	steps := []func(){
		func() { o.MoveCursor(3, 2) },
		func() { o.EmitCell(&Cell{Glyph: "a", Width: 1}) },
		func() { o.EmitCell(&Cell{Glyph: "b", Width: 1, Rendition: Rendition{Attr: AttrBold}}) },
		func() { o.ClearRegion(10, 2, 5, Rendition{}, false) },
		func() { o.MoveCursor(0, 4) },
		func() { o.ClearRegion(0, 4, 2, Rendition{}, false) },
	}
	for i, step := range steps {
		step()
		_, err := o.WriteTo(screen)
		require.NoError(t, err)

		x, y := o.Cursor()
		if x == Unknown || x >= width {
			continue
		}
		sx, sy := screen.Cursor()
		assert.Equal(t, x, sx, "step %d x", i)
		assert.Equal(t, y, sy, "step %d y", i)
	}
}

func TestReplayClear(t *testing.T) {
	const width, height = 30, 4
	o := New(newCatalog(t, emulatorCaps), Options{Width: width, Height: height, UTF8: true})
	screen := harness.New(width, height)

	o.MoveCursor(0, 1)
	for i := 0; i < width-1; i++ {
		o.EmitCell(&Cell{Glyph: "#", Width: 1})
	}
	o.ClearRegion(5, 1, width-5, Rendition{}, false)
	_, err := o.WriteTo(screen)
	require.NoError(t, err)

	assert.Equal(t, "#####", screen.Line(1))
}

// pen is what the harness records for c.
func pen(c color.Color) imagecolor.RGBA {
	if c.IsDefault() {
		return imagecolor.RGBA{}
	}
	return harness.Palette(c.Index())
}

func TestReplay256Colours(t *testing.T) {
	const width, height = 24, 4
	orange := Rendition{Fg: color.Indexed(202)}
	onBlue := Rendition{Attr: AttrBold, Fg: color.Indexed(231), Bg: color.Indexed(21)}
	grey := Rendition{Attr: AttrUnderline, Bg: color.Indexed(244)}
	bright := Rendition{Fg: color.BrightGreen, Bg: color.Indexed(130)}
	rows := [][]Cell{
		join(styledRow("orange", orange), styledRow(" ", Rendition{}), styledRow("bold", onBlue)),
		join(styledRow("grey", grey), styledRow("rev", Rendition{Attr: AttrReverse, Fg: color.Indexed(202)}), styledRow("plain", Rendition{})),
		join(styledRow("hi", bright), styledRow("ramp", Rendition{Fg: color.Indexed(250)})),
	}

	o := New(newCatalog(t, emulator256Caps), Options{Width: width, Height: height, UTF8: true})
	o.Invalidate()
	for y, row := range rows {
		o.MoveCursor(0, y)
		for x := range row {
			o.EmitCell(&row[x])
		}
	}
	o.ResetAttributes()

	screen := harness.New(width, height)
	_, err := screen.Write(o.Bytes())
	require.NoError(t, err)

	for y, row := range rows {
		for x, c := range row {
			got := screen.Cell(x, y)
			assert.Equal(t, c.Glyph, string(got.Rune), "(%d,%d)", x, y)
			assert.Equal(t, pen(c.Fg), got.Format.Fg, "(%d,%d) fg", x, y)
			assert.Equal(t, pen(c.Bg), got.Format.Bg, "(%d,%d) bg", x, y)
			assert.Equal(t, c.Attr&AttrBold != 0, got.Bold(), "(%d,%d) bold", x, y)
			assert.Equal(t, c.Attr&AttrUnderline != 0, got.Format.Underscore, "(%d,%d) underline", x, y)
			assert.Equal(t, c.Attr&AttrReverse != 0, got.Format.Inverse, "(%d,%d) reverse", x, y)
			assert.False(t, got.Format.Blink, "(%d,%d) blink", x, y)
		}
	}
	assert.Contains(t, string(o.Bytes()), "\x1b[38;5;202m")
	assert.Contains(t, string(o.Bytes()), "\x1b[48;5;21m")
}
