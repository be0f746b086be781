package tty

import (
	"strings"
	"testing"
	"ttycodec/capability"
	"ttycodec/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Initialize(false)
}

// The capabilities every catalog must have.
const baseCaps = `clear=\E[H\E[2J, ri=\EM, cup=\E[%i%p1%d;%p2%dH, cud1=\n, il1=\E[L, dl1=\E[M, ich1=\E[@, dch1=\E[P`

const sgrCaps = `sgr0=\E[m, bold=\E[1m, dim=\E[2m, sitm=\E[3m, smul=\E[4m, blink=\E[5m, rev=\E[7m,
	invis=\E[8m, smxx=\E[9m, Smol=\E[53m, smso=\E[7m, smacs=\E(0, rmacs=\E(B`

const colour256Caps = `colors#256, op=\E[39;49m,
	setaf=\E[%?%p1%{8}%<%t3%p1%d%e%p1%{16}%<%t9%p1%{8}%-%d%e38;5;%p1%d%;m,
	setab=\E[%?%p1%{8}%<%t4%p1%d%e%p1%{16}%<%t10%p1%{8}%-%d%e48;5;%p1%d%;m`

const colour8Caps = `colors#8, setaf=\E[3%p1%dm, setab=\E[4%p1%dm`

const editCaps = `am, xenl, el=\E[K, el1=\E[1K, ech=\E[%p1%dX, ed=\E[J, csr=\E[%i%p1%d;%p2%dr,
	il=\E[%p1%dL, dl=\E[%p1%dM, ich=\E[%p1%d@, dch=\E[%p1%dP, indn=\E[%p1%dS, rin=\E[%p1%dT,
	tsl=\E]0;, fsl=^G, civis=\E[?25l, cnorm=\E[?25h`

const marginCaps = `Enmg=\E[?69h, Dsmg=\E[?69l, Clmg=\E[s, Cmg=\E[%i%p1%d;%p2%ds`

const rectCaps = `Rect=\E[%p1%d;%p2%d;%p3%d;%p4%d;%p5%d$x`

func caps(parts ...string) string {
	return strings.Join(parts, ", ")
}

var fullCaps = caps(baseCaps, sgrCaps, colour256Caps, editCaps, "bce, AX")

func newCatalog(t *testing.T, caps string) *capability.Catalog {
	t.Helper()
	ds := capability.Descriptions{}
	require.NoError(t, ds.Add("test|test terminal,\n\t"+caps+",\n"))
	c, err := capability.NewRegistry(ds, nil).Acquire("test")
	require.NoError(t, err)
	return c
}

func newOutput(t *testing.T, caps string) *Output {
	t.Helper()
	return New(newCatalog(t, caps), Options{Width: 80, Height: 24})
}

func builtinOutput(t *testing.T, name string) *Output {
	t.Helper()
	c, err := capability.NewRegistry(capability.Builtin(), nil).Acquire(name)
	require.NoError(t, err)
	return New(c, Options{Width: 80, Height: 24, UTF8: true})
}

// take returns and discards the pending output.
func take(o *Output) string {
	s := string(o.Bytes())
	o.ResetBuffer()
	return s
}

func TestNewDefaults(t *testing.T) {
	o := New(newCatalog(t, caps(baseCaps, "cols#132, lines#50")), Options{})
	w, h := o.Size()
	assert.Equal(t, 132, w)
	assert.Equal(t, 50, h)

	o = New(newCatalog(t, baseCaps), Options{})
	w, h = o.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)

	x, y := o.Cursor()
	assert.Equal(t, Unknown, x)
	assert.Equal(t, Unknown, y)
	assert.Equal(t, 0, o.Len())
}

func TestMoveCursor(t *testing.T) {
	o := newOutput(t, caps(baseCaps, `el=\E[K`))

	o.MoveCursor(5, 10)
	assert.Equal(t, "\x1b[11;6H", take(o))

	o.MoveCursor(5, 10)
	assert.Empty(t, take(o), "already there")

	o.MoveCursor(0, 0)
	assert.Equal(t, "\x1b[1;1H", take(o))
}

func TestCursorTracking(t *testing.T) {
	a := Cell{Glyph: "a", Width: 1}
	wide := Cell{Glyph: "中", Width: 2}

	tests := []struct {
		name  string
		caps  string
		start [2]int
		cells []Cell
		want  [2]int
	}{
		{"advance", fullCaps, [2]int{3, 1}, []Cell{a, a}, [2]int{5, 1}},
		{"pending wrap", fullCaps, [2]int{79, 0}, []Cell{a}, [2]int{80, 0}},
		{"continue after pending wrap", fullCaps, [2]int{79, 0}, []Cell{a, a}, [2]int{1, 1}},
		{"early wrap", caps(baseCaps, "am"), [2]int{79, 0}, []Cell{a}, [2]int{0, 1}},
		{"early wrap skips bottom right", caps(baseCaps, "am"), [2]int{79, 23}, []Cell{a}, [2]int{79, 23}},
		{"no auto margin", baseCaps, [2]int{79, 0}, []Cell{a, a}, [2]int{79, 0}},
		{"wide glyph", fullCaps, [2]int{10, 0}, []Cell{wide}, [2]int{12, 0}},
		{"wide glyph does not fit", fullCaps, [2]int{79, 0}, []Cell{wide}, [2]int{Unknown, Unknown}},
		{"padding skipped", fullCaps, [2]int{0, 0}, []Cell{wide, {Flags: CellPadding}}, [2]int{2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(newCatalog(t, tt.caps), Options{Width: 80, Height: 24, UTF8: true})
			o.MoveCursor(tt.start[0], tt.start[1])
			for i := range tt.cells {
				o.EmitCell(&tt.cells[i])
			}
			x, y := o.Cursor()
			assert.Equal(t, tt.want[0], x, "x")
			assert.Equal(t, tt.want[1], y, "y")
		})
	}
}

func TestAtPendingWrap(t *testing.T) {
	o := newOutput(t, fullCaps)
	o.MoveCursor(79, 4)
	o.EmitCell(&Cell{Glyph: "x", Width: 1})

	assert.True(t, o.AtPendingWrap(0, 5))
	assert.False(t, o.AtPendingWrap(1, 5))
	assert.False(t, o.AtPendingWrap(0, 6))

	o.MoveCursor(79, 23)
	o.EmitCell(&Cell{Glyph: "x", Width: 1})
	assert.False(t, o.AtPendingWrap(0, 24), "no row below the region")
}

func TestSetRegion(t *testing.T) {
	t.Run("without csr", func(t *testing.T) {
		o := newOutput(t, baseCaps)
		assert.False(t, o.Has(capability.Csr))
		o.SetRegion(2, 10, 0)
		assert.Empty(t, take(o))
		top, bottom := o.Region()
		assert.Equal(t, Unknown, top)
		assert.Equal(t, Unknown, bottom)
	})

	t.Run("emits once", func(t *testing.T) {
		o := newOutput(t, fullCaps)
		o.MoveCursor(3, 3)
		take(o)

		o.SetRegion(2, 10, 0)
		assert.Equal(t, "\x1b[3;11r", take(o))
		x, y := o.Cursor()
		assert.Equal(t, Unknown, x)
		assert.Equal(t, Unknown, y)

		o.SetRegion(2, 10, 0)
		assert.Empty(t, take(o))
		top, bottom := o.Region()
		assert.Equal(t, 2, top)
		assert.Equal(t, 10, bottom)
	})

	t.Run("offset", func(t *testing.T) {
		o := newOutput(t, fullCaps)
		o.SetRegion(0, 5, 1)
		assert.Equal(t, "\x1b[2;7r", take(o))
	})

	t.Run("leaves pending wrap first", func(t *testing.T) {
		o := newOutput(t, fullCaps)
		o.MoveCursor(78, 0)
		o.EmitCell(&Cell{Glyph: "a", Width: 1})
		o.EmitCell(&Cell{Glyph: "b", Width: 1})
		take(o)

		o.SetRegion(0, 10, 0)
		assert.Equal(t, "\x1b[1;1H\x1b[1;11r", take(o))
	})

	t.Run("region off", func(t *testing.T) {
		o := newOutput(t, fullCaps)
		o.SetRegion(2, 10, 0)
		take(o)
		o.RegionOff()
		assert.Equal(t, "\x1b[1;24r", take(o))
	})
}

func TestSetMargins(t *testing.T) {
	t.Run("without DECSLRM", func(t *testing.T) {
		o := newOutput(t, fullCaps)
		o.SetMargins(5, 40)
		assert.Empty(t, take(o))
	})

	t.Run("program and reset", func(t *testing.T) {
		o := newOutput(t, caps(fullCaps, marginCaps))
		o.SetMargins(5, 40)
		assert.Equal(t, "\x1b[?69h\x1b[1;24r\x1b[6;41s", take(o))

		o.SetMargins(5, 40)
		assert.Empty(t, take(o))

		o.MarginOff()
		assert.Equal(t, "\x1b[1;24r\x1b[s", take(o))

		o.Reset()
		assert.Equal(t, "\x1b[s\x1b[?69l", take(o))
	})
}

func TestSetTitle(t *testing.T) {
	o := newOutput(t, fullCaps)
	o.SetTitle("hi\x07the\x1bre\u009b")
	assert.Equal(t, "\x1b]0;hithere\x07", take(o))

	o = newOutput(t, baseCaps)
	o.SetTitle("ignored")
	assert.Empty(t, take(o))
}

func TestSetCursorVisible(t *testing.T) {
	o := newOutput(t, fullCaps)
	o.SetCursorVisible(false)
	assert.Equal(t, "\x1b[?25l", take(o))
	o.SetCursorVisible(false)
	assert.Empty(t, take(o))
	o.SetCursorVisible(true)
	assert.Equal(t, "\x1b[?25h", take(o))

	o = newOutput(t, baseCaps)
	o.SetCursorVisible(false)
	assert.Empty(t, take(o))
}

func TestInvalidate(t *testing.T) {
	o := newOutput(t, fullCaps)
	o.MoveCursor(4, 4)
	o.ApplyAttributes(Rendition{Attr: AttrBold})
	take(o)

	o.Invalidate()
	assert.Equal(t, "\x1b[m", take(o))
	assert.True(t, o.Rendition().IsDefault())

	// The cursor has to be sent again.
	o.MoveCursor(4, 4)
	assert.Equal(t, "\x1b[5;5H", take(o))
}

func TestReset(t *testing.T) {
	o := newOutput(t, fullCaps)
	o.ApplyAttributes(Rendition{Attr: AttrUnderline})
	o.SetRegion(3, 8, 0)
	o.SetCursorVisible(false)
	take(o)

	o.Reset()
	assert.Equal(t, "\x1b[m\x1b[1;24r\x1b[?25h", take(o))

	o.Reset()
	assert.Empty(t, take(o), "nothing left to reset")
}

func TestResize(t *testing.T) {
	o := newOutput(t, fullCaps)
	o.MoveCursor(1, 1)
	o.Resize(100, 30)

	w, h := o.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 30, h)
	x, _ := o.Cursor()
	assert.Equal(t, Unknown, x)
}

func TestWriteTo(t *testing.T) {
	o := newOutput(t, fullCaps)
	o.MoveCursor(0, 0)

	var sb strings.Builder
	n, err := o.WriteTo(&sb)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, "\x1b[1;1H", sb.String())
	assert.Equal(t, 0, o.Len())
}

func TestState(t *testing.T) {
	o := newOutput(t, fullCaps)
	o.MoveCursor(2, 3)
	o.ApplyAttributes(Rendition{Attr: AttrBold})

	s := o.State()
	assert.Equal(t, 2, s.CursorX)
	assert.Equal(t, 3, s.CursorY)
	assert.Equal(t, AttrBold, s.Rendition.Attr)
	assert.Contains(t, s.String(), "80x24 cursor=(2,3) attr=bold")
}
