package harness

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonistiigi/vt100"
)

func TestScreenWrite(t *testing.T) {
	s := New(20, 5)
	_, err := s.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, "hello", s.Line(0))
	x, y := s.Cursor()
	assert.Equal(t, 5, x)
	assert.Equal(t, 0, y)

	_, err = s.Write([]byte("\x1b[2;3Hx"))
	require.NoError(t, err)
	assert.Equal(t, 'x', s.Cell(2, 1).Rune)
	assert.Equal(t, ' ', s.Cell(0, 1).Rune)
}

func TestScreenAttributes(t *testing.T) {
	s := New(20, 5)
	_, err := s.Write([]byte("\x1b[1mB\x1b[m\x1b[7mR\x1b[mN"))
	require.NoError(t, err)

	assert.True(t, s.Cell(0, 0).Bold())
	assert.False(t, s.Cell(1, 0).Bold())
	assert.True(t, s.Cell(1, 0).Format.Inverse)
	assert.False(t, s.Cell(2, 0).Format.Inverse)
}

func TestScreenStripsUnsupported(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"title with bel", "\x1b]0;title\x07ok"},
		{"title with st", "\x1b]2;title\x1b\\ok"},
		{"charset", "\x1b(Bok"},
		{"shift in", "\x0fok"},
		{"private mode", "\x1b[?25lok"},
		{"secondary attributes", "\x1b[>cok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(20, 2)
			n, _ := s.Write([]byte(tt.input))
			assert.Equal(t, len(tt.input), n)
			assert.Equal(t, "ok", s.Line(0))
		})
	}
}

func TestScreenColours(t *testing.T) {
	s := New(20, 2)
	_, err := s.Write([]byte("\x1b[38;5;202ma\x1b[48;5;21mb\x1b[0mc\x1b[91md\x1b[38;2;1;2;3me\x1b[31;104mf"))
	require.NoError(t, err)

	assert.Equal(t, Palette(202), s.Cell(0, 0).Format.Fg)
	assert.False(t, s.Cell(0, 0).Format.Blink, "5 in 38;5;n is not blink")
	assert.Equal(t, Palette(202), s.Cell(1, 0).Format.Fg)
	assert.Equal(t, Palette(21), s.Cell(1, 0).Format.Bg)
	assert.Equal(t, vt100.DefaultColor, s.Cell(2, 0).Format.Fg)
	assert.Equal(t, vt100.DefaultColor, s.Cell(2, 0).Format.Bg)
	assert.Equal(t, Palette(9), s.Cell(3, 0).Format.Fg)
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, s.Cell(4, 0).Format.Fg)
	assert.Equal(t, vt100.Red, s.Cell(5, 0).Format.Fg)
	assert.Equal(t, Palette(12), s.Cell(5, 0).Format.Bg)
	assert.Equal(t, "abcdef", s.Line(0))
}

func TestScreenSplitSequence(t *testing.T) {
	s := New(20, 2)
	_, _ = s.Write([]byte("\x1b[38;5"))
	_, _ = s.Write([]byte(";202mx\x1b"))
	_, _ = s.Write([]byte("[1my"))

	assert.Equal(t, "xy", s.Line(0))
	assert.Equal(t, Palette(202), s.Cell(0, 0).Format.Fg)
	assert.True(t, s.Cell(1, 0).Bold())
}

func TestPalette(t *testing.T) {
	assert.Equal(t, vt100.Blue, Palette(4))
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x5f, B: 0x00, A: 255}, Palette(202))
	assert.Equal(t, color.RGBA{R: 0x08, G: 0x08, B: 0x08, A: 255}, Palette(232))
}

func TestScreenDiff(t *testing.T) {
	a := New(10, 2)
	b := New(10, 2)
	_, _ = a.Write([]byte("abc"))
	_, _ = b.Write([]byte("abc"))
	assert.Empty(t, a.Diff(b))

	_, _ = b.Write([]byte("\x1b[1;2HX"))
	diffs := a.Diff(b)
	require.Len(t, diffs, 1)
	assert.Contains(t, diffs[0], "(1,0)")
}

func TestScreenText(t *testing.T) {
	s := New(10, 3)
	_, _ = s.Write([]byte("one\r\ntwo"))
	assert.Equal(t, "one\ntwo\n", s.Text())
	assert.Contains(t, s.Render(), "one")
}

func TestPrintableWidth(t *testing.T) {
	assert.Equal(t, 2, PrintableWidth([]byte("\x1b[1mab\x1b[m")))
	assert.Equal(t, 0, PrintableWidth([]byte("\x1b[5;10H")))
}
