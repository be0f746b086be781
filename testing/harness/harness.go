// Package harness replays emitted terminal output into a reference emulator
// so tests can check what a terminal would actually show, not which bytes
// were sent.
package harness

import (
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
	"sync"
	ttycolor "ttycodec/color"

	"github.com/muesli/ansi"
	"github.com/tonistiigi/vt100"
)

// Sequences the emulator does not implement and that do not change the
// screen contents: OSC strings, DCS strings, charset designation, shift
// in/out, private modes and terminal queries.
var unsupportedRegex = regexp.MustCompile(
	`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)` +
		`|\x1bP[^\x1b]*\x1b\\` +
		`|\x1b[()*+][0-9A-Za-z]` +
		`|[\x0e\x0f]` +
		`|\x1b\[\?[0-9;]*[hlsr]` +
		`|\x1b\[[>=][0-9;]*[a-zA-Z]`)

var (
	sgrRegex = regexp.MustCompile(`\x1b\[([0-9;]*)m`)
	// An escape sequence cut off at the end of a write.
	partialRegex = regexp.MustCompile(`\x1b(?:\[[0-9;?>=]*)?$`)
)

// Screen is a reference terminal of a fixed size.
type Screen struct {
	mu sync.RWMutex

	vt      *vt100.VT100
	width   int
	height  int
	pending []byte
}

// New returns a blank screen.
func New(width, height int) *Screen {
	return &Screen{
		vt:     vt100.NewVT100(height, width),
		width:  width,
		height: height,
	}
}

// Write feeds p to the emulator.
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := append(s.pending, p...)
	s.pending = nil
	if loc := partialRegex.FindIndex(data); loc != nil {
		s.pending = append([]byte(nil), data[loc[0]:]...)
		data = data[:loc[0]]
	}

	// The emulator only knows the eight basic colours, so colour SGRs are
	// applied to its pen here and everything else is passed through.
	cleaned := unsupportedRegex.ReplaceAll(data, nil)
	for len(cleaned) > 0 {
		loc := sgrRegex.FindSubmatchIndex(cleaned)
		if loc == nil {
			break
		}
		if _, err := s.vt.Write(cleaned[:loc[0]]); err != nil {
			return len(p), err
		}
		s.sgr(string(cleaned[loc[2]:loc[3]]))
		cleaned = cleaned[loc[1]:]
	}
	_, err := s.vt.Write(cleaned)
	return len(p), err
}

func (s *Screen) sgr(params string) {
	if params == "" {
		s.vt.Cursor.F = vt100.Format{}
		return
	}
	var args []int
	for _, f := range strings.Split(params, ";") {
		n, _ := strconv.Atoi(f)
		args = append(args, n)
	}

	pen := &s.vt.Cursor.F
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case (a == 38 || a == 48) && i+2 < len(args) && args[i+1] == 5:
			setPen(pen, a == 38, Palette(args[i+2]))
			i += 2
		case (a == 38 || a == 48) && i+4 < len(args) && args[i+1] == 2:
			setPen(pen, a == 38, color.RGBA{R: uint8(args[i+2]), G: uint8(args[i+3]), B: uint8(args[i+4]), A: 255})
			i += 4
		case a >= 90 && a <= 97:
			pen.Fg = Palette(a - 90 + 8)
		case a >= 100 && a <= 107:
			pen.Bg = Palette(a - 100 + 8)
		default:
			s.vt.Write([]byte(fmt.Sprintf("\x1b[%dm", a)))
		}
	}
}

func setPen(pen *vt100.Format, fg bool, c color.RGBA) {
	if fg {
		pen.Fg = c
	} else {
		pen.Bg = c
	}
}

var basicPen = [8]color.RGBA{
	vt100.Black, vt100.Red, vt100.Green, vt100.Yellow,
	vt100.Blue, vt100.Magenta, vt100.Cyan, vt100.White,
}

// Palette returns the colour the screen records for palette index n. The
// first eight are the emulator's own; the rest follow the xterm palette.
func Palette(n int) color.RGBA {
	if n >= 0 && n < 8 {
		return basicPen[n]
	}
	r, g, b := ttycolor.Indexed(n & 0xff).Components()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Resize changes the screen size.
func (s *Screen) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width != s.width || height != s.height {
		s.vt.Resize(height, width)
		s.width, s.height = width, height
	}
}

func (s *Screen) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// Cell is what the emulator shows at one position.
type Cell struct {
	Rune   rune
	Format vt100.Format
}

func (c Cell) Bold() bool { return c.Format.Intensity == vt100.Bright }

func (c Cell) String() string {
	return fmt.Sprintf("%q fg=%v bg=%v i=%v u=%v b=%v r=%v",
		c.Rune, c.Format.Fg, c.Format.Bg, c.Format.Intensity,
		c.Format.Underscore, c.Format.Blink, c.Format.Inverse)
}

// Cell returns the cell at (x, y). Never written cells read as spaces.
func (s *Screen) Cell(x, y int) Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.vt.Content[y][x]
	if r == 0 {
		r = ' '
	}
	return Cell{Rune: r, Format: s.vt.Format[y][x]}
}

// Cursor returns the emulator's cursor position.
func (s *Screen) Cursor() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vt.Cursor.X, s.vt.Cursor.Y
}

// Line returns the text of row y without trailing blanks.
func (s *Screen) Line(y int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.line(y)
}

func (s *Screen) line(y int) string {
	var sb strings.Builder
	for x := 0; x < s.width; x++ {
		r := s.vt.Content[y][x]
		if r == 0 {
			r = ' '
		}
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

// Text returns every row joined by newlines.
func (s *Screen) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]string, s.height)
	for y := range lines {
		lines[y] = s.line(y)
	}
	return strings.Join(lines, "\n")
}

// Diff lists every cell that differs between s and other. Both screens must
// be the same size.
func (s *Screen) Diff(other *Screen) []string {
	var diffs []string
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			a, b := s.Cell(x, y), other.Cell(x, y)
			if a.Rune != b.Rune || !formatsEqual(a.Format, b.Format) {
				diffs = append(diffs, fmt.Sprintf("(%d,%d): %s != %s", x, y, a, b))
			}
		}
	}
	return diffs
}

// Render re-encodes the screen with SGR sequences, one row per line.
func (s *Screen) Render() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sb strings.Builder
	var prev vt100.Format
	first := true
	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteString("\n")
		}
		last := -1
		for x := s.width - 1; x >= 0; x-- {
			if r := s.vt.Content[y][x]; r != ' ' && r != 0 {
				last = x
				break
			}
		}
		for x := 0; x <= last; x++ {
			f := s.vt.Format[y][x]
			if first || !formatsEqual(f, prev) {
				sb.WriteString(formatToSGR(f))
				prev, first = f, false
			}
			r := s.vt.Content[y][x]
			if r == 0 {
				r = ' '
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteString("\x1b[0m")
	return sb.String()
}

func formatsEqual(a, b vt100.Format) bool {
	return a.Fg == b.Fg &&
		a.Bg == b.Bg &&
		a.Intensity == b.Intensity &&
		a.Underscore == b.Underscore &&
		a.Conceal == b.Conceal &&
		a.Negative == b.Negative &&
		a.Blink == b.Blink &&
		a.Inverse == b.Inverse
}

func formatToSGR(f vt100.Format) string {
	codes := []string{"0"}
	switch f.Intensity {
	case vt100.Bright:
		codes = append(codes, "1")
	case vt100.Dim:
		codes = append(codes, "2")
	}
	if f.Underscore {
		codes = append(codes, "4")
	}
	if f.Blink {
		codes = append(codes, "5")
	}
	if f.Inverse {
		codes = append(codes, "7")
	}
	if f.Conceal {
		codes = append(codes, "8")
	}
	if c := rgbCode(f.Fg, 38); c != "" {
		codes = append(codes, c)
	}
	if c := rgbCode(f.Bg, 48); c != "" {
		codes = append(codes, c)
	}
	return fmt.Sprintf("\x1b[%sm", strings.Join(codes, ";"))
}

func rgbCode(c color.RGBA, base int) string {
	if c == (color.RGBA{}) {
		return ""
	}
	return fmt.Sprintf("%d;2;%d;%d;%d", base, c.R, c.G, c.B)
}

// PrintableWidth returns the number of columns p occupies once escape
// sequences are removed.
func PrintableWidth(p []byte) int {
	return ansi.PrintableRuneWidth(string(p))
}
