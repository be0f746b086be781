package main

import (
	"bytes"
	"fmt"
	"io"
	"ttycodec/color"
	"ttycodec/config"
	"ttycodec/draw"
	"ttycodec/grid"
	"ttycodec/session"
	"ttycodec/testing/harness"
	"ttycodec/tty"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// demoGrid fills a grid with a sample of what the codec has to handle.
func demoGrid(width, height int) *grid.Grid {
	g := grid.New(width, height)
	plain := tty.Rendition{}

	g.Print(0, 0, "ttycodec demo", tty.Rendition{Attr: tty.AttrBold | tty.AttrUnderline})

	col := 0
	for i := 0; i < 16; i++ {
		col += g.Set(1, col, " ", tty.Rendition{Bg: color.Basic(i)})
		col += g.Set(1, col, " ", tty.Rendition{Bg: color.Basic(i)})
	}

	for i := 0; i < width && i < 216; i++ {
		g.Set(2, i, " ", tty.Rendition{Bg: color.Indexed(16 + i)})
	}
	for i := 0; i < width; i++ {
		v := uint8(i * 255 / width)
		g.Set(3, i, " ", tty.Rendition{Bg: color.RGB(v, 64, 255-v)})
	}

	col = 0
	for _, a := range []tty.Attr{
		tty.AttrBold, tty.AttrDim, tty.AttrItalics, tty.AttrUnderline, tty.AttrBlink,
		tty.AttrReverse, tty.AttrStrikethrough, tty.AttrOverline,
	} {
		_, col = g.Print(4, col, a.String(), tty.Rendition{Attr: a})
		col++
	}

	g.Print(5, 0, "wide: 中文 テスト  combining: é ñ", plain)
	g.Print(6, 0, "bright:", plain)
	col = 8
	for i := 8; i < 16; i++ {
		_, col = g.Print(6, col, fmt.Sprintf("%d ", i), tty.Rendition{Fg: color.Basic(i)})
	}

	g.Clear(7, 4, 20, color.Blue)
	g.Print(7, 0, "bce:", plain)

	row, _ := g.Print(9, 0, "This line is long enough that it wraps onto the next row of the screen so the renderer continues it without moving the cursor.", plain)
	for r := row + 2; r < height; r++ {
		g.Print(r, 0, fmt.Sprintf("row %d", r), tty.Rendition{Fg: color.Basic(r % 8)})
	}
	return g
}

func drawDemo(out *tty.Output, width, height int) {
	g := demoGrid(width, height)
	out.ClearScreen()
	var r draw.Renderer
	r.DrawScreen(out, g, width, height, tty.Rendition{})
	out.ResetAttributes()
	out.MoveCursor(0, height-1)
}

// demoInPty draws the demo into a pseudo terminal and replays what came out
// of it through the reference emulator.
func demoInPty(cfg *config.Config, name string, width, height int) (string, []byte, error) {
	ptmx, slave, err := pty.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open pty: %w", err)
	}
	defer ptmx.Close()
	if err := pty.Setsize(ptmx, &pty.Winsize{Cols: uint16(width), Rows: uint16(height)}); err != nil {
		slave.Close()
		return "", nil, fmt.Errorf("failed to set pty size: %w", err)
	}
	// Raw mode keeps the line discipline from rewriting the stream.
	if _, err := term.MakeRaw(int(slave.Fd())); err != nil {
		slave.Close()
		return "", nil, fmt.Errorf("failed to set raw mode: %w", err)
	}

	screen := harness.New(width, height)
	var raw bytes.Buffer
	done := make(chan struct{})
	go func() {
		// Reading the master fails once the slave is closed.
		io.Copy(io.MultiWriter(screen, &raw), ptmx)
		close(done)
	}()

	c, err := session.New(slave, name, session.Options{Config: cfg, Width: width, Height: height})
	if err != nil {
		slave.Close()
		<-done
		return "", nil, err
	}
	drawDemo(c.Output, width, height)
	if err := c.Close(); err != nil {
		<-done
		return "", nil, err
	}
	<-done

	if term.IsTerminal(1) {
		return screen.Render(), raw.Bytes(), nil
	}
	return screen.Text(), raw.Bytes(), nil
}
