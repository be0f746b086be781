package tty

import (
	"strings"
	"ttycodec/color"
)

// Attr is a set of rendition attributes.
type Attr uint16

// Attributes in the order they are emitted.
const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalics
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrHidden
	AttrStrikethrough
	AttrOverline
	AttrCharset
)

var attrNames = []string{
	"bold", "dim", "italics", "underline", "blink", "reverse",
	"hidden", "strikethrough", "overline", "charset",
}

func (a Attr) String() string {
	var names []string
	for i, name := range attrNames {
		if a&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Rendition is the combination of attributes and colours applied to a cell.
// The zero value is the terminal default.
type Rendition struct {
	Attr Attr
	Fg   color.Color
	Bg   color.Color
}

func (r Rendition) IsDefault() bool { return r == Rendition{} }

// CellFlags describe how a grid cell is to be drawn.
type CellFlags uint8

const (
	// CellPadding marks a continuation column of a wide glyph.
	CellPadding CellFlags = 1 << iota
	// CellCleared marks a cell that was erased rather than written.
	CellCleared
)

// Cell is one grid cell.
type Cell struct {
	Glyph string // UTF-8 bytes of one grapheme
	Width int
	Rendition
	Flags CellFlags
}

// Blank is a space with the default rendition.
var Blank = Cell{Glyph: " ", Width: 1}

func (c *Cell) IsPadding() bool { return c.Flags&CellPadding != 0 }

// IsEmpty reports whether the cell can be drawn by clearing: an erased
// cell, or a space with no attributes.
func (c *Cell) IsEmpty() bool {
	if c.Flags&CellCleared != 0 {
		return true
	}
	return c.Attr == 0 && (c.Glyph == " " || c.Glyph == "") && c.Flags&CellPadding == 0
}
