package tty

import (
	"errors"
)

// ErrUnsupportedGlyph is logged when a glyph cannot be sent to the terminal
// and a placeholder is written instead. It is never returned.
var ErrUnsupportedGlyph = errors.New("unsupported glyph")
