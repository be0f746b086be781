package capability

import (
	"strings"

	"github.com/gdamore/tcell/v2/terminfo"
)

// Expand returns a string capability with its parameters substituted, or ""
// when the capability is absent.
func (c *Catalog) Expand(id ID, args ...interface{}) string {
	return ExpandTemplate(c.String(id), args...)
}

// ExpandTemplate evaluates a terminfo parameterized string. Padding has
// already been stripped when the template came from a Catalog.
func ExpandTemplate(s string, args ...interface{}) string {
	if s == "" || !strings.ContainsRune(s, '%') {
		return s
	}
	ti := &terminfo.Terminfo{}
	return padding.ReplaceAllString(ti.TParm(s, args...), "")
}
