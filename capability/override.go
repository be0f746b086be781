package capability

import (
	"path"
	"strconv"
	"strings"
	"ttycodec/log"
)

// ApplyOverride changes capabilities from a list of entries separated by
// ':' (a literal colon is written "\:"). Each entry is "name=value" to set a
// string or number, "name" to set a flag, or "name@" to remove the
// capability. Unknown names are ignored. Changes are logged unless quiet.
func (c *Catalog) ApplyOverride(entry string, quiet bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(entry, quiet)
}

func (c *Catalog) applyLocked(entry string, quiet bool) {
	for _, piece := range splitList(entry) {
		c.applyOne(piece, quiet)
	}
}

func (c *Catalog) applyOne(piece string, quiet bool) {
	if piece == "" {
		return
	}

	name, val, hasValue := piece, "", false
	remove := false
	if i := strings.IndexAny(piece, "=#"); i > 0 {
		name, val, hasValue = piece[:i], piece[i+1:], true
	} else if strings.HasSuffix(piece, "@") {
		name, remove = strings.TrimSuffix(piece, "@"), true
	}

	id, ok := Lookup(name)
	if !ok {
		log.CapabilityTrace(c.name, "ignoring unknown capability %q", name)
		return
	}

	switch {
	case remove:
		c.remove(id)
	case id.Kind() == KindFlag:
		c.set(id, value{present: true, flag: true})
	case !hasValue:
		log.CapabilityTrace(c.name, "ignoring %s without a value", name)
		return
	case id.Kind() == KindNumber:
		n, err := strconv.ParseInt(val, 0, 32)
		if err != nil {
			log.WarningLog.Printf("%s: invalid number for %s: %q", c.name, name, val)
			return
		}
		c.set(id, value{present: true, number: int(n)})
	default:
		c.set(id, value{present: true, str: Unescape(val)})
	}

	if !quiet {
		log.InfoLog.Printf("%s override: %s", c.name, piece)
	}
	log.CapabilityTrace(c.name, "applied %s", piece)
}

// splitList splits on ':' except where escaped as "\:". The escape is kept
// so Unescape can turn it into a colon.
func splitList(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			continue
		}
		if s[i] == ':' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// matchOverride reports whether a terminal override entry "pattern:caps"
// applies to name, and returns the capability list.
func matchOverride(entry, name string) (string, bool) {
	parts := splitList(entry)
	if len(parts) < 2 {
		return "", false
	}
	ok, err := path.Match(parts[0], name)
	if err != nil || !ok {
		return "", false
	}
	return strings.Join(parts[1:], ":"), true
}
