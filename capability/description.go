package capability

import (
	"fmt"
	"strconv"
	"strings"
)

// Description is a terminal description as read from a database source.
// String values are already unescaped.
type Description struct {
	Name    string
	Aliases []string
	Comment string

	Flags   map[string]bool
	Numbers map[string]int
	Strings map[string]string

	// Cancelled holds names written as "name@", which stop inheritance
	// through Uses.
	Cancelled map[string]bool
	// Uses lists the descriptions this one inherits from, in order.
	Uses []string
}

func newDescription(name string) *Description {
	return &Description{
		Name:      name,
		Flags:     make(map[string]bool),
		Numbers:   make(map[string]int),
		Strings:   make(map[string]string),
		Cancelled: make(map[string]bool),
	}
}

func (d *Description) has(name string) bool {
	if d.Cancelled[name] {
		return true
	}
	if _, ok := d.Flags[name]; ok {
		return true
	}
	if _, ok := d.Numbers[name]; ok {
		return true
	}
	_, ok := d.Strings[name]
	return ok
}

// inherit copies every capability of parent that d does not already define
// or cancel.
func (d *Description) inherit(parent *Description) {
	for k, v := range parent.Flags {
		if !d.has(k) {
			d.Flags[k] = v
		}
	}
	for k, v := range parent.Numbers {
		if !d.has(k) {
			d.Numbers[k] = v
		}
	}
	for k, v := range parent.Strings {
		if !d.has(k) {
			d.Strings[k] = v
		}
	}
}

func (d *Description) clone() *Description {
	c := newDescription(d.Name)
	c.Aliases = append([]string(nil), d.Aliases...)
	c.Comment = d.Comment
	c.Uses = append([]string(nil), d.Uses...)
	for k, v := range d.Flags {
		c.Flags[k] = v
	}
	for k, v := range d.Numbers {
		c.Numbers[k] = v
	}
	for k, v := range d.Strings {
		c.Strings[k] = v
	}
	for k, v := range d.Cancelled {
		c.Cancelled[k] = v
	}
	return c
}

// ParseDescription reads one terminfo source entry in the format written by
// "infocmp -1 -x": a header line "name|alias|comment," followed by indented,
// comma-terminated capabilities.
func ParseDescription(src string) (*Description, error) {
	var header string
	var body strings.Builder
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if header == "" && line[0] != ' ' && line[0] != '\t' {
			header = trimmed
			continue
		}
		body.WriteString(trimmed)
		body.WriteByte(' ')
	}
	if header == "" {
		return nil, fmt.Errorf("failed to parse terminal description: no header line")
	}

	fields := splitFields(header)
	if len(fields) == 0 {
		return nil, fmt.Errorf("failed to parse terminal description: empty header")
	}
	names := strings.Split(fields[0], "|")
	d := newDescription(names[0])
	if len(names) > 1 {
		d.Comment = names[len(names)-1]
		d.Aliases = names[1 : len(names)-1]
	}

	// Capabilities may follow the names on the header line.
	caps := append(fields[1:], splitFields(body.String())...)
	for _, field := range caps {
		if err := d.parseField(field); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", d.Name, err)
		}
	}
	return d, nil
}

func (d *Description) parseField(field string) error {
	if field == "" {
		return nil
	}

	if i := strings.IndexByte(field, '='); i > 0 {
		name, value := field[:i], field[i+1:]
		if name == "use" {
			d.Uses = append(d.Uses, value)
			return nil
		}
		d.Strings[name] = Unescape(value)
		return nil
	}
	if i := strings.IndexByte(field, '#'); i > 0 {
		n, err := strconv.ParseInt(field[i+1:], 0, 32)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", field, err)
		}
		d.Numbers[field[:i]] = int(n)
		return nil
	}
	if strings.HasSuffix(field, "@") {
		d.Cancelled[strings.TrimSuffix(field, "@")] = true
		return nil
	}
	d.Flags[field] = true
	return nil
}

// splitFields splits on commas that are not escaped with a backslash.
func splitFields(s string) []string {
	var fields []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\\' && i+1 < len(s) {
			cur.WriteByte(ch)
			cur.WriteByte(s[i+1])
			i++
			continue
		}
		if ch == ',' {
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(ch)
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		fields = append(fields, rest)
	}
	return fields
}
