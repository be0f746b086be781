package capability

import (
	"regexp"
	"strings"
	"sync"
	"ttycodec/log"
)

type value struct {
	present bool
	flag    bool
	number  int
	str     string
}

// Catalog is the capability set of one terminal type. Catalogs are shared
// between connections through a Registry; all methods are safe for
// concurrent use.
type Catalog struct {
	name string
	refs int // guarded by the owning Registry's mutex

	mu       sync.RWMutex
	values   [numIDs]value
	flags    Flags  // derived when the catalog is built
	features Flags  // added by features
	applied  uint64 // feature bits already applied
}

func newCatalog(name string) *Catalog {
	return &Catalog{name: name}
}

func (c *Catalog) Name() string { return c.name }

// Has reports whether a capability is present. A flag is present only when set.
func (c *Catalog) Has(id ID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v := c.values[id]
	if id.Kind() == KindFlag {
		return v.present && v.flag
	}
	return v.present
}

func (c *Catalog) Flag(id ID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v := c.values[id]
	return v.present && v.flag
}

// Number returns a numeric capability, or 0 when absent.
func (c *Catalog) Number(id ID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[id].number
}

// String returns a string capability unexpanded, or "" when absent.
func (c *Catalog) String(id ID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[id].str
}

// Flags returns the derived flags combined with any added by features.
func (c *Catalog) Flags() Flags {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flags | c.features
}

// DerivedFlags returns only the flags computed when the catalog was built.
func (c *Catalog) DerivedFlags() Flags {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flags
}

// AddFlags ORs feature flags into the catalog.
func (c *Catalog) AddFlags(f Flags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.features |= f
}

// Applied returns the feature bits already applied to this catalog.
func (c *Catalog) Applied() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applied
}

// MarkApplied records feature bits as applied.
func (c *Catalog) MarkApplied(bits uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied |= bits
}

// Entry is one present capability, for listing.
type Entry struct {
	ID     ID
	Kind   Kind
	Flag   bool
	Number int
	String string
}

// Entries returns every present capability in table order.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var entries []Entry
	for i, v := range c.values {
		if !v.present {
			continue
		}
		id := ID(i)
		entries = append(entries, Entry{ID: id, Kind: id.Kind(), Flag: v.flag, Number: v.number, String: v.str})
	}
	return entries
}

var padding = regexp.MustCompile(`\$<[0-9.]+[*/]*>`)

// set and the other unexported mutators expect c.mu to be held.
func (c *Catalog) set(id ID, v value) {
	if id.Kind() == KindString {
		v.str = padding.ReplaceAllString(v.str, "")
	}
	c.values[id] = v
}

func (c *Catalog) remove(id ID) {
	c.values[id] = value{}
}

func (c *Catalog) load(d *Description) {
	for name, on := range d.Flags {
		if id, ok := Lookup(name); ok && id.Kind() == KindFlag {
			c.set(id, value{present: true, flag: on})
		}
	}
	for name, n := range d.Numbers {
		id, ok := Lookup(name)
		if !ok {
			continue
		}
		switch id.Kind() {
		case KindNumber:
			c.set(id, value{present: true, number: n})
		case KindFlag:
			// Extended capabilities such as RGB appear with any type.
			c.set(id, value{present: true, flag: true})
		}
	}
	for name, s := range d.Strings {
		id, ok := Lookup(name)
		if !ok {
			continue
		}
		switch id.Kind() {
		case KindString:
			c.set(id, value{present: true, str: s})
		case KindFlag:
			c.set(id, value{present: true, flag: true})
		}
	}
}

type quirk struct {
	prefix string
	when   func(c *Catalog) bool
	values []string
}

// Families whose descriptions often omit sequences they support.
var quirks = []quirk{
	{"rxvt", func(c *Catalog) bool { return !c.values[Dch1].present }, []string{`dch1=\E[P`}},
	{"xterm", func(c *Catalog) bool { return !c.values[Ich1].present }, []string{`ich1=\E[@`}},
	{"", func(c *Catalog) bool {
		return c.values[XT].flag && (!c.values[Tsl].present || !c.values[Fsl].present)
	}, []string{`tsl=\E]0;`, `fsl=^G`}},
}

func (c *Catalog) applyQuirks() {
	for _, q := range quirks {
		if !strings.HasPrefix(c.name, q.prefix) || !q.when(c) {
			continue
		}
		for _, v := range q.values {
			log.CapabilityTrace(c.name, "quirk %s", v)
			c.applyLocked(v, true)
		}
	}
}

type requirement struct {
	ids     []ID
	insMode bool // smir and rmir together also satisfy
}

var requirements = []requirement{
	{ids: []ID{Clear}},
	{ids: []ID{Ri}},
	{ids: []ID{Cup}},
	{ids: []ID{Cud1, Cud}},
	{ids: []ID{Il1, Il}},
	{ids: []ID{Dl1, Dl}},
	{ids: []ID{Dch1, Dch}},
	{ids: []ID{Ich1, Ich}, insMode: true},
}

func (c *Catalog) check() error {
	for _, r := range requirements {
		ok := false
		for _, id := range r.ids {
			if c.values[id].present {
				ok = true
				break
			}
		}
		if !ok && r.insMode && c.values[Smir].present && c.values[Rmir].present {
			ok = true
		}
		if !ok {
			return &MissingCapabilityError{Terminal: c.name, ID: r.ids[0], Alternatives: r.ids[1:]}
		}
	}
	return nil
}

func (c *Catalog) derive() {
	var f Flags
	colors := c.values[Colors].number
	if colors >= 256 {
		f |= Flag256
	} else if colors == 88 {
		f |= Flag88
	}
	if c.values[Tc].flag || c.values[RGB].flag {
		f |= FlagRGB
	}
	if c.values[AX].flag {
		f |= FlagDefaultColours
	}
	if c.values[Cmg].present {
		f |= FlagDECSLRM
	}
	if c.values[Rect].present {
		f |= FlagDECFRA
	}
	if !c.values[Xenl].flag {
		f |= FlagEarlyWrap
	}
	if c.values[XT].flag || strings.HasPrefix(c.values[Clear].str, "\x1b[") {
		f |= FlagVT100Like
	}
	if c.values[Sxl].flag {
		f |= FlagSixel
	}
	c.flags = f
}
