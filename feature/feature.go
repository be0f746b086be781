// Package feature holds named bundles of capability overrides that bring a
// terminal description up to what the terminal actually supports.
package feature

import (
	"strings"
	"ttycodec/capability"
	"ttycodec/log"
)

// Feature is one named bundle. Its position in the table is its bit.
type Feature struct {
	Name         string
	Description  string
	Capabilities []string
	Flags        capability.Flags
}

const (
	setab256 = `setab=\E[%?%p1%{8}%<%t4%p1%d%e%p1%{16}%<%t10%p1%{8}%-%d%e48;5;%p1%d%;m`
	setaf256 = `setaf=\E[%?%p1%{8}%<%t3%p1%d%e%p1%{16}%<%t9%p1%{8}%-%d%e38;5;%p1%d%;m`
)

var table = []Feature{
	{
		Name:         "title",
		Description:  "Terminal supports xterm window title setting.",
		Capabilities: []string{`tsl=\E]0;`, `fsl=^G`},
	},
	{
		Name:         "osc7",
		Description:  "Terminal supports reporting the working directory with OSC 7.",
		Capabilities: []string{`Swd=\E]7;`, `fsl=^G`},
	},
	{
		Name:         "mouse",
		Description:  "Terminal supports xterm mouse reporting.",
		Capabilities: []string{`kmous=\E[M`},
	},
	{
		Name:         "clipboard",
		Description:  "Terminal supports setting the clipboard with OSC 52.",
		Capabilities: []string{`Ms=\E]52;%p1%s;%p2%s\a`},
	},
	{
		Name:         "hyperlinks",
		Description:  "Terminal supports OSC 8 hyperlinks.",
		Capabilities: []string{`Hls=\E]8;%?%p1%l%tid=%p1%s%;;%p2%s\E\\`},
	},
	{
		Name:        "RGB",
		Description: "Terminal supports RGB colour with the ISO 8613-6 SGR sequences.",
		Capabilities: []string{
			`AX`,
			`setrgbf=\E[38;2;%p1%d;%p2%d;%p3%dm`,
			`setrgbb=\E[48;2;%p1%d;%p2%d;%p3%dm`,
			setab256,
			setaf256,
		},
		Flags: capability.Flag256 | capability.FlagRGB,
	},
	{
		Name:         "256",
		Description:  "Terminal supports 256 colours with SGR 38;5 and 48;5.",
		Capabilities: []string{`AX`, setab256, setaf256},
		Flags:        capability.Flag256,
	},
	{
		Name:         "overline",
		Description:  "Terminal supports the SGR 53 overline attribute.",
		Capabilities: []string{`Smol=\E[53m`},
	},
	{
		Name:        "usstyle",
		Description: "Terminal supports underscore styles and colours.",
		Capabilities: []string{
			`Smulx=\E[4\:%p1%dm`,
			`Setulc=\E[58\:2\:\:%p1%{65536}%/%d\:%p1%{256}%/%{255}%&%d\:%p1%{255}%&%d%;m`,
			`ol=\E[59m`,
		},
	},
	{
		Name:         "bpaste",
		Description:  "Terminal supports bracketed paste.",
		Capabilities: []string{`Enbp=\E[?2004h`, `Dsbp=\E[?2004l`},
	},
	{
		Name:         "focus",
		Description:  "Terminal supports focus reporting.",
		Capabilities: []string{`Enfcs=\E[?1004h`, `Dsfcs=\E[?1004l`},
	},
	{
		Name:         "cstyle",
		Description:  "Terminal supports setting the cursor style.",
		Capabilities: []string{`Ss=\E[%p1%d q`, `Se=\E[2 q`},
	},
	{
		Name:         "ccolour",
		Description:  "Terminal supports setting the cursor colour.",
		Capabilities: []string{`Cs=\E]12;%p1%s\a`, `Cr=\E]112\a`},
	},
	{
		Name:         "strikethrough",
		Description:  "Terminal supports the SGR 9 strikethrough attribute.",
		Capabilities: []string{`smxx=\E[9m`},
	},
	{
		Name:         "sync",
		Description:  "Terminal supports synchronized updates.",
		Capabilities: []string{`Sync=\E[?2026%?%p1%{1}%-%tl%eh%;`},
	},
	{
		Name:         "extkeys",
		Description:  "Terminal supports extended keys.",
		Capabilities: []string{`Eneks=\E[>4;2m`, `Dseks=\E[>4m`},
	},
	{
		Name:        "margins",
		Description: "Terminal supports DECSLRM left and right margins.",
		Capabilities: []string{
			`Enmg=\E[?69h`,
			`Dsmg=\E[?69l`,
			`Clmg=\E[s`,
			`Cmg=\E[%i%p1%d;%p2%ds`,
		},
		Flags: capability.FlagDECSLRM,
	},
	{
		Name:         "rectfill",
		Description:  "Terminal supports DECFRA rectangle fill.",
		Capabilities: []string{`Rect=\E[%p1%d;%p2%d;%p3%d;%p4%d;%p5%d$x`},
		Flags:        capability.FlagDECFRA,
	},
	{
		Name:        "ignorefkeys",
		Description: "Ignore function keys from the terminal description.",
		Capabilities: []string{
			`kf1@`, `kf2@`, `kf3@`, `kf4@`, `kf5@`, `kf6@`,
			`kf7@`, `kf8@`, `kf9@`, `kf10@`, `kf11@`, `kf12@`,
		},
	},
	{
		Name:         "sixel",
		Description:  "Terminal supports sixel graphics.",
		Capabilities: []string{`Sxl`},
		Flags:        capability.FlagSixel,
	},
}

// Set is a bitset of features indexed by table position.
type Set uint64

func bit(i int) Set { return Set(1) << uint(i) }

// All returns the feature table in bit order.
func All() []Feature {
	return append([]Feature(nil), table...)
}

// Lookup finds a feature by name, ignoring case.
func Lookup(name string) (Feature, bool) {
	if i := index(name); i >= 0 {
		return table[i], true
	}
	return Feature{}, false
}

func index(name string) int {
	for i, f := range table {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// Has reports whether the named feature is in s.
func (s Set) Has(name string) bool {
	i := index(name)
	return i >= 0 && s&bit(i) != 0
}

// Names returns the names of the features in s in table order.
func (s Set) Names() []string {
	var names []string
	for i, f := range table {
		if s&bit(i) != 0 {
			names = append(names, f.Name)
		}
	}
	return names
}

func (s Set) String() string {
	return strings.Join(s.Names(), ",")
}

// Add parses a list of feature names separated by any of the characters in
// separators and adds them to set. Processing stops at the first name that
// is not a feature; names before it are kept.
func Add(set *Set, names, separators string) {
	fields := strings.FieldsFunc(names, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})
	for _, name := range fields {
		i := index(name)
		if i < 0 {
			log.WarningLog.Printf("unknown terminal feature: %s", name)
			return
		}
		*set |= bit(i)
	}
}

// Apply pushes the capabilities of every feature in set that has not
// already been applied to c, and reports whether anything changed.
func Apply(c *capability.Catalog, set Set) bool {
	applied := Set(c.Applied())
	if set&^applied == 0 {
		return false
	}

	changed := false
	for i, f := range table {
		b := bit(i)
		if set&b == 0 || applied&b != 0 {
			continue
		}
		log.CapabilityTrace(c.Name(), "applying feature %s", f.Name)
		for _, caps := range f.Capabilities {
			c.ApplyOverride(caps, true)
		}
		c.AddFlags(f.Flags)
		c.MarkApplied(uint64(b))
		changed = true
	}
	if changed {
		log.InfoLog.Printf("%s features now %s", c.Name(), Set(c.Applied()))
	}
	return changed
}
