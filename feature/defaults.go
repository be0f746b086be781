package feature

import (
	"regexp"
	"strconv"
	"strings"
	"ttycodec/log"
)

// Features every modern xterm-compatible terminal is expected to have.
const baseModernXterm = "256,RGB,bpaste,clipboard,mouse,strikethrough,title"

type defaultEntry struct {
	name     string
	version  uint // minimum version, 0 for any
	features string
}

var defaults = []defaultEntry{
	{name: "mintty", features: baseModernXterm + ",ccolour,cstyle,extkeys,margins,overline,usstyle"},
	{name: "tmux", features: baseModernXterm + ",ccolour,cstyle,focus,overline,usstyle,hyperlinks"},
	{name: "rxvt-unicode", features: "256,bpaste,ccolour,cstyle,mouse,title,ignorefkeys"},
	{name: "iTerm2", features: baseModernXterm + ",cstyle,extkeys,margins,usstyle,sync,osc7,hyperlinks"},
	{name: "foot", features: baseModernXterm + ",cstyle,extkeys"},
	// DECSLRM and DECFRA can be disabled in xterm, so they come from the
	// secondary device attributes instead.
	{name: "XTerm", features: baseModernXterm + ",ccolour,cstyle,extkeys,focus"},
}

// Default adds the features known for a terminal program. The name is what
// the terminal reports about itself (for example "XTerm" or "iTerm2"), not
// the TERM value. A version of 0 matches every entry.
func Default(set *Set, terminal string, version uint) {
	for _, e := range defaults {
		if e.name != terminal {
			continue
		}
		if version != 0 && version < e.version {
			continue
		}
		Add(set, e.features, ",")
	}
}

// Terminals returns the names that have default features.
func Terminals() []string {
	names := make([]string, 0, len(defaults))
	for _, e := range defaults {
		names = append(names, e.name)
	}
	return names
}

var secondaryDA = regexp.MustCompile(`\x1b\[>([0-9]+)((?:;[0-9]*)*)c`)

// FromDeviceAttributes adds features implied by a secondary device
// attributes reply (CSI > Pp ; Pv ; Pc c) and returns the terminal it names,
// or "" when the reply is not recognised.
func FromDeviceAttributes(set *Set, reply []byte) string {
	m := secondaryDA.FindSubmatch(reply)
	if m == nil {
		return ""
	}

	var version uint
	if params := strings.Split(strings.TrimPrefix(string(m[2]), ";"), ";"); len(params) > 0 {
		if v, err := strconv.ParseUint(params[0], 10, 32); err == nil {
			version = uint(v)
		}
	}

	kind, _ := strconv.Atoi(string(m[1]))
	log.InfoLog.Printf("secondary device attributes: type %d version %d", kind, version)
	// Some terminals report a letter as their type.
	switch kind {
	case 41:
		Add(set, "margins,rectfill", ",")
		return "VT420"
	case 'M':
		Default(set, "mintty", version)
		return "mintty"
	case 'T':
		Default(set, "tmux", version)
		return "tmux"
	case 'U':
		Default(set, "rxvt-unicode", version)
		return "rxvt-unicode"
	}
	return ""
}

var xtversion = regexp.MustCompile(`\x1bP>\|([^\x1b]*)\x1b\\`)

var xtermVersion = regexp.MustCompile(`^XTerm\(([0-9]+)\)`)

// FromVersion adds features for an XTVERSION reply (DCS > | text ST) and
// returns the terminal it names, or "" when the program is unknown.
func FromVersion(set *Set, reply []byte) string {
	m := xtversion.FindSubmatch(reply)
	if m == nil {
		return ""
	}
	text := string(m[1])
	log.InfoLog.Printf("terminal version: %q", text)

	switch {
	case strings.HasPrefix(text, "iTerm2 "):
		Default(set, "iTerm2", 0)
		return "iTerm2"
	case strings.HasPrefix(text, "tmux "):
		Default(set, "tmux", 0)
		return "tmux"
	case strings.HasPrefix(text, "XTerm("):
		var version uint
		if vm := xtermVersion.FindStringSubmatch(text); vm != nil {
			v, _ := strconv.ParseUint(vm[1], 10, 32)
			version = uint(v)
		}
		Default(set, "XTerm", version)
		return "XTerm"
	case strings.HasPrefix(text, "mintty "):
		Default(set, "mintty", 0)
		return "mintty"
	case strings.HasPrefix(text, "foot("):
		Default(set, "foot", 0)
		return "foot"
	}
	return ""
}
