package capability

import (
	"strings"
)

// Flags are terminal properties derived from the capabilities or granted by
// features.
type Flags uint32

const (
	Flag256 Flags = 1 << iota
	Flag88
	FlagRGB
	FlagDefaultColours
	FlagDECSLRM
	FlagDECFRA
	FlagEarlyWrap
	FlagVT100Like
	FlagSixel
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{Flag256, "256"},
	{Flag88, "88"},
	{FlagRGB, "RGB"},
	{FlagDefaultColours, "default-colours"},
	{FlagDECSLRM, "DECSLRM"},
	{FlagDECFRA, "DECFRA"},
	{FlagEarlyWrap, "early-wrap"},
	{FlagVT100Like, "VT100-like"},
	{FlagSixel, "sixel"},
}

func (f Flags) Has(want Flags) bool { return f&want == want }

func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
