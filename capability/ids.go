package capability

// Kind is the type of value a capability holds. It is fixed per ID.
type Kind int

const (
	KindFlag Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "unknown"
}

// ID identifies a capability the codec knows about. Capabilities in a
// description that have no ID are ignored.
type ID int

const (
	// Flags.
	AM ID = iota
	AX
	Bce
	RGB
	Sxl
	Tc
	XT
	Xenl

	// Numbers.
	Colors
	Cols
	Lines

	// Strings.
	Blink
	Bold
	Civis
	Clear
	Clmg
	Cmg
	Cnorm
	Cr
	Cs
	Csr
	Cub
	Cub1
	Cud
	Cud1
	Cuf
	Cuf1
	Cup
	Cuu
	Cuu1
	Dch
	Dch1
	Dim
	Dl
	Dl1
	Dsbp
	Dseks
	Dsfcs
	Dsmg
	Ech
	Ed
	El
	El1
	Enacs
	Enbp
	Eneks
	Enfcs
	Enmg
	Fsl
	Hls
	Home
	Hpa
	Ich
	Ich1
	Il
	Il1
	Ind
	Indn
	Invis
	Kf1
	Kf2
	Kf3
	Kf4
	Kf5
	Kf6
	Kf7
	Kf8
	Kf9
	Kf10
	Kf11
	Kf12
	Kmous
	Ms
	Ol
	Op
	Rect
	Rev
	Ri
	Rin
	Ritm
	Rmacs
	Rmcup
	Rmir
	Rmkx
	Rmso
	Rmul
	Se
	Setab
	Setaf
	Setrgbb
	Setrgbf
	Setulc
	Sgr0
	Sitm
	Smacs
	Smcup
	Smir
	Smkx
	Smol
	Smso
	Smul
	Smulx
	Smxx
	Ss
	Swd
	Sync
	Tsl
	Vpa

	numIDs
)

type code struct {
	name string
	kind Kind
}

var codes = [numIDs]code{
	AM:   {"am", KindFlag},
	AX:   {"AX", KindFlag},
	Bce:  {"bce", KindFlag},
	RGB:  {"RGB", KindFlag},
	Sxl:  {"Sxl", KindFlag},
	Tc:   {"Tc", KindFlag},
	XT:   {"XT", KindFlag},
	Xenl: {"xenl", KindFlag},

	Colors: {"colors", KindNumber},
	Cols:   {"cols", KindNumber},
	Lines:  {"lines", KindNumber},

	Blink:   {"blink", KindString},
	Bold:    {"bold", KindString},
	Civis:   {"civis", KindString},
	Clear:   {"clear", KindString},
	Clmg:    {"Clmg", KindString},
	Cmg:     {"Cmg", KindString},
	Cnorm:   {"cnorm", KindString},
	Cr:      {"Cr", KindString},
	Cs:      {"Cs", KindString},
	Csr:     {"csr", KindString},
	Cub:     {"cub", KindString},
	Cub1:    {"cub1", KindString},
	Cud:     {"cud", KindString},
	Cud1:    {"cud1", KindString},
	Cuf:     {"cuf", KindString},
	Cuf1:    {"cuf1", KindString},
	Cup:     {"cup", KindString},
	Cuu:     {"cuu", KindString},
	Cuu1:    {"cuu1", KindString},
	Dch:     {"dch", KindString},
	Dch1:    {"dch1", KindString},
	Dim:     {"dim", KindString},
	Dl:      {"dl", KindString},
	Dl1:     {"dl1", KindString},
	Dsbp:    {"Dsbp", KindString},
	Dseks:   {"Dseks", KindString},
	Dsfcs:   {"Dsfcs", KindString},
	Dsmg:    {"Dsmg", KindString},
	Ech:     {"ech", KindString},
	Ed:      {"ed", KindString},
	El:      {"el", KindString},
	El1:     {"el1", KindString},
	Enacs:   {"enacs", KindString},
	Enbp:    {"Enbp", KindString},
	Eneks:   {"Eneks", KindString},
	Enfcs:   {"Enfcs", KindString},
	Enmg:    {"Enmg", KindString},
	Fsl:     {"fsl", KindString},
	Hls:     {"Hls", KindString},
	Home:    {"home", KindString},
	Hpa:     {"hpa", KindString},
	Ich:     {"ich", KindString},
	Ich1:    {"ich1", KindString},
	Il:      {"il", KindString},
	Il1:     {"il1", KindString},
	Ind:     {"ind", KindString},
	Indn:    {"indn", KindString},
	Invis:   {"invis", KindString},
	Kf1:     {"kf1", KindString},
	Kf2:     {"kf2", KindString},
	Kf3:     {"kf3", KindString},
	Kf4:     {"kf4", KindString},
	Kf5:     {"kf5", KindString},
	Kf6:     {"kf6", KindString},
	Kf7:     {"kf7", KindString},
	Kf8:     {"kf8", KindString},
	Kf9:     {"kf9", KindString},
	Kf10:    {"kf10", KindString},
	Kf11:    {"kf11", KindString},
	Kf12:    {"kf12", KindString},
	Kmous:   {"kmous", KindString},
	Ms:      {"Ms", KindString},
	Ol:      {"ol", KindString},
	Op:      {"op", KindString},
	Rect:    {"Rect", KindString},
	Rev:     {"rev", KindString},
	Ri:      {"ri", KindString},
	Rin:     {"rin", KindString},
	Ritm:    {"ritm", KindString},
	Rmacs:   {"rmacs", KindString},
	Rmcup:   {"rmcup", KindString},
	Rmir:    {"rmir", KindString},
	Rmkx:    {"rmkx", KindString},
	Rmso:    {"rmso", KindString},
	Rmul:    {"rmul", KindString},
	Se:      {"Se", KindString},
	Setab:   {"setab", KindString},
	Setaf:   {"setaf", KindString},
	Setrgbb: {"setrgbb", KindString},
	Setrgbf: {"setrgbf", KindString},
	Setulc:  {"Setulc", KindString},
	Sgr0:    {"sgr0", KindString},
	Sitm:    {"sitm", KindString},
	Smacs:   {"smacs", KindString},
	Smcup:   {"smcup", KindString},
	Smir:    {"smir", KindString},
	Smkx:    {"smkx", KindString},
	Smol:    {"Smol", KindString},
	Smso:    {"smso", KindString},
	Smul:    {"smul", KindString},
	Smulx:   {"Smulx", KindString},
	Smxx:    {"smxx", KindString},
	Ss:      {"Ss", KindString},
	Swd:     {"Swd", KindString},
	Sync:    {"Sync", KindString},
	Tsl:     {"tsl", KindString},
	Vpa:     {"vpa", KindString},
}

var byName map[string]ID

func init() {
	byName = make(map[string]ID, numIDs)
	for i, c := range codes {
		byName[c.name] = ID(i)
	}
}

// Lookup returns the ID for a terminfo capability name. Names are case sensitive.
func Lookup(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// IDs returns every known capability in table order.
func IDs() []ID {
	ids := make([]ID, numIDs)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

func (id ID) Name() string {
	if id < 0 || id >= numIDs {
		return "unknown"
	}
	return codes[id].name
}

func (id ID) Kind() Kind {
	if id < 0 || id >= numIDs {
		return KindFlag
	}
	return codes[id].kind
}

func (id ID) String() string { return id.Name() }
