package inspect

import (
	"time"
	"ttycodec/capability"
	"ttycodec/feature"
	"ttycodec/session"
	"ttycodec/tty"
)

const snapshotVersion = "1"

// Snapshot is the state of one connection at a point in time.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`

	Connection ConnectionInfo `json:"connection"`
	Catalog    CatalogInfo    `json:"catalog"`
	Features   []string       `json:"features"`
	Output     OutputInfo     `json:"output"`

	// Components is the same information as a tree.
	Components *Node `json:"components"`
}

type ConnectionInfo struct {
	ID      string `json:"id,omitempty"`
	Path    string `json:"path,omitempty"`
	Term    string `json:"term"`
	Program string `json:"program,omitempty"`
}

type CatalogInfo struct {
	Name string `json:"name"`
	// Flags includes those granted by features; Derived only those computed
	// from the capabilities.
	Flags        string           `json:"flags"`
	Derived      string           `json:"derived"`
	Capabilities []CapabilityInfo `json:"capabilities"`
}

type CapabilityInfo struct {
	Name  string      `json:"name"`
	Kind  string      `json:"kind"`
	Value interface{} `json:"value"`
}

type OutputInfo struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	UTF8   bool `json:"utf8"`
	// Unknown coordinates are -1.
	CursorX       int    `json:"cursor_x"`
	CursorY       int    `json:"cursor_y"`
	Attributes    string `json:"attributes"`
	Foreground    string `json:"foreground"`
	Background    string `json:"background"`
	SyntheticBold bool   `json:"synthetic_bold"`
	RegionTop     int    `json:"region_top"`
	RegionBottom  int    `json:"region_bottom"`
	Margins       bool   `json:"margins"`
	MarginLeft    int    `json:"margin_left"`
	MarginRight   int    `json:"margin_right"`
	Pending       int    `json:"pending_bytes"`
}

// Capture snapshots a connection.
func Capture(c *session.Connection) *Snapshot {
	s := CaptureOutput(c.Output, c.Features())
	s.Connection = ConnectionInfo{ID: c.ID, Path: c.Path, Term: c.Name, Program: c.Program()}
	s.Components = s.tree()
	return s
}

// CaptureOutput snapshots an Output that has no connection.
func CaptureOutput(out *tty.Output, features feature.Set) *Snapshot {
	cat := out.Catalog()
	s := &Snapshot{
		Timestamp:  time.Now(),
		Version:    snapshotVersion,
		Connection: ConnectionInfo{Term: cat.Name()},
		Catalog:    catalogInfo(cat),
		Features:   features.Names(),
		Output:     outputInfo(out),
	}
	if s.Features == nil {
		s.Features = []string{}
	}
	s.Components = s.tree()
	return s
}

func catalogInfo(cat *capability.Catalog) CatalogInfo {
	info := CatalogInfo{
		Name:         cat.Name(),
		Flags:        cat.Flags().String(),
		Derived:      cat.DerivedFlags().String(),
		Capabilities: []CapabilityInfo{},
	}
	for _, e := range cat.Entries() {
		ci := CapabilityInfo{Name: e.ID.Name(), Kind: e.Kind.String()}
		switch e.Kind {
		case capability.KindFlag:
			ci.Value = e.Flag
		case capability.KindNumber:
			ci.Value = e.Number
		default:
			ci.Value = capability.Escape(e.String)
		}
		info.Capabilities = append(info.Capabilities, ci)
	}
	return info
}

func outputInfo(out *tty.Output) OutputInfo {
	st := out.State()
	return OutputInfo{
		Width:         st.Width,
		Height:        st.Height,
		UTF8:          st.UTF8,
		CursorX:       st.CursorX,
		CursorY:       st.CursorY,
		Attributes:    st.Rendition.Attr.String(),
		Foreground:    st.Rendition.Fg.String(),
		Background:    st.Rendition.Bg.String(),
		SyntheticBold: st.SyntheticBold,
		RegionTop:     st.RegionTop,
		RegionBottom:  st.RegionBottom,
		Margins:       st.Margins,
		MarginLeft:    st.MarginLeft,
		MarginRight:   st.MarginRight,
		Pending:       out.Len(),
	}
}

func (s *Snapshot) tree() *Node {
	root := NewNode("connection").WithID(s.Connection.ID).
		WithState("term", s.Connection.Term).
		WithState("program", s.Connection.Program)

	cat := NewNode("catalog").WithID(s.Catalog.Name).
		WithState("flags", s.Catalog.Flags).
		WithState("derived", s.Catalog.Derived)
	for _, c := range s.Catalog.Capabilities {
		n := NewNode("capability").WithID(c.Name).WithState("kind", c.Kind)
		if str, ok := c.Value.(string); ok {
			n.WithContent(str)
		} else {
			n.WithState("value", c.Value)
		}
		cat.AddChild(n)
	}
	root.AddChild(cat)

	features := NewNode("features")
	for _, name := range s.Features {
		features.AddChild(NewNode("feature").WithID(name))
	}
	root.AddChild(features)

	o := s.Output
	root.AddChild(NewNode("output").
		WithState("size", []int{o.Width, o.Height}).
		WithState("cursor", []int{o.CursorX, o.CursorY}).
		WithState("region", []int{o.RegionTop, o.RegionBottom}).
		WithState("attributes", o.Attributes).
		WithState("utf8", o.UTF8))
	return root
}
