// Package snapshot provides golden file testing for emitted escape streams.
// Streams are stored in terminfo escape notation so golden files stay
// printable and diffable.
package snapshot

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"ttycodec/capability"

	"github.com/muesli/ansi"
)

// GoldenDir is the default directory for golden files
const GoldenDir = "testdata/golden"

var (
	csiRegex = regexp.MustCompile(`\x1b\[[0-9;:?<=>]*[ $]?[@-~]`)
	oscRegex = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)
	escRegex = regexp.MustCompile(`\x1b[()][0-9A-Za-z]|\x1b[78=>MDEc]|[\x0e\x0f]`)

	// Any single sequence, used to split a stream.
	sequenceRegex = regexp.MustCompile(csiRegex.String() + `|` + oscRegex.String() + `|` + escRegex.String())
)

// Snap provides snapshot testing functionality
type Snap struct {
	t         *testing.T
	goldenDir string
	update    bool
}

// New creates a new Snap instance for the given test
func New(t *testing.T) *Snap {
	return &Snap{
		t:         t,
		goldenDir: GoldenDir,
		update:    os.Getenv("UPDATE_GOLDEN") == "1",
	}
}

// WithDir sets a custom golden file directory
func (s *Snap) WithDir(dir string) *Snap {
	s.goldenDir = dir
	return s
}

// Assert compares an escape stream against a golden file.
// If UPDATE_GOLDEN=1, updates the golden file instead.
func (s *Snap) Assert(name string, stream []byte) {
	s.t.Helper()

	goldenPath := filepath.Join(s.goldenDir, name+".golden")
	visible := Visible(stream)

	if s.update {
		if err := os.MkdirAll(s.goldenDir, 0755); err != nil {
			s.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(visible), 0644); err != nil {
			s.t.Fatalf("failed to write golden file: %v", err)
		}
		s.t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.t.Fatalf("Golden file not found: %s\nRun with UPDATE_GOLDEN=1 to create it.\nActual output:\n%s", goldenPath, visible)
		}
		s.t.Fatalf("failed to read golden file: %v", err)
	}

	if normalizeGolden(string(expected)) != visible {
		s.t.Errorf("Snapshot mismatch for %s\n\nExpected:\n%s\n\nActual:\n%s\n\nRun with UPDATE_GOLDEN=1 to update.",
			name, string(expected), visible)
	}
}

// AssertContains checks that the stream contains the raw sequence substr.
func (s *Snap) AssertContains(stream []byte, substr string) {
	s.t.Helper()
	if !strings.Contains(string(stream), substr) {
		s.t.Errorf("Output does not contain expected sequence.\nExpected to contain: %s\nActual:\n%s",
			capability.Escape(substr), Visible(stream))
	}
}

// AssertNotContains checks that the stream does NOT contain substr.
func (s *Snap) AssertNotContains(stream []byte, substr string) {
	s.t.Helper()
	if strings.Contains(string(stream), substr) {
		s.t.Errorf("Output unexpectedly contains sequence: %s\nActual:\n%s",
			capability.Escape(substr), Visible(stream))
	}
}

// Visible renders a stream in escape notation with one sequence or text
// run per line.
func Visible(stream []byte) string {
	var sb strings.Builder
	for _, part := range Split(stream) {
		sb.WriteString(capability.Escape(part))
		sb.WriteString("\n")
	}
	return sb.String()
}

func normalizeGolden(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// Split breaks a stream into escape sequences and the text between them.
func Split(stream []byte) []string {
	s := string(stream)
	var parts []string
	last := 0
	for _, loc := range sequenceRegex.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			parts = append(parts, s[last:loc[0]])
		}
		parts = append(parts, s[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(s) {
		parts = append(parts, s[last:])
	}
	return parts
}

// StripANSI removes all escape sequences from a string
func StripANSI(s string) string {
	s = csiRegex.ReplaceAllString(s, "")
	s = oscRegex.ReplaceAllString(s, "")
	return escRegex.ReplaceAllString(s, "")
}

// Count returns how many times the sequence seq appears in the stream.
func Count(stream []byte, seq string) int {
	return strings.Count(string(stream), seq)
}

// Width returns the printable width of the stream
func Width(stream []byte) int {
	return ansi.PrintableRuneWidth(StripANSI(string(stream)))
}
