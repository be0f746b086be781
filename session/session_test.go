package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"ttycodec/capability"
	"ttycodec/config"
	"ttycodec/log"

	"github.com/creack/pty"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Initialize(false)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Sources = []string{config.SourceBuiltin}
	cfg.TerminalFeatures = nil
	cfg.Probe = false
	cfg.UTF8 = config.UTF8On
	return cfg
}

// openPty returns the master side and the path of the slave.
func openPty(t *testing.T) (*os.File, string) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	require.NoError(t, err)
	require.NoError(t, pty.Setsize(ptmx, &pty.Winsize{Rows: 30, Cols: 100}))
	t.Cleanup(func() {
		tty.Close()
		ptmx.Close()
	})
	return ptmx, tty.Name()
}

// readUntil collects what the connection wrote until want appears.
func readUntil(t *testing.T, ptmx *os.File, want string) string {
	t.Helper()
	done := make(chan string, 1)
	go func() {
		var sb strings.Builder
		buf := make([]byte, 256)
		for !strings.Contains(sb.String(), want) {
			n, err := ptmx.Read(buf)
			sb.Write(buf[:n])
			if err != nil {
				break
			}
		}
		done <- sb.String()
	}()

	select {
	case got := <-done:
		return got
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
		return ""
	}
}

// respond answers the probe once its final query arrives.
func respond(ptmx *os.File, reply string) <-chan string {
	seen := make(chan string, 1)
	go func() {
		var sb strings.Builder
		buf := make([]byte, 256)
		for !strings.Contains(sb.String(), queryPrimary) {
			n, err := ptmx.Read(buf)
			sb.Write(buf[:n])
			if err != nil {
				seen <- sb.String()
				return
			}
		}
		ptmx.Write([]byte(reply))
		seen <- sb.String()
	}()
	return seen
}

func TestOpen(t *testing.T) {
	_, path := openPty(t)
	reg := NewRegistry(testConfig(), nil)

	c, err := Open(path, "xterm-256color", Options{Config: testConfig(), Registry: reg})
	require.NoError(t, err)

	_, err = uuid.Parse(c.ID)
	assert.NoError(t, err)
	assert.Equal(t, path, c.Path)
	assert.Equal(t, "xterm-256color", c.Name)
	assert.Equal(t, "xterm-256color", c.Catalog().Name())
	assert.Equal(t, 1, reg.Refs("xterm-256color"))

	w, h := c.Output.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 30, h)
	assert.True(t, c.Output.UTF8())

	require.NoError(t, c.Close())
	assert.Equal(t, 0, reg.Refs("xterm-256color"))
	assert.NoError(t, c.Close())
}

func TestOpenSharesCatalog(t *testing.T) {
	_, path := openPty(t)
	reg := NewRegistry(testConfig(), nil)

	a, err := Open(path, "xterm", Options{Config: testConfig(), Registry: reg})
	require.NoError(t, err)
	b, err := Open(path, "xterm", Options{Config: testConfig(), Registry: reg})
	require.NoError(t, err)

	assert.Same(t, a.Catalog(), b.Catalog())
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, reg.Refs("xterm"))
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
	assert.Equal(t, 0, reg.Refs("xterm"))
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("/nonexistent/tty", "xterm", Options{Config: testConfig()})
	assert.True(t, errors.Is(err, ErrDeviceOpen))

	_, path := openPty(t)
	reg := NewRegistry(testConfig(), nil)
	_, err = Open(path, "no-such-terminal", Options{Config: testConfig(), Registry: reg})
	assert.True(t, errors.Is(err, capability.ErrCatalogUnavailable))
	assert.Equal(t, 0, reg.Refs("no-such-terminal"))
}

func TestOpenDefaultTerm(t *testing.T) {
	_, path := openPty(t)
	cfg := testConfig()
	cfg.DefaultTerm = "screen"

	c, err := Open(path, "", Options{Config: cfg})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "screen", c.Name)
}

func TestConfiguredFeatures(t *testing.T) {
	_, path := openPty(t)
	cfg := testConfig()
	cfg.TerminalFeatures = []string{"xterm*:sync:title", "screen*:margins"}
	cfg.ForceSpaces = []string{"xterm*"}

	c, err := Open(path, "xterm-256color", Options{Config: cfg})
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Features().Has("sync"))
	assert.True(t, c.Features().Has("title"))
	assert.False(t, c.Features().Has("margins"))

	assert.True(t, c.AddFeatures("margins"))
	assert.True(t, c.Features().Has("margins"))
	assert.False(t, c.AddFeatures("margins"), "already applied")
}

func TestFlush(t *testing.T) {
	ptmx, path := openPty(t)
	c, err := Open(path, "xterm-256color", Options{Config: testConfig()})
	require.NoError(t, err)
	defer c.Close()

	c.Output.MoveCursor(4, 2)
	require.NoError(t, c.Flush())
	got := readUntil(t, ptmx, "\x1b[3;5H")
	assert.Contains(t, got, "\x1b[3;5H")
	assert.Equal(t, 0, c.Output.Len())
}

func TestCloseResetsTerminal(t *testing.T) {
	ptmx, path := openPty(t)
	c, err := Open(path, "xterm-256color", Options{Config: testConfig()})
	require.NoError(t, err)

	c.Output.SetCursorVisible(false)
	require.NoError(t, c.Flush())
	readUntil(t, ptmx, "\x1b[?25l")

	require.NoError(t, c.Close())
	assert.Contains(t, readUntil(t, ptmx, "\x1b[?12l\x1b[?25h"), "\x1b[?25h")
	assert.NoError(t, c.Flush(), "flush after close is a no-op")
}

func TestQueryFeatures(t *testing.T) {
	t.Setenv("TTYCODEC_CONFIG_DIR", t.TempDir())
	ptmx, path := openPty(t)
	cfg := testConfig()
	cfg.UTF8 = config.UTF8Auto
	state := config.DefaultState()

	c, err := Open(path, "xterm-256color", Options{Config: cfg, State: state})
	require.NoError(t, err)
	defer c.Close()
	c.Output.SetUTF8(false)

	seen := respond(ptmx, "\x1bP>|XTerm(380)\x1b\\\x1b[>41;380;0c\x1b[1;2R\x1b[?62;22c")
	require.NoError(t, c.QueryFeatures(context.Background()))

	queries := <-seen
	assert.Contains(t, queries, queryVersion)
	assert.Contains(t, queries, querySecondary)
	assert.Contains(t, queries, "\x1b[6n")

	assert.Equal(t, "XTerm", c.Program())
	for _, name := range []string{"margins", "rectfill", "title", "RGB"} {
		assert.True(t, c.Features().Has(name), name)
	}
	assert.True(t, c.Output.UTF8())

	d, ok := state.Detection("xterm-256color", 0)
	require.True(t, ok)
	assert.Equal(t, "XTerm", d.Program)
	assert.True(t, d.UTF8)
}

func TestQueryFeaturesTimeout(t *testing.T) {
	_, path := openPty(t)
	cfg := testConfig()
	cfg.ProbeTimeoutMS = 50

	c, err := Open(path, "xterm-256color", Options{Config: cfg})
	require.NoError(t, err)
	defer c.Close()

	start := time.Now()
	err = c.QueryFeatures(context.Background())
	assert.True(t, errors.Is(err, ErrDetectionTimeout))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "", c.Program())
}

func TestQueryFeaturesCancelled(t *testing.T) {
	_, path := openPty(t)
	c, err := Open(path, "xterm-256color", Options{Config: testConfig()})
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(c.QueryFeatures(ctx), ErrDetectionTimeout))
}

func TestCachedDetection(t *testing.T) {
	t.Setenv("TTYCODEC_CONFIG_DIR", t.TempDir())
	_, path := openPty(t)
	cfg := testConfig()
	cfg.Probe = true
	state := config.DefaultState()
	state.Detections["xterm-256color"] = config.Detection{Program: "iTerm2", Features: "sync,osc7", When: time.Now()}

	// A cached program skips the probe, so this returns without waiting.
	c, err := Open(path, "xterm-256color", Options{Config: cfg, State: state})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "iTerm2", c.Program())
	assert.True(t, c.Features().Has("sync"))
	assert.True(t, c.Features().Has("osc7"))
}

func TestDetectionSavedElsewhere(t *testing.T) {
	t.Setenv("TTYCODEC_CONFIG_DIR", t.TempDir())
	_, path := openPty(t)
	state := config.LoadState()

	// Another process probes the same terminal type after state was read.
	other := config.LoadState()
	require.NoError(t, other.Remember("screen", config.Detection{Program: "tmux", Features: "focus"}))
	statePath := filepath.Join(os.Getenv("TTYCODEC_CONFIG_DIR"), config.StateFileName)
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(statePath, later, later))

	c, err := Open(path, "screen", Options{Config: testConfig(), State: state})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "tmux", c.Program())
	assert.True(t, c.Features().Has("focus"))
}

func TestParseReplies(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		program  string
		features []string
		utf8     *bool
		answer   bool
	}{
		{
			name:     "version",
			reply:    "\x1bP>|tmux 3.4\x1b\\\x1b[?1;2c",
			program:  "tmux",
			features: []string{"focus", "usstyle"},
			answer:   true,
		},
		{
			name:     "secondary attributes",
			reply:    "\x1b[>77;30105;0c\x1b[?1;2c",
			program:  "mintty",
			features: []string{"margins", "overline"},
			answer:   true,
		},
		{
			name:   "not utf8",
			reply:  "\x1b[1;4R\x1b[?1;2c",
			utf8:   boolPtr(false),
			answer: true,
		},
		{
			name:  "no answer",
			reply: "\x1b[1;2R",
			utf8:  boolPtr(true),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseReplies([]byte(tt.reply), true)
			assert.Equal(t, tt.program, p.Program)
			assert.Equal(t, tt.answer, p.Answer)
			assert.Equal(t, tt.utf8, p.UTF8)
			for _, name := range tt.features {
				assert.True(t, p.Features.Has(name), name)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func TestNewRegistrySources(t *testing.T) {
	cfg := testConfig()
	cfg.Sources = nil
	cfg.TerminalOverrides = []string{"screen*:Tc"}
	reg := NewRegistry(cfg, nil)

	c, err := reg.Acquire("screen")
	require.NoError(t, err)
	defer reg.Release(c)
	assert.True(t, c.Flags().Has(capability.FlagRGB))
}

func TestUTF8FromEnv(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_CTYPE", "")
	t.Setenv("LANG", "en_US.UTF-8")
	assert.True(t, utf8FromEnv())

	t.Setenv("LC_CTYPE", "C")
	assert.False(t, utf8FromEnv())
}
