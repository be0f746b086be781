// Package session ties a terminal device to its capability catalog,
// detected features and output state.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"ttycodec/capability"
	"ttycodec/cmd"
	"ttycodec/config"
	"ttycodec/feature"
	"ttycodec/log"
	"ttycodec/tty"

	"github.com/google/uuid"
	"golang.org/x/term"
)

var (
	ErrDeviceOpen = errors.New("failed to open terminal device")
	// ErrDetectionTimeout means the terminal did not answer the probe in
	// time. The connection stays usable with the features already known.
	ErrDetectionTimeout = errors.New("terminal detection timed out")
)

// DefaultDevice is opened when no device path is given.
const DefaultDevice = "/dev/tty"

// Device is the terminal a Connection writes to. *os.File implements it.
type Device interface {
	io.ReadWriteCloser
	Fd() uintptr
	SetReadDeadline(t time.Time) error
}

// Options configure Open.
type Options struct {
	// Config defaults to config.DefaultConfig.
	Config *config.Config
	// Registry shares catalogs between connections. When nil, one is built
	// from Config.
	Registry *capability.Registry
	// State caches probe results. Optional.
	State *config.State
	// Width and Height override the size read from the device.
	Width, Height int
	// Executor runs infocmp for a registry built from Config.
	Executor cmd.Executor
}

// Connection is one open terminal. It is owned by a single goroutine.
type Connection struct {
	ID   string
	Name string
	Path string

	// Output is where drawing goes. Flush sends it to the device.
	Output *tty.Output

	device   Device
	cfg      *config.Config
	state    *config.State
	registry *capability.Registry
	catalog  *capability.Catalog
	features feature.Set
	program  string
	closed   bool
}

// NewRegistry builds a catalog registry from the database sources and
// overrides in cfg.
func NewRegistry(cfg *config.Config, executor cmd.Executor) *capability.Registry {
	var chain capability.Chain
	for _, s := range cfg.Sources {
		switch s {
		case config.SourceBuiltin:
			chain = append(chain, capability.Builtin())
		case config.SourceInfocmp:
			chain = append(chain, capability.NewInfocmp(executor))
		}
	}
	if len(chain) == 0 {
		chain = append(chain, capability.Builtin())
	}
	return capability.NewRegistry(chain, cfg.TerminalOverrides)
}

// Open opens the terminal device at path and prepares it for terminal
// name. An empty path opens DefaultDevice and an empty name uses the
// configured default terminal.
func Open(path, name string, opts Options) (*Connection, error) {
	if path == "" {
		path = DefaultDevice
	}
	f, err := openDevice(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceOpen, err)
	}
	c, err := New(f, name, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	return c, nil
}

// New prepares an already open device for terminal name.
func New(device Device, name string, opts Options) (*Connection, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	name = cfg.Term(name)

	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry(cfg, opts.Executor)
	}
	cat, err := registry.Acquire(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load terminal %s: %w", name, err)
	}

	c := &Connection{
		ID:       uuid.NewString(),
		Name:     name,
		device:   device,
		cfg:      cfg,
		state:    opts.State,
		registry: registry,
		catalog:  cat,
	}
	if named, ok := device.(interface{ Name() string }); ok {
		c.Path = named.Name()
	}

	for _, list := range cfg.FeaturesFor(name) {
		feature.Add(&c.features, list, ":,")
	}
	utf8 := utf8FromEnv()
	if opts.State != nil {
		opts.State.Refresh()
		if d, ok := opts.State.Detection(name, 0); ok {
			feature.Add(&c.features, d.Features, ",")
			c.program = d.Program
			utf8 = d.UTF8
		}
	}
	switch cfg.UTF8Mode() {
	case config.UTF8On:
		utf8 = true
	case config.UTF8Off:
		utf8 = false
	}
	feature.Apply(cat, c.features)

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		if w, h, err := term.GetSize(int(device.Fd())); err == nil {
			width, height = w, h
		}
	}
	c.Output = tty.New(cat, tty.Options{
		Width:       width,
		Height:      height,
		UTF8:        utf8,
		Placeholder: cfg.PlaceholderByte(),
		ForceSpaces: cfg.ForceSpacesFor(name),
	})
	c.Output.Invalidate()

	log.InfoLog.Printf("connection %s: %s as %s, features %s", c.ID, c.Path, name, c.features)

	if cfg.Probe && c.program == "" && term.IsTerminal(int(device.Fd())) {
		if err := c.QueryFeatures(context.Background()); err != nil {
			log.WarningLog.Printf("connection %s: %v", c.ID, err)
		}
	}
	return c, nil
}

func utf8FromEnv() bool {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(key); v != "" {
			v = strings.ToLower(v)
			return strings.Contains(v, "utf-8") || strings.Contains(v, "utf8")
		}
	}
	return false
}

func (c *Connection) Catalog() *capability.Catalog { return c.catalog }

func (c *Connection) Features() feature.Set { return c.features }

// Program returns the terminal program detected by the probe, or "".
func (c *Connection) Program() string { return c.program }

// AddFeatures enables more features by name.
func (c *Connection) AddFeatures(names string) bool {
	feature.Add(&c.features, names, ":,")
	return feature.Apply(c.catalog, c.features)
}

// Flush writes pending output to the device.
func (c *Connection) Flush() error {
	if c.closed {
		return nil
	}
	if _, err := c.Output.WriteTo(c.device); err != nil {
		return fmt.Errorf("failed to write to %s: %w", c.Name, err)
	}
	return nil
}

// UpdateSize reads the device size and resizes the output.
func (c *Connection) UpdateSize() error {
	w, h, err := term.GetSize(int(c.device.Fd()))
	if err != nil {
		return fmt.Errorf("failed to get terminal size: %w", err)
	}
	c.Output.Resize(w, h)
	return nil
}

// Close resets the terminal, flushes, releases the catalog and closes the
// device. Closing twice is a no-op.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.Output.Reset()
	err := c.Flush()
	c.closed = true
	c.registry.Release(c.catalog)
	if cerr := c.device.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close %s: %w", c.Path, cerr)
	}
	log.InfoLog.Printf("connection %s: closed", c.ID)
	return err
}
