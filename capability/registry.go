package capability

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"ttycodec/log"
)

// Registry interns catalogs by terminal name. A catalog is built on the
// first Acquire and dropped when its last holder releases it.
type Registry struct {
	mu        sync.Mutex
	source    Source
	overrides []string
	catalogs  map[string]*Catalog
}

// NewRegistry returns a Registry reading descriptions from source.
// overrides are "pattern:caps" entries applied to every catalog whose name
// matches the shell glob pattern.
func NewRegistry(source Source, overrides []string) *Registry {
	return &Registry{
		source:    source,
		overrides: append([]string(nil), overrides...),
		catalogs:  make(map[string]*Catalog),
	}
}

// Acquire returns the catalog for name, building it if needed.
func (r *Registry) Acquire(name string) (*Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.catalogs[name]; ok {
		c.refs++
		return c, nil
	}

	c, err := r.build(name)
	if err != nil {
		return nil, err
	}
	c.refs = 1
	r.catalogs[name] = c
	log.InfoLog.Printf("built catalog for %s (flags %s)", name, c.DerivedFlags())
	return c, nil
}

// Release gives up one acquisition of c.
func (r *Registry) Release(c *Catalog) {
	if c == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c.refs--
	if c.refs > 0 {
		return
	}
	if r.catalogs[c.name] == c {
		delete(r.catalogs, c.name)
		log.InfoLog.Printf("freed catalog for %s", c.name)
	}
}

// Refs returns the number of outstanding acquisitions of name.
func (r *Registry) Refs(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.catalogs[name]; ok {
		return c.refs
	}
	return 0
}

// Names returns the terminal names with live catalogs.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) build(name string) (*Catalog, error) {
	if r.source == nil {
		return nil, fmt.Errorf("%w: %s: no database source", ErrCatalogUnavailable, name)
	}
	d, err := r.source.Lookup(name)
	if err != nil {
		if !errors.Is(err, ErrCatalogUnavailable) {
			err = fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, name, err)
		}
		return nil, fmt.Errorf("failed to acquire catalog: %w", err)
	}

	c := newCatalog(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.load(d)
	c.applyQuirks()
	for _, entry := range r.overrides {
		if caps, ok := matchOverride(entry, name); ok {
			c.applyLocked(caps, false)
		}
	}
	if err := c.check(); err != nil {
		return nil, fmt.Errorf("failed to acquire catalog: %w", err)
	}
	c.derive()
	return c, nil
}
