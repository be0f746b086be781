package capability

import (
	"errors"
	"fmt"
)

// Source provides terminal descriptions by name. Lookup returns an error
// matching ErrCatalogUnavailable when the name is unknown.
type Source interface {
	Lookup(name string) (*Description, error)
}

// Descriptions is an in-memory Source. Entries may inherit from each other
// with "use=".
type Descriptions map[string]*Description

// Add parses a terminfo source entry and registers it under its name and aliases.
func (ds Descriptions) Add(src string) error {
	d, err := ParseDescription(src)
	if err != nil {
		return err
	}
	ds[d.Name] = d
	for _, alias := range d.Aliases {
		ds[alias] = d
	}
	return nil
}

func (ds Descriptions) Lookup(name string) (*Description, error) {
	return ds.resolve(name, make(map[string]bool))
}

func (ds Descriptions) resolve(name string, seen map[string]bool) (*Description, error) {
	d, ok := ds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCatalogUnavailable, name)
	}
	if seen[d.Name] {
		return nil, fmt.Errorf("use loop in terminal description %s", d.Name)
	}
	seen[d.Name] = true

	out := d.clone()
	out.Name = name
	for _, use := range d.Uses {
		parent, err := ds.resolve(use, seen)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve use=%s for %s: %w", use, name, err)
		}
		out.inherit(parent)
	}
	out.Uses = nil
	return out, nil
}

// Chain asks each source in turn; the first that knows the name wins.
type Chain []Source

func (c Chain) Lookup(name string) (*Description, error) {
	var errs []error
	for _, src := range c {
		d, err := src.Lookup(name)
		if err == nil {
			return d, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s: no sources configured", ErrCatalogUnavailable, name)
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, name, errors.Join(errs...))
}
