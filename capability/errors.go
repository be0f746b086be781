package capability

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCatalogUnavailable means no database source describes the terminal.
	ErrCatalogUnavailable = errors.New("terminal description unavailable")
	// ErrMissingRequiredCapability means the description lacks something the
	// codec cannot work without.
	ErrMissingRequiredCapability = errors.New("missing required capability")
)

// MissingCapabilityError names the capability, and any accepted alternatives,
// that a terminal description failed to provide.
type MissingCapabilityError struct {
	Terminal     string
	ID           ID
	Alternatives []ID
}

func (e *MissingCapabilityError) Error() string {
	names := []string{e.ID.Name()}
	for _, alt := range e.Alternatives {
		names = append(names, alt.Name())
	}
	return fmt.Sprintf("terminal %s does not support %s", e.Terminal, strings.Join(names, " or "))
}

func (e *MissingCapabilityError) Is(target error) bool {
	return target == ErrMissingRequiredCapability
}
