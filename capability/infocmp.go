package capability

import (
	"fmt"
	"os/exec"
	"strings"
	"ttycodec/cmd"
	"ttycodec/log"
)

// Infocmp reads descriptions from the system terminfo database by running
// infocmp.
type Infocmp struct {
	Path string
	exec cmd.Executor
}

func NewInfocmp(executor cmd.Executor) *Infocmp {
	if executor == nil {
		executor = cmd.MakeExecutor()
	}
	return &Infocmp{Path: "infocmp", exec: executor}
}

func (s *Infocmp) Lookup(name string) (*Description, error) {
	if name == "" || strings.ContainsAny(name, " \t\n/") {
		return nil, fmt.Errorf("%w: invalid terminal name %q", ErrCatalogUnavailable, name)
	}

	c := exec.Command(s.Path, "-1", "-x", name)
	out, err := s.exec.Output(c)
	if err != nil {
		log.InfoLog.Printf("%s failed: %v", cmd.ToString(c), err)
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, name, err)
	}

	d, err := ParseDescription(string(out))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, name, err)
	}
	d.Name = name
	return d, nil
}
