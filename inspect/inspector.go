// Package inspect writes JSON snapshots of a connection's capabilities,
// features and shadow state for debugging.
package inspect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	enabled     bool
	enabledOnce sync.Once
	inspectFile string
)

// IsEnabled returns true when TTYCODEC_INSPECT=1.
func IsEnabled() bool {
	enabledOnce.Do(func() {
		enabled = os.Getenv("TTYCODEC_INSPECT") == "1"
		if enabled {
			inspectFile = filepath.Join(os.TempDir(), "ttycodec-inspect.json")
		}
	})
	return enabled
}

// GetInspectFile returns the snapshot file, or "" when inspection is off.
func GetInspectFile() string {
	if !IsEnabled() {
		return ""
	}
	return inspectFile
}

// WriteSnapshot writes snapshot to the inspection file when inspection is on.
func WriteSnapshot(snapshot *Snapshot) error {
	if !IsEnabled() {
		return nil
	}
	return WriteSnapshotToPath(snapshot, inspectFile)
}

// Marshal renders snapshot as indented JSON.
func Marshal(snapshot *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

func WriteSnapshotToPath(snapshot *Snapshot, path string) error {
	data, err := Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
