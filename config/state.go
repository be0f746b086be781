package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"ttycodec/log"
)

const StateFileName = "state.json"

// Detection is what a probe learned about one terminal.
type Detection struct {
	// Program is the terminal program that answered, such as "XTerm".
	Program string `json:"program"`
	// Features is the comma separated feature list detected.
	Features string    `json:"features"`
	UTF8     bool      `json:"utf8"`
	When     time.Time `json:"when"`
}

// State caches probe results between runs, keyed by terminal name.
type State struct {
	Detections map[string]Detection `json:"detections"`

	// lastModTime is when the state file was last read.
	lastModTime time.Time `json:"-"`
}

func DefaultState() *State {
	return &State{Detections: make(map[string]Detection)}
}

func statePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, StateFileName), nil
}

// LoadState reads the state under a shared lock. Any failure gives an
// empty state.
func LoadState() *State {
	path, err := statePath()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultState()
	}

	lock := NewFileLock(path)
	if err := lock.RLock(); err != nil {
		// Reading without the lock at worst sees a stale cache.
		log.WarningLog.Printf("failed to acquire read lock: %v", err)
	} else {
		defer lock.Unlock()
	}

	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WarningLog.Printf("failed to get state file: %v", err)
		}
		return DefaultState()
	}

	state := DefaultState()
	if err := json.Unmarshal(data, state); err != nil {
		log.ErrorLog.Printf("failed to parse state file: %v", err)
		return DefaultState()
	}
	if state.Detections == nil {
		state.Detections = make(map[string]Detection)
	}
	state.lastModTime = modTime
	return state
}

// SaveState writes the state under the exclusive lock.
func SaveState(state *State) error {
	path, err := statePath()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lock := NewFileLock(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	if info, err := os.Stat(path); err == nil {
		state.lastModTime = info.ModTime()
	}
	return nil
}

// Detection returns the cached probe result for term, ignoring entries
// older than maxAge. A maxAge of 0 accepts any age.
func (s *State) Detection(term string, maxAge time.Duration) (Detection, bool) {
	d, ok := s.Detections[term]
	if !ok {
		return Detection{}, false
	}
	if maxAge > 0 && time.Since(d.When) > maxAge {
		return Detection{}, false
	}
	return d, true
}

// Remember stores a probe result for term and saves the state.
func (s *State) Remember(term string, d Detection) error {
	if d.When.IsZero() {
		d.When = time.Now()
	}
	s.Detections[term] = d
	return SaveState(s)
}

// Forget drops the cached result for term and saves the state.
func (s *State) Forget(term string) error {
	delete(s.Detections, term)
	return SaveState(s)
}

// NeedsRefresh reports whether another process wrote the state file since
// this State was read.
func (s *State) NeedsRefresh() bool {
	path, err := statePath()
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.ModTime().After(s.lastModTime)
}

// Refresh merges in detections another process saved since this State was
// read. Entries newer in memory are kept.
func (s *State) Refresh() {
	if !s.NeedsRefresh() {
		return
	}
	fresh := LoadState()
	for term, d := range fresh.Detections {
		if cur, ok := s.Detections[term]; !ok || d.When.After(cur.When) {
			s.Detections[term] = d
		}
	}
	s.lastModTime = fresh.lastModTime
}
