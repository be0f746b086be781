package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStateMissing(t *testing.T) {
	useTempDir(t)
	state := LoadState()
	assert.Empty(t, state.Detections)
}

func TestStateRememberAndForget(t *testing.T) {
	useTempDir(t)
	state := LoadState()

	d := Detection{Program: "XTerm", Features: "256,RGB,title", UTF8: true}
	require.NoError(t, state.Remember("xterm-256color", d))

	loaded := LoadState()
	got, ok := loaded.Detection("xterm-256color", 0)
	require.True(t, ok)
	assert.Equal(t, "XTerm", got.Program)
	assert.Equal(t, "256,RGB,title", got.Features)
	assert.True(t, got.UTF8)
	assert.False(t, got.When.IsZero())

	require.NoError(t, loaded.Forget("xterm-256color"))
	_, ok = LoadState().Detection("xterm-256color", 0)
	assert.False(t, ok)
}

func TestDetectionMaxAge(t *testing.T) {
	state := DefaultState()
	state.Detections["old"] = Detection{When: time.Now().Add(-time.Hour)}
	state.Detections["new"] = Detection{When: time.Now()}

	_, ok := state.Detection("old", time.Minute)
	assert.False(t, ok)
	_, ok = state.Detection("old", 0)
	assert.True(t, ok)
	_, ok = state.Detection("new", time.Minute)
	assert.True(t, ok)
	_, ok = state.Detection("missing", 0)
	assert.False(t, ok)
}

func TestLoadStateCorrupt(t *testing.T) {
	dir := useTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), []byte("{"), 0644))
	assert.Empty(t, LoadState().Detections)
}

func TestStateNeedsRefresh(t *testing.T) {
	useTempDir(t)
	state := LoadState()
	require.NoError(t, state.Remember("a", Detection{}))
	assert.False(t, state.NeedsRefresh())

	other := LoadState()
	// Make sure the second write gets a later modification time.
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, other.Remember("b", Detection{}))
	path, err := statePath()
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(path, later, later))

	assert.True(t, state.NeedsRefresh())
}

func TestStateRefresh(t *testing.T) {
	useTempDir(t)
	state := LoadState()
	require.NoError(t, state.Remember("a", Detection{Program: "mine"}))
	state.Detections["local"] = Detection{Program: "unsaved", When: time.Now()}

	other := LoadState()
	require.NoError(t, other.Remember("b", Detection{Program: "theirs"}))
	later := time.Now().Add(2 * time.Second)
	path, err := statePath()
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(path, later, later))

	state.Refresh()
	assert.False(t, state.NeedsRefresh())
	got, ok := state.Detection("b", 0)
	require.True(t, ok)
	assert.Equal(t, "theirs", got.Program)
	got, ok = state.Detection("local", 0)
	require.True(t, ok)
	assert.Equal(t, "unsaved", got.Program)
	got, _ = state.Detection("a", 0)
	assert.Equal(t, "mine", got.Program)
}

func TestFileLock(t *testing.T) {
	dir := useTempDir(t)
	lock := NewFileLock(filepath.Join(dir, StateFileName))
	assert.Equal(t, filepath.Join(dir, lockFileName), lock.Path())

	require.NoError(t, lock.Lock())
	assert.True(t, lock.Held())
	assert.Error(t, lock.Lock(), "already held")
	require.NoError(t, lock.Unlock())
	assert.False(t, lock.Held())
	assert.NoError(t, lock.Unlock())

	a, b := NewFileLock(lock.Path()), NewFileLock(lock.Path())
	require.NoError(t, a.RLock())
	require.NoError(t, b.RLock(), "shared locks coexist")
	require.NoError(t, a.Unlock())
	require.NoError(t, b.Unlock())
}
