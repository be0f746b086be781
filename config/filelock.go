package config

import (
	"os"
	"path/filepath"
)

const lockFileName = "ttycodec.lock"

// FileLock serializes writers of the files in the configuration directory
// across processes. It locks a separate file next to the data.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock returns a lock for the directory holding path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		path: filepath.Join(filepath.Dir(path), lockFileName),
	}
}

// Path returns the lock file.
func (l *FileLock) Path() string { return l.path }

// Held reports whether this FileLock currently holds the lock.
func (l *FileLock) Held() bool { return l.file != nil }
