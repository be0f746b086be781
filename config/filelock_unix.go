//go:build !windows

package config

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func (l *FileLock) acquire(flag, how int) error {
	if l.file != nil {
		return fmt.Errorf("lock already held")
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|flag, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	l.file = f
	return nil
}

// Lock blocks until the exclusive lock is held.
func (l *FileLock) Lock() error {
	return l.acquire(os.O_RDWR, unix.LOCK_EX)
}

// RLock blocks until a shared lock is held. Readers share it with each
// other but not with Lock.
func (l *FileLock) RLock() error {
	return l.acquire(os.O_RDONLY, unix.LOCK_SH)
}

// Unlock releases the lock. It is a no-op when nothing is held.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close lock file: %w", err)
	}

	l.file = nil
	return nil
}
