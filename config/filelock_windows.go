//go:build windows

package config

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

func (l *FileLock) acquire(flag int, lockFlags uint32) error {
	if l.file != nil {
		return fmt.Errorf("lock already held")
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|flag, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	// One byte at offset zero stands for the whole file.
	ol := new(windows.Overlapped)
	if err := windows.LockFileEx(windows.Handle(f.Fd()), lockFlags, 0, 1, 0, ol); err != nil {
		f.Close()
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	l.file = f
	return nil
}

// Lock blocks until the exclusive lock is held.
func (l *FileLock) Lock() error {
	return l.acquire(os.O_RDWR, windows.LOCKFILE_EXCLUSIVE_LOCK)
}

// RLock blocks until a shared lock is held.
func (l *FileLock) RLock() error {
	return l.acquire(os.O_RDONLY, 0)
}

// Unlock releases the lock. It is a no-op when nothing is held.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	ol := new(windows.Overlapped)
	if err := windows.UnlockFileEx(windows.Handle(l.file.Fd()), 0, 1, 0, ol); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close lock file: %w", err)
	}

	l.file = nil
	return nil
}
