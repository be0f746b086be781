//go:build !windows

package session

import (
	"os"

	"golang.org/x/sys/unix"
)

// openDevice opens a terminal without making it the controlling terminal.
// The descriptor is non-blocking so read deadlines work on it.
func openDevice(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}
