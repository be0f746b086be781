//go:build windows

package session

import "os"

func openDevice(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}
