//go:build !windows

package fdcache

import (
	"os"
	"syscall"
)

// dupFile returns a new *os.File for the same open file description as
// f via dup(2). The duplicate shares f's file offset, so callers must
// read it positionally (io.ReaderAt / io.NewSectionReader) rather than
// Seek+Read; that's what the static file engine does, which is also
// what lets concurrent range requests share one cached descriptor
// safely.
func dupFile(f *os.File) (*os.File, error) {
	fd, err := syscall.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), f.Name()), nil
}
