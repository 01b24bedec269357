//go:build windows

package fdcache

import (
	"os"

	"golang.org/x/sys/windows"
)

// dupFile duplicates f's underlying handle via DuplicateHandle, the
// Windows analogue of dup(2); the duplicate shares f's file pointer.
func dupFile(f *os.File) (*os.File, error) {
	proc := windows.CurrentProcess()
	var dup windows.Handle
	err := windows.DuplicateHandle(proc, windows.Handle(f.Fd()), proc, &dup, 0, true, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(dup), f.Name()), nil
}
