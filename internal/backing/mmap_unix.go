//go:build linux || darwin || freebsd || netbsd || openbsd

package backing

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Map returns n zeroed bytes from an anonymous private mapping and the function that unmaps it.
// Calling the release function more than once is a no-op.
func Map(n uint32) ([]byte, func() error, error) {
	if n == 0 {
		return nil, func() error { return nil }, nil
	}

	data, err := unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("backing: mmap %d bytes: %w", n, err)
	}

	release := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			return nil
		}
		return err
	}
	return data, release, nil
}
