//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package backing

// Map falls back to the Go heap where anonymous mappings are not available.
func Map(n uint32) ([]byte, func() error, error) {
	return Heap(n), func() error { return nil }, nil
}
