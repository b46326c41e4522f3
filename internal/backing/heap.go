// Package backing provides the memory an allocator arena lives in.
package backing

import "unsafe"

// Heap returns n zeroed bytes on the Go heap.
// The buffer is carved from a []uint64 so its base is 8 byte aligned.
func Heap(n uint32) []byte {
	if n == 0 {
		return nil
	}
	words := make([]uint64, (uint64(n)+7)>>3)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
}
