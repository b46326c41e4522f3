package allocator

import "errors"

var (
	// ErrCorrupted indicates that the block chain no longer tiles the arena.
	ErrCorrupted = errors.New("allocator: corrupted block chain")

	// ErrClosed indicates that the arena has already been released.
	ErrClosed = errors.New("allocator: pool closed")
)
