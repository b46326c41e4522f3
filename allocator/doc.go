// Package allocator implements a first-fit allocator over one fixed-size arena.
//
// Every block of the arena starts with a 4 byte header holding the payload
// size and a used flag, immediately followed by the payload. Blocks are
// chained by address: the next header starts right after the current
// payload, and the last payload ends exactly at the end of the arena.
//
// Allocations are identified by the offset of their payload in the arena.
// NullPtr marks a failed allocation and ZeroSizePtr is the handle of every
// zero byte allocation.
//
//	pool := allocator.New(allocator.Config{PoolSize: 16 << 10})
//
//	p, ok := pool.Allocate(100)
//	if !ok {
//	    // out of memory
//	}
//	copy(pool.Bytes(p), data)
//	pool.Free(p)
//
// Free never merges neighbouring free blocks. Call Defragment to coalesce
// them, and Monitor to see how fragmented the arena has become.
//
// Handles are not checked: freeing a handle twice or passing one that did not
// come from the same pool leaves the pool in an undefined state.
// A Pool is not safe for concurrent use.
package allocator
