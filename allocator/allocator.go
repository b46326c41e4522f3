package allocator

import (
	"math"
	"unsafe"

	"github.com/QuangTung97/dynmem/internal/backing"
)

const (
	// NullPtr is returned when no free block is large enough
	NullPtr uint32 = math.MaxUint32

	// ZeroSizePtr is returned for zero byte requests.
	// Offset 0 always holds the first block header, so it never names a payload.
	ZeroSizePtr uint32 = 0

	// Alignment is the granularity of every block size
	Alignment uint32 = 4

	// MaxPoolSize is the largest arena the 31 bit header size field can describe
	MaxPoolSize uint32 = 1 << 31
)

// Config ...
type Config struct {
	PoolSize uint32
	AutoZero bool
}

// Pool is a first-fit allocator over a single fixed arena.
// It is not safe for concurrent use.
type Pool struct {
	data     []byte
	size     uint32
	autoZero bool
	release  func() error
}

func poolValidateConfig(conf Config) {
	if conf.PoolSize < headerSize {
		panic("PoolSize must >= header size")
	}
	if conf.PoolSize%Alignment != 0 {
		panic("PoolSize must be a multiple of Alignment")
	}
	if conf.PoolSize > MaxPoolSize {
		panic("PoolSize must <= MaxPoolSize")
	}
}

// New creates a pool whose arena lives on the Go heap and initializes it.
func New(conf Config) *Pool {
	poolValidateConfig(conf)

	p := &Pool{
		data:     backing.Heap(conf.PoolSize),
		size:     conf.PoolSize,
		autoZero: conf.AutoZero,
	}
	p.Init()
	return p
}

// NewMapped creates a pool whose arena is an anonymous memory mapping outside the Go heap.
// The mapping is released by Close.
func NewMapped(conf Config) (*Pool, error) {
	poolValidateConfig(conf)

	data, release, err := backing.Map(conf.PoolSize)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		data:     data,
		size:     conf.PoolSize,
		autoZero: conf.AutoZero,
		release:  release,
	}
	p.Init()
	return p, nil
}

// Init makes the whole arena one free block.
// Every handle returned before the call becomes invalid.
func (p *Pool) Init() {
	p.headerAt(0).set(p.size-headerSize, false)
}

// Close releases the arena. The pool must not be used afterwards.
func (p *Pool) Close() error {
	if p.data == nil {
		return ErrClosed
	}
	p.data = nil

	if p.release == nil {
		return nil
	}
	release := p.release
	p.release = nil
	return release()
}

// Cap returns the arena size in bytes
func (p *Pool) Cap() uint32 {
	return p.size
}

func alignSize(size uint32) uint32 {
	mask := Alignment - 1
	return (size + mask) &^ mask
}

// Allocate returns the handle of a payload of at least size bytes.
// It returns (NullPtr, false) and leaves the arena untouched when no free block fits.
func (p *Pool) Allocate(size uint32) (uint32, bool) {
	if size == 0 {
		return ZeroSizePtr, true
	}
	if size > p.size {
		return NullPtr, false
	}
	size = alignSize(size)

	for addr := uint32(0); addr < p.size; addr = p.nextBlock(addr) {
		header := p.headerAt(addr)
		if header.used() || header.size() < size {
			continue
		}

		p.truncate(addr, size)
		header.setUsed(true)

		ptr := addr + headerSize
		if p.autoZero {
			clear(p.payload(ptr, header.size()))
		}
		return ptr, true
	}
	return NullPtr, false
}

// Free marks the block of ptr as free. Adjacent free blocks are not merged.
// ptr must come from Allocate or Reallocate and must not have been freed already.
func (p *Pool) Free(ptr uint32) {
	if ptr == ZeroSizePtr || ptr == NullPtr {
		return
	}
	p.headerAt(ptr - headerSize).setUsed(false)
}

// Reallocate moves the contents of ptr into a new block of newSize bytes and frees ptr.
// On failure the old block stays allocated and unchanged.
func (p *Pool) Reallocate(ptr uint32, newSize uint32) (uint32, bool) {
	newPtr, ok := p.Allocate(newSize)
	if !ok {
		return NullPtr, false
	}
	if ptr == ZeroSizePtr || ptr == NullPtr {
		return newPtr, true
	}

	n := min(p.SizeOf(ptr), newSize)
	copy(p.payload(newPtr, n), p.payload(ptr, n))
	p.Free(ptr)

	return newPtr, true
}

// SizeOf returns the payload size of ptr, 0 for the sentinels.
func (p *Pool) SizeOf(ptr uint32) uint32 {
	if ptr == ZeroSizePtr || ptr == NullPtr {
		return 0
	}
	return p.headerAt(ptr - headerSize).size()
}

// Bytes returns the payload of ptr as a slice of SizeOf(ptr) bytes
func (p *Pool) Bytes(ptr uint32) []byte {
	size := p.SizeOf(ptr)
	if size == 0 {
		return nil
	}
	return p.payload(ptr, size)
}

// ToRealAddr ...
func (p *Pool) ToRealAddr(ptr uint32) unsafe.Pointer {
	return unsafe.Pointer(&p.data[ptr])
}

func (p *Pool) payload(ptr uint32, size uint32) []byte {
	end := ptr + size
	return p.data[ptr:end:end]
}
