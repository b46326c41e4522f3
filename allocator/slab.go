package allocator

import "unsafe"

// Slab hands out fixed-size elements carved from chunks allocated in a Pool
type Slab struct {
	pool            *Pool
	elemSize        uint32
	chunkSize       uint32
	numElemPerChunk uint32
	unusedBytes     uint64
	memoryUsage     uint64

	freeList uint32
	chunks   []uint32
}

type slabListHead struct {
	next uint32
}

// NewSlab creates a slab of elemSize elements taking chunkSize bytes from pool at a time.
// Both sizes are rounded up to Alignment.
func NewSlab(pool *Pool, elemSize uint32, chunkSize uint32) *Slab {
	elemSize = alignSize(elemSize)
	chunkSize = alignSize(chunkSize)

	if elemSize == 0 {
		panic("ElemSize must > 0")
	}
	if chunkSize < elemSize {
		panic("ChunkSize must >= ElemSize")
	}

	return &Slab{
		pool:            pool,
		elemSize:        elemSize,
		chunkSize:       chunkSize,
		numElemPerChunk: chunkSize / elemSize,
		unusedBytes:     uint64(chunkSize % elemSize),
		memoryUsage:     0,

		freeList: NullPtr,
	}
}

func (s *Slab) contentOfList() []uint32 {
	var result []uint32
	n := s.freeList
	for n != NullPtr {
		result = append(result, n)
		list := (*slabListHead)(s.pool.ToRealAddr(n))
		n = list.next
	}
	return result
}

func (s *Slab) initChunk(chunkAddr uint32) {
	s.freeList = chunkAddr
	for i := uint32(0); i < s.numElemPerChunk; i++ {
		addr := chunkAddr + i*s.elemSize
		list := (*slabListHead)(s.pool.ToRealAddr(addr))
		if i == s.numElemPerChunk-1 {
			list.next = NullPtr
		} else {
			list.next = addr + s.elemSize
		}
	}
	s.chunks = append(s.chunks, chunkAddr)
	s.memoryUsage += s.unusedBytes
}

// Allocate returns a free element, taking a new chunk from the pool when the free list is empty.
func (s *Slab) Allocate() (uint32, bool) {
	if s.freeList == NullPtr {
		chunkAddr, ok := s.pool.Allocate(s.chunkSize)
		if !ok {
			return NullPtr, false
		}
		s.initChunk(chunkAddr)
	}

	list := (*slabListHead)(s.pool.ToRealAddr(s.freeList))
	result := s.freeList
	s.freeList = list.next
	s.memoryUsage += uint64(s.elemSize)

	return result, true
}

// Deallocate ...
func (s *Slab) Deallocate(addr uint32) {
	s.memoryUsage -= uint64(s.elemSize)
	list := (*slabListHead)(s.pool.ToRealAddr(addr))
	list.next = s.freeList
	s.freeList = addr
}

// Release gives every chunk back to the pool. Outstanding elements become invalid.
func (s *Slab) Release() {
	for _, chunk := range s.chunks {
		s.pool.Free(chunk)
	}
	s.chunks = nil
	s.freeList = NullPtr
	s.memoryUsage = 0
}

// ToRealAddr ...
func (s *Slab) ToRealAddr(addr uint32) unsafe.Pointer {
	return s.pool.ToRealAddr(addr)
}

// GetMemUsage ...
func (s *Slab) GetMemUsage() uint64 {
	return s.memoryUsage
}
