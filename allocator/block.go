package allocator

import "unsafe"

const (
	headerSize uint32 = 4

	usedFlag uint32 = 0x1
	sizeMask uint32 = ^(Alignment - 1)
)

// blockHeader precedes every payload in the arena.
// Sizes are multiples of Alignment, so the low bit of the word carries the used flag.
type blockHeader struct {
	word uint32
}

func (h *blockHeader) used() bool {
	return h.word&usedFlag != 0
}

func (h *blockHeader) size() uint32 {
	return h.word & sizeMask
}

func (h *blockHeader) set(size uint32, used bool) {
	h.word = size
	if used {
		h.word |= usedFlag
	}
}

func (h *blockHeader) setUsed(used bool) {
	h.set(h.size(), used)
}

func (p *Pool) headerAt(addr uint32) *blockHeader {
	return (*blockHeader)(unsafe.Pointer(&p.data[addr]))
}

// nextBlock returns the address of the block after addr, or p.size past the last one
func (p *Pool) nextBlock(addr uint32) uint32 {
	return addr + headerSize + p.headerAt(addr).size()
}

// truncate shrinks the block at addr to size payload bytes and turns the rest into a free block.
// A remainder that could only hold a header stays part of the block.
func (p *Pool) truncate(addr uint32, size uint32) {
	header := p.headerAt(addr)
	blockSize := header.size()

	if blockSize == size+headerSize {
		size += headerSize
	}

	if blockSize != size {
		next := p.headerAt(addr + headerSize + size)
		next.set(blockSize-size-headerSize, false)
	}

	header.set(size, header.used())
}
