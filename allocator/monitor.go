package allocator

import "fmt"

// Stats is a snapshot of the block chain produced by Monitor
type Stats struct {
	FreeBlockCount uint32
	UsedBlockCount uint32
	FreeBytes      uint32
	UsedBytes      uint32

	// LargestFreeBlock is the payload size of the biggest free block
	LargestFreeBlock uint32

	// FragmentationPercent is 100 - 100 * LargestFreeBlock / FreeBytes.
	// It is 0 when there are no free bytes at all.
	FragmentationPercent uint32
}

// BlockInfo describes one block of the chain
type BlockInfo struct {
	Addr uint32 // header address, the payload starts headerSize bytes later
	Size uint32
	Used bool
}

// Monitor walks every block and accumulates usage statistics. It does not mutate the arena.
func (p *Pool) Monitor() Stats {
	var s Stats
	for addr := uint32(0); addr < p.size; addr = p.nextBlock(addr) {
		header := p.headerAt(addr)
		size := header.size()

		if header.used() {
			s.UsedBlockCount++
			s.UsedBytes += size
			continue
		}

		s.FreeBlockCount++
		s.FreeBytes += size
		if size > s.LargestFreeBlock {
			s.LargestFreeBlock = size
		}
	}

	if s.FreeBytes != 0 {
		s.FragmentationPercent = 100 - NewRational(uint64(s.LargestFreeBlock), uint64(s.FreeBytes)).Percent()
	}
	return s
}

// Defragment merges every run of adjacent free blocks into its first block
func (p *Pool) Defragment() {
	addr := uint32(0)
	for addr < p.size {
		header := p.headerAt(addr)
		next := p.nextBlock(addr)

		if !header.used() {
			for next < p.size {
				nextHeader := p.headerAt(next)
				if nextHeader.used() {
					break
				}
				header.set(header.size()+headerSize+nextHeader.size(), false)
				next = p.nextBlock(addr)
			}
		}

		addr = next
	}
}

// Blocks returns the block chain in address order
func (p *Pool) Blocks() []BlockInfo {
	var result []BlockInfo
	for addr := uint32(0); addr < p.size; addr = p.nextBlock(addr) {
		header := p.headerAt(addr)
		result = append(result, BlockInfo{
			Addr: addr,
			Size: header.size(),
			Used: header.used(),
		})
	}
	return result
}

// Validate checks that the headers encode valid sizes and that the blocks tile the arena exactly.
func (p *Pool) Validate() error {
	if p.data == nil {
		return ErrClosed
	}

	addr := uint32(0)
	for addr < p.size {
		header := p.headerAt(addr)
		if header.word&^(sizeMask|usedFlag) != 0 {
			return fmt.Errorf("%w: invalid header word %#x at %d", ErrCorrupted, header.word, addr)
		}

		end := uint64(addr) + uint64(headerSize) + uint64(header.size())
		if end > uint64(p.size) {
			return fmt.Errorf("%w: block at %d ends at %d past arena size %d", ErrCorrupted, addr, end, p.size)
		}
		addr = uint32(end)
	}
	return nil
}
