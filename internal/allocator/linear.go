package allocator

import (
	"log/slog"
	"sort"
)

// LinearHeap is the in-band (here: side-table) free-list allocator
// backing FirstFit/BestFit/WorstFit (spec.md §4.1). It owns one
// address-ordered doubly-linked chain of blocks, free and allocated,
// spanning the whole buffer.
type LinearHeap struct {
	totalSize uint64
	head      *Block
	log       *slog.Logger
}

// NewLinearHeap lays a single free block spanning [0, P) with
// size = P - HeaderSize (spec.md §4.1 init).
func NewLinearHeap(totalSize uint64, log *slog.Logger) *LinearHeap {
	h := &LinearHeap{totalSize: totalSize, log: log}
	h.head = &Block{
		HeaderOffset: 0,
		Size:         totalSize - HeaderSize,
		IsFree:       true,
	}
	return h
}

// Blocks returns the chain in address order, for dump/stats.
func (h *LinearHeap) Blocks() []*Block {
	var out []*Block
	for b := h.head; b != nil; b = b.Next {
		out = append(out, b)
	}
	return out
}

// Malloc implements spec.md §4.1's allocation algorithm for the three
// linear strategies.
func (h *LinearHeap) Malloc(n uint64, strategy Strategy) (uint64, error) {
	aligned := align(n)
	padding := aligned - n

	var candidate *Block
	switch strategy {
	case FirstFit:
		candidate = h.findFirstFit(aligned)
	case BestFit:
		candidate = h.findBestFit(aligned)
	case WorstFit:
		candidate = h.findWorstFit(aligned)
	}

	if candidate == nil {
		return 0, ErrOOM
	}

	// Split if at least 1 payload byte would remain (spec.md §4.1 step 3).
	if candidate.Size >= aligned+HeaderSize+1 {
		newBlock := &Block{
			HeaderOffset: candidate.HeaderOffset + HeaderSize + aligned,
			Size:         candidate.Size - aligned - HeaderSize,
			IsFree:       true,
			Next:         candidate.Next,
			Prev:         candidate,
		}
		if newBlock.Next != nil {
			newBlock.Next.Prev = newBlock
		}
		candidate.Next = newBlock
		candidate.Size = aligned
	}

	candidate.IsFree = false
	candidate.Padding = padding
	candidate.ID = h.nextAvailableID()

	h.log.Debug("block allocated",
		slog.Int("id", candidate.ID),
		slog.Uint64("offset", candidate.PayloadOffset()),
		slog.Uint64("size", aligned))

	return candidate.PayloadOffset(), nil
}

func (h *LinearHeap) findFirstFit(size uint64) *Block {
	for b := h.head; b != nil; b = b.Next {
		if b.IsFree && b.Size >= size {
			return b
		}
	}
	return nil
}

func (h *LinearHeap) findBestFit(size uint64) *Block {
	var best *Block
	var smallestDiff uint64 = ^uint64(0)
	for b := h.head; b != nil; b = b.Next {
		if !b.IsFree || b.Size < size {
			continue
		}
		diff := b.Size - size
		if diff < smallestDiff {
			smallestDiff = diff
			best = b
			if diff == 0 {
				return best
			}
		}
	}
	return best
}

func (h *LinearHeap) findWorstFit(size uint64) *Block {
	var worst *Block
	var largest uint64
	for b := h.head; b != nil; b = b.Next {
		if b.IsFree && b.Size >= size && b.Size > largest {
			largest = b.Size
			worst = b
		}
	}
	return worst
}

// nextAvailableID scans current allocated ids and returns the smallest
// positive integer not in use (spec.md §4.1 step 4, "ID gap" rule).
func (h *LinearHeap) nextAvailableID() int {
	var used []int
	for b := h.head; b != nil; b = b.Next {
		if !b.IsFree && b.ID > 0 {
			used = append(used, b.ID)
		}
	}
	sort.Ints(used)

	candidate := 1
	for _, id := range used {
		if id == candidate {
			candidate++
		} else if id > candidate {
			return candidate
		}
		// id < candidate cannot occur under this allocator's invariants
		// (ids are only ever assigned by this function and cleared on
		// free); see SPEC_FULL.md §9.
	}
	return candidate
}

// findByPayloadOffset returns the block whose payload offset equals ptr.
func (h *LinearHeap) findByPayloadOffset(ptr uint64) *Block {
	for b := h.head; b != nil; b = b.Next {
		if b.PayloadOffset() == ptr {
			return b
		}
	}
	return nil
}

// Free validates ptr against the chain and coalesces (spec.md §4.1 free
// algorithm). Order matters: forward merge runs first so a subsequent
// backward merge absorbs the now-larger block, matching the sequencing
// in original_source's MemoryManager::free (see SPEC_FULL.md §9).
func (h *LinearHeap) Free(ptr uint64) error {
	b := h.findByPayloadOffset(ptr)
	if b == nil {
		return ErrInvalidFree
	}
	if b.IsFree {
		return ErrAlreadyFree
	}
	h.freeBlock(b)
	return nil
}

func (h *LinearHeap) freeBlock(b *Block) {
	h.log.Debug("block freed", slog.Int("id", b.ID), slog.Uint64("offset", b.PayloadOffset()))
	b.IsFree = true
	b.ID = 0

	if b.Next != nil && b.Next.IsFree {
		b.Size += HeaderSize + b.Next.Size
		b.Next = b.Next.Next
		if b.Next != nil {
			b.Next.Prev = b
		}
	}

	if b.Prev != nil && b.Prev.IsFree {
		b.Prev.Size += HeaderSize + b.Size
		b.Prev.Next = b.Next
		if b.Next != nil {
			b.Next.Prev = b.Prev
		}
	}
}

// FreeByID does a linear search by id (spec.md §4.1 free_by_id).
func (h *LinearHeap) FreeByID(id int) error {
	for b := h.head; b != nil; b = b.Next {
		if !b.IsFree && b.ID == id {
			h.freeBlock(b)
			return nil
		}
	}
	return ErrNotFound
}

// FreeSmart tries FreeByID first, then interprets value as a payload
// offset (spec.md §4.1 free_smart).
func (h *LinearHeap) FreeSmart(value int64) error {
	for b := h.head; b != nil; b = b.Next {
		if !b.IsFree && b.ID == int(value) {
			h.freeBlock(b)
			return nil
		}
	}
	if value >= 0 {
		if b := h.findByPayloadOffset(uint64(value)); b != nil && !b.IsFree {
			h.freeBlock(b)
			return nil
		}
	}
	return ErrNotFound
}

// TotalFree sums the size of every free block.
func (h *LinearHeap) TotalFree() uint64 {
	var total uint64
	for b := h.head; b != nil; b = b.Next {
		if b.IsFree {
			total += b.Size
		}
	}
	return total
}

// LargestFree returns the size of the largest free block (0 if none).
func (h *LinearHeap) LargestFree() uint64 {
	var largest uint64
	for b := h.head; b != nil; b = b.Next {
		if b.IsFree && b.Size > largest {
			largest = b.Size
		}
	}
	return largest
}

// TotalUsed and TotalInternalFragmentation drive the utilization and
// internal-fragmentation statistics (spec.md §8, GLOSSARY).
func (h *LinearHeap) TotalUsed() uint64 {
	var total uint64
	for b := h.head; b != nil; b = b.Next {
		if !b.IsFree {
			total += b.Size
		}
	}
	return total
}

func (h *LinearHeap) TotalInternalFragmentation() uint64 {
	var total uint64
	for b := h.head; b != nil; b = b.Next {
		if !b.IsFree {
			total += b.Padding
		}
	}
	return total
}
