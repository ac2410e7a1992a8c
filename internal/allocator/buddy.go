package allocator

import (
	"log/slog"
	"math/bits"
)

// MaxLevels bounds the free-list array; 64 comfortably covers any
// buffer size representable by a uint64 offset.
const MaxLevels = 64

// MinBlockSize is the smallest block the buddy system will carve
// (spec.md §3: min_order = ceil(log2(32)) = 5).
const MinBlockSize = 32

// BuddyHeap is the power-of-two buddy allocator (spec.md §4.2). It
// reinterprets the same backing buffer as a set of free lists indexed by
// order; free_lists[k] holds blocks whose total size (header + payload)
// is exactly 2^k.
type BuddyHeap struct {
	totalSize uint64
	minOrder  int
	maxOrder  int
	freeLists [MaxLevels]*Block
	log       *slog.Logger
}

// orderOf returns the smallest k such that 2^k >= size (ceiling log2).
func orderOf(size uint64) int {
	if size <= 1 {
		return 0
	}
	return bits.Len64(size - 1)
}

func sizeOfOrder(order int) uint64 {
	return uint64(1) << uint(order)
}

// NewBuddyHeap truncates the buffer to the largest power of two it fits
// and lays a single free block of that order at offset 0 (spec.md §4.2
// init).
func NewBuddyHeap(totalSize uint64, log *slog.Logger) *BuddyHeap {
	maxOrder := orderOf(totalSize)
	if sizeOfOrder(maxOrder) > totalSize {
		maxOrder--
	}
	usable := sizeOfOrder(maxOrder)

	h := &BuddyHeap{
		totalSize: usable,
		minOrder:  orderOf(MinBlockSize),
		maxOrder:  maxOrder,
		log:       log,
	}

	root := &Block{
		HeaderOffset: 0,
		Size:         usable - HeaderSize,
		IsFree:       true,
	}
	h.freeLists[maxOrder] = root
	return h
}

// MaxOrder reports the order of the largest block the heap can hold, for
// dump output ("single free block of max_order" scenarios in spec.md §8).
func (h *BuddyHeap) MaxOrder() int { return h.maxOrder }

// FreeListCounts returns, for each populated order, the number of free
// blocks at that order — the "buddy free-list counts" dump view
// (spec.md §6 `dump`).
func (h *BuddyHeap) FreeListCounts() map[int]int {
	counts := make(map[int]int)
	for order := h.minOrder; order <= h.maxOrder; order++ {
		n := 0
		for b := h.freeLists[order]; b != nil; b = b.Next {
			n++
		}
		if n > 0 {
			counts[order] = n
		}
	}
	return counts
}

// getBlock recursively satisfies an order-k request: pop from
// free_lists[order] if non-empty, else split a block one order larger,
// pushing the resulting buddy onto free_lists[order] (spec.md §4.2
// get_block).
func (h *BuddyHeap) getBlock(order int) *Block {
	if order > h.maxOrder {
		return nil
	}
	if b := h.freeLists[order]; b != nil {
		h.freeLists[order] = b.Next
		if h.freeLists[order] != nil {
			h.freeLists[order].Prev = nil
		}
		b.Next, b.Prev = nil, nil
		b.IsFree = false
		return b
	}

	larger := h.getBlock(order + 1)
	if larger == nil {
		return nil
	}
	size := sizeOfOrder(order)

	buddy := &Block{
		HeaderOffset: larger.HeaderOffset + size,
		Size:         size - HeaderSize,
		IsFree:       true,
		Next:         h.freeLists[order],
	}
	if h.freeLists[order] != nil {
		h.freeLists[order].Prev = buddy
	}
	h.freeLists[order] = buddy

	larger.Size = size - HeaderSize
	larger.IsFree = false
	return larger
}

// Malloc implements spec.md §4.2 malloc: order = ceil(log2(n+H)) clamped
// to at least min_order. The order is returned alongside the payload
// offset because the buddy heap keeps no side-table entry for live
// (allocated) blocks — the caller (the Allocator facade) must remember
// it in order to free the block later.
func (h *BuddyHeap) Malloc(n uint64) (uint64, int, error) {
	total := n + HeaderSize
	order := orderOf(total)
	if order < h.minOrder {
		order = h.minOrder
	}

	block := h.getBlock(order)
	if block == nil {
		return 0, 0, ErrOOM
	}
	block.IsFree = false

	h.log.Debug("buddy block allocated",
		slog.Int("order", order),
		slog.Uint64("size", sizeOfOrder(order)),
		slog.Uint64("offset", block.PayloadOffset()))

	return block.PayloadOffset(), order, nil
}

// Free coalesces a block with its buddy while the buddy is free and whole
// at the current level, walking up orders until max_order or a non-free
// buddy is found (spec.md §4.2 free). order must be the value returned by
// the matching Malloc call; Free validates it against the heap's bounds
// and alignment before trusting it, since a bogus (ptr, order) pair would
// otherwise corrupt the free lists silently.
func (h *BuddyHeap) Free(ptr uint64, order int) error {
	if order < h.minOrder || order > h.maxOrder || ptr < HeaderSize {
		return ErrBuddyInvalid
	}
	headerOffset := ptr - HeaderSize
	size := sizeOfOrder(order)
	if headerOffset+size > h.totalSize || headerOffset%size != 0 {
		return ErrBuddyInvalid
	}

	block := &Block{
		HeaderOffset: headerOffset,
		Size:         size - HeaderSize,
		IsFree:       false,
	}

	for order < h.maxOrder {
		buddySize := sizeOfOrder(order)
		buddyOffset := block.HeaderOffset ^ buddySize
		buddy := h.findFree(order, buddyOffset)
		if buddy == nil {
			break
		}

		h.log.Debug("buddy merge", slog.Uint64("buddy_offset", buddyOffset), slog.Int("order", order))
		h.unlink(order, buddy)

		if buddyOffset < block.HeaderOffset {
			block.HeaderOffset = buddyOffset
		}
		order++
		block.Size = sizeOfOrder(order) - HeaderSize
	}

	block.IsFree = true
	block.Next = h.freeLists[order]
	block.Prev = nil
	if h.freeLists[order] != nil {
		h.freeLists[order].Prev = block
	}
	h.freeLists[order] = block
	return nil
}

// findFree looks for a free, whole (unsplit) block at headerOffset in
// free_lists[order]. "Whole at this level" means its tracked size equals
// exactly 2^order - H; a block that was itself split into smaller orders
// is not present in this list at all, so simple list membership already
// encodes that check.
func (h *BuddyHeap) findFree(order int, headerOffset uint64) *Block {
	for b := h.freeLists[order]; b != nil; b = b.Next {
		if b.HeaderOffset == headerOffset {
			return b
		}
	}
	return nil
}

func (h *BuddyHeap) unlink(order int, b *Block) {
	if b.Prev != nil {
		b.Prev.Next = b.Next
	}
	if b.Next != nil {
		b.Next.Prev = b.Prev
	}
	if h.freeLists[order] == b {
		h.freeLists[order] = b.Next
	}
	b.Next, b.Prev = nil, nil
}
