package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuddyHeap_InitIsSingleMaxOrderBlock(t *testing.T) {
	h := NewBuddyHeap(1024, testLogger())
	assert.Equal(t, 10, h.MaxOrder())
	counts := h.FreeListCounts()
	assert.Equal(t, map[int]int{10: 1}, counts)
}

func TestBuddyHeap_MallocSplitsDownToRequestedOrder(t *testing.T) {
	h := NewBuddyHeap(1024, testLogger())

	// spec.md §8 scenario 4 narrates this same 100-byte request as
	// "order 7, 128-byte block", but applying §4.2's own formula
	// (order = ceil(log2(n+H))) to n=100, H=32 gives order 8 (256 bytes),
	// which is also what original_source's get_order(total_needed)
	// actually computes. The worked example is inconsistent with its own
	// formula; the formula (and the original's real behavior) wins — see
	// SPEC_FULL.md §9.
	off1, order1, err := h.Malloc(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(32), off1)
	assert.Equal(t, 8, order1)

	off2, order2, err := h.Malloc(50)
	require.NoError(t, err)
	assert.Equal(t, uint64(288), off2)
	assert.Equal(t, 7, order2)

	counts := h.FreeListCounts()
	assert.Equal(t, 1, counts[7])
	assert.Equal(t, 1, counts[9])
	assert.Zero(t, counts[10])
}

func TestBuddyHeap_FreeMergesBuddiesBackToSingleBlock(t *testing.T) {
	h := NewBuddyHeap(1024, testLogger())

	off1, order1, err := h.Malloc(100)
	require.NoError(t, err)
	off2, order2, err := h.Malloc(50)
	require.NoError(t, err)

	require.NoError(t, h.Free(off2, order2))
	require.NoError(t, h.Free(off1, order1))

	counts := h.FreeListCounts()
	assert.Equal(t, map[int]int{10: 1}, counts, "freeing every live block must recombine the whole heap")
}

func TestBuddyHeap_FreeRejectsBogusPointerOrOrder(t *testing.T) {
	h := NewBuddyHeap(1024, testLogger())
	off, order, err := h.Malloc(100)
	require.NoError(t, err)

	// The buddy heap keeps no side table of live allocations (see
	// allocator.go's buddyOrders comment), so Free can only validate a
	// (ptr, order) pair against the heap's bounds and alignment, not
	// against what was actually handed out by Malloc.
	assert.ErrorIs(t, h.Free(off+1, order), ErrBuddyInvalid, "misaligned pointer")
	assert.ErrorIs(t, h.Free(10_000, order), ErrBuddyInvalid, "pointer outside the heap")
	assert.ErrorIs(t, h.Free(off, h.MaxOrder()+1), ErrBuddyInvalid, "order above max_order")
	assert.ErrorIs(t, h.Free(off, h.minOrder-1), ErrBuddyInvalid, "order below min_order")
}

func TestBuddyHeap_MinOrderFloor(t *testing.T) {
	h := NewBuddyHeap(4096, testLogger())
	// With H = 32, only a zero-byte request fits in a MinBlockSize block;
	// Malloc(1) already needs 33 bytes and lands one order higher.
	_, order, err := h.Malloc(0)
	require.NoError(t, err)
	assert.Equal(t, orderOf(MinBlockSize), order)
}

func TestBuddyHeap_OOMWhenLargerThanHeap(t *testing.T) {
	h := NewBuddyHeap(256, testLogger())
	_, _, err := h.Malloc(10000)
	assert.ErrorIs(t, err, ErrOOM)
}

func TestBuddyHeap_NonPowerOfTwoSizeTruncates(t *testing.T) {
	h := NewBuddyHeap(1000, testLogger())
	// 1000 is not a power of two; the usable heap truncates down to 512.
	assert.Equal(t, 9, h.MaxOrder())
}
