package repl

import (
	"fmt"
	"io"
	"sort"

	"github.com/sisoputnfrba/go-memsim/internal/allocator"
	"github.com/sisoputnfrba/go-memsim/internal/facade"
)

// cmdDump renders the memory map: the address-ordered block chain for a
// linear strategy, or the buddy free-list counts per order for Buddy
// (spec.md §6 `dump`).
func cmdDump(m *facade.Manager, out io.Writer) {
	if !m.Initialized() {
		fmt.Fprintln(out, "Error: memory not initialized; run init <size> first.")
		return
	}

	a := m.Allocator()
	if a.Strategy() == allocator.Buddy {
		fmt.Fprintln(out, "--- Buddy Free Lists ---")
		counts := a.BuddyFreeListCounts()
		orders := make([]int, 0, len(counts))
		for order := range counts {
			orders = append(orders, order)
		}
		sort.Ints(orders)
		for _, order := range orders {
			fmt.Fprintf(out, "Order %d (%d bytes): %d blocks\n", order, uint64(1)<<uint(order), counts[order])
		}
		fmt.Fprintln(out, "------------------------")
		return
	}

	fmt.Fprintln(out, "--- Memory dump ---")
	offset := uint64(0)
	for _, b := range a.LinearBlocks() {
		end := offset + allocator.HeaderSize + b.Size - 1
		state := "FREE"
		if !b.IsFree {
			state = fmt.Sprintf("USED (ID=%d)", b.ID)
		}
		fmt.Fprintf(out, "[%d - %d] %s | Size: %d (+%d header)\n", offset, end, state, b.Size, allocator.HeaderSize)
		offset += allocator.HeaderSize + b.Size
	}
	fmt.Fprintln(out, "-------------------")
}
