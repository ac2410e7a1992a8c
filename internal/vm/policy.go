// Package vm implements the demand-paged virtual memory translator
// (spec.md §4.4): page table, frame table, FIFO/LRU/CLOCK page
// replacement, and simulated disk-fault latency.
package vm

import "errors"

// ErrSegFault is returned when a virtual address falls outside the
// configured virtual address space (spec.md §7 "Segmentation fault").
var ErrSegFault = errors.New("SegFault: virtual address out of bounds")

// ErrFrameExhausted is returned when a fault cannot be serviced because
// the translator has no frames at all to place a page in — physical_size
// < page_size, so total_frames == 0 (spec.md §7; matches
// original_source's virtual_memory.cpp guard on a -1 frame before using
// it as an index, rather than crashing).
var ErrFrameExhausted = errors.New("no physical frames available for this page size")

// ReplacementPolicy selects the page-eviction rule used on a fault when
// no frame is free.
type ReplacementPolicy int

const (
	FIFO ReplacementPolicy = iota
	LRU
	CLOCK
)

func (p ReplacementPolicy) String() string {
	switch p {
	case FIFO:
		return "fifo"
	case LRU:
		return "lru"
	case CLOCK:
		return "clock"
	default:
		return "unknown"
	}
}

// ParsePolicy maps the REPL's textual policy names (spec.md §6) to a
// ReplacementPolicy value.
func ParsePolicy(s string) (ReplacementPolicy, bool) {
	switch s {
	case "fifo":
		return FIFO, true
	case "lru":
		return LRU, true
	case "clock":
		return CLOCK, true
	default:
		return 0, false
	}
}
