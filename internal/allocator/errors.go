// Package allocator implements the heap-allocation core of the simulator:
// a linear free-list heap (first/best/worst fit) and a power-of-two buddy
// heap, sharing one backing buffer.
package allocator

import "errors"

// Sentinel errors surfaced to the REPL as human-readable diagnostics
// (spec.md §7). Callers compare with errors.Is; no structured codes.
var (
	ErrOOM          = errors.New("allocation failed: out of memory")
	ErrInvalidFree  = errors.New("invalid address: pointer is not the start of an allocated block")
	ErrAlreadyFree  = errors.New("block is already free")
	ErrNotFound     = errors.New("no allocated block found with that id or address")
	ErrBuddyInvalid = errors.New("buddy allocator: pointer/order does not name a valid block")
)
