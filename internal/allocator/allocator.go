package allocator

import "log/slog"

// Allocator is the facade combining the linear heap and the buddy heap
// behind one active Strategy. Per spec.md §9's preferred reimplementation
// ("a sum-typed state carrying either a LinearHeap or a BuddyHeap"), only
// one of the two is ever in use at a time; the other field is nil until
// set_strategy switches into it.
type Allocator struct {
	totalSize uint64
	strategy  Strategy
	linear    *LinearHeap
	buddy     *BuddyHeap
	log       *slog.Logger

	// buddyOrders records the order each live buddy allocation was
	// carved at, keyed by payload offset — see BuddyHeap.Malloc.
	buddyOrders map[uint64]int

	totalAllocRequests int
	successfulAllocs   int
}

// New initializes the allocator over a P-byte pool with the given
// starting strategy (spec.md §4.1 init / §4.2 init).
func New(totalSize uint64, strategy Strategy, log *slog.Logger) *Allocator {
	a := &Allocator{
		totalSize:   totalSize,
		strategy:    strategy,
		log:         log,
		buddyOrders: make(map[uint64]int),
	}
	if strategy == Buddy {
		a.buddy = NewBuddyHeap(totalSize, log)
	} else {
		a.linear = NewLinearHeap(totalSize, log)
	}
	return a
}

// Strategy reports the active placement strategy.
func (a *Allocator) Strategy() Strategy { return a.strategy }

// TotalSize reports the backing pool size (P).
func (a *Allocator) TotalSize() uint64 { return a.totalSize }

// SetStrategy switches strategies. Transitioning into Buddy
// re-initializes the buddy view over the existing pool size; any linear
// allocations become implicitly invalid (spec.md §4.1 set_strategy,
// documented hazard — see SPEC_FULL.md §9).
func (a *Allocator) SetStrategy(s Strategy) {
	if s == Buddy && a.strategy != Buddy {
		a.log.Warn("switching to buddy allocator at runtime; existing linear allocations become invalid")
		a.buddy = NewBuddyHeap(a.totalSize, a.log)
		a.buddyOrders = make(map[uint64]int)
	}
	if s != Buddy && a.linear == nil {
		a.linear = NewLinearHeap(a.totalSize, a.log)
	}
	a.strategy = s
}

// Malloc dispatches to the active strategy (spec.md §4 data flow).
func (a *Allocator) Malloc(n uint64) (uint64, error) {
	a.totalAllocRequests++

	if a.strategy == Buddy {
		offset, order, err := a.buddy.Malloc(n)
		if err != nil {
			return 0, err
		}
		a.buddyOrders[offset] = order
		a.successfulAllocs++
		return offset, nil
	}

	offset, err := a.linear.Malloc(n, a.strategy)
	if err != nil {
		return 0, err
	}
	a.successfulAllocs++
	return offset, nil
}

// Free validates and releases ptr.
func (a *Allocator) Free(ptr uint64) error {
	if a.strategy == Buddy {
		order, ok := a.buddyOrders[ptr]
		if !ok {
			return ErrInvalidFree
		}
		delete(a.buddyOrders, ptr)
		return a.buddy.Free(ptr, order)
	}
	return a.linear.Free(ptr)
}

// FreeByID applies only to the linear heap: the buddy system does not
// assign stable ids (spec.md §4.2 has no id concept). Under Buddy,
// FreeSmart treats value as a payload offset only. Buddy pointers are
// tracked in buddyOrders, so Free and FreeSmart reject a second free of
// the same pointer.
func (a *Allocator) FreeByID(id int) error {
	if a.strategy == Buddy {
		return ErrNotFound
	}
	return a.linear.FreeByID(id)
}

func (a *Allocator) FreeSmart(value int64) error {
	if a.strategy == Buddy {
		if value < 0 {
			return ErrNotFound
		}
		ptr := uint64(value)
		if order, ok := a.buddyOrders[ptr]; ok {
			delete(a.buddyOrders, ptr)
			return a.buddy.Free(ptr, order)
		}
		return ErrNotFound
	}
	return a.linear.FreeSmart(value)
}

// Stats is the snapshot printed by the REPL's `stats` command
// (spec.md §4.1 / original_source print_stats).
type Stats struct {
	TotalSize             uint64
	TotalFree             uint64
	TotalUsed             uint64
	LargestFreeBlock      uint64
	InternalFragmentation uint64
	ExternalFragmentation float64
	Utilization           float64
	TotalAllocRequests    int
	SuccessfulAllocs      int
	SuccessRate           float64
}

func (a *Allocator) Stats() Stats {
	s := Stats{
		TotalSize:          a.totalSize,
		TotalAllocRequests: a.totalAllocRequests,
		SuccessfulAllocs:   a.successfulAllocs,
	}
	if a.totalAllocRequests > 0 {
		s.SuccessRate = float64(a.successfulAllocs) / float64(a.totalAllocRequests) * 100.0
	}

	if a.strategy == Buddy {
		// Buddy fragmentation/utilization are not tracked by address-ordered
		// chain; report pool-level numbers only.
		return s
	}

	s.TotalFree = a.linear.TotalFree()
	s.TotalUsed = a.linear.TotalUsed()
	s.LargestFreeBlock = a.linear.LargestFree()
	s.InternalFragmentation = a.linear.TotalInternalFragmentation()
	if a.totalSize > 0 {
		s.Utilization = float64(s.TotalUsed) / float64(a.totalSize) * 100.0
	}
	if s.TotalFree > 0 {
		s.ExternalFragmentation = 1.0 - float64(s.LargestFreeBlock)/float64(s.TotalFree)
	}
	return s
}

// LinearBlocks exposes the linear heap's chain for `dump` (nil when the
// buddy strategy is active).
func (a *Allocator) LinearBlocks() []*Block {
	if a.strategy == Buddy || a.linear == nil {
		return nil
	}
	return a.linear.Blocks()
}

// BuddyFreeListCounts exposes the buddy heap's per-order free counts for
// `dump` (nil when a linear strategy is active).
func (a *Allocator) BuddyFreeListCounts() map[int]int {
	if a.strategy != Buddy || a.buddy == nil {
		return nil
	}
	return a.buddy.FreeListCounts()
}

// BuddyMaxOrder reports the buddy heap's top order, for dump/test
// assertions (scenario 4 in spec.md §8).
func (a *Allocator) BuddyMaxOrder() int {
	if a.buddy == nil {
		return 0
	}
	return a.buddy.MaxOrder()
}
