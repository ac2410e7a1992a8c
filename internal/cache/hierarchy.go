package cache

import "log/slog"

// LevelConfig parameterizes one cache level (size, block size,
// associativity), used by New and by internal/config's
// defaults (SPEC_FULL.md §3.3).
type LevelConfig struct {
	Size          uint64 `json:"size"`
	BlockSize     uint64 `json:"block_size"`
	Associativity uint64 `json:"associativity"`
}

// Hierarchy holds the three independent cache levels queried in order
// L1 -> L2 -> L3 (spec.md §4.3 "Hierarchy contract"). No data movement
// happens between levels; each only updates its own metadata.
type Hierarchy struct {
	L1, L2, L3 *Level
	log        *slog.Logger
}

// New constructs all three levels from their configs.
func New(l1, l2, l3 LevelConfig, log *slog.Logger) *Hierarchy {
	return &Hierarchy{
		L1:  NewLevel(1, l1.Size, l1.BlockSize, l1.Associativity, log),
		L2:  NewLevel(2, l2.Size, l2.BlockSize, l2.Associativity, log),
		L3:  NewLevel(3, l3.Size, l3.BlockSize, l3.Associativity, log),
		log: log,
	}
}

// SetPolicy applies p to all three levels (spec.md §4.3 "Policy change").
func (h *Hierarchy) SetPolicy(p ReplacementPolicy) {
	h.L1.SetPolicy(p)
	h.L2.SetPolicy(p)
	h.L3.SetPolicy(p)
}

// Access probes L1, then L2, then L3 on a miss; all three independently
// maintain their own stats, and rw is case-insensitive for 'W'
// (spec.md §4.3).
func (h *Hierarchy) Access(addr uint64, rw byte) {
	isWrite := rw == 'W' || rw == 'w'
	if h.L1.Access(addr, isWrite) {
		return
	}
	if h.L2.Access(addr, isWrite) {
		return
	}
	h.L3.Access(addr, isWrite)
}

func (h *Hierarchy) Levels() []*Level {
	return []*Level{h.L1, h.L2, h.L3}
}
