package cache

import "log/slog"

// block is one tag-store entry (spec.md §3 "Cache level").
type block struct {
	Valid          bool
	Dirty          bool
	Tag            uint64
	LastAccessTime uint64 // for LRU
	AccessCount    uint64 // for LFU
}

// set is one associative set of Associativity ways, plus the FIFO
// cursor used when the level's policy is FIFO.
type set struct {
	blocks         []block
	fifoNextVictim int
}

// Level is one cache level: L1, L2, or L3. Parameters are fixed at
// construction (spec.md §3: size S, block size B, associativity W).
type Level struct {
	id            int
	size          uint64
	blockSize     uint64
	associativity uint64
	numSets       uint64
	sets          []set

	policy ReplacementPolicy
	timer  uint64

	hits   uint64
	misses uint64

	log *slog.Logger
}

// NewLevel derives num_sets = max(1, S/(B*W)) and allocates W entries per
// set (spec.md §3).
func NewLevel(id int, size, blockSize, associativity uint64, log *slog.Logger) *Level {
	if blockSize == 0 || associativity == 0 {
		blockSize, associativity = 32, 1
	}
	numSets := size / (blockSize * associativity)
	if numSets == 0 {
		numSets = 1
	}

	sets := make([]set, numSets)
	for i := range sets {
		sets[i].blocks = make([]block, associativity)
	}

	return &Level{
		id:            id,
		size:          size,
		blockSize:     blockSize,
		associativity: associativity,
		numSets:       numSets,
		sets:          sets,
		log:           log,
	}
}

// SetPolicy applies p from the next access onward; existing metadata is
// retained (spec.md §4.3 "Policy change").
func (l *Level) SetPolicy(p ReplacementPolicy) { l.policy = p }

// decode splits an address into (index, tag) per spec.md §3:
// block = addr/B, index = block mod num_sets, tag = block / num_sets.
func (l *Level) decode(addr uint64) (index, tag uint64) {
	blockNum := addr / l.blockSize
	return blockNum % l.numSets, blockNum / l.numSets
}

// Access implements the level contract of spec.md §4.3: hit updates
// recency/frequency metadata (and dirty on write); miss selects a victim
// (any invalid slot first, else by policy) and installs the new entry.
func (l *Level) Access(addr uint64, isWrite bool) bool {
	l.timer++
	index, tag := l.decode(addr)
	s := &l.sets[index]

	for i := range s.blocks {
		b := &s.blocks[i]
		if b.Valid && b.Tag == tag {
			l.hits++
			b.LastAccessTime = l.timer
			b.AccessCount++
			if isWrite {
				b.Dirty = true
			}
			return true
		}
	}

	l.misses++
	victim := l.selectVictim(s)
	b := &s.blocks[victim]
	b.Valid = true
	b.Tag = tag
	b.Dirty = isWrite
	b.LastAccessTime = l.timer
	b.AccessCount = 1
	return false
}

// selectVictim prefers any invalid slot (first invalid index in fill
// order), else applies the active policy (spec.md §4.3 step 4).
func (l *Level) selectVictim(s *set) int {
	for i := range s.blocks {
		if !s.blocks[i].Valid {
			return i
		}
	}

	switch l.policy {
	case FIFO:
		v := s.fifoNextVictim
		s.fifoNextVictim = (s.fifoNextVictim + 1) % len(s.blocks)
		return v
	case LRU:
		victim := 0
		minTime := s.blocks[0].LastAccessTime
		for i := 1; i < len(s.blocks); i++ {
			if s.blocks[i].LastAccessTime < minTime {
				minTime = s.blocks[i].LastAccessTime
				victim = i
			}
		}
		return victim
	case LFU:
		victim := 0
		minCount := s.blocks[0].AccessCount
		for i := 1; i < len(s.blocks); i++ {
			b := s.blocks[i]
			if b.AccessCount < minCount ||
				(b.AccessCount == minCount && b.LastAccessTime < s.blocks[victim].LastAccessTime) {
				minCount = b.AccessCount
				victim = i
			}
		}
		return victim
	default:
		return 0
	}
}

// Hits, Misses and HitRate feed `stats` (spec.md §8: hits+misses = total
// accesses since last reset).
func (l *Level) Hits() uint64   { return l.hits }
func (l *Level) Misses() uint64 { return l.misses }

func (l *Level) HitRate() float64 {
	total := l.hits + l.misses
	if total == 0 {
		return 0
	}
	return float64(l.hits) / float64(total) * 100.0
}

func (l *Level) ResetStats() {
	l.hits = 0
	l.misses = 0
}

func (l *Level) ID() int { return l.id }
