package vm

import (
	"log/slog"
	"time"
)

// pageTableEntry is one row of the page table (spec.md §3).
type pageTableEntry struct {
	FrameNumber    int
	Valid          bool
	Dirty          bool
	ReferenceBit   bool
	LastAccessTime uint64
}

// Translator is the demand-paged VM core. It owns the page table, the
// frame table (the reverse mapping frame -> resident page, or -1 if
// empty), and the FIFO queue of resident pages used by the FIFO policy.
type Translator struct {
	pageSize     uint64
	numPages     uint64
	totalFrames  uint64
	pageTable    []pageTableEntry
	frameTable   []int // frameTable[f] = page number resident in frame f, or -1

	policy        ReplacementPolicy
	fifoPages     []uint64
	accessCounter uint64
	clockHand     uint64
	diskLatencyMs int

	pageFaults uint64
	pageHits   uint64

	log   *slog.Logger
	sleep func(time.Duration)
}

// New initializes page/frame tables for a given page size, virtual
// address-space size, and physical pool size (spec.md §4.4 init):
// total_frames = P / page_size, num_pages = virtual_size / page_size.
func New(pageSize, virtualSize, physicalSize uint64, log *slog.Logger) *Translator {
	numPages := virtualSize / pageSize
	totalFrames := physicalSize / pageSize

	frameTable := make([]int, totalFrames)
	for i := range frameTable {
		frameTable[i] = -1
	}

	return &Translator{
		pageSize:    pageSize,
		numPages:    numPages,
		totalFrames: totalFrames,
		pageTable:   make([]pageTableEntry, numPages),
		frameTable:  frameTable,
		log:         log,
		sleep:       time.Sleep,
	}
}

// SetPolicy and SetDiskLatency apply from the next translate() call.
func (t *Translator) SetPolicy(p ReplacementPolicy) { t.policy = p }
func (t *Translator) SetDiskLatency(ms int)          { t.diskLatencyMs = ms }

// PageSize, NumPages, TotalFrames expose sizing for `stats`/tests.
func (t *Translator) PageSize() uint64    { return t.pageSize }
func (t *Translator) NumPages() uint64    { return t.numPages }
func (t *Translator) TotalFrames() uint64 { return t.totalFrames }

// Translate implements spec.md §4.4 translate: decode page/offset,
// bounds-check, hit on a valid entry, else fault (simulate disk latency,
// find or evict a frame, install the page).
func (t *Translator) Translate(vAddr uint64, isWrite bool) (uint64, error) {
	page := vAddr / t.pageSize
	offset := vAddr % t.pageSize

	if page >= t.numPages {
		return 0, ErrSegFault
	}
	t.accessCounter++

	entry := &t.pageTable[page]
	if entry.Valid {
		t.pageHits++
		entry.LastAccessTime = t.accessCounter
		entry.ReferenceBit = true
		if isWrite {
			entry.Dirty = true
		}
		return uint64(entry.FrameNumber)*t.pageSize + offset, nil
	}

	t.pageFaults++
	t.log.Debug("page fault", slog.Uint64("page", page))

	if t.diskLatencyMs > 0 {
		t.sleep(time.Duration(t.diskLatencyMs) * time.Millisecond)
	}

	frame := t.findFreeFrame()
	if frame == -1 {
		frame = t.evictPage()
	}
	if frame == -1 {
		t.pageFaults--
		return 0, ErrFrameExhausted
	}

	entry.Valid = true
	entry.FrameNumber = frame
	entry.LastAccessTime = t.accessCounter
	entry.ReferenceBit = true
	entry.Dirty = isWrite
	t.frameTable[frame] = int(page)

	if t.policy == FIFO {
		t.fifoPages = append(t.fifoPages, page)
	}

	return uint64(frame)*t.pageSize + offset, nil
}

func (t *Translator) findFreeFrame() int {
	for i, resident := range t.frameTable {
		if resident == -1 {
			return i
		}
	}
	return -1
}

// evictPage picks a victim page per the active policy and frees its
// frame (spec.md §4.4 "Eviction").
func (t *Translator) evictPage() int {
	var victimPage int = -1

	switch t.policy {
	case FIFO:
		if len(t.fifoPages) > 0 {
			victimPage = int(t.fifoPages[0])
			t.fifoPages = t.fifoPages[1:]
		}

	case LRU:
		minTime := ^uint64(0)
		for _, page := range t.frameTable {
			if page == -1 {
				continue
			}
			if t.pageTable[page].LastAccessTime < minTime {
				minTime = t.pageTable[page].LastAccessTime
				victimPage = page
			}
		}

	case CLOCK:
		victimPage = t.evictClock()
	}

	if victimPage == -1 {
		return -1
	}

	frame := t.pageTable[victimPage].FrameNumber
	t.pageTable[victimPage].Valid = false
	t.pageTable[victimPage].FrameNumber = -1
	t.frameTable[frame] = -1
	t.log.Debug("page evicted", slog.Int("page", victimPage), slog.Int("frame", frame))
	return frame
}

// evictClock scans the frame table circularly from clock_hand, clearing
// reference bits until it finds a resident entry whose bit is already
// clear. It caps the scan at 2*total_frames entries rather than counting
// hand revolutions (spec.md §9 / SPEC_FULL.md §9 — the flatter bound is
// equivalent but doesn't depend on clock_hand wrapping back to exactly
// zero).
func (t *Translator) evictClock() int {
	limit := 2 * int(t.totalFrames)
	for i := 0; i < limit; i++ {
		page := t.frameTable[t.clockHand]
		if page != -1 {
			if t.pageTable[page].ReferenceBit {
				t.pageTable[page].ReferenceBit = false
			} else {
				victim := page
				t.clockHand = (t.clockHand + 1) % t.totalFrames
				return victim
			}
		}
		t.clockHand = (t.clockHand + 1) % t.totalFrames
	}
	return -1
}

// Stats is the snapshot printed by `stats` when VM is enabled.
type Stats struct {
	PageFaults    uint64
	PageHits      uint64
	HitRate       float64
	DiskLatencyMs int
}

func (t *Translator) StatsSnapshot() Stats {
	s := Stats{PageFaults: t.pageFaults, PageHits: t.pageHits, DiskLatencyMs: t.diskLatencyMs}
	total := t.pageFaults + t.pageHits
	if total > 0 {
		s.HitRate = float64(t.pageHits) / float64(total) * 100.0
	}
	return s
}

// ResidentCount reports how many frames are currently occupied, to check
// the invariant `resident page count <= total_frames` (spec.md §8).
func (t *Translator) ResidentCount() int {
	n := 0
	for _, p := range t.frameTable {
		if p != -1 {
			n++
		}
	}
	return n
}
