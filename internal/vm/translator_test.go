package vm

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestTranslator builds a 2-frame, 4-page translator (pageSize=64,
// virtualSize=256, physicalSize=128) with sleep stubbed out so disk
// latency never actually blocks the test.
func newTestTranslator() *Translator {
	tr := New(64, 256, 128, testLogger())
	tr.sleep = func(time.Duration) {}
	return tr
}

func TestTranslator_FirstAccessFaults(t *testing.T) {
	tr := newTestTranslator()
	_, err := tr.Translate(0, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tr.pageFaults)
	assert.Equal(t, uint64(0), tr.pageHits)
}

func TestTranslator_RepeatAccessHits(t *testing.T) {
	tr := newTestTranslator()
	_, err := tr.Translate(0, false)
	require.NoError(t, err)
	_, err = tr.Translate(10, false) // same page (0..63)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), tr.pageFaults)
	assert.Equal(t, uint64(1), tr.pageHits)
}

func TestTranslator_OutOfBoundsIsSegFault(t *testing.T) {
	tr := newTestTranslator()
	_, err := tr.Translate(10_000, false)
	assert.ErrorIs(t, err, ErrSegFault)
}

// Reproduces `init 100; enable_vm 200; read 0`: a page size larger than
// the pool leaves total_frames == 0, so no fault can ever be serviced.
func TestTranslator_ZeroFramesFaultsGracefully(t *testing.T) {
	tr := New(200, 400, 100, testLogger())
	tr.sleep = func(time.Duration) {}
	require.Equal(t, uint64(0), tr.TotalFrames())

	_, err := tr.Translate(0, false)
	assert.ErrorIs(t, err, ErrFrameExhausted)
}

func TestTranslator_AddressComposesFrameAndOffset(t *testing.T) {
	tr := newTestTranslator()
	addr, err := tr.Translate(70, false) // page 1, offset 6
	require.NoError(t, err)
	frame := addr / tr.pageSize
	offset := addr % tr.pageSize
	assert.Equal(t, uint64(6), offset)
	assert.Less(t, frame, tr.totalFrames)
}

func TestTranslator_FIFOEvictsOldestResidentPage(t *testing.T) {
	tr := newTestTranslator()
	tr.SetPolicy(FIFO)

	_, err := tr.Translate(0, false)   // page 0
	require.NoError(t, err)
	_, err = tr.Translate(64, false)   // page 1, fills the last frame
	require.NoError(t, err)
	_, err = tr.Translate(0, false)    // hit, irrelevant to FIFO order
	require.NoError(t, err)

	_, err = tr.Translate(128, false) // page 2: evicts page 0 (first in)
	require.NoError(t, err)

	assert.False(t, tr.pageTable[0].Valid)
	assert.True(t, tr.pageTable[1].Valid)
	assert.True(t, tr.pageTable[2].Valid)
}

func TestTranslator_LRUEvictsLeastRecentlyUsedPage(t *testing.T) {
	tr := newTestTranslator()
	tr.SetPolicy(LRU)

	_, err := tr.Translate(0, false)  // page 0
	require.NoError(t, err)
	_, err = tr.Translate(64, false)  // page 1
	require.NoError(t, err)
	_, err = tr.Translate(0, false)   // refresh page 0's recency

	_, err = tr.Translate(128, false) // page 2: evicts page 1 (least recent)
	require.NoError(t, err)

	assert.True(t, tr.pageTable[0].Valid)
	assert.False(t, tr.pageTable[1].Valid)
	assert.True(t, tr.pageTable[2].Valid)
}

func TestTranslator_ClockClearsReferenceBitsBeforeEvicting(t *testing.T) {
	tr := newTestTranslator()
	tr.SetPolicy(CLOCK)

	_, err := tr.Translate(0, false)  // page 0 -> frame 0
	require.NoError(t, err)
	_, err = tr.Translate(64, false)  // page 1 -> frame 1
	require.NoError(t, err)
	_, err = tr.Translate(0, false)   // hit, sets page 0's reference bit again

	_, err = tr.Translate(128, false) // page 2: clock sweeps both ref bits once
	require.NoError(t, err)

	// Both page 0 and page 1 started this fault with their reference bit
	// set, so the sweep clears both before landing back on page 0.
	assert.False(t, tr.pageTable[0].Valid)
	assert.True(t, tr.pageTable[1].Valid)
	assert.True(t, tr.pageTable[2].Valid)
}

func TestTranslator_DiskLatencyInvokesInjectedSleep(t *testing.T) {
	tr := newTestTranslator()
	var slept time.Duration
	tr.sleep = func(d time.Duration) { slept = d }
	tr.SetDiskLatency(25)

	_, err := tr.Translate(0, false)
	require.NoError(t, err)
	assert.Equal(t, 25*time.Millisecond, slept)
}

func TestTranslator_ResidentCountNeverExceedsTotalFrames(t *testing.T) {
	tr := newTestTranslator()
	for _, addr := range []uint64{0, 64, 128, 192} {
		_, err := tr.Translate(addr, false)
		require.NoError(t, err)
		assert.LessOrEqual(t, tr.ResidentCount(), int(tr.TotalFrames()))
	}
}

func TestTranslator_StatsSnapshotReportsHitRate(t *testing.T) {
	tr := newTestTranslator()
	tr.Translate(0, false)
	tr.Translate(0, false)
	tr.Translate(0, false)

	s := tr.StatsSnapshot()
	assert.Equal(t, uint64(1), s.PageFaults)
	assert.Equal(t, uint64(2), s.PageHits)
	assert.InDelta(t, 200.0/3.0, s.HitRate, 0.01)
}
