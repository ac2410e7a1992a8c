package repl

import (
	"fmt"
	"io"

	"github.com/sisoputnfrba/go-memsim/internal/facade"
)

// cmdStats prints allocator, cache, and (if enabled) VM statistics
// (spec.md §6 `stats`).
func cmdStats(m *facade.Manager, out io.Writer) {
	if !m.Initialized() {
		fmt.Fprintln(out, "Error: memory not initialized; run init <size> first.")
		return
	}

	s := m.Allocator().Stats()
	fmt.Fprintln(out, "\n=== Memory System Statistics ===")
	fmt.Fprintf(out, "Memory Utilization: %.2f%% (%d/%d bytes)\n", s.Utilization, s.TotalUsed, s.TotalSize)
	fmt.Fprintf(out, "Internal Fragmentation: %d bytes\n", s.InternalFragmentation)
	fmt.Fprintf(out, "External Fragmentation: %.2f%%\n", s.ExternalFragmentation*100.0)
	fmt.Fprintf(out, "Allocation Requests: %d\n", s.TotalAllocRequests)
	fmt.Fprintf(out, "Successful Allocs:   %d\n", s.SuccessfulAllocs)
	fmt.Fprintf(out, "Success Rate:        %.2f%%\n", s.SuccessRate)
	fmt.Fprintln(out, "==============================")

	fmt.Fprintln(out, "\n=== Cache Statistics ===")
	for _, lvl := range m.Cache().Levels() {
		fmt.Fprintf(out, "L%d Cache Stats:\n", lvl.ID())
		fmt.Fprintf(out, "  Hits: %d\n", lvl.Hits())
		fmt.Fprintf(out, "  Misses: %d\n", lvl.Misses())
		fmt.Fprintf(out, "  Hit Rate: %.2f%%\n", lvl.HitRate())
	}
	fmt.Fprintln(out, "========================")

	if m.VMEnabled() {
		v := m.VM().StatsSnapshot()
		fmt.Fprintln(out, "\n=== Virtual Memory Statistics ===")
		fmt.Fprintf(out, "  Page Faults: %d\n", v.PageFaults)
		fmt.Fprintf(out, "  Page Hits:   %d\n", v.PageHits)
		fmt.Fprintf(out, "  Hit Rate:    %.2f%%\n", v.HitRate)
		if v.DiskLatencyMs > 0 {
			fmt.Fprintf(out, "  Disk Latency per Fault: %dms\n", v.DiskLatencyMs)
		}
		fmt.Fprintln(out, "=================================")
	}
}
