// Package repl is the interactive command loop (spec.md §6): it is
// explicitly an external collaborator, not part of the simulator core
// (spec.md §1 "Out of scope"). It only parses commands, drives the
// facade, and prints the diagnostic/transcript text spec.md §7
// prescribes.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sisoputnfrba/go-memsim/internal/allocator"
	"github.com/sisoputnfrba/go-memsim/internal/cache"
	"github.com/sisoputnfrba/go-memsim/internal/facade"
	"github.com/sisoputnfrba/go-memsim/internal/vm"
)

// ErrUnknownCommand is returned by dispatch when the first token on a
// line names no known command (spec.md §7 "Unknown command").
var ErrUnknownCommand = errors.New("unknown command")

// Run reads one command per line from in and writes the transcript to
// out until `exit` or EOF (spec.md §6 command-line surface).
func Run(m *facade.Manager, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Welcome to memsim. Type 'help' for commands.")
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		action := fields[0]
		args := fields[1:]

		if action == "exit" {
			return
		}
		if action == "help" {
			printHelp(out)
			continue
		}
		if err := dispatch(m, action, args, out); err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}

func dispatch(m *facade.Manager, action string, args []string, out io.Writer) error {
	switch action {
	case "init":
		cmdInit(m, args, out)
	case "enable_vm":
		cmdEnableVM(m, args, out)
	case "malloc":
		cmdMalloc(m, args, out)
	case "free":
		cmdFree(m, args, out)
	case "read":
		cmdAccess(m, args, out, 'R')
	case "write":
		cmdAccess(m, args, out, 'W')
	case "set":
		cmdSet(m, args, out)
	case "dump":
		cmdDump(m, out)
	case "stats":
		cmdStats(m, out)
	default:
		return fmt.Errorf("%w: %q. Type 'help' for commands", ErrUnknownCommand, action)
	}
	return nil
}

func cmdInit(m *facade.Manager, args []string, out io.Writer) {
	size, err := parseUint(args, 0)
	if err != nil {
		fmt.Fprintln(out, "Usage: init <size>")
		return
	}
	m.Init(size)
	fmt.Fprintf(out, "Memory initialized with %d bytes.\n", size)
}

func cmdEnableVM(m *facade.Manager, args []string, out io.Writer) {
	pageSize, err := parseUint(args, 0)
	if err != nil {
		fmt.Fprintln(out, "Usage: enable_vm <page_size>")
		return
	}
	if err := m.EnableVM(pageSize); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintln(out, "Virtual Memory Enabled.")
}

func cmdMalloc(m *facade.Manager, args []string, out io.Writer) {
	size, err := parseUint(args, 0)
	if err != nil {
		fmt.Fprintln(out, "Usage: malloc <size>")
		return
	}
	offset, err := m.Malloc(size)
	if err != nil {
		fmt.Fprintln(out, "Allocation failed:", err)
		return
	}
	fmt.Fprintf(out, "Allocated at address: %d\n", offset)
}

func cmdFree(m *facade.Manager, args []string, out io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: free <block_id> OR free <address>")
		return
	}
	value, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(out, "Usage: free <block_id> OR free <address>")
		return
	}
	if err := m.Free(value); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintln(out, "Freed.")
}

func cmdAccess(m *facade.Manager, args []string, out io.Writer, rw byte) {
	if rw == 'R' {
		addr, err := parseUint(args, 0)
		if err != nil {
			fmt.Fprintln(out, "Usage: read <address>")
			return
		}
		if err := m.Access(addr, 'R'); err != nil {
			fmt.Fprintln(out, "Error:", err)
			return
		}
		fmt.Fprintf(out, "Read from address %d\n", addr)
		return
	}

	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: write <address> <value>")
		return
	}
	addr, err := parseUint(args, 0)
	if err != nil {
		fmt.Fprintln(out, "Usage: write <address> <value>")
		return
	}
	if err := m.Access(addr, 'W'); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "Wrote %s to address %d\n", args[1], addr)
}

func cmdSet(m *facade.Manager, args []string, out io.Writer) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: set <allocator|cache|vm> ...")
		return
	}
	target := args[0]

	switch target {
	case "allocator":
		name := strings.Join(args[1:], " ")
		strategy, ok := allocator.ParseStrategy(name)
		if !ok {
			fmt.Fprintln(out, "Unknown strategy. Use: first fit, best fit, worst fit, buddy.")
			return
		}
		if err := m.SetStrategy(strategy); err != nil {
			fmt.Fprintln(out, "Error:", err)
			return
		}
		fmt.Fprintf(out, "Strategy changed to %s.\n", strategy)

	case "cache":
		if args[1] != "policy" || len(args) < 3 {
			fmt.Fprintln(out, "Usage: set cache policy <fifo|lru|lfu>")
			return
		}
		policy, ok := cache.ParsePolicy(args[2])
		if !ok {
			fmt.Fprintln(out, "Unknown policy. Use: fifo, lru, lfu")
			return
		}
		if err := m.SetCachePolicy(policy); err != nil {
			fmt.Fprintln(out, "Error:", err)
			return
		}
		fmt.Fprintf(out, "Cache Policy set to %s\n", strings.ToUpper(policy.String()))

	case "vm":
		if len(args) < 3 {
			fmt.Fprintln(out, "Unknown VM setting. Use: policy, latency")
			return
		}
		switch args[1] {
		case "policy":
			policy, ok := vm.ParsePolicy(args[2])
			if !ok {
				fmt.Fprintln(out, "Unknown policy. Use: fifo, lru, clock")
				return
			}
			if err := m.SetVMPolicy(policy); err != nil {
				fmt.Fprintln(out, "Error:", err)
				return
			}
			fmt.Fprintf(out, "VM Policy set to %s\n", strings.ToUpper(policy.String()))
		case "latency":
			ms, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Fprintln(out, "Usage: set vm latency <ms>")
				return
			}
			if err := m.SetVMLatency(ms); err != nil {
				fmt.Fprintln(out, "Error:", err)
				return
			}
			fmt.Fprintf(out, "VM Disk Latency set to %dms\n", ms)
		default:
			fmt.Fprintln(out, "Unknown VM setting. Use: policy, latency")
		}

	default:
		fmt.Fprintln(out, "Unknown 'set' target. Use: allocator, cache, vm")
	}
}

func parseUint(args []string, idx int) (uint64, error) {
	if idx >= len(args) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(args[idx], 10, 64)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  init <size>                                   - Initialize memory pool")
	fmt.Fprintln(out, "  enable_vm <page_size>                         - Enable virtual memory")
	fmt.Fprintln(out, "  malloc <size>                                 - Allocate bytes")
	fmt.Fprintln(out, "  free <id_or_address>                          - Free by id or payload offset")
	fmt.Fprintln(out, "  read <addr>                                   - Access(addr, 'R')")
	fmt.Fprintln(out, "  write <addr> <val>                            - Access(addr, 'W')")
	fmt.Fprintln(out, "  set allocator <first fit|best fit|worst fit|buddy>")
	fmt.Fprintln(out, "  set cache policy <fifo|lru|lfu>")
	fmt.Fprintln(out, "  set vm policy <fifo|lru|clock>")
	fmt.Fprintln(out, "  set vm latency <ms>")
	fmt.Fprintln(out, "  dump                                          - Show memory map")
	fmt.Fprintln(out, "  stats                                         - Show usage stats")
	fmt.Fprintln(out, "  exit                                          - Quit")
}
