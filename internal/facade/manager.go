// Package facade exposes the flat operation surface spec.md §2 assigns
// to the "Facade" component: it owns one Allocator, one cache Hierarchy,
// and one VM Translator, and routes access() through VM then cache
// exactly as spec.md §2's "Data flow of one access(addr, rw)" describes.
//
// Per SPEC_FULL.md §9 ("Global singleton facade"), Manager is a plain
// value type constructed explicitly by its caller (the REPL), not a
// process-wide singleton.
package facade

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/sisoputnfrba/go-memsim/internal/allocator"
	"github.com/sisoputnfrba/go-memsim/internal/cache"
	"github.com/sisoputnfrba/go-memsim/internal/config"
	"github.com/sisoputnfrba/go-memsim/internal/vm"
)

// ErrNotInitialized is returned by every operation that requires `init`
// to have run first (spec.md §7 "Initialization errors").
var ErrNotInitialized = errors.New("memory not initialized; run init <size> first")

// ErrAccessViolation is the non-VM counterpart of vm.ErrSegFault
// (spec.md §7 "Access violation (no VM)").
var ErrAccessViolation = errors.New("access violation: address beyond pool size")

// Manager is the simulator core: the allocator, the cache hierarchy, and
// the (optional) VM translator, all operating above one conceptual
// P-byte pool.
type Manager struct {
	initialized bool
	poolSize    uint64

	alloc *allocator.Allocator
	cache *cache.Hierarchy

	vmEnabled bool
	vmSystem  *vm.Translator

	defaults config.Defaults
	log      *slog.Logger
}

// New constructs an uninitialized Manager; call Init before anything
// else (spec.md §6: "init <size> ... Must precede any other core
// operation").
func New(defaults config.Defaults, log *slog.Logger) *Manager {
	return &Manager{defaults: defaults, log: log}
}

// Init allocates the pool and the default cache hierarchy
// (spec.md §4.1 init / §6 default cache configuration).
func (m *Manager) Init(size uint64) {
	m.poolSize = size
	strategy := allocator.FirstFit
	if m.alloc != nil {
		strategy = m.alloc.Strategy()
	}
	m.alloc = allocator.New(size, strategy, m.log)
	m.cache = cache.New(m.defaults.L1, m.defaults.L2, m.defaults.L3, m.log)
	m.vmEnabled = false
	m.vmSystem = nil
	m.initialized = true
	m.log.Info("memory initialized", slog.Uint64("size", size))
}

// Initialized reports whether Init has run.
func (m *Manager) Initialized() bool { return m.initialized }

func (m *Manager) requireInit() error {
	if !m.initialized {
		return ErrNotInitialized
	}
	return nil
}

// EnableVM turns on the translator with a fixed 65536-byte virtual
// address space and physical size equal to the pool (spec.md §6
// "enable_vm <page_size>").
func (m *Manager) EnableVM(pageSize uint64) error {
	if err := m.requireInit(); err != nil {
		return err
	}
	const virtualSize = 65536
	m.vmSystem = vm.New(pageSize, virtualSize, m.poolSize, m.log)
	m.vmSystem.SetDiskLatency(m.defaults.DefaultVMLatencyMs)
	m.vmEnabled = true
	return nil
}

// SetStrategy switches the allocator's placement strategy.
func (m *Manager) SetStrategy(s allocator.Strategy) error {
	if err := m.requireInit(); err != nil {
		return err
	}
	m.alloc.SetStrategy(s)
	return nil
}

// SetCachePolicy applies p to every cache level.
func (m *Manager) SetCachePolicy(p cache.ReplacementPolicy) error {
	if err := m.requireInit(); err != nil {
		return err
	}
	m.cache.SetPolicy(p)
	return nil
}

// SetVMPolicy and SetVMLatency configure the translator.
func (m *Manager) SetVMPolicy(p vm.ReplacementPolicy) error {
	if err := m.requireInit(); err != nil {
		return err
	}
	if m.vmSystem != nil {
		m.vmSystem.SetPolicy(p)
	}
	return nil
}

func (m *Manager) SetVMLatency(ms int) error {
	if err := m.requireInit(); err != nil {
		return err
	}
	if m.vmSystem != nil {
		m.vmSystem.SetDiskLatency(ms)
	}
	return nil
}

// Malloc dispatches to the active allocator strategy.
func (m *Manager) Malloc(size uint64) (uint64, error) {
	if err := m.requireInit(); err != nil {
		return 0, err
	}
	return m.alloc.Malloc(size)
}

// Free interprets value as an id first, then as a payload offset
// (spec.md §4.1 free_smart / §6 "free <value>").
func (m *Manager) Free(value int64) error {
	if err := m.requireInit(); err != nil {
		return err
	}
	return m.alloc.FreeSmart(value)
}

// Access implements spec.md §2's "Data flow of one access(addr, rw)":
// if VM is enabled, translate first (which may fault); then, regardless
// of VM, probe the cache hierarchy at the resolved physical offset.
func (m *Manager) Access(addr uint64, rw byte) error {
	if err := m.requireInit(); err != nil {
		return err
	}

	physAddr := addr
	if m.vmEnabled {
		isWrite := rw == 'W' || rw == 'w'
		p, err := m.vmSystem.Translate(addr, isWrite)
		if err != nil {
			return err
		}
		physAddr = p
	} else if addr >= m.poolSize {
		return ErrAccessViolation
	}

	m.cache.Access(physAddr, rw)
	return nil
}

// Allocator, Cache, VM expose the subsystems for dump/stats rendering in
// the REPL layer without leaking Manager's internal fields.
func (m *Manager) Allocator() *allocator.Allocator { return m.alloc }
func (m *Manager) Cache() *cache.Hierarchy         { return m.cache }
func (m *Manager) VMEnabled() bool                 { return m.vmEnabled }
func (m *Manager) VM() *vm.Translator               { return m.vmSystem }
func (m *Manager) PoolSize() uint64                 { return m.poolSize }
