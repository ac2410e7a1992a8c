package facade

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisoputnfrba/go-memsim/internal/allocator"
	"github.com/sisoputnfrba/go-memsim/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_OperationsRequireInit(t *testing.T) {
	m := New(config.Builtin(), testLogger())

	_, err := m.Malloc(10)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, m.Free(0), ErrNotInitialized)
	assert.ErrorIs(t, m.Access(0, 'R'), ErrNotInitialized)
}

func TestManager_InitThenMallocAndAccess(t *testing.T) {
	m := New(config.Builtin(), testLogger())
	m.Init(4096)
	require.True(t, m.Initialized())

	off, err := m.Malloc(64)
	require.NoError(t, err)

	require.NoError(t, m.Access(off, 'W'))
	require.NoError(t, m.Access(off, 'R'))

	assert.Equal(t, uint64(1), m.Cache().L1.Hits())
}

func TestManager_AccessBeyondPoolWithoutVMIsViolation(t *testing.T) {
	m := New(config.Builtin(), testLogger())
	m.Init(128)

	err := m.Access(10_000, 'R')
	assert.ErrorIs(t, err, ErrAccessViolation)
}

func TestManager_EnableVMRoutesThroughTranslator(t *testing.T) {
	m := New(config.Builtin(), testLogger())
	m.Init(4096)
	require.NoError(t, m.EnableVM(64))
	assert.True(t, m.VMEnabled())

	require.NoError(t, m.Access(0, 'R'))
	assert.Equal(t, 1, m.VM().ResidentCount())
}

func TestManager_FreeBySmartValue(t *testing.T) {
	m := New(config.Builtin(), testLogger())
	m.Init(1024)
	off, err := m.Malloc(32)
	require.NoError(t, err)

	require.NoError(t, m.Free(int64(off)))
}

func TestManager_ReInitPreservesActiveStrategy(t *testing.T) {
	m := New(config.Builtin(), testLogger())
	m.Init(1024)
	require.NoError(t, m.SetStrategy(allocator.WorstFit))

	m.Init(2048)
	assert.Equal(t, 2048, int(m.PoolSize()))
	assert.Equal(t, allocator.WorstFit, m.Allocator().Strategy())
}
