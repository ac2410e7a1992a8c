package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_MatchesDocumentedDefaults(t *testing.T) {
	d := Builtin()
	assert.Equal(t, uint64(64), d.L1.Size)
	assert.Equal(t, uint64(8), d.L1.BlockSize)
	assert.Equal(t, uint64(1), d.L1.Associativity)
	assert.Equal(t, uint64(1024), d.L3.Size)
	assert.Equal(t, uint64(8), d.L3.Associativity)
}

func TestLoad_EmptyPathReturnsBuiltin(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Builtin(), d)
}

func TestLoad_OverlaysJSONOntoBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memsim.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"l1":{"size":128,"block_size":16,"associativity":2},"default_vm_latency_ms":5}`), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(128), d.L1.Size)
	assert.Equal(t, uint64(16), d.L1.BlockSize)
	assert.Equal(t, 5, d.DefaultVMLatencyMs)
	// Levels not present in the override keep their builtin values.
	assert.Equal(t, Builtin().L2, d.L2)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedJSONErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
