package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultLevelConfigs() (l1, l2, l3 LevelConfig) {
	return LevelConfig{Size: 64, BlockSize: 8, Associativity: 1},
		LevelConfig{Size: 256, BlockSize: 8, Associativity: 2},
		LevelConfig{Size: 1024, BlockSize: 64, Associativity: 8}
}

func TestHierarchy_MissCascadesThroughAllLevels(t *testing.T) {
	l1, l2, l3 := defaultLevelConfigs()
	h := New(l1, l2, l3, testLogger())

	h.Access(0, 'R')

	assert.Equal(t, uint64(1), h.L1.Misses())
	assert.Equal(t, uint64(1), h.L2.Misses())
	assert.Equal(t, uint64(1), h.L3.Misses())
	assert.Zero(t, h.L1.Hits())
}

func TestHierarchy_L1HitDoesNotTouchLowerLevels(t *testing.T) {
	l1, l2, l3 := defaultLevelConfigs()
	h := New(l1, l2, l3, testLogger())

	h.Access(0, 'R') // installs in all three
	h.Access(0, 'R') // L1 hit

	assert.Equal(t, uint64(1), h.L1.Hits())
	assert.Equal(t, uint64(1), h.L2.Misses())
	assert.Equal(t, uint64(1), h.L3.Misses())
}

func TestHierarchy_SetPolicyPropagatesToEveryLevel(t *testing.T) {
	l1, l2, l3 := defaultLevelConfigs()
	h := New(l1, l2, l3, testLogger())

	h.SetPolicy(LRU)
	for _, lvl := range h.Levels() {
		assert.Equal(t, LRU, lvl.policy)
	}
}

func TestHierarchy_WriteIsCaseInsensitive(t *testing.T) {
	l1, l2, l3 := defaultLevelConfigs()
	h := New(l1, l2, l3, testLogger())

	h.Access(0, 'w')
	assert.True(t, h.L1.sets[0].blocks[0].Dirty)
}
