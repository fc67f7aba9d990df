package rng

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Float(), b.Float(), "draw %d", i)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Float() == b.Float() {
			same++
		}
	}
	assert.Less(t, same, 5)
}

func TestFloatRange(t *testing.T) {
	r := New(7)
	for i := 0; i < 10000; i++ {
		f := r.Float()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
}

func TestIntInclusiveBounds(t *testing.T) {
	r := New(99)
	seen := map[int]bool{}
	for i := 0; i < 5000; i++ {
		v := r.Int(-2, 3)
		require.GreaterOrEqual(t, v, -2)
		require.LessOrEqual(t, v, 3)
		seen[v] = true
	}
	assert.Len(t, seen, 6)
	assert.Equal(t, 5, r.Int(5, 5))
}

func TestIntPanicsOnInvertedRange(t *testing.T) {
	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, ok := rec.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrInvalidRange))
	}()
	New(1).Int(3, 2)
}

func TestChanceEdges(t *testing.T) {
	r := New(5)
	before := r.State()
	for i := 0; i < 100; i++ {
		assert.False(t, r.Chance(0))
		assert.False(t, r.Chance(-1))
		assert.True(t, r.Chance(1))
		assert.True(t, r.Chance(2))
	}
	assert.Equal(t, before, r.State(), "edge probabilities must not consume draws")
}

func TestForActionIndependentOfTickStream(t *testing.T) {
	tick := ForTick(1337, 10)
	act := ForAction(1337, 10, 0)
	assert.NotEqual(t, tick.State(), act.State())
	assert.Equal(t, ForAction(1337, 10, 0).Float(), ForAction(1337, 10, 0).Float())
	assert.NotEqual(t, ForAction(1337, 10, 0).Float(), ForAction(1337, 10, 1).Float())
}
