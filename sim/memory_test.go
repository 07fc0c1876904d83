package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAllocator_FirstFit(t *testing.T) {
	// GIVEN 100 units with [0,30) freed after two allocations
	m := NewMemoryAllocator(100)
	a, err := m.Allocate(30)
	require.NoError(t, err)
	b, err := m.Allocate(20)
	require.NoError(t, err)
	assert.Equal(t, 0, a)
	assert.Equal(t, 30, b)
	require.NoError(t, m.Free(30, 0))
	assert.Equal(t, []Interval{{0, 30}, {50, 50}}, m.FreeIntervals())

	// WHEN 40 units are requested
	c, err := m.Allocate(40)

	// THEN the first interval that fits is used, not the first interval
	require.NoError(t, err)
	assert.Equal(t, 50, c)
	assert.Equal(t, []Interval{{0, 30}, {90, 10}}, m.FreeIntervals())
	assert.Equal(t, 60, m.Used())
	assert.Equal(t, 30, m.LargestFree())
}

func TestMemoryAllocator_Allocate_Errors(t *testing.T) {
	m := NewMemoryAllocator(64)

	_, err := m.Allocate(0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// fragmented: 32 free in total but no 32-unit hole
	for range 4 {
		_, err := m.Allocate(16)
		require.NoError(t, err)
	}
	require.NoError(t, m.Free(16, 0))
	require.NoError(t, m.Free(16, 32))
	_, err = m.Allocate(32)
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, 32, m.FreeTotal())
}

func TestMemoryAllocator_Free_RejectsInvalidRanges(t *testing.T) {
	m := NewMemoryAllocator(64)
	_, err := m.Allocate(32)
	require.NoError(t, err)

	tests := []struct {
		name        string
		size, start int
	}{
		{"zero size", 0, 0},
		{"negative start", 8, -1},
		{"past the end", 8, 60},
		{"overlaps free space", 8, 28},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, m.Free(tt.size, tt.start), ErrInvalidFree)
		})
	}
	assert.Equal(t, []Interval{{32, 32}}, m.FreeIntervals())
}

func TestMemoryAllocator_FreeThenAllocate_RoundTrip(t *testing.T) {
	// GIVEN memory fully allocated in four blocks, with the third freed
	m := NewMemoryAllocator(100)
	for range 4 {
		_, err := m.Allocate(25)
		require.NoError(t, err)
	}
	require.NoError(t, m.Free(25, 50))
	before := m.FreeIntervals()

	// WHEN the first block is freed and the same size requested again
	require.NoError(t, m.Free(25, 0))
	start, err := m.Allocate(25)

	// THEN the freed start is returned and the free list is as before
	require.NoError(t, err)
	assert.Equal(t, 0, start)
	assert.Equal(t, before, m.FreeIntervals())
}

func TestMemoryAllocator_Free_CoalescesBothNeighbours(t *testing.T) {
	m := NewMemoryAllocator(90)
	for range 3 {
		_, err := m.Allocate(30)
		require.NoError(t, err)
	}

	require.NoError(t, m.Free(30, 0))
	require.NoError(t, m.Free(30, 60))
	assert.Len(t, m.FreeIntervals(), 2)

	// the middle block touches both free neighbours
	require.NoError(t, m.Free(30, 30))
	assert.Equal(t, []Interval{{0, 90}}, m.FreeIntervals())
}

func TestMemoryAllocator_RandomSequence_StaysCoalesced(t *testing.T) {
	const total = 1024
	rng := rand.New(rand.NewSource(11))
	m := NewMemoryAllocator(total)
	held := map[int]int{} // start -> size

	checkInvariants := func() {
		t.Helper()
		free := m.FreeIntervals()
		used := 0
		for _, size := range held {
			used += size
		}
		assert.Equal(t, total, m.FreeTotal()+used)
		for i := 1; i < len(free); i++ {
			// sorted, disjoint and never touching
			require.Less(t, free[i-1].End(), free[i].Start)
		}
	}

	for range 2000 {
		if len(held) > 0 && rng.Intn(2) == 0 {
			for start, size := range held {
				require.NoError(t, m.Free(size, start))
				delete(held, start)
				break
			}
		} else {
			size := 1 + rng.Intn(96)
			if start, err := m.Allocate(size); err == nil {
				held[start] = size
			} else {
				require.ErrorIs(t, err, ErrAllocationFailed)
			}
		}
		checkInvariants()
	}

	for start, size := range held {
		require.NoError(t, m.Free(size, start))
	}
	assert.Equal(t, []Interval{{0, total}}, m.FreeIntervals())
}

func TestNewMemoryAllocator_NonPositivePanics(t *testing.T) {
	assert.Panics(t, func() { NewMemoryAllocator(0) })
}
