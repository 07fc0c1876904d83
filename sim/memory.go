// sim/memory.go
package sim

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Interval is a contiguous run of free memory units [Start, Start+Length).
type Interval struct {
	Start  int
	Length int
}

// End returns the first address after the interval.
func (iv Interval) End() int {
	return iv.Start + iv.Length
}

// MemoryAllocator is a first-fit allocator over the address range [0, Total).
// The free list is kept sorted by address and maximally coalesced:
// no two intervals ever touch or overlap.
type MemoryAllocator struct {
	total int

	mu   sync.Mutex
	free []Interval // sorted by Start
}

// NewMemoryAllocator creates an allocator whose whole range is free.
func NewMemoryAllocator(total int) *MemoryAllocator {
	if total <= 0 {
		panic(fmt.Sprintf("NewMemoryAllocator: total must be positive, got %d", total))
	}
	return &MemoryAllocator{
		total: total,
		free:  []Interval{{Start: 0, Length: total}},
	}
}

// Allocate carves size units from the first free interval large enough to hold them
// and returns the start address. It never blocks or retries: when no interval fits
// it returns ErrAllocationFailed and the caller decides whether to try again later.
func (m *MemoryAllocator) Allocate(size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("allocate %d units: %w", size, ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.free {
		iv := &m.free[i]
		if iv.Length < size {
			continue
		}
		start := iv.Start
		iv.Start += size
		iv.Length -= size
		if iv.Length == 0 {
			m.free = append(m.free[:i], m.free[i+1:]...)
		}
		return start, nil
	}
	logrus.Debugf("Not enough contiguous memory to allocate %d units", size)
	return 0, fmt.Errorf("allocate %d units: %w", size, ErrAllocationFailed)
}

// Free returns [start, start+size) to the free list and merges every pair of
// touching intervals until none is left.
func (m *MemoryAllocator) Free(size, start int) error {
	if size <= 0 || start < 0 || start+size > m.total {
		return fmt.Errorf("free [%d,%d) of %d: %w", start, start+size, m.total, ErrInvalidFree)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	released := Interval{Start: start, Length: size}
	for _, iv := range m.free {
		if released.Start < iv.End() && iv.Start < released.End() {
			return fmt.Errorf("free [%d,%d) overlaps free [%d,%d): %w",
				released.Start, released.End(), iv.Start, iv.End(), ErrInvalidFree)
		}
	}

	// insert keeping address order
	i := sort.Search(len(m.free), func(i int) bool { return m.free[i].Start > start })
	m.free = append(m.free, Interval{})
	copy(m.free[i+1:], m.free[i:])
	m.free[i] = released

	m.coalesce()
	return nil
}

// coalesce merges touching intervals until no pair remains; caller holds m.mu.
func (m *MemoryAllocator) coalesce() {
	for merged := true; merged; {
		merged = false
		for i := 0; i+1 < len(m.free); i++ {
			// a=[0,10) b=[10,20) => [0,20)
			if m.free[i].End() == m.free[i+1].Start {
				m.free[i].Length += m.free[i+1].Length
				m.free = append(m.free[:i+1], m.free[i+2:]...)
				merged = true
				break
			}
		}
	}
}

// FreeIntervals returns a copy of the free list in address order.
func (m *MemoryAllocator) FreeIntervals() []Interval {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Interval(nil), m.free...)
}

// FreeTotal returns the number of free units, contiguous or not.
func (m *MemoryAllocator) FreeTotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, iv := range m.free {
		n += iv.Length
	}
	return n
}

// LargestFree returns the length of the largest free interval.
func (m *MemoryAllocator) LargestFree() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	largest := 0
	for _, iv := range m.free {
		largest = max(largest, iv.Length)
	}
	return largest
}

// Used returns the number of allocated units.
func (m *MemoryAllocator) Used() int {
	return m.total - m.FreeTotal()
}

// Total returns the size of the address range.
func (m *MemoryAllocator) Total() int {
	return m.total
}
