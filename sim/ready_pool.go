// Implements the ReadyPool, the set of admitted jobs eligible for dispatch.
// Selection, aging, quantum charging, termination and suspension all happen
// under the ready pool's lock.

package sim

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// ReadyPool holds admitted jobs. Jobs parked in the suspend pool keep counting
// against the capacity until they are resumed.
//
// Lock order: ready → suspend → terminated; the allocator lock is innermost.
type ReadyPool struct {
	*Pool

	mode              string
	priorityMax       float64
	priorityIncrement float64
	agingTable        []float64

	capacity  int // guarded by Pool.mu
	suspended int // guarded by Pool.mu

	suspendPool    *Pool
	terminatedPool *Pool
	memory         *MemoryAllocator
}

// NewReadyPool creates an empty ready pool that suspends into suspendPool,
// terminates into terminatedPool and frees memory through memory.
// Panics on an unknown scheduling mode.
func NewReadyPool(cfg *Config, memory *MemoryAllocator, suspendPool, terminatedPool *Pool, observer Observer) *ReadyPool {
	if !ValidSchedulingModes[cfg.SchedulingMode] {
		panic(fmt.Sprintf("unknown scheduling mode %q", cfg.SchedulingMode))
	}
	return &ReadyPool{
		Pool:              NewPool(PoolReady, observer),
		mode:              "priority",
		priorityMax:       cfg.PriorityMax,
		priorityIncrement: cfg.PriorityIncrement,
		agingTable:        append([]float64(nil), cfg.AgingTable...),
		capacity:          cfg.ReadyCapacity,
		suspendPool:       suspendPool,
		terminatedPool:    terminatedPool,
		memory:            memory,
	}
}

// Mode returns the scheduling mode.
func (r *ReadyPool) Mode() string {
	return r.mode
}

// SelectForRun sorts the pool by ascending priority and returns the head
// without removing it, or nil when the pool is empty.
// The sort is stable: among equal priorities the earliest inserted wins.
func (r *ReadyPool) SelectForRun() *ProcessRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectLocked()
}

func (r *ReadyPool) selectLocked() *ProcessRecord {
	if len(r.records) == 0 {
		return nil
	}
	sort.SliceStable(r.records, func(i, j int) bool {
		return r.records[i].Priority < r.records[j].Priority
	})
	return r.records[0]
}

// BeginQuantum selects the best job, marks it running and applies aging and
// promotion, atomically with respect to other ready pool operations.
// Returns nil when there is nothing to run.
func (r *ReadyPool) BeginQuantum() *ProcessRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.selectLocked()
	if rec == nil {
		return nil
	}
	rec.Status = StatusRunning
	rec.Dispatches++
	r.editLocked(rec, FieldStatus)
	r.agingLocked(rec.PID)
	return rec
}

// ApplyAgingAndPromote resets the age of the running job and makes it less urgent,
// and ages every other job so long waiters eventually overtake recent runners.
func (r *ReadyPool) ApplyAgingAndPromote(runningPID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, rec := r.indexLocked(runningPID); rec == nil {
		return fmt.Errorf("aging pid %d: %w", runningPID, ErrNotFound)
	}
	r.agingLocked(runningPID)
	return nil
}

func (r *ReadyPool) agingLocked(runningPID int) {
	maxAge := len(r.agingTable) - 1
	for _, rec := range r.records {
		if rec.PID == runningPID {
			if rec.Age != 0 {
				rec.Age = 0
				r.editLocked(rec, FieldAge)
			}
			if rec.Priority < r.priorityMax {
				rec.Priority = min(rec.Priority+r.priorityIncrement, r.priorityMax)
				r.editLocked(rec, FieldPriority)
			}
			continue
		}

		if rec.Age < maxAge {
			rec.Age++
			r.editLocked(rec, FieldAge)
		}
		// step is indexed by the age after this tick
		step := r.agingTable[min(rec.Age, maxAge)]
		if step > 0 && rec.Priority-step >= 0 {
			rec.Priority -= step
			r.editLocked(rec, FieldPriority)
		}
	}
}

// ConsumeQuantum charges one quantum to rec and returns whether it terminated.
// A job with less than a quantum left finishes immediately. On termination the
// job leaves the pool, its memory is freed and it moves to the terminated pool;
// if the pool drains, observers receive Idle.
//
// If rec was suspended while holding the CPU it is no longer in this pool:
// the charge is discarded and ErrNotFound is returned.
func (r *ReadyPool) ConsumeQuantum(rec *ProcessRecord, quantum int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.indexLocked(rec.PID); found == nil {
		return false, fmt.Errorf("charging pid %d: %w", rec.PID, ErrNotFound)
	}

	if rec.RemainingTime >= quantum {
		rec.RemainingTime -= quantum
	} else {
		// Required time of this job is less than the quantum
		rec.RemainingTime = 0
	}
	rec.Status = StatusReady
	r.editLocked(rec, FieldRemainingTime)
	r.editLocked(rec, FieldStatus)

	if rec.RemainingTime > 0 {
		return false, nil
	}

	r.removeLocked(rec.PID)
	if rec.HasAllocation() {
		if err := r.memory.Free(rec.RequiredMemory, rec.MemoryStart); err != nil {
			logrus.Errorf("freeing memory of pid %d: %v", rec.PID, err)
		}
		rec.MemoryStart = NoAllocation
	}
	rec.FinishedAt = time.Now()
	r.terminatedPool.Add(rec)

	if len(r.records) == 0 {
		r.observer.Idle(r.kind.Channel())
	}
	return true, nil
}

// Admit adds rec, which already holds [start, start+RequiredMemory), to the
// pool and notifies the memory edit. Returns false without touching rec when
// the pool has no free slot; the caller then still owns the allocation.
func (r *ReadyPool) Admit(rec *ProcessRecord, start int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) >= r.capacity-r.suspended {
		return false
	}
	rec.MemoryStart = start
	rec.AdmittedAt = time.Now()
	r.addLocked(rec)
	r.editLocked(rec, FieldMemoryStart)
	return true
}

// AvailableSlots returns capacity minus suspended jobs: the number of jobs
// the long-term scheduler may keep in the ready pool.
func (r *ReadyPool) AvailableSlots() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capacity - r.suspended
}

// Capacity returns the configured capacity.
func (r *ReadyPool) Capacity() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capacity
}

// SetCapacity changes the capacity at runtime. Jobs already admitted stay
// even if the new capacity is smaller.
func (r *ReadyPool) SetCapacity(n int) error {
	if n < 0 {
		return fmt.Errorf("capacity %d: %w", n, ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capacity = n
	return nil
}

// Suspended returns how many jobs are parked in the suspend pool.
func (r *ReadyPool) Suspended() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suspended
}

// Suspend moves the job with pid from the ready pool to the suspend pool.
// The job keeps its memory and keeps counting against the capacity.
func (r *ReadyPool) Suspend(pid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.removeLocked(pid)
	if !ok {
		return fmt.Errorf("suspend pid %d: %w", pid, ErrNotFound)
	}
	r.suspended++
	r.suspendPool.Add(rec)
	return nil
}

// Resume moves the job with pid from the suspend pool back to the ready pool,
// where it is eligible for the next dispatch.
func (r *ReadyPool) Resume(pid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.suspendPool.Remove(pid)
	if !ok {
		return fmt.Errorf("resume pid %d: %w", pid, ErrNotFound)
	}
	r.suspended--
	r.addLocked(rec)
	return nil
}
