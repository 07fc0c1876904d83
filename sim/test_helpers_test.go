package sim

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// recordingObserver captures notifications as readable strings.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) PoolChanged(channel string, rec *ProcessRecord, op PoolOp) {
	r.add(fmt.Sprintf("%s %s %d", channel, op, rec.PID))
}

func (r *recordingObserver) FieldEdited(channel string, pid int, field Field, value string) {
	r.add(fmt.Sprintf("%s edit %d %s=%s", channel, pid, field, value))
}

func (r *recordingObserver) Idle(channel string) {
	r.add(channel + " idle")
}

func (r *recordingObserver) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// testConfig returns the default config with no delays, for deterministic ticks.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ProcessingDelay = 0
	cfg.ShortTermInterval = 0
	cfg.LongTermInterval = 0
	cfg.PIDMode = PIDModeSequential
	return cfg
}

// newTestReadyPool builds a ready pool with its own suspend/terminated pools and allocator.
func newTestReadyPool(t *testing.T, cfg Config, observer Observer) *ReadyPool {
	t.Helper()
	memory := NewMemoryAllocator(cfg.TotalMemory)
	return NewReadyPool(&cfg, memory, NewPool(PoolSuspend, observer), NewPool(PoolTerminated, observer), observer)
}

// admit allocates and admits a job with the given priority and remaining time.
func admit(t *testing.T, r *ReadyPool, pid int, priority float64, remaining int) *ProcessRecord {
	t.Helper()
	rec := NewProcessRecord(pid, fmt.Sprintf("job%d", pid), priority, remaining, 16)
	start, err := r.memory.Allocate(rec.RequiredMemory)
	if err != nil {
		t.Fatalf("allocate for pid %d: %v", pid, err)
	}
	if !r.Admit(rec, start) {
		t.Fatalf("admit pid %d: no slot", pid)
	}
	return rec
}

func pids(records []ProcessRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.PID
	}
	return out
}

// eventually polls cond until it holds or the timeout passes.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
