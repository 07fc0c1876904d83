// Implements the Pool, a mutex-guarded ordered collection of process records.
// Every pool kind shares this type; JobPool and ReadyPool add their own operations.

package sim

import (
	"fmt"
	"strings"
	"sync"
)

// PoolKind is the closed set of pools a record can live in.
// Each kind carries its observer channel and the status it gives to entries.
type PoolKind int

const (
	PoolJob PoolKind = iota
	PoolReady
	PoolSuspend
	PoolTerminated
)

// Channel returns the observer channel name of the pool kind.
func (k PoolKind) Channel() string {
	switch k {
	case PoolJob:
		return "job_pool"
	case PoolReady:
		return "ready_pool"
	case PoolSuspend:
		return "suspend_pool"
	case PoolTerminated:
		return "terminated_pool"
	default:
		panic(fmt.Sprintf("unhandled pool kind %d", int(k)))
	}
}

// EntryStatus returns the status a record takes when added to the pool kind.
func (k PoolKind) EntryStatus() ProcessStatus {
	switch k {
	case PoolJob:
		return StatusNew
	case PoolReady:
		return StatusReady
	case PoolSuspend:
		return StatusSuspended
	case PoolTerminated:
		return StatusTerminated
	default:
		panic(fmt.Sprintf("unhandled pool kind %d", int(k)))
	}
}

func (k PoolKind) String() string {
	return k.Channel()
}

// Pool is an ordered collection of process records guarded by its own lock.
// Records are kept in insertion order; ReadyPool re-sorts its slice on selection.
type Pool struct {
	kind     PoolKind
	observer Observer

	mu      sync.Mutex
	records []*ProcessRecord
}

// NewPool creates an empty pool of the given kind. A nil observer is replaced by NopObserver.
func NewPool(kind PoolKind, observer Observer) *Pool {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Pool{kind: kind, observer: observer}
}

// Kind returns the pool kind.
func (p *Pool) Kind() PoolKind {
	return p.kind
}

// Add appends rec at the tail, sets its status for this pool and notifies the observer.
func (p *Pool) Add(rec *ProcessRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addLocked(rec)
}

// Remove takes the record with the given pid out of the pool.
// Returns (nil, false) when absent; absence is not an error.
func (p *Pool) Remove(pid int) (*ProcessRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removeLocked(pid)
}

// Lookup returns the record with the given pid without removing it. No notification.
func (p *Pool) Lookup(pid int) *ProcessRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, rec := p.indexLocked(pid)
	return rec
}

// Size returns the number of records in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

// Snapshot returns copies of all records in pool order.
// The copies are safe to read after the lock is released.
func (p *Pool) Snapshot() []ProcessRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ProcessRecord, len(p.records))
	for i, rec := range p.records {
		out[i] = *rec
	}
	return out
}

func (p *Pool) String() string {
	snap := p.Snapshot()
	var sb strings.Builder
	fmt.Fprintf(&sb, "<%s (%d)>\n", p.kind, len(snap))
	for _, rec := range snap {
		sb.WriteString(rec.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// addLocked appends rec; caller holds p.mu.
func (p *Pool) addLocked(rec *ProcessRecord) {
	p.records = append(p.records, rec)
	rec.Status = p.kind.EntryStatus()
	p.observer.PoolChanged(p.kind.Channel(), rec, OpAppend)
}

// removeLocked removes the record with pid; caller holds p.mu.
func (p *Pool) removeLocked(pid int) (*ProcessRecord, bool) {
	i, rec := p.indexLocked(pid)
	if rec == nil {
		return nil, false
	}
	p.records = append(p.records[:i], p.records[i+1:]...)
	p.observer.PoolChanged(p.kind.Channel(), rec, OpRemove)
	return rec, true
}

// indexLocked finds pid; caller holds p.mu.
func (p *Pool) indexLocked(pid int) (int, *ProcessRecord) {
	for i, rec := range p.records {
		if rec.PID == pid {
			return i, rec
		}
	}
	return -1, nil
}

// editLocked notifies an in-place edit of rec's field; caller holds p.mu.
func (p *Pool) editLocked(rec *ProcessRecord, field Field) {
	p.observer.FieldEdited(p.kind.Channel(), rec.PID, field, rec.FieldValue(field))
}
