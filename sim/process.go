// Defines the ProcessRecord (PCB) that models one simulated job.
// Tracks identity, scheduling state, remaining work and the memory it holds.

package sim

import (
	"fmt"
	"strconv"
	"time"
)

// ProcessStatus represents the lifecycle state of a process record.
type ProcessStatus string

const (
	StatusNew        ProcessStatus = "new"
	StatusReady      ProcessStatus = "ready"
	StatusRunning    ProcessStatus = "running"
	StatusSuspended  ProcessStatus = "suspended"
	StatusTerminated ProcessStatus = "terminated"
)

// NoAllocation marks a record that holds no memory.
const NoAllocation = -1

// ProcessRecord is the process control block of one simulated job.
//
// Fields other than PID, Name, RequiredTime and RequiredMemory are mutated
// only by the pool that currently owns the record, under that pool's lock.
type ProcessRecord struct {
	PID  int    // Unique for the lifetime of the run, never reused
	Name string // Display label

	Priority      float64       // Lower value is dispatched first; bounded above by Config.PriorityMax
	RequiredTime  int           // Work units requested at creation
	RemainingTime int           // Work units left; reaches exactly 0 on termination
	Status        ProcessStatus // new, ready, running, suspended, terminated
	Age           int           // Ticks waited since last dispatch, saturates at the aging table's last index

	RequiredMemory int // Memory units needed for admission
	MemoryStart    int // Start of the allocated interval, NoAllocation when none

	Dispatches  int       // Quanta received so far
	SubmittedAt time.Time // Enqueued into the job pool
	AdmittedAt  time.Time // Moved into the ready pool
	FinishedAt  time.Time // Moved into the terminated pool
}

// NewProcessRecord builds a record in the New state with no memory allocated.
func NewProcessRecord(pid int, name string, priority float64, requiredTime, requiredMemory int) *ProcessRecord {
	return &ProcessRecord{
		PID:            pid,
		Name:           name,
		Priority:       priority,
		RequiredTime:   requiredTime,
		RemainingTime:  requiredTime,
		Status:         StatusNew,
		RequiredMemory: requiredMemory,
		MemoryStart:    NoAllocation,
	}
}

// HasAllocation reports whether the record currently holds memory.
func (p *ProcessRecord) HasAllocation() bool {
	return p.MemoryStart != NoAllocation
}

// Turnaround returns the time from submission to termination, or 0 if the
// record has not terminated.
func (p *ProcessRecord) Turnaround() time.Duration {
	if p.FinishedAt.IsZero() || p.SubmittedAt.IsZero() {
		return 0
	}
	return p.FinishedAt.Sub(p.SubmittedAt)
}

// FieldValue renders one field the way observers receive it.
func (p *ProcessRecord) FieldValue(f Field) string {
	switch f {
	case FieldPID:
		return strconv.Itoa(p.PID)
	case FieldName:
		return p.Name
	case FieldStatus:
		return string(p.Status)
	case FieldPriority:
		return formatPriority(p.Priority)
	case FieldRemainingTime:
		return strconv.Itoa(p.RemainingTime)
	case FieldMemoryStart:
		if !p.HasAllocation() {
			return "-"
		}
		return strconv.Itoa(p.MemoryStart)
	case FieldAge:
		return strconv.Itoa(p.Age)
	default:
		return ""
	}
}

func formatPriority(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// This method returns a human-readable string representation of a ProcessRecord.
func (p ProcessRecord) String() string {
	return fmt.Sprintf("<PCB %d %s[%s]> priority:%s need_time:%d memory:%d@%s",
		p.PID, p.Name, p.Status, formatPriority(p.Priority), p.RemainingTime,
		p.RequiredMemory, p.FieldValue(FieldMemoryStart))
}
