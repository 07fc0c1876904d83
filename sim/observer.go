package sim

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pcb-sim/pcb-sim/sim/trace"
)

// PoolOp is the kind of pool membership change reported to observers.
type PoolOp string

const (
	OpAppend PoolOp = "append"
	OpRemove PoolOp = "remove"
)

// Field identifies a record column in FieldEdited notifications.
// Indices match the columns of the process tables rendered by front ends.
type Field int

const (
	FieldPID Field = iota
	FieldName
	FieldStatus
	FieldPriority
	FieldRemainingTime
	FieldMemoryStart
	FieldAge
)

var fieldNames = [...]string{"pid", "name", "status", "priority", "remaining_time", "memory_start", "age"}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// Observer receives notifications of state transitions in the engine.
//
// Pools invoke observers while holding their own lock, so implementations
// MUST NOT call back into pools, the allocator or the System.
type Observer interface {
	// PoolChanged reports a record appended to or removed from the pool
	// identified by channel.
	PoolChanged(channel string, rec *ProcessRecord, op PoolOp)
	// FieldEdited reports an in-place edit of a record that stays in its pool.
	FieldEdited(channel string, pid int, field Field, value string)
	// Idle reports that the ready pool drained after a termination.
	Idle(channel string)
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) PoolChanged(string, *ProcessRecord, PoolOp) {}
func (NopObserver) FieldEdited(string, int, Field, string)     {}
func (NopObserver) Idle(string)                                {}

// Observers fans notifications out to every member in order.
type Observers []Observer

func (o Observers) PoolChanged(channel string, rec *ProcessRecord, op PoolOp) {
	for _, ob := range o {
		ob.PoolChanged(channel, rec, op)
	}
}

func (o Observers) FieldEdited(channel string, pid int, field Field, value string) {
	for _, ob := range o {
		ob.FieldEdited(channel, pid, field, value)
	}
}

func (o Observers) Idle(channel string) {
	for _, ob := range o {
		ob.Idle(channel)
	}
}

// LogObserver writes every notification to logrus at debug level,
// and terminations at info level.
type LogObserver struct {
	RunID string
}

func (l LogObserver) PoolChanged(channel string, rec *ProcessRecord, op PoolOp) {
	entry := logrus.WithFields(logrus.Fields{
		"run":     l.RunID,
		"channel": channel,
		"pid":     rec.PID,
		"name":    rec.Name,
	})
	if channel == PoolTerminated.Channel() && op == OpAppend {
		entry.Infof("%s terminated", rec.Name)
		return
	}
	entry.Debugf("%s %s", op, rec)
}

func (l LogObserver) FieldEdited(channel string, pid int, field Field, value string) {
	logrus.WithFields(logrus.Fields{
		"run":     l.RunID,
		"channel": channel,
		"pid":     pid,
	}).Debugf("%s = %s", field, value)
}

func (l LogObserver) Idle(channel string) {
	logrus.WithFields(logrus.Fields{"run": l.RunID, "channel": channel}).Info("no process running")
}

// TraceObserver records notifications into a trace.SimulationTrace.
type TraceObserver struct {
	Trace *trace.SimulationTrace
	RunID string
}

// NewTraceObserver creates a TraceObserver for the given trace and run.
func NewTraceObserver(st *trace.SimulationTrace, runID string) *TraceObserver {
	return &TraceObserver{Trace: st, RunID: runID}
}

func (t *TraceObserver) PoolChanged(channel string, rec *ProcessRecord, op PoolOp) {
	t.Trace.RecordPool(trace.PoolRecord{
		RunID:   t.RunID,
		Channel: channel,
		PID:     rec.PID,
		Name:    rec.Name,
		Op:      string(op),
		At:      time.Now(),
	})
}

func (t *TraceObserver) FieldEdited(channel string, pid int, field Field, value string) {
	t.Trace.RecordEdit(trace.EditRecord{
		RunID:   t.RunID,
		Channel: channel,
		PID:     pid,
		Field:   int(field),
		Value:   value,
		At:      time.Now(),
	})
}

func (t *TraceObserver) Idle(channel string) {
	t.Trace.RecordIdle(trace.IdleRecord{RunID: t.RunID, Channel: channel, At: time.Now()})
}
