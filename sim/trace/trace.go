package trace

import "sync"

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelPools captures pool membership changes and idle notifications.
	TraceLevelPools TraceLevel = "pools"
	// TraceLevelEdits captures everything in TraceLevelPools plus field edits.
	TraceLevelEdits TraceLevel = "edits"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelPools: true,
	TraceLevelEdits: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects event records during a run.
// Safe for concurrent use: both scheduler loops and the control goroutine record into it.
type SimulationTrace struct {
	Config TraceConfig

	mu    sync.Mutex
	seq   int64
	pools []PoolRecord
	edits []EditRecord
	idles []IdleRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		pools:  make([]PoolRecord, 0),
		edits:  make([]EditRecord, 0),
		idles:  make([]IdleRecord, 0),
	}
}

func (st *SimulationTrace) enabled(min TraceLevel) bool {
	switch st.Config.Level {
	case TraceLevelEdits:
		return true
	case TraceLevelPools:
		return min == TraceLevelPools
	default:
		return false
	}
}

// RecordPool appends a pool membership record. Seq is assigned here.
func (st *SimulationTrace) RecordPool(record PoolRecord) {
	if !st.enabled(TraceLevelPools) {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.seq++
	record.Seq = st.seq
	st.pools = append(st.pools, record)
}

// RecordEdit appends a field edit record. Seq is assigned here.
func (st *SimulationTrace) RecordEdit(record EditRecord) {
	if !st.enabled(TraceLevelEdits) {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.seq++
	record.Seq = st.seq
	st.edits = append(st.edits, record)
}

// RecordIdle appends an idle record. Seq is assigned here.
func (st *SimulationTrace) RecordIdle(record IdleRecord) {
	if !st.enabled(TraceLevelPools) {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.seq++
	record.Seq = st.seq
	st.idles = append(st.idles, record)
}

// Pools returns a copy of the recorded pool changes in recording order.
func (st *SimulationTrace) Pools() []PoolRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]PoolRecord(nil), st.pools...)
}

// Edits returns a copy of the recorded field edits in recording order.
func (st *SimulationTrace) Edits() []EditRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]EditRecord(nil), st.edits...)
}

// Idles returns a copy of the recorded idle notifications.
func (st *SimulationTrace) Idles() []IdleRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]IdleRecord(nil), st.idles...)
}
