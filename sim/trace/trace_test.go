package trace

import (
	"sync"
	"testing"
)

func TestSimulationTrace_RecordPool_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for pool events
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelPools})

	// WHEN a pool record is recorded
	st.RecordPool(PoolRecord{Channel: "job_pool", PID: 7, Name: "Alpha12", Op: "append"})

	// THEN the trace contains one pool record with a sequence number
	pools := st.Pools()
	if len(pools) != 1 {
		t.Fatalf("expected 1 pool record, got %d", len(pools))
	}
	if pools[0].PID != 7 || pools[0].Channel != "job_pool" {
		t.Errorf("unexpected record %+v", pools[0])
	}
	if pools[0].Seq != 1 {
		t.Errorf("expected seq 1, got %d", pools[0].Seq)
	}
}

func TestSimulationTrace_PoolsLevel_DropsEdits(t *testing.T) {
	// GIVEN a trace at pools level
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelPools})

	// WHEN an edit and an idle are recorded
	st.RecordEdit(EditRecord{Channel: "ready_pool", PID: 1, Field: 3, Value: "1.30"})
	st.RecordIdle(IdleRecord{Channel: "ready_pool"})

	// THEN only the idle is kept
	if len(st.Edits()) != 0 {
		t.Errorf("expected edits to be dropped, got %d", len(st.Edits()))
	}
	if len(st.Idles()) != 1 {
		t.Errorf("expected 1 idle, got %d", len(st.Idles()))
	}
}

func TestSimulationTrace_NoneLevel_RecordsNothing(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelNone})
	st.RecordPool(PoolRecord{PID: 1, Op: "append"})
	st.RecordEdit(EditRecord{PID: 1})
	st.RecordIdle(IdleRecord{})
	if len(st.Pools())+len(st.Edits())+len(st.Idles()) != 0 {
		t.Error("expected no records at level none")
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace capturing edits
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEdits})

	// WHEN mixed records are added
	st.RecordPool(PoolRecord{PID: 1, Op: "append"})
	st.RecordEdit(EditRecord{PID: 1, Field: 4, Value: "160"})
	st.RecordPool(PoolRecord{PID: 2, Op: "append"})

	// THEN sequence numbers are shared and increasing across kinds
	pools := st.Pools()
	edits := st.Edits()
	if pools[0].Seq != 1 || edits[0].Seq != 2 || pools[1].Seq != 3 {
		t.Errorf("unexpected sequence: pools=%+v edits=%+v", pools, edits)
	}
}

func TestSimulationTrace_ConcurrentRecording_NoLostRecords(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEdits})
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				st.RecordEdit(EditRecord{PID: g, Field: 4})
			}
		}(g)
	}
	wg.Wait()
	if got := len(st.Edits()); got != 400 {
		t.Errorf("expected 400 edits, got %d", got)
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"pools", true},
		{"edits", true},
		{"", true}, // empty defaults to none
		{"decisions", false},
		{"EDITS", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
