package sim

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_OutputAndPrint(t *testing.T) {
	// GIVEN two completions and some admission activity
	m := NewMetrics()
	m.RecordAdmission(64)
	m.RecordAdmission(192)
	m.RecordAdmission(128)
	m.RecordAdmissionRetry()
	m.RecordDispatch()
	m.RecordDispatch()
	m.RecordCompletion(9, 300*time.Millisecond)
	m.RecordCompletion(4, 100*time.Millisecond)

	// WHEN a snapshot is taken
	out := m.Output("run-1")

	// THEN the peak is kept and jobs are sorted by pid
	assert.Equal(t, 2, out.Completed)
	assert.Equal(t, 3, out.Admissions)
	assert.Equal(t, 1, out.AdmissionRetries)
	assert.Equal(t, 192, out.PeakMemoryUsed)
	assert.InDelta(t, 200.0, out.AvgTurnaroundMs, 1e-9)
	assert.InDelta(t, 200.0, out.P50TurnaroundMs, 1e-9)
	assert.InDelta(t, 298.0, out.P99TurnaroundMs, 1e-9)
	assert.Equal(t, []JobTurnaround{{PID: 4, TurnaroundMs: 100}, {PID: 9, TurnaroundMs: 300}}, out.Jobs)

	var buf bytes.Buffer
	m.Print(&buf)
	assert.Contains(t, buf.String(), "=== Simulation Metrics ===")
	assert.Contains(t, buf.String(), "Completed Jobs       : 2")
	assert.Contains(t, buf.String(), "Average Turnaround   : 200.00 ms")
}

func TestMetrics_Output_AverageIsMeanOfJobTurnarounds(t *testing.T) {
	// GIVEN three completions with uneven turnarounds
	m := NewMetrics()
	m.RecordCompletion(1, 10*time.Millisecond)
	m.RecordCompletion(2, 20*time.Millisecond)
	m.RecordCompletion(3, 90*time.Millisecond)

	// WHEN a snapshot is taken
	out := m.Output("")

	// THEN the average equals the mean of the per-job entries
	ms := make([]float64, 0, len(out.Jobs))
	for _, j := range out.Jobs {
		ms = append(ms, j.TurnaroundMs)
	}
	assert.InDelta(t, 40.0, out.AvgTurnaroundMs, 1e-9)
	assert.InDelta(t, CalculateMean(ms), out.AvgTurnaroundMs, 1e-9)
	assert.Zero(t, NewMetrics().Output("").AvgTurnaroundMs)
}

func TestMetrics_Print_NoCompletionsOmitsAverage(t *testing.T) {
	var buf bytes.Buffer
	NewMetrics().Print(&buf)
	assert.NotContains(t, buf.String(), "Average Turnaround")
}

func TestMetrics_SaveResults_WritesJSON(t *testing.T) {
	m := NewMetrics()
	m.RecordCompletion(1, time.Second)
	path := filepath.Join(t.TempDir(), "metrics.json")

	require.NoError(t, m.SaveResults("run-9", 2*time.Second, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out MetricsOutput
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "run-9", out.RunID)
	assert.Equal(t, 1, out.Completed)
	assert.Equal(t, "2s", out.WallTime)
}
