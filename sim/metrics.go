// Tracks run-wide scheduling metrics such as:
//   - jobs completed and quanta dispatched
//   - admissions and admission retries caused by memory pressure
//   - turnaround time per job and peak memory in use

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Metrics aggregates statistics about a run for final reporting.
// Safe for concurrent use by both scheduler loops.
type Metrics struct {
	mu sync.Mutex

	Completed        int // Jobs moved to the terminated pool
	Dispatches       int // Quanta handed out by the short-term loop
	Admissions       int // Jobs moved from the job pool to the ready pool
	AdmissionRetries int // Jobs re-queued because no free interval fit
	PeakMemoryUsed   int // Max memory units allocated at once

	Turnarounds map[int]time.Duration // pid -> submission to termination
}

// NewMetrics creates a Metrics with initialized maps.
func NewMetrics() *Metrics {
	return &Metrics{Turnarounds: make(map[int]time.Duration)}
}

// RecordDispatch counts one quantum.
func (m *Metrics) RecordDispatch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dispatches++
}

// RecordAdmission counts one admission and tracks peak memory usage.
func (m *Metrics) RecordAdmission(memoryUsed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Admissions++
	m.PeakMemoryUsed = max(m.PeakMemoryUsed, memoryUsed)
}

// RecordAdmissionRetry counts one failed allocation.
func (m *Metrics) RecordAdmissionRetry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AdmissionRetries++
}

// RecordCompletion counts a terminated job and its turnaround time.
func (m *Metrics) RecordCompletion(pid int, turnaround time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Completed++
	m.Turnarounds[pid] = turnaround
}

// MetricsOutput is the JSON form of a metrics report.
type MetricsOutput struct {
	RunID            string          `json:"run_id"`
	Completed        int             `json:"completed_jobs"`
	Dispatches       int             `json:"dispatches"`
	Admissions       int             `json:"admissions"`
	AdmissionRetries int             `json:"admission_retries"`
	PeakMemoryUsed   int             `json:"peak_memory_used"`
	AvgTurnaroundMs  float64         `json:"avg_turnaround_ms"`
	P50TurnaroundMs  float64         `json:"p50_turnaround_ms"`
	P99TurnaroundMs  float64         `json:"p99_turnaround_ms"`
	Jobs             []JobTurnaround `json:"jobs,omitempty"`
	WallTime         string          `json:"wall_time,omitempty"`
}

// JobTurnaround is one job's entry in MetricsOutput.
type JobTurnaround struct {
	PID          int     `json:"pid"`
	TurnaroundMs float64 `json:"turnaround_ms"`
}

// Output returns a consistent snapshot of the metrics.
func (m *Metrics) Output(runID string) MetricsOutput {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := MetricsOutput{
		RunID:            runID,
		Completed:        m.Completed,
		Dispatches:       m.Dispatches,
		Admissions:       m.Admissions,
		AdmissionRetries: m.AdmissionRetries,
		PeakMemoryUsed:   m.PeakMemoryUsed,
	}
	for pid, d := range m.Turnarounds {
		out.Jobs = append(out.Jobs, JobTurnaround{PID: pid, TurnaroundMs: durationMs(d)})
	}
	sort.Slice(out.Jobs, func(i, j int) bool { return out.Jobs[i].PID < out.Jobs[j].PID })
	sorted := sortedTurnaroundsMs(out.Jobs)
	out.AvgTurnaroundMs = CalculateMean(sorted)
	out.P50TurnaroundMs = CalculatePercentile(sorted, 50)
	out.P99TurnaroundMs = CalculatePercentile(sorted, 99)
	return out
}

// Print writes the human-readable report.
func (m *Metrics) Print(w io.Writer) {
	out := m.Output("")
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Completed Jobs       : %d\n", out.Completed)
	fmt.Fprintf(w, "Dispatches           : %d\n", out.Dispatches)
	fmt.Fprintf(w, "Admissions           : %d\n", out.Admissions)
	fmt.Fprintf(w, "Admission Retries    : %d\n", out.AdmissionRetries)
	fmt.Fprintf(w, "Peak Memory Used     : %d units\n", out.PeakMemoryUsed)
	if out.Completed > 0 {
		fmt.Fprintf(w, "Average Turnaround   : %.2f ms\n", out.AvgTurnaroundMs)
		fmt.Fprintf(w, "P50 Turnaround       : %.2f ms\n", out.P50TurnaroundMs)
		fmt.Fprintf(w, "P99 Turnaround       : %.2f ms\n", out.P99TurnaroundMs)
	}
}

// SaveResults writes the JSON report to outputFilePath, or logs it when the path is empty.
func (m *Metrics) SaveResults(runID string, wallTime time.Duration, outputFilePath string) error {
	out := m.Output(runID)
	out.WallTime = wallTime.String()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}
	if outputFilePath == "" {
		logrus.Debugf("metrics: %s", data)
		return nil
	}
	if err := os.WriteFile(outputFilePath, data, 0644); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", outputFilePath, err)
	}
	logrus.Infof("Metrics written to: %s", outputFilePath)
	return nil
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
