package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pcb-sim/pcb-sim/sim"
	"github.com/pcb-sim/pcb-sim/sim/trace"
)

// buildSystem wires a System with logging and, unless traceLevel is empty or
// "none", an in-memory event trace.
func buildSystem(cfg sim.Config, seed int64, traceLevel string) (*sim.System, *trace.SimulationTrace, error) {
	if !trace.IsValidTraceLevel(traceLevel) {
		return nil, nil, fmt.Errorf("unknown trace level %q; valid: none, pools, edits", traceLevel)
	}
	runID := uuid.NewString()
	observers := sim.Observers{sim.LogObserver{RunID: runID}}

	var st *trace.SimulationTrace
	if level := trace.TraceLevel(traceLevel); level != "" && level != trace.TraceLevelNone {
		st = trace.NewSimulationTrace(trace.TraceConfig{Level: level})
		observers = append(observers, sim.NewTraceObserver(st, runID))
	}

	s, err := sim.NewSystem(cfg, sim.NewPartitionedRNG(sim.NewSimulationKey(seed)), runID, observers)
	if err != nil {
		return nil, nil, err
	}
	return s, st, nil
}

// submitAll enqueues jobs, logging and skipping the ones that are rejected.
func submitAll(s *sim.System, jobs []sim.JobRequest) int {
	submitted := 0
	for _, job := range jobs {
		if _, err := s.Submit(job); err != nil {
			logrus.Warnf("skipping job %q: %v", job.Name, err)
			continue
		}
		submitted++
	}
	return submitted
}

// simulate runs both scheduler loops until every job terminates or ctx ends,
// then writes the pools and the metrics report to out.
func simulate(ctx context.Context, s *sim.System, st *trace.SimulationTrace, out io.Writer, metricsPath string) error {
	startTime := time.Now()
	if err := s.Start(ctx); err != nil {
		return err
	}
	waitErr := s.WaitDone(ctx, 10*time.Millisecond)
	s.Stop()
	s.Wait()
	elapsed := time.Since(startTime)

	if waitErr != nil {
		if !errors.Is(waitErr, context.DeadlineExceeded) && !errors.Is(waitErr, context.Canceled) {
			return waitErr
		}
		logrus.Warnf("stopped after %v with %d jobs waiting, %d ready, %d suspended",
			elapsed.Round(time.Millisecond), s.Jobs.Size(), s.Ready.Size(), s.SuspendPool.Size())
	} else {
		logrus.Info("Simulation complete.")
	}

	printPools(out, s)
	s.Metrics.Print(out)
	if st != nil {
		printTraceSummary(out, trace.Summarize(st, sim.PoolTerminated.Channel()))
	}
	return s.Metrics.SaveResults(s.RunID, elapsed, metricsPath)
}

// printPools writes every non-empty pool followed by the free memory list.
func printPools(out io.Writer, s *sim.System) {
	for _, p := range []fmt.Stringer{s.Jobs, s.Ready, s.SuspendPool, s.Terminated} {
		fmt.Fprint(out, p)
	}
	fmt.Fprintf(out, "<free memory %d/%d> %v\n", s.Memory.FreeTotal(), s.Memory.Total(), s.Memory.FreeIntervals())
}

func printTraceSummary(out io.Writer, summary *trace.TraceSummary) {
	fmt.Fprintln(out, "=== Trace Summary ===")
	fmt.Fprintf(out, "Total Events         : %d\n", summary.TotalEvents)
	fmt.Fprintf(out, "Field Edits          : %d\n", summary.Edits)
	fmt.Fprintf(out, "Idle Notifications   : %d\n", summary.IdleCount)
	fmt.Fprintf(out, "Unique Processes     : %d\n", summary.UniqueProcs)
	fmt.Fprintf(out, "Termination Order    : %v\n", summary.TerminatedPIDs)
}
