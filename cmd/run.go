package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pcb-sim/pcb-sim/sim"
	"github.com/pcb-sim/pcb-sim/sim/workload"
	"github.com/pcb-sim/pcb-sim/tracing"
)

const serviceVersion = "dev"

// newRunCmd builds `run`: submit a workload, run both loops, report.
func newRunCmd() *cobra.Command {
	var (
		numJobs      int
		workloadPath string
		duration     time.Duration
		traceLevel   string
		spanFile     string
		metricsPath  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler on a batch of jobs until they all terminate",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags())
			if err != nil {
				return err
			}
			seed := resolveSeed(cmd.Flags())

			jobs, err := loadJobs(workloadPath, numJobs, seed, cmd.Flags().Changed("seed"))
			if err != nil {
				return err
			}

			if spanFile != "" {
				if err := tracing.Init("pcb-sim", serviceVersion, spanFile); err != nil {
					return err
				}
				defer func() {
					if err := tracing.Shutdown(context.Background()); err != nil {
						logrus.Warnf("flushing spans: %v", err)
					}
				}()
			}

			s, st, err := buildSystem(cfg, seed, traceLevel)
			if err != nil {
				return err
			}
			logrus.Infof("Starting run %s with %d jobs, capacity=%d, memory=%d, quantum=%d",
				s.RunID, submitAll(s, jobs), cfg.ReadyCapacity, cfg.TotalMemory, cfg.Quantum)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			return simulate(ctx, s, st, cmd.OutOrStdout(), metricsPath)
		},
	}

	cmd.Flags().IntVar(&numJobs, "jobs", 10, "Number of random jobs (ignored with --workload)")
	cmd.Flags().StringVar(&workloadPath, "workload", "", "YAML workload file listing jobs and random job bounds")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long even if jobs remain (0 = until done)")
	cmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Event trace level: none, pools, edits")
	cmd.Flags().StringVar(&spanFile, "trace-file", "", "Write OpenTelemetry spans for scheduler ticks to this file")
	cmd.Flags().StringVar(&metricsPath, "metrics-out", "", "Write the metrics report as JSON to this file")
	return cmd
}

// loadJobs reads a workload file, or draws numJobs random jobs when path is empty.
// An explicit --seed overrides the file's seed.
func loadJobs(path string, numJobs int, seed int64, seedChanged bool) ([]sim.JobRequest, error) {
	spec := &workload.WorkloadSpec{Seed: seed, Random: workload.DefaultRandomSpec(numJobs)}
	if path != "" {
		loaded, err := workload.LoadWorkloadSpec(path)
		if err != nil {
			return nil, err
		}
		spec = loaded
		if seedChanged {
			spec.Seed = seed
		}
	} else if err := spec.Validate(); err != nil {
		return nil, err
	}
	return workload.GenerateJobs(spec), nil
}
