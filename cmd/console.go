package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pcb-sim/pcb-sim/sim"
	"github.com/pcb-sim/pcb-sim/sim/workload"
)

const consoleHelp = `commands:
  add [name] [priority] [time] [memory]   submit a job; blank or "-" fields take defaults
  gen [n]                                 submit n random jobs (default 1)
  suspend <pid>                           move a ready job to the suspend pool
  resume <pid>                            move a suspended job back to the ready pool
  cap <n>                                 set the ready pool capacity
  show                                    print every pool
  mem                                     print the free memory list
  metrics                                 print the metrics report
  help                                    print this help
  quit                                    stop the scheduler and exit`

// newConsoleCmd builds `console`: an interactive control loop on stdin while
// both scheduler loops run in the background.
func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Control a running scheduler from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags())
			if err != nil {
				return err
			}
			seed := resolveSeed(cmd.Flags())
			s, _, err := buildSystem(cfg, seed, "")
			if err != nil {
				return err
			}
			rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
			gen := workload.NewGenerator(rng.ForSubsystem(sim.SubsystemWorkload), workload.DefaultRandomSpec(0))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if err := s.Start(ctx); err != nil {
				return err
			}
			defer func() {
				s.Stop()
				s.Wait()
			}()
			return runConsole(s, gen, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runConsole reads one command per line until quit or end of input.
// Command errors are reported on out and never end the session.
func runConsole(s *sim.System, gen *workload.Generator, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, consoleHelp)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := execConsoleCommand(s, gen, fields, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			logrus.Debugf("console command %q: %v", fields[0], err)
		}
	}
}

func execConsoleCommand(s *sim.System, gen *workload.Generator, fields []string, out io.Writer) error {
	args := fields[1:]
	switch fields[0] {
	case "add":
		raw := sim.RawJobRequest{
			Name:           argAt(args, 0),
			Priority:       argAt(args, 1),
			RequiredTime:   argAt(args, 2),
			RequiredMemory: argAt(args, 3),
		}
		pid, err := s.SubmitRaw(raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "submitted pid %d\n", pid)
	case "gen":
		n := 1
		if len(args) > 0 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil || n <= 0 {
				return fmt.Errorf("gen: count must be a positive integer, got %q", args[0])
			}
		}
		for _, job := range gen.Generate(n) {
			pid, err := s.Submit(job)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "submitted pid %d (%s)\n", pid, job.Name)
		}
	case "suspend", "resume":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <pid>", fields[0])
		}
		pid, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%s: pid must be an integer, got %q", fields[0], args[0])
		}
		if fields[0] == "suspend" {
			if err := s.Suspend(pid); err != nil {
				return err
			}
			fmt.Fprintf(out, "suspended pid %d\n", pid)
			return nil
		}
		if err := s.Resume(pid); err != nil {
			return err
		}
		fmt.Fprintf(out, "resumed pid %d\n", pid)
	case "cap":
		if len(args) != 1 {
			return fmt.Errorf("usage: cap <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("cap: capacity must be an integer, got %q", args[0])
		}
		if err := s.SetCapacity(n); err != nil {
			return err
		}
		fmt.Fprintf(out, "capacity %d\n", n)
	case "show":
		printPools(out, s)
	case "mem":
		fmt.Fprintf(out, "<free memory %d/%d> %v\n", s.Memory.FreeTotal(), s.Memory.Total(), s.Memory.FreeIntervals())
	case "metrics":
		s.Metrics.Print(out)
	case "help":
		fmt.Fprintln(out, consoleHelp)
	default:
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	return nil
}

// argAt returns args[i], or "" when absent or "-".
func argAt(args []string, i int) string {
	if i >= len(args) || args[i] == "-" {
		return ""
	}
	return args[i]
}
