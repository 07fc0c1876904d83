package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pcb-sim/pcb-sim/sim/workload"
)

const (
	demoJobs     = 5
	demoCapacity = 3
)

// newDemoCmd builds `demo`: five random jobs through a ready pool of three.
func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run five random jobs through a ready pool of capacity three",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("capacity") {
				cfg.ReadyCapacity = demoCapacity
			}
			seed := resolveSeed(cmd.Flags())

			s, _, err := buildSystem(cfg, seed, "")
			if err != nil {
				return err
			}
			spec := &workload.WorkloadSpec{Seed: seed, Random: workload.DefaultRandomSpec(demoJobs)}
			submitAll(s, workload.GenerateJobs(spec))
			return simulate(cmd.Context(), s, nil, cmd.OutOrStdout(), "")
		},
	}
}
