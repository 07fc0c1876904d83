package cmd

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/pcb-sim/pcb-sim/sim"
)

// addConfigFlags registers the flags that override sim.Config fields.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML engine configuration file (fields absent from it keep their defaults)")
	fs.Int64("seed", 0, "Seed for random jobs and PIDs (default: time based)")
	fs.Int("capacity", 0, "Ready pool capacity")
	fs.Int("memory", 0, "Total simulated memory units")
	fs.Int("quantum", 0, "Work units charged per dispatch")
	fs.Duration("processing-delay", 0, "Time a dispatched job holds the CPU")
	fs.Bool("strict", false, "Reject invalid job fields instead of substituting defaults")
}

// resolveConfig loads --config over the defaults and applies the flags the
// user actually set. Unset flags never overwrite file values.
func resolveConfig(fs *pflag.FlagSet) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if path, _ := fs.GetString("config"); path != "" {
		loaded, err := sim.LoadConfig(path)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = *loaded
	}

	if fs.Changed("capacity") {
		cfg.ReadyCapacity, _ = fs.GetInt("capacity")
	}
	if fs.Changed("memory") {
		cfg.TotalMemory, _ = fs.GetInt("memory")
	}
	if fs.Changed("quantum") {
		cfg.Quantum, _ = fs.GetInt("quantum")
	}
	if fs.Changed("processing-delay") {
		cfg.ProcessingDelay, _ = fs.GetDuration("processing-delay")
	}
	if fs.Changed("strict") {
		cfg.StrictInput, _ = fs.GetBool("strict")
	}
	return cfg, cfg.Validate()
}

// resolveSeed returns --seed when set, otherwise a time-based seed.
func resolveSeed(fs *pflag.FlagSet) int64 {
	if fs.Changed("seed") {
		seed, _ := fs.GetInt64("seed")
		return seed
	}
	return time.Now().UnixNano()
}
