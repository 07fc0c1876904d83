package sim

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// JobDefaults holds the values substituted for blank or invalid job fields.
type JobDefaults struct {
	Name           string  `yaml:"name"`
	Priority       float64 `yaml:"priority"`
	RequiredTime   int     `yaml:"required_time"`
	RequiredMemory int     `yaml:"required_memory"`
}

// Config groups every tunable of the engine. Loadable from a YAML file;
// fields absent from the file keep their DefaultConfig values.
type Config struct {
	SchedulingMode string `yaml:"scheduling_mode"` // only "priority" is defined

	Quantum           int           `yaml:"quantum"`             // work units charged per dispatch
	ProcessingDelay   time.Duration `yaml:"processing_delay"`    // time a dispatched job holds the CPU
	ShortTermInterval time.Duration `yaml:"short_term_interval"` // sleep between short-term ticks
	LongTermInterval  time.Duration `yaml:"long_term_interval"`  // sleep between long-term ticks

	PriorityMax       float64   `yaml:"priority_max"`       // upper bound of Priority
	PriorityIncrement float64   `yaml:"priority_increment"` // added to a job each time it runs
	AgingTable        []float64 `yaml:"aging_table"`        // priority step per waited tick, indexed by age

	TotalMemory   int `yaml:"total_memory"`   // size of the simulated address range
	ReadyCapacity int `yaml:"ready_capacity"` // max jobs in ready + suspend pools

	PIDMax  int    `yaml:"pid_max"`  // PIDs are issued from [1, PIDMax]
	PIDMode string `yaml:"pid_mode"` // "random" (default) or "sequential"

	StrictInput bool        `yaml:"strict_input"` // reject invalid job fields instead of substituting defaults
	Defaults    JobDefaults `yaml:"defaults"`
}

// DefaultAgingTable is the priority step applied to a waiting job, indexed by its age.
var DefaultAgingTable = []float64{0.1, 0.2, 0.3, 0.4, 0.7, 0.9, 1.0, 1.3, 1.5, 1.9, 2.3, 2.7, 3.0, 3.5, 3.8}

// DefaultConfig returns the classic simulator constants.
func DefaultConfig() Config {
	return Config{
		SchedulingMode:    "priority",
		Quantum:           40,
		ProcessingDelay:   100 * time.Millisecond,
		ShortTermInterval: 10 * time.Millisecond,
		LongTermInterval:  10 * time.Millisecond,
		PriorityMax:       10,
		PriorityIncrement: 0.3,
		AgingTable:        append([]float64(nil), DefaultAgingTable...),
		TotalMemory:       1024,
		ReadyCapacity:     5,
		PIDMax:            10000,
		PIDMode:           PIDModeRandom,
		StrictInput:       false,
		Defaults: JobDefaults{
			Name:           "process",
			Priority:       1,
			RequiredTime:   200,
			RequiredMemory: 64,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig.
// Uses strict field checking: unknown keys are errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidSchedulingModes is the set of recognized scheduling mode names.
var ValidSchedulingModes = map[string]bool{"": true, "priority": true}

// ValidPIDModes is the set of recognized PID issuance modes.
var ValidPIDModes = map[string]bool{"": true, PIDModeRandom: true, PIDModeSequential: true}

// Validate checks names and parameter ranges.
func (c *Config) Validate() error {
	if !ValidSchedulingModes[c.SchedulingMode] {
		return fmt.Errorf("unknown scheduling mode %q", c.SchedulingMode)
	}
	if !ValidPIDModes[c.PIDMode] {
		return fmt.Errorf("unknown pid mode %q", c.PIDMode)
	}
	if c.Quantum <= 0 {
		return fmt.Errorf("quantum must be positive, got %d", c.Quantum)
	}
	if c.ProcessingDelay < 0 || c.ShortTermInterval < 0 || c.LongTermInterval < 0 {
		return fmt.Errorf("delays must be non-negative")
	}
	if c.PriorityIncrement < 0 {
		return fmt.Errorf("priority_increment must be non-negative, got %f", c.PriorityIncrement)
	}
	if len(c.AgingTable) == 0 {
		return fmt.Errorf("aging_table must not be empty")
	}
	for i, step := range c.AgingTable {
		if step < 0 {
			return fmt.Errorf("aging_table[%d] must be non-negative, got %f", i, step)
		}
		if i > 0 && step < c.AgingTable[i-1] {
			return fmt.Errorf("aging_table must be non-decreasing: [%d]=%f < [%d]=%f", i, step, i-1, c.AgingTable[i-1])
		}
	}
	if c.TotalMemory <= 0 {
		return fmt.Errorf("total_memory must be positive, got %d", c.TotalMemory)
	}
	if c.ReadyCapacity < 0 {
		return fmt.Errorf("ready_capacity must be non-negative, got %d", c.ReadyCapacity)
	}
	if c.PIDMax <= 0 {
		return fmt.Errorf("pid_max must be positive, got %d", c.PIDMax)
	}
	if c.Defaults.Priority > c.PriorityMax {
		return fmt.Errorf("defaults.priority %f exceeds priority_max %f", c.Defaults.Priority, c.PriorityMax)
	}
	if c.Defaults.RequiredTime <= 0 || c.Defaults.RequiredMemory <= 0 {
		return fmt.Errorf("defaults.required_time and defaults.required_memory must be positive")
	}
	return nil
}

// MaxAge returns the largest value Age can take.
func (c *Config) MaxAge() int {
	return len(c.AgingTable) - 1
}
