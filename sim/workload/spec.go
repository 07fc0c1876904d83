package workload

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkloadSpec describes the jobs submitted at the start of a run:
// an explicit list followed by Random.Count generated jobs.
type WorkloadSpec struct {
	Seed   int64      `yaml:"seed"`
	Jobs   []JobSpec  `yaml:"jobs"`
	Random RandomSpec `yaml:"random"`
}

// JobSpec is one explicit job. Zero fields take the engine defaults.
type JobSpec struct {
	Name           string  `yaml:"name"`
	Priority       float64 `yaml:"priority"`
	RequiredTime   int     `yaml:"required_time"`
	RequiredMemory int     `yaml:"required_memory"`
}

// RandomSpec bounds the uniformly drawn fields of generated jobs. Ranges are inclusive.
type RandomSpec struct {
	Count    int      `yaml:"count"`
	Priority IntRange `yaml:"priority"`
	Time     IntRange `yaml:"required_time"`
	Memory   IntRange `yaml:"required_memory"`
}

// IntRange is an inclusive [Min, Max] range.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DefaultRandomSpec returns the classic generator bounds: priority 1..7,
// time 200..1000 and memory 16..256.
func DefaultRandomSpec(count int) RandomSpec {
	return RandomSpec{
		Count:    count,
		Priority: IntRange{Min: 1, Max: 7},
		Time:     IntRange{Min: 200, Max: 1000},
		Memory:   IntRange{Min: 16, Max: 256},
	}
}

// LoadWorkloadSpec reads and parses a YAML workload specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// Random bounds absent from the file keep their DefaultRandomSpec values.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	spec := WorkloadSpec{Random: DefaultRandomSpec(0)}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks counts and ranges. Job field values are checked at submission.
func (s *WorkloadSpec) Validate() error {
	if s.Random.Count < 0 {
		return fmt.Errorf("random.count must be non-negative, got %d", s.Random.Count)
	}
	if len(s.Jobs) == 0 && s.Random.Count == 0 {
		return fmt.Errorf("workload has no jobs: set jobs or random.count")
	}
	if s.Random.Count == 0 {
		return nil
	}
	for _, r := range []struct {
		name string
		rng  IntRange
	}{
		{"priority", s.Random.Priority},
		{"required_time", s.Random.Time},
		{"required_memory", s.Random.Memory},
	} {
		if r.rng.Min <= 0 || r.rng.Max < r.rng.Min {
			return fmt.Errorf("random.%s: need 0 < min <= max, got [%d, %d]", r.name, r.rng.Min, r.rng.Max)
		}
	}
	return nil
}
