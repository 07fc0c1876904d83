package workload

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcb-sim/pcb-sim/sim"
)

func TestGenerator_Next_StaysWithinBounds(t *testing.T) {
	// GIVEN the default random bounds
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(7)).ForSubsystem(sim.SubsystemWorkload)
	g := NewGenerator(rng, DefaultRandomSpec(0))
	namePattern := regexp.MustCompile(`^[A-Z][a-z]+[0-9]{1,2}$`)

	// WHEN many jobs are drawn
	for _, job := range g.Generate(500) {
		// THEN every field is inside its inclusive range
		assert.GreaterOrEqual(t, job.Priority, 1.0)
		assert.LessOrEqual(t, job.Priority, 7.0)
		assert.GreaterOrEqual(t, job.RequiredTime, 200)
		assert.LessOrEqual(t, job.RequiredTime, 1000)
		assert.GreaterOrEqual(t, job.RequiredMemory, 16)
		assert.LessOrEqual(t, job.RequiredMemory, 256)
		assert.Regexp(t, namePattern, job.Name)
	}
}

func TestGenerateJobs_SameSeed_SameJobs(t *testing.T) {
	spec := &WorkloadSpec{Seed: 42, Random: DefaultRandomSpec(20)}

	a := GenerateJobs(spec)
	b := GenerateJobs(spec)

	require.Len(t, a, 20)
	assert.Equal(t, a, b)
}

func TestGenerateJobs_ExplicitJobsComeFirst(t *testing.T) {
	// GIVEN two explicit jobs and three random ones
	spec := &WorkloadSpec{
		Seed:   1,
		Jobs:   []JobSpec{{Name: "editor", Priority: 2}, {Name: "compiler", RequiredTime: 400}},
		Random: DefaultRandomSpec(3),
	}

	// WHEN the spec is expanded
	jobs := GenerateJobs(spec)

	// THEN explicit jobs keep file order and zero fields for defaults
	require.Len(t, jobs, 5)
	assert.Equal(t, sim.JobRequest{Name: "editor", Priority: 2}, jobs[0])
	assert.Equal(t, sim.JobRequest{Name: "compiler", RequiredTime: 400}, jobs[1])
}

func TestLoadWorkloadSpec(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
		return p
	}

	t.Run("partial random keeps default bounds", func(t *testing.T) {
		spec, err := LoadWorkloadSpec(write("ok.yaml", "seed: 3\nrandom:\n  count: 4\n  required_memory: {min: 8, max: 8}\n"))
		require.NoError(t, err)
		assert.Equal(t, int64(3), spec.Seed)
		assert.Equal(t, 4, spec.Random.Count)
		assert.Equal(t, IntRange{Min: 8, Max: 8}, spec.Random.Memory)
		assert.Equal(t, IntRange{Min: 1, Max: 7}, spec.Random.Priority)
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		_, err := LoadWorkloadSpec(write("typo.yaml", "jobs:\n  - name: a\n    prio: 3\n"))
		assert.Error(t, err)
	})

	t.Run("empty workload rejected", func(t *testing.T) {
		_, err := LoadWorkloadSpec(write("empty.yaml", "seed: 1\n"))
		assert.Error(t, err)
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := LoadWorkloadSpec(write("bad.yaml", "random:\n  count: 1\n  required_time: {min: 10, max: 5}\n"))
		assert.Error(t, err)
	})
}
