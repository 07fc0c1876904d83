package workload

import (
	"math/rand"
	"strconv"

	"github.com/pcb-sim/pcb-sim/sim"
)

var nameWords = []string{
	"Amber", "Badger", "Cedar", "Delta", "Ember", "Falcon", "Granite", "Harbor",
	"Indigo", "Juniper", "Kestrel", "Lumen", "Maple", "Nimbus", "Onyx", "Pepper",
	"Quartz", "Raven", "Sierra", "Tundra", "Umber", "Violet", "Willow", "Yarrow", "Zephyr",
}

// Generator draws random jobs. Not safe for concurrent use.
type Generator struct {
	rng  *rand.Rand
	spec RandomSpec
}

// NewGenerator creates a generator drawing from rng within spec's bounds.
func NewGenerator(rng *rand.Rand, spec RandomSpec) *Generator {
	return &Generator{rng: rng, spec: spec}
}

// Name returns a capitalized word followed by digits, e.g. "Falcon42".
func (g *Generator) Name() string {
	return nameWords[g.rng.Intn(len(nameWords))] + strconv.Itoa(g.rng.Intn(100))
}

// Next draws one job.
func (g *Generator) Next() sim.JobRequest {
	return sim.JobRequest{
		Name:           g.Name(),
		Priority:       float64(g.between(g.spec.Priority)),
		RequiredTime:   g.between(g.spec.Time),
		RequiredMemory: g.between(g.spec.Memory),
	}
}

// Generate draws n jobs.
func (g *Generator) Generate(n int) []sim.JobRequest {
	jobs := make([]sim.JobRequest, 0, n)
	for range n {
		jobs = append(jobs, g.Next())
	}
	return jobs
}

func (g *Generator) between(r IntRange) int {
	return r.Min + g.rng.Intn(r.Max-r.Min+1)
}

// GenerateJobs expands a spec into job requests: explicit jobs first, in file
// order, then Random.Count generated ones. Deterministic given the spec's seed.
func GenerateJobs(spec *WorkloadSpec) []sim.JobRequest {
	jobs := make([]sim.JobRequest, 0, len(spec.Jobs)+spec.Random.Count)
	for _, j := range spec.Jobs {
		jobs = append(jobs, sim.JobRequest{
			Name:           j.Name,
			Priority:       j.Priority,
			RequiredTime:   j.RequiredTime,
			RequiredMemory: j.RequiredMemory,
		})
	}
	if spec.Random.Count > 0 {
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
		jobs = append(jobs, NewGenerator(rng.ForSubsystem(sim.SubsystemWorkload), spec.Random).Generate(spec.Random.Count)...)
	}
	return jobs
}
