package sim

import (
	"fmt"
	"math/rand"
	"sync"
)

const (
	// PIDModeRandom draws PIDs uniformly from [1, max], skipping used ones.
	PIDModeRandom = "random"
	// PIDModeSequential hands out 1, 2, 3, ... skipping used ones.
	PIDModeSequential = "sequential"
)

// PIDIssuer hands out process identifiers that are unique for the lifetime of a run.
// PIDs are never released: a terminated record keeps its PID.
type PIDIssuer struct {
	mode string
	max  int
	rng  *rand.Rand

	mu   sync.Mutex
	next int
	used map[int]struct{}
}

// NewPIDIssuer creates an issuer over [1, max]. rng is required for random mode;
// the issuer serializes its use.
func NewPIDIssuer(mode string, max int, rng *rand.Rand) *PIDIssuer {
	if mode == "" {
		mode = PIDModeRandom
	}
	if !ValidPIDModes[mode] {
		panic(fmt.Sprintf("unknown pid mode %q", mode))
	}
	if mode == PIDModeRandom && rng == nil {
		panic("NewPIDIssuer: random mode requires an rng")
	}
	return &PIDIssuer{
		mode: mode,
		max:  max,
		rng:  rng,
		next: 1,
		used: make(map[int]struct{}),
	}
}

// Issue returns a fresh PID and marks it used.
func (p *PIDIssuer) Issue() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.used) >= p.max {
		return 0, fmt.Errorf("issuing pid in [1,%d]: %w", p.max, ErrPIDExhausted)
	}

	if p.mode == PIDModeRandom {
		// Avoid duplicated PID
		for {
			pid := p.rng.Intn(p.max) + 1
			if _, taken := p.used[pid]; !taken {
				p.used[pid] = struct{}{}
				return pid, nil
			}
		}
	}

	for {
		pid := p.next
		p.next++
		if p.next > p.max {
			p.next = 1
		}
		if _, taken := p.used[pid]; !taken {
			p.used[pid] = struct{}{}
			return pid, nil
		}
	}
}

// Reserve marks an externally chosen PID as used.
func (p *PIDIssuer) Reserve(pid int) error {
	if pid <= 0 || pid > p.max {
		return fmt.Errorf("pid %d outside [1,%d]: %w", pid, p.max, ErrInvalidInput)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, taken := p.used[pid]; taken {
		return fmt.Errorf("pid %d: %w", pid, ErrDuplicatePID)
	}
	p.used[pid] = struct{}{}
	return nil
}

// InUse reports whether pid has been issued or reserved.
func (p *PIDIssuer) InUse(pid int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, taken := p.used[pid]
	return taken
}

// Count returns the number of PIDs handed out so far.
func (p *PIDIssuer) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.used)
}
