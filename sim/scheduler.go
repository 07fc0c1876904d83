package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pcb-sim/pcb-sim/tracing"
)

// System owns every piece of scheduler state: the four pools, the memory
// allocator, the PID issuer, metrics and configuration. Both scheduler loops
// and the controlling goroutine share one *System.
type System struct {
	RunID string

	Jobs        *JobPool
	Ready       *ReadyPool
	SuspendPool *Pool
	Terminated  *Pool
	Memory      *MemoryAllocator
	PIDs        *PIDIssuer
	Metrics     *Metrics

	cfg       Config
	validator JobValidator

	started atomic.Bool
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// NewSystem builds an idle System. An empty runID is replaced by a random UUID.
// rng seeds random PID issuance and may be nil in sequential PID mode.
func NewSystem(cfg Config, rng *PartitionedRNG, runID string, observer Observer) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	if observer == nil {
		observer = NopObserver{}
	}

	var pidRNG *rand.Rand
	if cfg.PIDMode != PIDModeSequential {
		if rng == nil {
			rng = NewPartitionedRNG(NewSimulationKey(time.Now().UnixNano()))
		}
		pidRNG = rng.ForSubsystem(SubsystemPID)
	}

	memory := NewMemoryAllocator(cfg.TotalMemory)
	suspend := NewPool(PoolSuspend, observer)
	terminated := NewPool(PoolTerminated, observer)
	return &System{
		RunID:       runID,
		Jobs:        NewJobPool(observer),
		Ready:       NewReadyPool(&cfg, memory, suspend, terminated, observer),
		SuspendPool: suspend,
		Terminated:  terminated,
		Memory:      memory,
		PIDs:        NewPIDIssuer(cfg.PIDMode, cfg.PIDMax, pidRNG),
		Metrics:     NewMetrics(),
		cfg:         cfg,
		validator:   NewJobValidator(&cfg),
	}, nil
}

// Config returns a copy of the configuration the System was built with.
func (s *System) Config() Config {
	return s.cfg
}

// Submit validates req, issues a PID and enqueues the job at the JobPool tail.
func (s *System) Submit(req JobRequest) (int, error) {
	req, err := s.validator.Normalize(req)
	if err != nil {
		return 0, err
	}
	pid, err := s.PIDs.Issue()
	if err != nil {
		return 0, err
	}
	s.enqueue(NewProcessRecord(pid, req.Name, req.Priority, req.RequiredTime, req.RequiredMemory))
	return pid, nil
}

// SubmitRaw parses a free-text request and submits it.
func (s *System) SubmitRaw(raw RawJobRequest) (int, error) {
	req, err := s.validator.Parse(raw)
	if err != nil {
		return 0, err
	}
	return s.Submit(req)
}

// SubmitRecord enqueues a prebuilt record, reserving its PID.
func (s *System) SubmitRecord(rec *ProcessRecord) error {
	if rec.RequiredTime <= 0 || rec.RequiredMemory <= 0 {
		return fmt.Errorf("pid %d: required time and memory must be positive: %w", rec.PID, ErrInvalidInput)
	}
	if err := s.PIDs.Reserve(rec.PID); err != nil {
		return err
	}
	s.enqueue(rec)
	return nil
}

func (s *System) enqueue(rec *ProcessRecord) {
	rec.SubmittedAt = time.Now()
	logrus.WithFields(logrus.Fields{"run": s.RunID, "pid": rec.PID, "name": rec.Name}).Debugf("submitting %s", rec)
	s.Jobs.Push(rec)
}

// AdmitOnce runs one long-term scheduler tick: when the ready pool has a free
// slot it pops the JobPool head and tries to allocate its memory. On success
// the job enters the ready pool; on failure it goes back to the JobPool tail
// and the wrapped ErrAllocationFailed is returned. A popped job is never dropped.
func (s *System) AdmitOnce(ctx context.Context) (bool, error) {
	if s.Ready.AvailableSlots() <= s.Ready.Size() {
		return false, nil
	}
	rec := s.Jobs.Pop()
	if rec == nil {
		return false, nil
	}

	_, span := tracing.StartSpan(ctx, "long_term.admit")
	span.WithAttributes(map[string]string{"run": s.RunID, "name": rec.Name}).WithInt("pid", rec.PID)

	start, err := s.Memory.Allocate(rec.RequiredMemory)
	if err != nil {
		s.Jobs.Push(rec)
		s.Metrics.RecordAdmissionRetry()
		err = fmt.Errorf("admitting pid %d: %w", rec.PID, err)
		tracing.EndSpan(span, err)
		return false, err
	}

	if !s.Ready.Admit(rec, start) {
		// capacity shrank or a job was resumed since the slot check
		if ferr := s.Memory.Free(rec.RequiredMemory, start); ferr != nil {
			logrus.Errorf("releasing memory of pid %d: %v", rec.PID, ferr)
		}
		s.Jobs.Push(rec)
		tracing.EndSpan(span, nil)
		return false, nil
	}
	s.Metrics.RecordAdmission(s.Memory.Used())
	span.WithInt("memory_start", start)
	tracing.EndSpan(span, nil)
	return true, nil
}

// DispatchOnce runs one short-term scheduler tick: it selects the most urgent
// ready job, ages the others, holds the CPU for ProcessingDelay and charges one
// quantum. Returns whether a job was dispatched.
//
// If ctx is cancelled while the job holds the CPU the quantum is still charged,
// so no record is left in the running state, and ctx.Err() is returned.
func (s *System) DispatchOnce(ctx context.Context) (bool, error) {
	rec := s.Ready.BeginQuantum()
	if rec == nil {
		return false, nil
	}
	s.Metrics.RecordDispatch()

	_, span := tracing.StartSpan(ctx, "short_term.dispatch")
	span.WithAttributes(map[string]string{"run": s.RunID, "name": rec.Name}).WithInt("pid", rec.PID)

	waitErr := sleepContext(ctx, s.cfg.ProcessingDelay)

	terminated, err := s.Ready.ConsumeQuantum(rec, s.cfg.Quantum)
	if err != nil {
		// suspended while running
		logrus.WithFields(logrus.Fields{"run": s.RunID, "pid": rec.PID}).Debugf("quantum discarded: %v", err)
		tracing.EndSpan(span, nil)
		return true, waitErr
	}
	if terminated {
		s.Metrics.RecordCompletion(rec.PID, s.turnaround(rec.PID))
	}
	span.WithAttributes(map[string]string{"terminated": strconv.FormatBool(terminated)})
	tracing.EndSpan(span, waitErr)
	return true, waitErr
}

// turnaround looks up the terminated record; terminated records are never mutated.
func (s *System) turnaround(pid int) time.Duration {
	if rec := s.Terminated.Lookup(pid); rec != nil {
		return rec.Turnaround()
	}
	return 0
}

// Start launches the short-term and long-term loops. They run until ctx is
// cancelled or Stop is called. Start may be called once.
func (s *System) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("system already started")
	}
	logrus.WithField("run", s.RunID).Infof("starting scheduler: quantum=%d capacity=%d memory=%d",
		s.cfg.Quantum, s.Ready.Capacity(), s.Memory.Total())
	s.wg.Add(2)
	go s.loop(ctx, "short_term", s.cfg.ShortTermInterval, s.DispatchOnce)
	go s.loop(ctx, "long_term", s.cfg.LongTermInterval, s.AdmitOnce)
	return nil
}

// loop polls tick every interval. Errors are logged; none stops the loop.
func (s *System) loop(ctx context.Context, name string, interval time.Duration, tick func(context.Context) (bool, error)) {
	defer s.wg.Done()
	log := logrus.WithFields(logrus.Fields{"run": s.RunID, "loop": name})
	for !s.stopped.Load() && ctx.Err() == nil {
		if _, err := tick(ctx); err != nil {
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			case errors.Is(err, ErrAllocationFailed):
				log.Debug(err)
			default:
				log.Warn(err)
			}
		}
		if sleepContext(ctx, interval) != nil {
			break
		}
	}
	log.Debug("loop stopped")
}

// Stop asks both loops to exit after their current tick.
func (s *System) Stop() {
	s.stopped.Store(true)
}

// Wait blocks until both loops have exited.
func (s *System) Wait() {
	s.wg.Wait()
}

// Done reports whether every submitted job has terminated.
func (s *System) Done() bool {
	return s.Jobs.Size() == 0 && s.Ready.Size() == 0 && s.SuspendPool.Size() == 0
}

// WaitDone polls Done every interval until it holds or ctx ends.
func (s *System) WaitDone(ctx context.Context, interval time.Duration) error {
	for !s.Done() {
		if err := sleepContext(ctx, interval); err != nil {
			return err
		}
	}
	return nil
}

// SetCapacity changes the ready pool capacity.
func (s *System) SetCapacity(n int) error {
	return s.Ready.SetCapacity(n)
}

// Suspend parks a ready job in the suspend pool.
func (s *System) Suspend(pid int) error {
	return s.Ready.Suspend(pid)
}

// Resume returns a suspended job to the ready pool.
func (s *System) Resume(pid int) error {
	return s.Ready.Resume(pid)
}

// sleepContext sleeps for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
