package sim

// JobPool is the FIFO staging area for jobs waiting for admission.
// The head is the oldest enqueued job.
type JobPool struct {
	*Pool
}

// NewJobPool creates an empty job pool.
func NewJobPool(observer Observer) *JobPool {
	return &JobPool{Pool: NewPool(PoolJob, observer)}
}

// Push adds a job to the tail of the pool.
// Used both for new submissions and for re-queueing after a failed allocation.
func (jp *JobPool) Push(rec *ProcessRecord) {
	jp.Add(rec)
}

// Pop removes and returns the head of the pool, or nil if the pool is empty.
func (jp *JobPool) Pop() *ProcessRecord {
	jp.mu.Lock()
	defer jp.mu.Unlock()
	if len(jp.records) == 0 {
		return nil
	}
	rec, _ := jp.removeLocked(jp.records[0].PID)
	return rec
}
