package sim

import "errors"

// Sentinel errors returned by the engine. Callers match them with errors.Is;
// the engine wraps them with context using fmt.Errorf("...: %w").
var (
	// ErrNotFound reports a lookup or removal of a PID that is not in the pool.
	// It is recovered locally by every caller and never stops a loop.
	ErrNotFound = errors.New("process not found")

	// ErrAllocationFailed reports that no free interval can hold the request.
	// The long-term scheduler reacts by re-queueing the job.
	ErrAllocationFailed = errors.New("memory allocation failed")

	// ErrInvalidInput reports a rejected external value (strict mode only,
	// or a control request such as a negative capacity).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFree reports a free of a range that is outside the address
	// space or overlaps memory that is already free.
	ErrInvalidFree = errors.New("invalid free")

	// ErrPIDExhausted reports that every PID in the configured range is in use.
	ErrPIDExhausted = errors.New("pid space exhausted")

	// ErrDuplicatePID reports an attempt to register a PID that is already alive.
	ErrDuplicatePID = errors.New("duplicate pid")
)
