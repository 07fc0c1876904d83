// Package trace provides event-trace recording for pool and field changes.
// This package has no dependencies on sim/ — it stores pure data types.
package trace

import "time"

// PoolRecord captures a single pool membership change (append or remove).
type PoolRecord struct {
	Seq     int64
	RunID   string
	Channel string
	PID     int
	Name    string
	Op      string // "append" or "remove"
	At      time.Time
}

// EditRecord captures an in-place field edit of a record that stays in its pool.
type EditRecord struct {
	Seq     int64
	RunID   string
	Channel string
	PID     int
	Field   int // column index, see sim.Field
	Value   string
	At      time.Time
}

// IdleRecord captures a "no process running" notification.
type IdleRecord struct {
	Seq     int64
	RunID   string
	Channel string
	At      time.Time
}
