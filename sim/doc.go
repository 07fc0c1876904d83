// Package sim provides the process scheduling and memory allocation engine.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - process.go: ProcessRecord (the PCB) and its lifecycle (new → ready ⇄ running → terminated, ready ⇄ suspended)
//   - ready_pool.go: dispatch selection, aging and promotion, quantum charging, suspend/resume
//   - scheduler.go: System, which owns all state and runs the short-term and long-term loops
//
// # Architecture
//
// Records move between four pools (job, ready, suspend, terminated), each a
// Pool guarded by its own mutex. The long-term loop admits JobPool entries
// into the ReadyPool when a slot is free and the MemoryAllocator finds a
// first-fit interval; the short-term loop dispatches the ReadyPool entry with
// the lowest priority value for one quantum.
//
// Sub-packages:
//   - sim/trace/: event trace recording fed by TraceObserver
//   - sim/workload/: workload files and random job generation
//
// # Key Interfaces
//
//   - Observer: receives pool membership changes, field edits and idle
//     notifications; front ends subscribe through it instead of touching pools
package sim
