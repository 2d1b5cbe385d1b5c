// Package trace provides per-event recording for simulation runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import "time"

// EventRecord captures one processed event: the task that ran and what it
// yielded, or its completion.
type EventRecord struct {
	Seq       int           // 1-based position in the run
	Clock     time.Duration // simulated time the event fired
	Task      int           // key ID of the task that ran
	Action    string        // action kind ("hold", "passivate", ...); empty on completion
	Duration  time.Duration // hold duration, zero for other actions
	Targets   []int         // key IDs targeted by activate/cancel
	Completed bool          // the task returned instead of yielding
}
