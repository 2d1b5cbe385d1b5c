// Package sim provides the discrete-event simulation kernel for procsim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - action.go: the Action values a task yields at each suspension
//   - task.go: the Task interface and the Coroutine adapter
//   - simulation.go: the event loop and the activation protocol
//
// # Architecture
//
// A Simulation composes three parts:
//   - Scheduler (scheduler.go): time-ordered future event list and the clock
//   - container (container.go): registry of tasks and their ActivityState
//   - Store (state.go): heterogeneous, handle-addressed shared state
//
// Exactly one task runs at a time. A task runs until it yields an Action,
// which the Simulation applies against the activity state machine:
//
//	Hold(d)           T Active            -> T rescheduled at now+d
//	Passivate         T Active            -> T Passive, not rescheduled
//	ActivateOne(U)    T Active, U Passive -> U Active, T and U scheduled now
//	ActivateMany(Us)  T Active, Us Passive-> as ActivateOne for each U, in order
//	Cancel(U)         T Active, U Active and scheduled -> U Passive, entry dropped
//
// Any precondition violation panics with a *Violation. Such a state denotes a
// bug in the simulated model and is never corrected silently.
//
// Sub-packages:
//   - sim/trace/: per-event trace records and summary statistics
//   - sim/model/: reference models (handshake, fan-out)
package sim
