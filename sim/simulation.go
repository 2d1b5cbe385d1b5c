// sim/simulation.go
package sim

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/procsim/procsim/sim/trace"
)

// ShouldContinue tells the caller of Step whether an event was processed.
type ShouldContinue int

const (
	// Advance means one event was processed; more may follow.
	Advance ShouldContinue = iota
	// Break means the event list was empty and nothing ran.
	Break
)

func (c ShouldContinue) String() string {
	if c == Advance {
		return "advance"
	}
	return "break"
}

// Simulation is the event loop. It pops the earliest event, resumes the task
// behind it and applies the yielded Action against the activity state
// machine. R is the type tasks are resumed with; use struct{} when tasks need
// no input.
type Simulation[R any] struct {
	scheduler *Scheduler
	tasks     *container[R]
	state     *Store
	trace     *trace.SimulationTrace
}

// NewSimulation creates an empty simulation with the clock at zero.
func NewSimulation[R any]() *Simulation[R] {
	return &Simulation[R]{
		scheduler: NewScheduler(),
		tasks:     newContainer[R](),
		state:     NewStore(),
	}
}

// SetTrace attaches a trace that records every processed event. Pass nil to
// stop recording.
func (s *Simulation[R]) SetTrace(st *trace.SimulationTrace) {
	s.trace = st
}

// AddTask registers task as Active. It is not scheduled; call Schedule or
// ScheduleNow to give it its first event.
func (s *Simulation[R]) AddTask(task Task[R]) Key {
	key := s.tasks.add(task)
	logrus.Debugf("[t=%s] added %s", s.Time(), key)
	return key
}

// Schedule wakes key at Time()+d. A key that is already pending keeps its
// earlier event.
func (s *Simulation[R]) Schedule(d time.Duration, key Key) {
	s.scheduler.Schedule(d, key)
}

// ScheduleNow wakes key at the current time.
func (s *Simulation[R]) ScheduleNow(key Key) {
	s.scheduler.ScheduleNow(key)
}

// Time returns the current simulated time.
func (s *Simulation[R]) Time() time.Duration {
	return s.scheduler.Time()
}

// Clock returns a read-only view of the simulated clock for use by tasks.
func (s *Simulation[R]) Clock() ClockRef {
	return s.scheduler.Clock()
}

// State returns the shared store. Tasks capture it by pointer.
func (s *Simulation[R]) State() *Store {
	return s.state
}

// Activity returns the ActivityState of key, or false if key does not refer
// to a live task.
func (s *Simulation[R]) Activity(key Key) (ActivityState, bool) {
	return s.tasks.activity(key)
}

// Tasks returns the number of live tasks.
func (s *Simulation[R]) Tasks() int {
	return s.tasks.count()
}

// Pending returns the number of events waiting in the scheduler.
func (s *Simulation[R]) Pending() int {
	return s.scheduler.Len()
}

// Step advances the simulation by one event, resuming the task with the zero
// value of R.
func (s *Simulation[R]) Step() ShouldContinue {
	var zero R
	return s.StepWith(zero)
}

// StepWith pops the earliest event and resumes its task with input. It returns
// Break if there was no event. A contract violation by the task panics with a
// *Violation; the effects of a valid action are fully applied before StepWith
// returns.
func (s *Simulation[R]) StepWith(input R) ShouldContinue {
	ev, ok := s.scheduler.Pop()
	if !ok {
		return Break
	}
	key := ev.Key
	now := s.Time()
	if _, live := s.tasks.activity(key); !live {
		violate(ErrUnknownTask, key, DummyKey(), now, "event popped for a task that is not live")
	}

	action, suspended := s.tasks.stepWith(key, input)
	if !suspended {
		s.tasks.remove(key)
		logrus.Debugf("[t=%s] %s completed", now, key)
		s.trace.RecordEvent(trace.EventRecord{Clock: now, Task: key.id, Completed: true})
		return Advance
	}

	logrus.Debugf("[t=%s] %s yielded %s", now, key, action)
	s.apply(key, action)
	s.record(now, key, action)
	return Advance
}

// RunUntilEmpty steps until no events are left. A model that never runs out
// of events makes this loop forever.
func (s *Simulation[R]) RunUntilEmpty() {
	for s.Step() == Advance {
	}
	logrus.Debugf("[t=%s] event list empty, %d tasks live", s.Time(), s.Tasks())
}

// RunWithLimit steps until no events are left or the clock has reached
// limit. The check runs after each step, so the event that reaches or crosses
// limit is fully executed.
func (s *Simulation[R]) RunWithLimit(limit time.Duration) {
	for s.Step() == Advance {
		if s.Time() >= limit {
			break
		}
	}
	logrus.Debugf("[t=%s] run stopped (limit %s)", s.Time(), limit)
}

// Close stops every live task that implements Stopper, such as tasks built
// with Coroutine. The simulation must not be stepped afterwards.
func (s *Simulation[R]) Close() {
	s.tasks.each(func(_ Key, task Task[R]) {
		if st, ok := task.(Stopper); ok {
			st.Stop()
		}
	})
}

// apply enforces the activation protocol for action yielded by key.
// Preconditions are checked before any effect is applied.
func (s *Simulation[R]) apply(key Key, action Action) {
	now := s.Time()
	self, _ := s.tasks.activity(key)

	switch action.Kind {
	case ActionHold:
		if self == Passive {
			violate(ErrPassiveHold, key, DummyKey(), now, "")
		}
		if action.Duration < 0 {
			violate(ErrNegativeDelay, key, DummyKey(), now, "hold %s", action.Duration)
		}
		s.scheduler.Schedule(action.Duration, key)

	case ActionPassivate:
		if self == Passive {
			violate(ErrPassivePassivate, key, DummyKey(), now, "")
		}
		s.tasks.setActivity(key, Passive)

	case ActionActivateOne, ActionActivateMany:
		if self == Passive {
			violate(ErrPassiveActivate, key, action.Target(), now, "")
		}
		if n := len(action.Targets); n == 0 || (action.Kind == ActionActivateOne && n != 1) {
			violate(ErrTargetCount, key, action.Target(), now, "%s with %d targets", action.Kind, n)
		}
		seen := make(map[Key]bool, len(action.Targets))
		for _, target := range action.Targets {
			if seen[target] {
				violate(ErrDuplicateTarget, key, target, now, "")
			}
			seen[target] = true
			state, live := s.tasks.activity(target)
			if !live {
				violate(ErrUnknownTask, key, target, now, "activation target")
			}
			if state == Active {
				violate(ErrAlreadyActive, key, target, now, "")
			}
		}
		s.scheduler.ScheduleNow(key)
		for _, target := range action.Targets {
			s.tasks.setActivity(target, Active)
			s.scheduler.ScheduleNow(target)
		}

	case ActionCancel:
		target := action.Target()
		if self == Passive {
			violate(ErrPassiveCancel, key, target, now, "")
		}
		if len(action.Targets) != 1 {
			violate(ErrTargetCount, key, target, now, "cancel with %d targets", len(action.Targets))
		}
		state, live := s.tasks.activity(target)
		if !live {
			violate(ErrUnknownTask, key, target, now, "cancel target")
		}
		if state == Passive {
			violate(ErrTargetPassive, key, target, now, "")
		}
		if !s.scheduler.Pending(target) {
			violate(ErrNotScheduled, key, target, now, "")
		}
		s.scheduler.ScheduleNow(key)
		s.tasks.setActivity(target, Passive)
		s.scheduler.Remove(target)

	default:
		violate(ErrUnknownAction, key, DummyKey(), now, "kind %d", int(action.Kind))
	}
}

func (s *Simulation[R]) record(now time.Duration, key Key, action Action) {
	if !s.trace.Enabled() {
		return
	}
	rec := trace.EventRecord{
		Clock:  now,
		Task:   key.id,
		Action: action.Kind.String(),
	}
	if action.Kind == ActionHold {
		rec.Duration = action.Duration
	}
	for _, target := range action.Targets {
		rec.Targets = append(rec.Targets, target.id)
	}
	s.trace.RecordEvent(rec)
}
