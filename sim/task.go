package sim

import (
	"iter"
	"time"
)

// Task is a resumable computation modelling one simulated entity.
//
// Resume runs the task until its next suspension point and returns the Action
// it yields there. The input is handed to the task as the result of its
// previous suspension (or as its start value on the first call). ok is false
// once the task has completed; a completed task is never resumed again.
type Task[R any] interface {
	Resume(input R) (action Action, ok bool)
}

// Stopper is implemented by tasks that hold resources while suspended.
// Simulation.Close calls Stop on every task that is still live.
type Stopper interface {
	Stop()
}

// TaskFunc adapts an explicit state machine to Task. The function holds its
// own resume point and locals, typically in a closure.
type TaskFunc[R any] func(input R) (Action, bool)

// Resume calls f.
func (f TaskFunc[R]) Resume(input R) (Action, bool) {
	return f(input)
}

// Proc is the handle a Coroutine body uses to suspend itself.
type Proc[R any] struct {
	yield   func(Action) bool
	input   R
	stopped bool
}

// stopSignal unwinds a coroutine body whose consumer has stopped it.
type stopSignal struct{}

// Yield suspends the coroutine with a and returns the value it is resumed
// with.
func (p *Proc[R]) Yield(a Action) R {
	if !p.yield(a) {
		p.stopped = true
		panic(stopSignal{})
	}
	return p.input
}

// Hold suspends for d simulated time.
func (p *Proc[R]) Hold(d time.Duration) R {
	return p.Yield(Hold(d))
}

// Passivate suspends until another task activates this one.
func (p *Proc[R]) Passivate() R {
	return p.Yield(Passivate())
}

// Activate wakes one or more passive tasks. A single target yields
// ActivateOne, several yield ActivateMany.
func (p *Proc[R]) Activate(targets ...Key) R {
	if len(targets) == 1 {
		return p.Yield(ActivateOne(targets[0]))
	}
	return p.Yield(ActivateMany(targets...))
}

// Cancel drops the pending event of target.
func (p *Proc[R]) Cancel(target Key) R {
	return p.Yield(Cancel(target))
}

// coroutine runs a straight-line body on an iter.Pull coroutine. Control
// moves between the kernel and the body synchronously, so only one of them
// runs at any instant.
type coroutine[R any] struct {
	proc *Proc[R]
	next func() (Action, bool)
	stop func()
	done bool
}

// Coroutine turns body into a Task. body receives the start value of the
// first Resume and suspends through p; returning from body completes the
// task.
//
//	sim.Coroutine(func(p *sim.Proc[struct{}], _ struct{}) {
//		for {
//			p.Hold(5 * time.Second)
//		}
//	})
func Coroutine[R any](body func(p *Proc[R], first R)) Task[R] {
	proc := &Proc[R]{}
	seq := func(yield func(Action) bool) {
		defer func() {
			if proc.stopped {
				recover()
			}
		}()
		proc.yield = yield
		body(proc, proc.input)
	}
	next, stop := iter.Pull(iter.Seq[Action](seq))
	return &coroutine[R]{proc: proc, next: next, stop: stop}
}

func (c *coroutine[R]) Resume(input R) (Action, bool) {
	if c.done {
		return Action{}, false
	}
	c.proc.input = input
	a, ok := c.next()
	if !ok {
		c.done = true
	}
	return a, ok
}

// Stop releases the coroutine. A stopped coroutine reports completion.
func (c *coroutine[R]) Stop() {
	c.done = true
	c.stop()
}
