package sim

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors carried by a Violation. Use errors.Is on a recovered
// *Violation to tell them apart.
var (
	ErrPassiveHold      = errors.New("passive task yielded hold")
	ErrPassivePassivate = errors.New("passive task yielded passivate")
	ErrPassiveActivate  = errors.New("passive task yielded activate")
	ErrPassiveCancel    = errors.New("passive task yielded cancel")
	ErrAlreadyActive    = errors.New("activation target is already active")
	ErrDuplicateTarget  = errors.New("activation target listed more than once")
	ErrTargetPassive    = errors.New("cancel target is passive")
	ErrNotScheduled     = errors.New("cancel target has no pending event")
	ErrUnknownTask      = errors.New("key does not refer to a live task")
	ErrNegativeDelay    = errors.New("negative scheduling delay")
	ErrClockOverflow    = errors.New("scheduled time overflows the clock")
	ErrTargetCount      = errors.New("wrong number of action targets")
	ErrStateType        = errors.New("state key does not match stored value type")
	ErrUnknownAction    = errors.New("unknown action kind")
)

// Violation is the panic value raised when a model breaks the kernel's
// contract. It is never returned: a violation means the model itself is wrong,
// so the run stops at the offending step.
type Violation struct {
	Err    error
	Task   Key           // task whose action was being applied, DummyKey if none
	Target Key           // target of the offending action, DummyKey if none
	Time   time.Duration // simulated time of the violation
	Detail string
}

func (v *Violation) Error() string {
	msg := fmt.Sprintf("procsim: %v at t=%s", v.Err, v.Time)
	if !v.Task.IsDummy() {
		msg += fmt.Sprintf(" (task %d", v.Task.id)
		if !v.Target.IsDummy() {
			msg += fmt.Sprintf(", target %d", v.Target.id)
		}
		msg += ")"
	} else if !v.Target.IsDummy() {
		msg += fmt.Sprintf(" (target %d)", v.Target.id)
	}
	if v.Detail != "" {
		msg += ": " + v.Detail
	}
	return msg
}

func (v *Violation) Unwrap() error {
	return v.Err
}

func violate(err error, task, target Key, now time.Duration, format string, args ...any) {
	panic(&Violation{
		Err:    err,
		Task:   task,
		Target: target,
		Time:   now,
		Detail: fmt.Sprintf(format, args...),
	})
}
