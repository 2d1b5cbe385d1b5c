package sim

import (
	"fmt"
	"strings"
	"time"
)

// ActionKind enumerates the fixed set of actions a task may yield.
type ActionKind int

const (
	ActionHold ActionKind = iota
	ActionPassivate
	ActionActivateOne
	ActionActivateMany
	ActionCancel
)

var actionKindNames = map[ActionKind]string{
	ActionHold:         "hold",
	ActionPassivate:    "passivate",
	ActionActivateOne:  "activate",
	ActionActivateMany: "activate-many",
	ActionCancel:       "cancel",
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is what a task yields to the Simulation each time it suspends.
// Build one with Hold, Passivate, ActivateOne, ActivateMany or Cancel.
type Action struct {
	Kind     ActionKind
	Duration time.Duration // Hold only
	Targets  []Key         // one entry for ActivateOne and Cancel
}

// Hold suspends the yielding task for d simulated time.
func Hold(d time.Duration) Action {
	return Action{Kind: ActionHold, Duration: d}
}

// Passivate suspends the yielding task until another task activates it.
func Passivate() Action {
	return Action{Kind: ActionPassivate}
}

// ActivateOne wakes a passive task at the current time. The yielding task is
// resumed at the current time as well.
func ActivateOne(target Key) Action {
	return Action{Kind: ActionActivateOne, Targets: []Key{target}}
}

// ActivateMany wakes every target, in the given order, at the current time.
func ActivateMany(targets ...Key) Action {
	return Action{Kind: ActionActivateMany, Targets: append([]Key(nil), targets...)}
}

// Cancel drops the pending event of an active task and makes it passive.
// It does not interrupt anything; only the target's timer is affected.
func Cancel(target Key) Action {
	return Action{Kind: ActionCancel, Targets: []Key{target}}
}

// Target returns the single target of an ActivateOne or Cancel action.
func (a Action) Target() Key {
	if len(a.Targets) == 0 {
		return DummyKey()
	}
	return a.Targets[0]
}

func (a Action) String() string {
	switch a.Kind {
	case ActionHold:
		return fmt.Sprintf("hold(%s)", a.Duration)
	case ActionPassivate:
		return "passivate"
	case ActionActivateOne, ActionCancel:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Target())
	case ActionActivateMany:
		ids := make([]string, len(a.Targets))
		for i, k := range a.Targets {
			ids[i] = k.String()
		}
		return fmt.Sprintf("%s(%s)", a.Kind, strings.Join(ids, ","))
	default:
		return a.Kind.String()
	}
}
