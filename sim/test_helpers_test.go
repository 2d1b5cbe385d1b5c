package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns a task that yields actions in order and then completes.
// runs counts how many times it has been resumed.
func scripted(runs *int, actions ...Action) Task[struct{}] {
	next := 0
	return TaskFunc[struct{}](func(struct{}) (Action, bool) {
		if runs != nil {
			*runs++
		}
		if next >= len(actions) {
			return Action{}, false
		}
		a := actions[next]
		next++
		return a, true
	})
}

// requireViolation runs fn and asserts that it panics with a *Violation
// wrapping want.
func requireViolation(t *testing.T, want error, fn func()) *Violation {
	t.Helper()
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		fn()
	}()
	require.NotNil(t, recovered, "expected a panic wrapping %v", want)
	v, ok := recovered.(*Violation)
	require.Truef(t, ok, "expected *Violation, got %T: %v", recovered, recovered)
	assert.ErrorIs(t, v, want)
	return v
}
