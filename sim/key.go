package sim

import (
	"fmt"
	"math"
	"reflect"
)

// dummyID is reserved for DummyKey and is never issued by a container.
const dummyID = math.MaxInt

// Key identifies a task slot in a Simulation. Keys are never reused: once the
// task behind a Key completes, the Key stays invalid for the rest of the run.
//
// The zero Key is the handle of the first task added, not an empty handle.
// A field that will only be filled in later must start out as DummyKey().
type Key struct {
	id int
}

// DummyKey returns the reserved placeholder Key. It is meant for models that
// must hand out a Key before the task behind it exists; the placeholder is
// replaced once the real Key is known.
func DummyKey() Key {
	return Key{id: dummyID}
}

// ID returns the slot index of the task this Key refers to.
func (k Key) ID() int {
	return k.id
}

// IsDummy reports whether k is the DummyKey placeholder.
func (k Key) IsDummy() bool {
	return k.id == dummyID
}

func (k Key) String() string {
	if k.IsDummy() {
		return "task(dummy)"
	}
	return fmt.Sprintf("task(%d)", k.id)
}

// StateKey addresses a value of type T in a Store. The type parameter is the
// only thing tying the key to its value; every access checks it once.
type StateKey[T any] struct {
	id int
}

// ID returns the slot index in the Store.
func (k StateKey[T]) ID() int {
	return k.id
}

func (k StateKey[T]) String() string {
	return fmt.Sprintf("state(%d:%v)", k.id, reflect.TypeFor[T]())
}
