package sim

import (
	"fmt"
	"reflect"
)

// Store is the shared state through which independently written tasks
// exchange typed values. It is pure indexed storage: naming and discovery of
// keys is up to the model.
//
// Slots are appended by Insert and never reused. Remove empties a slot for
// good, after which Get and Remove report absence.
//
// Store has no locking. Only one task runs at a time, and a task must not keep
// a pointer obtained from GetMut across a yield.
type Store struct {
	slots []any // nil = empty slot, otherwise *T
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{slots: make([]any, 0)}
}

// Len returns the number of slots ever issued, including emptied ones.
func (s *Store) Len() int {
	return len(s.slots)
}

// IsEmpty reports whether no slot was ever issued.
func (s *Store) IsEmpty() bool {
	return len(s.slots) == 0
}

// Insert stores v in a fresh slot and returns its key.
func Insert[T any](s *Store, v T) StateKey[T] {
	id := len(s.slots)
	s.slots = append(s.slots, &v)
	return StateKey[T]{id: id}
}

// Get returns a copy of the value behind k. It returns false if the slot is
// empty or was never issued by s.
func Get[T any](s *Store, k StateKey[T]) (T, bool) {
	ptr, ok := GetMut(s, k)
	if !ok {
		var zero T
		return zero, false
	}
	return *ptr, true
}

// GetMut returns a pointer to the value behind k for in-place updates.
func GetMut[T any](s *Store, k StateKey[T]) (*T, bool) {
	if k.id < 0 || k.id >= len(s.slots) || s.slots[k.id] == nil {
		return nil, false
	}
	return downcast(k, s.slots[k.id]), true
}

// Set overwrites the value behind k. It returns false, storing nothing, if the
// slot is empty.
func Set[T any](s *Store, k StateKey[T], v T) bool {
	ptr, ok := GetMut(s, k)
	if !ok {
		return false
	}
	*ptr = v
	return true
}

// Remove takes the value out of its slot and empties the slot permanently.
// Removing from an empty slot returns false.
func Remove[T any](s *Store, k StateKey[T]) (T, bool) {
	ptr, ok := GetMut(s, k)
	if !ok {
		var zero T
		return zero, false
	}
	s.slots[k.id] = nil
	return *ptr, true
}

// downcast recovers the typed pointer. A mismatch means k was issued by a
// different Store; that can't be fixed at runtime.
func downcast[T any](k StateKey[T], stored any) *T {
	ptr, ok := stored.(*T)
	if !ok {
		panic(&Violation{
			Err:    ErrStateType,
			Task:   DummyKey(),
			Target: DummyKey(),
			Detail: fmt.Sprintf("%s holds %v", k, reflect.TypeOf(stored).Elem()),
		})
	}
	return ptr
}
