package sim

// ActivityState gates which actions a task may yield.
type ActivityState int

const (
	Passive ActivityState = iota
	Active
)

func (s ActivityState) String() string {
	if s == Active {
		return "active"
	}
	return "passive"
}

type taskEntry[R any] struct {
	task  Task[R]
	state ActivityState
}

// container owns every task of a Simulation and its ActivityState. A slot is
// emptied when its task completes and is never handed out again.
type container[R any] struct {
	entries []*taskEntry[R] // nil = empty slot
	live    int
}

func newContainer[R any]() *container[R] {
	return &container[R]{entries: make([]*taskEntry[R], 0)}
}

// add registers task as Active and returns its key.
func (c *container[R]) add(task Task[R]) Key {
	key := Key{id: len(c.entries)}
	c.entries = append(c.entries, &taskEntry[R]{task: task, state: Active})
	c.live++
	return key
}

func (c *container[R]) entry(key Key) *taskEntry[R] {
	if key.id < 0 || key.id >= len(c.entries) {
		return nil
	}
	return c.entries[key.id]
}

// stepWith resumes the task behind key. ok is false when the task completed.
// An empty or never issued slot panics: completed tasks are removed at once
// and their keys must not resurface.
func (c *container[R]) stepWith(key Key, input R) (Action, bool) {
	e := c.entry(key)
	if e == nil {
		panic(&Violation{Err: ErrUnknownTask, Task: key, Target: DummyKey(), Detail: "resumed"})
	}
	return e.task.Resume(input)
}

func (c *container[R]) activity(key Key) (ActivityState, bool) {
	e := c.entry(key)
	if e == nil {
		return Passive, false
	}
	return e.state, true
}

func (c *container[R]) setActivity(key Key, state ActivityState) bool {
	e := c.entry(key)
	if e == nil {
		return false
	}
	e.state = state
	return true
}

// remove frees the slot of a completed task.
func (c *container[R]) remove(key Key) bool {
	if c.entry(key) == nil {
		return false
	}
	c.entries[key.id] = nil
	c.live--
	return true
}

// count returns the number of live tasks.
func (c *container[R]) count() int {
	return c.live
}

// slots returns the number of keys ever issued.
func (c *container[R]) slots() int {
	return len(c.entries)
}

// each calls fn for every live task in key order.
func (c *container[R]) each(fn func(Key, Task[R])) {
	for id, e := range c.entries {
		if e != nil {
			fn(Key{id: id}, e.task)
		}
	}
}
