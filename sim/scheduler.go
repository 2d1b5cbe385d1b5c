package sim

import (
	"container/heap"
	"math"
	"time"
)

// EventEntry is a pending wake-up of one task.
type EventEntry struct {
	Time time.Duration // absolute simulated time
	Key  Key

	seq   uint64 // schedule order, breaks ties between equal times
	index int    // position in the heap, maintained by eventHeap
}

// eventHeap implements heap.Interface with deterministic ordering.
// Order by: time → schedule sequence (FIFO among equal times)
type eventHeap []*EventEntry

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	e := x.(*EventEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[0 : n-1]
	return e
}

// clock is shared between a Scheduler and the ClockRef views it hands out.
type clock struct {
	now time.Duration
}

// ClockRef is a read-only view of a Scheduler's clock. Models keep one to read
// the current time without holding the Simulation.
type ClockRef struct {
	c *clock
}

// Time returns the current simulated time.
func (r ClockRef) Time() time.Duration {
	if r.c == nil {
		return 0
	}
	return r.c.now
}

// Scheduler holds the future event list and the simulated clock. Each key has
// at most one pending entry.
type Scheduler struct {
	events  eventHeap
	pending map[Key]*EventEntry
	clock   *clock
	nextSeq uint64
}

// NewScheduler creates an empty scheduler with the clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{
		events:  make(eventHeap, 0),
		pending: make(map[Key]*EventEntry),
		clock:   &clock{},
	}
}

// Schedule enqueues key at Time()+d. If key already has a pending entry the
// call is ignored and the earlier registration stands.
func (s *Scheduler) Schedule(d time.Duration, key Key) {
	if d < 0 {
		violate(ErrNegativeDelay, key, DummyKey(), s.clock.now, "delay %s", d)
	}
	if d > math.MaxInt64-s.clock.now {
		violate(ErrClockOverflow, key, DummyKey(), s.clock.now, "delay %s", d)
	}
	if _, ok := s.pending[key]; ok {
		return
	}
	s.nextSeq++
	e := &EventEntry{Time: s.clock.now + d, Key: key, seq: s.nextSeq}
	heap.Push(&s.events, e)
	s.pending[key] = e
}

// ScheduleNow enqueues key at the current time.
func (s *Scheduler) ScheduleNow(key Key) {
	s.Schedule(0, key)
}

// Pop removes the earliest entry and advances the clock to its time. It
// returns false once no events are left; the clock is then unchanged.
func (s *Scheduler) Pop() (EventEntry, bool) {
	if s.events.Len() == 0 {
		return EventEntry{}, false
	}
	e := heap.Pop(&s.events).(*EventEntry)
	delete(s.pending, e.Key)
	// The heap never yields an entry earlier than the clock: every entry is
	// created at now+d with d >= 0 and the clock only moves through Pop.
	s.clock.now = e.Time
	return *e, true
}

// Remove drops the pending entry of key and reports whether there was one.
func (s *Scheduler) Remove(key Key) bool {
	e, ok := s.pending[key]
	if !ok {
		return false
	}
	heap.Remove(&s.events, e.index)
	delete(s.pending, key)
	return true
}

// Pending reports whether key has an entry waiting in the queue.
func (s *Scheduler) Pending(key Key) bool {
	_, ok := s.pending[key]
	return ok
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	return s.events.Len()
}

// Time returns the current simulated time.
func (s *Scheduler) Time() time.Duration {
	return s.clock.now
}

// Clock returns a read-only view that follows this scheduler's clock.
func (s *Scheduler) Clock() ClockRef {
	return ClockRef{c: s.clock}
}
