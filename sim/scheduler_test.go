package sim

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScheduler_PopsInTimeOrder tests that entries come out earliest first and
// that the clock follows them.
func TestScheduler_PopsInTimeOrder(t *testing.T) {
	s := NewScheduler()
	s.Schedule(4*time.Second, Key{id: 1})
	s.Schedule(1*time.Second, Key{id: 2})
	s.Schedule(8*time.Second, Key{id: 3})

	assert.Equal(t, time.Duration(0), s.Time(), "scheduling must not move the clock")

	want := []struct {
		at  time.Duration
		key int
	}{
		{1 * time.Second, 2},
		{4 * time.Second, 1},
		{8 * time.Second, 3},
	}
	for _, w := range want {
		ev, ok := s.Pop()
		require.True(t, ok)
		assert.Equal(t, w.key, ev.Key.ID())
		assert.Equal(t, w.at, ev.Time)
		assert.Equal(t, w.at, s.Time(), "clock must equal the popped entry's time")
	}

	_, ok := s.Pop()
	assert.False(t, ok, "empty scheduler must report no event")
	assert.Equal(t, 8*time.Second, s.Time(), "empty pop must leave the clock alone")
}

// TestScheduler_RandomSchedules_NonDecreasing tests ordering over many
// interleaved schedule and pop calls.
func TestScheduler_RandomSchedules_NonDecreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewScheduler()
	next := 0
	last := time.Duration(0)

	for round := 0; round < 200; round++ {
		n := rng.Intn(4)
		for i := 0; i < n; i++ {
			s.Schedule(time.Duration(rng.Intn(100))*time.Millisecond, Key{id: next})
			next++
		}
		if ev, ok := s.Pop(); ok {
			assert.GreaterOrEqual(t, ev.Time, last, "round %d went back in time", round)
			assert.Equal(t, ev.Time, s.Time())
			last = ev.Time
		}
	}
	for {
		ev, ok := s.Pop()
		if !ok {
			break
		}
		assert.GreaterOrEqual(t, ev.Time, last)
		last = ev.Time
	}
}

// TestScheduler_Reschedule_KeepsEarliestRegistration tests that a pending key
// cannot be moved by scheduling it again.
func TestScheduler_Reschedule_KeepsEarliestRegistration(t *testing.T) {
	// GIVEN K pending at t=4
	s := NewScheduler()
	k := Key{id: 9}
	s.Schedule(4*time.Second, k)

	// WHEN K is scheduled again at t=1
	s.Schedule(1*time.Second, k)
	s.ScheduleNow(k)

	// THEN only the t=4 entry exists
	assert.Equal(t, 1, s.Len())
	ev, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, 4*time.Second, ev.Time)
	_, ok = s.Pop()
	assert.False(t, ok)
}

// TestScheduler_EqualTimes_FIFO tests the tie-break between equal times.
func TestScheduler_EqualTimes_FIFO(t *testing.T) {
	s := NewScheduler()
	for _, id := range []int{5, 3, 8, 1} {
		s.ScheduleNow(Key{id: id})
	}

	var got []int
	for {
		ev, ok := s.Pop()
		if !ok {
			break
		}
		got = append(got, ev.Key.ID())
	}
	assert.Equal(t, []int{5, 3, 8, 1}, got)
}

func TestScheduler_Remove(t *testing.T) {
	// GIVEN three pending keys
	s := NewScheduler()
	a, b, c := Key{id: 0}, Key{id: 1}, Key{id: 2}
	s.Schedule(1*time.Second, a)
	s.Schedule(2*time.Second, b)
	s.Schedule(3*time.Second, c)

	// WHEN b is removed
	assert.True(t, s.Remove(b))

	// THEN a second remove and a remove of an unknown key report false
	assert.False(t, s.Remove(b))
	assert.False(t, s.Remove(Key{id: 42}))
	assert.False(t, s.Pending(b))

	// AND b never pops
	var got []int
	for {
		ev, ok := s.Pop()
		if !ok {
			break
		}
		got = append(got, ev.Key.ID())
	}
	assert.Equal(t, []int{0, 2}, got)

	// WHEN b is rescheduled after removal it pops again
	s.Schedule(time.Second, b)
	ev, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, b, ev.Key)
	assert.Equal(t, 4*time.Second, ev.Time)
}

func TestScheduler_ScheduleIsRelativeToClock(t *testing.T) {
	s := NewScheduler()
	s.Schedule(8*time.Second, Key{id: 0})
	s.Pop()

	s.Schedule(10*time.Second, Key{id: 1})
	s.Schedule(2*time.Second, Key{id: 2})

	ev, _ := s.Pop()
	assert.Equal(t, 2, ev.Key.ID())
	assert.Equal(t, 10*time.Second, s.Time())
	ev, _ = s.Pop()
	assert.Equal(t, 1, ev.Key.ID())
	assert.Equal(t, 18*time.Second, s.Time())
}

func TestScheduler_NegativeDelay_Panics(t *testing.T) {
	s := NewScheduler()
	requireViolation(t, ErrNegativeDelay, func() {
		s.Schedule(-time.Second, Key{id: 0})
	})
}

func TestScheduler_DelayPastMaxDuration_Panics(t *testing.T) {
	// GIVEN a clock already past zero
	s := NewScheduler()
	s.Schedule(time.Second, Key{id: 0})
	s.Pop()

	// WHEN a delay would push the wake-up past the largest Duration
	// THEN scheduling fails instead of wrapping to a negative time
	requireViolation(t, ErrClockOverflow, func() {
		s.Schedule(time.Duration(math.MaxInt64), Key{id: 1})
	})
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, time.Second, s.Time())

	// AND the largest delay that still fits is accepted
	s.Schedule(time.Duration(math.MaxInt64)-time.Second, Key{id: 1})
	e, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, time.Duration(math.MaxInt64), e.Time)
}

func TestClockRef_FollowsScheduler(t *testing.T) {
	s := NewScheduler()
	ref := s.Clock()
	assert.Equal(t, time.Duration(0), ref.Time())

	s.Schedule(6*time.Second, Key{id: 0})
	s.Pop()
	assert.Equal(t, 6*time.Second, ref.Time())

	var zero ClockRef
	assert.Equal(t, time.Duration(0), zero.Time())
}
