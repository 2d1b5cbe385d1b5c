package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procsim/procsim/sim"
	"github.com/procsim/procsim/sim/internal/testutil"
	"github.com/procsim/procsim/sim/trace"
)

func TestFanout_NoDeadline_AllJobsComplete(t *testing.T) {
	// GIVEN three jobs of 3s, 1s and 2s
	s := sim.NewSimulation[struct{}]()
	f, err := NewFanout(s, FanoutConfig{Jobs: []time.Duration{3 * time.Second, time.Second, 2 * time.Second}})
	require.NoError(t, err)

	// WHEN run to exhaustion
	s.RunUntilEmpty()

	// THEN every task completed and the clock stopped at the longest job
	assert.Equal(t, 3*time.Second, s.Time())
	assert.Equal(t, 0, s.Tasks())
	res := f.Result(s.State())
	assert.True(t, res.Finished)
	assert.Equal(t, 3*time.Second, res.CompletedAt)
	assert.Equal(t, 0, res.Remaining)
	for i, job := range res.Jobs {
		assert.Equal(t, JobDone, job.Status, "job %d", i)
		assert.Equal(t, job.Duration, job.FinishedAt, "job %d", i)
	}
	assert.True(t, f.Watchdog.IsDummy())
}

func TestFanout_DeadlineBeforeLongestJob_CancelsStragglers(t *testing.T) {
	// GIVEN a 2.5s deadline over jobs of 3s, 1s and 2s
	s := sim.NewSimulation[struct{}]()
	defer s.Close()
	f, err := NewFanout(s, FanoutConfig{
		Jobs:     []time.Duration{3 * time.Second, time.Second, 2 * time.Second},
		Deadline: 2500 * time.Millisecond,
	})
	require.NoError(t, err)

	// WHEN run to exhaustion
	s.RunUntilEmpty()

	// THEN the 3s job was cancelled and the watchdog woke the dispatcher
	assert.Equal(t, 2500*time.Millisecond, s.Time())
	res := f.Result(s.State())
	assert.Equal(t, JobCancelled, res.Jobs[0].Status)
	assert.Equal(t, JobDone, res.Jobs[1].Status)
	assert.Equal(t, JobDone, res.Jobs[2].Status)
	assert.True(t, res.Finished)
	assert.Equal(t, 2500*time.Millisecond, res.CompletedAt)

	// AND the cancelled worker is left live and passive
	assert.Equal(t, 1, s.Tasks())
	state, live := s.Activity(f.Workers[0])
	require.True(t, live)
	assert.Equal(t, sim.Passive, state)
}

func TestFanout_DeadlineAfterLongestJob_DispatcherCancelsWatchdog(t *testing.T) {
	// GIVEN a 10s deadline over jobs that finish by 3s
	s := sim.NewSimulation[struct{}]()
	f, err := NewFanout(s, FanoutConfig{
		Jobs:     []time.Duration{3 * time.Second, time.Second},
		Deadline: 10 * time.Second,
	})
	require.NoError(t, err)

	// WHEN run to exhaustion
	s.RunUntilEmpty()

	// THEN the watchdog's timer never fired and everyone completed at 3s
	assert.Equal(t, 3*time.Second, s.Time())
	assert.Equal(t, 0, s.Tasks())
	res := f.Result(s.State())
	assert.False(t, res.WatchdogArmed)
	assert.True(t, res.Finished)
}

func TestFanout_SingleWorker(t *testing.T) {
	s := sim.NewSimulation[struct{}]()
	_, err := NewFanout(s, FanoutConfig{Jobs: []time.Duration{4 * time.Second}})
	require.NoError(t, err)

	s.RunUntilEmpty()

	assert.Equal(t, 4*time.Second, s.Time())
	assert.Equal(t, 0, s.Tasks())
}

func TestNewFanout_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  FanoutConfig
	}{
		{"no jobs", FanoutConfig{}},
		{"negative job", FanoutConfig{Jobs: []time.Duration{-time.Second}}},
		{"negative deadline", FanoutConfig{Jobs: []time.Duration{time.Second}, Deadline: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sim.NewSimulation[struct{}]()
			_, err := NewFanout(s, tt.cfg)
			assert.Error(t, err)
			assert.Equal(t, 0, s.Tasks(), "nothing may be registered on error")
		})
	}
}

func TestFanout_DeadlineTrace_MatchesGolden(t *testing.T) {
	// GIVEN a traced fan-out whose 3s job outlives a 2.5s deadline
	s := sim.NewSimulation[struct{}]()
	defer s.Close()
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelActions})
	s.SetTrace(st)
	_, err := NewFanout(s, FanoutConfig{
		Jobs:     []time.Duration{3 * time.Second, time.Second, 2 * time.Second},
		Deadline: 2500 * time.Millisecond,
	})
	require.NoError(t, err)

	// WHEN it runs until no events are left
	s.RunUntilEmpty()

	// THEN the watchdog cancels worker 0 and wakes the dispatcher itself
	testutil.AssertTraceGolden(t, "fanout_deadline_trace", st)
}
