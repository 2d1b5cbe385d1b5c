package model

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/procsim/procsim/sim"
)

// JobStatus is the lifecycle state of one fan-out job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobDone      JobStatus = "done"
	JobCancelled JobStatus = "cancelled"
)

// Job is the shared record of one worker's job.
type Job struct {
	Worker     sim.Key
	Duration   time.Duration
	Status     JobStatus
	FinishedAt time.Duration
}

// FanoutState is the store value shared by the dispatcher, the workers and
// the watchdog.
type FanoutState struct {
	Jobs              []Job
	Remaining         int
	DispatcherWaiting bool // dispatcher is passive and nobody has woken it yet
	WatchdogArmed     bool // watchdog is holding until the deadline
	Finished          bool // dispatcher has collected the results
	CompletedAt       time.Duration
}

// FanoutConfig parameterizes the fan-out model.
type FanoutConfig struct {
	Jobs     []time.Duration // one worker per entry, holding for that long
	Deadline time.Duration   // 0 = no watchdog
}

// Fanout is a fan-out/fan-in model. A dispatcher wakes every worker at once
// with ActivateMany and passivates. Each worker holds for its job duration;
// the last one to finish wakes the dispatcher. An optional watchdog cancels
// the workers still running at the deadline and wakes the dispatcher itself.
// When the dispatcher finishes first it cancels the watchdog's timer and
// wakes it early so it can exit.
type Fanout struct {
	Dispatcher sim.Key
	Workers    []sim.Key
	Watchdog   sim.Key // DummyKey when no deadline is set
	State      sim.StateKey[FanoutState]
}

// NewFanout adds the dispatcher, workers and optional watchdog to s and
// schedules them at the current time.
func NewFanout(s *sim.Simulation[struct{}], cfg FanoutConfig) (*Fanout, error) {
	if len(cfg.Jobs) == 0 {
		return nil, fmt.Errorf("fanout needs at least one job")
	}
	for i, d := range cfg.Jobs {
		if d < 0 {
			return nil, fmt.Errorf("job %d has negative duration %s", i, d)
		}
	}
	if cfg.Deadline < 0 {
		return nil, fmt.Errorf("negative deadline %s", cfg.Deadline)
	}

	st := s.State()
	clock := s.Clock()
	f := &Fanout{Watchdog: sim.DummyKey()}

	jobs := make([]Job, len(cfg.Jobs))
	for i, d := range cfg.Jobs {
		jobs[i] = Job{Worker: sim.DummyKey(), Duration: d, Status: JobPending}
	}
	f.State = sim.Insert(st, FanoutState{Jobs: jobs, Remaining: len(jobs)})
	// Workers need the dispatcher's key, which is only known once they exist.
	dispatcherKey := sim.Insert(st, sim.DummyKey())

	for i := range cfg.Jobs {
		key := s.AddTask(sim.Coroutine(func(p *sim.Proc[struct{}], _ struct{}) {
			f.worker(p, st, clock, i, dispatcherKey)
		}))
		f.Workers = append(f.Workers, key)
		f.mustState(st).Jobs[i].Worker = key
	}
	f.Dispatcher = s.AddTask(sim.Coroutine(func(p *sim.Proc[struct{}], _ struct{}) {
		f.dispatcher(p, st, clock)
	}))
	sim.Set(st, dispatcherKey, f.Dispatcher)

	if cfg.Deadline > 0 {
		f.Watchdog = s.AddTask(sim.Coroutine(func(p *sim.Proc[struct{}], _ struct{}) {
			f.watchdog(p, st, cfg.Deadline)
		}))
	}

	// Workers go first so they are passive by the time the dispatcher wakes
	// them at t=now.
	for _, w := range f.Workers {
		s.ScheduleNow(w)
	}
	s.ScheduleNow(f.Dispatcher)
	if !f.Watchdog.IsDummy() {
		s.ScheduleNow(f.Watchdog)
	}
	return f, nil
}

func (f *Fanout) mustState(st *sim.Store) *FanoutState {
	fs, ok := sim.GetMut(st, f.State)
	if !ok {
		logrus.Panicf("fanout: state missing from store")
	}
	return fs
}

func (f *Fanout) dispatcher(p *sim.Proc[struct{}], st *sim.Store, clock sim.ClockRef) {
	log := logrus.WithField("task", "dispatcher")

	log.Debugf("-> activate %d workers", len(f.Workers))
	p.Activate(f.Workers...)

	f.mustState(st).DispatcherWaiting = true
	p.Passivate()

	fs := f.mustState(st)
	fs.Finished = true
	fs.CompletedAt = clock.Time()
	armed := fs.WatchdogArmed
	log.Debugf("<- woken at %s, %d jobs outstanding", clock.Time(), fs.Remaining)

	if armed {
		p.Cancel(f.Watchdog)
		p.Activate(f.Watchdog)
	}
}

func (f *Fanout) worker(p *sim.Proc[struct{}], st *sim.Store, clock sim.ClockRef, idx int,
	dispatcherKey sim.StateKey[sim.Key]) {
	log := logrus.WithField("task", fmt.Sprintf("worker-%d", idx))

	p.Passivate()

	fs := f.mustState(st)
	fs.Jobs[idx].Status = JobRunning
	d := fs.Jobs[idx].Duration
	log.Debugf("-> hold %s", d)
	p.Hold(d)

	fs = f.mustState(st)
	fs.Jobs[idx].Status = JobDone
	fs.Jobs[idx].FinishedAt = clock.Time()
	fs.Remaining--
	if fs.Remaining == 0 && fs.DispatcherWaiting {
		fs.DispatcherWaiting = false
		dispatcher, _ := sim.Get(st, dispatcherKey)
		log.Debug("-> activate dispatcher")
		p.Activate(dispatcher)
	}
}

func (f *Fanout) watchdog(p *sim.Proc[struct{}], st *sim.Store, deadline time.Duration) {
	log := logrus.WithField("task", "watchdog")

	f.mustState(st).WatchdogArmed = true
	p.Hold(deadline)
	f.mustState(st).WatchdogArmed = false

	if f.mustState(st).Finished {
		log.Debug("dispatcher finished first")
		return
	}

	for i := range f.Workers {
		fs := f.mustState(st)
		if fs.Jobs[i].Status != JobRunning {
			continue
		}
		fs.Jobs[i].Status = JobCancelled
		fs.Remaining--
		log.Debugf("-> cancel worker-%d", i)
		p.Cancel(fs.Jobs[i].Worker)
	}

	fs := f.mustState(st)
	if fs.DispatcherWaiting {
		fs.DispatcherWaiting = false
		p.Activate(f.Dispatcher)
	}
}

// Result returns a copy of the shared fan-out state.
func (f *Fanout) Result(st *sim.Store) FanoutState {
	fs, _ := sim.Get(st, f.State)
	return fs
}
