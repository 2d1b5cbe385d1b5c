package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/procsim/procsim/sim"
	"github.com/procsim/procsim/sim/model"
	"github.com/procsim/procsim/sim/trace"
)

// Report is the outcome of one `procsim run`.
type Report struct {
	RunID     string
	Model     string
	EndTime   time.Duration
	LiveTasks int
	Pending   int
	Summary   *trace.TraceSummary
	Traced    bool
	Jobs      []model.Job // fanout only
}

// newRunID returns a time-ordered run identifier, falling back to a random one.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// runModel builds the configured model, runs it and collects a Report.
func runModel(cfg RunConfig) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := newRunID()
	log := logrus.WithFields(logrus.Fields{"run_id": runID, "model": cfg.Model})

	s := sim.NewSimulation[struct{}]()
	defer s.Close()
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.Trace), RunID: runID})
	s.SetTrace(st)

	var fanout *model.Fanout
	switch cfg.Model {
	case modelHandshake:
		model.NewHandshake(s, cfg.Hold)
	case modelFanout:
		var err error
		fanout, err = model.NewFanout(s, model.FanoutConfig{Jobs: cfg.Jobs, Deadline: cfg.Deadline})
		if err != nil {
			return nil, err
		}
	}

	log.Infof("Starting simulation: horizon=%s, tasks=%d", cfg.Horizon, s.Tasks())
	startTime := time.Now()
	if cfg.Horizon > 0 {
		s.RunWithLimit(cfg.Horizon)
	} else {
		s.RunUntilEmpty()
	}
	log.Infof("Simulation ended at t=%s after %s wall time", s.Time(), time.Since(startTime))

	report := &Report{
		RunID:     runID,
		Model:     cfg.Model,
		EndTime:   s.Time(),
		LiveTasks: s.Tasks(),
		Pending:   s.Pending(),
		Summary:   trace.Summarize(st),
		Traced:    st.Enabled(),
	}
	if fanout != nil {
		report.Jobs = fanout.Result(s.State()).Jobs
	}
	return report, nil
}

// writeReport prints the report in a stable, diff-friendly layout.
// The run ID is left out so reports of identical runs compare equal.
func writeReport(w io.Writer, r *Report) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("=== Simulation Report ===\n")
	printf("Model                : %s\n", r.Model)
	printf("End Time             : %s\n", r.EndTime)
	printf("Live Tasks           : %d\n", r.LiveTasks)
	printf("Pending Events       : %d\n", r.Pending)
	if r.Traced {
		s := r.Summary
		printf("Events               : %d\n", s.TotalEvents)
		printf("Holds                : %d\n", s.ActionCounts[sim.ActionHold.String()])
		printf("Passivations         : %d\n", s.ActionCounts[sim.ActionPassivate.String()])
		printf("Activations          : %d\n", s.ActionCounts[sim.ActionActivateOne.String()])
		printf("Group Activations    : %d\n", s.ActionCounts[sim.ActionActivateMany.String()])
		printf("Cancellations        : %d\n", s.ActionCounts[sim.ActionCancel.String()])
		printf("Completions          : %d\n", s.Completions)
		printf("Mean Hold            : %s\n", s.MeanHold)
		printf("Hold StdDev          : %s\n", s.StdDevHold)
	}
	for i, job := range r.Jobs {
		printf("Job %-17d: %s after %s", i, job.Status, job.Duration)
		if job.Status == model.JobDone {
			printf(" (finished at %s)", job.FinishedAt)
		}
		printf("\n")
	}
	return err
}
