package trace

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents  int
	Completions  int
	ActionCounts map[string]int // action kind → count
	TaskEvents   map[int]int    // task ID → events processed
	UniqueTasks  int
	EndClock     time.Duration
	MeanHold     time.Duration
	StdDevHold   time.Duration
	MaxHold      time.Duration
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ActionCounts: make(map[string]int),
		TaskEvents:   make(map[int]int),
	}
	if st == nil {
		return summary
	}

	var holds []float64
	for _, r := range st.Events {
		summary.TotalEvents++
		summary.TaskEvents[r.Task]++
		if r.Clock > summary.EndClock {
			summary.EndClock = r.Clock
		}
		if r.Completed {
			summary.Completions++
			continue
		}
		summary.ActionCounts[r.Action]++
		if r.Action == "hold" {
			holds = append(holds, float64(r.Duration))
			if r.Duration > summary.MaxHold {
				summary.MaxHold = r.Duration
			}
		}
	}

	if len(holds) > 0 {
		mean, std := stat.MeanStdDev(holds, nil)
		summary.MeanHold = time.Duration(mean)
		if len(holds) > 1 {
			summary.StdDevHold = time.Duration(std)
		}
	}
	summary.UniqueTasks = len(summary.TaskEvents)

	return summary
}
