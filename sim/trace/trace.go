package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelActions captures every processed event and the action it produced.
	TraceLevelActions TraceLevel = "actions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:    true,
	TraceLevelActions: true,
	"":                true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	RunID string // identifies the run in logs and reports
}

// SimulationTrace collects event records during a simulation run.
type SimulationTrace struct {
	Config TraceConfig
	Events []EventRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Events: make([]EventRecord, 0),
	}
}

// Enabled reports whether records should be collected.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelActions
}

// RecordEvent appends an event record, numbering it in arrival order.
// It is a no-op when tracing is disabled.
func (st *SimulationTrace) RecordEvent(record EventRecord) {
	if !st.Enabled() {
		return
	}
	record.Seq = len(st.Events) + 1
	st.Events = append(st.Events, record)
}

// ByTask returns the records produced by the given task, in order.
func (st *SimulationTrace) ByTask(task int) []EventRecord {
	if st == nil {
		return nil
	}
	var out []EventRecord
	for _, r := range st.Events {
		if r.Task == task {
			out = append(out, r)
		}
	}
	return out
}
