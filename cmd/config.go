package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/procsim/procsim/sim/trace"
)

const (
	modelHandshake = "handshake"
	modelFanout    = "fanout"
)

// RunConfig is the model file accepted by `procsim run --config`.
// Every field can also be set by a flag; flags win when given explicitly.
type RunConfig struct {
	Model    string          `yaml:"model"`    // "handshake" or "fanout"
	Horizon  time.Duration   `yaml:"horizon"`  // 0 = run until the event list is empty
	Hold     time.Duration   `yaml:"hold"`     // handshake hold duration
	Jobs     []time.Duration `yaml:"jobs"`     // fanout job durations, one worker each
	Deadline time.Duration   `yaml:"deadline"` // fanout watchdog deadline, 0 = none
	Trace    string          `yaml:"trace"`    // "none" or "actions"
}

// defaultRunConfig mirrors the flag defaults.
func defaultRunConfig() RunConfig {
	return RunConfig{
		Model:   modelHandshake,
		Horizon: 60 * time.Second,
		Hold:    5 * time.Second,
		Jobs:    []time.Duration{3 * time.Second, time.Second, 2 * time.Second},
		Trace:   string(trace.TraceLevelActions),
	}
}

// loadRunConfig reads a model file over the defaults.
// Uses strict field checking: typos must cause errors.
func loadRunConfig(path string) (RunConfig, error) {
	cfg := defaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read model file %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse model file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the combination of settings before anything is built.
func (c RunConfig) Validate() error {
	if c.Horizon < 0 {
		return fmt.Errorf("horizon must be >= 0, got %s", c.Horizon)
	}
	if !trace.IsValidTraceLevel(c.Trace) {
		return fmt.Errorf("unknown trace level %q (want none or actions)", c.Trace)
	}
	switch c.Model {
	case modelHandshake:
		if c.Hold <= 0 {
			return fmt.Errorf("handshake hold must be > 0, got %s", c.Hold)
		}
		if c.Horizon == 0 {
			return fmt.Errorf("handshake never runs out of events; set a horizon")
		}
	case modelFanout:
		if len(c.Jobs) == 0 {
			return fmt.Errorf("fanout needs at least one job")
		}
	default:
		return fmt.Errorf("unknown model %q (want %s or %s)", c.Model, modelHandshake, modelFanout)
	}
	return nil
}
