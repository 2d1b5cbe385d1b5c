// Package testutil provides shared test infrastructure for the procsim kernel.
// It consolidates golden-file helpers used across sim/ and sim/model/ test
// packages.
package testutil

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/procsim/procsim/sim/trace"
)

// NewGolden returns a goldie instance reading fixtures from the calling
// package's testdata/golden directory. Run `go test -update` to rewrite them.
func NewGolden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)
}

// FormatTrace renders trace records one per line, e.g.
//
//	#3 t=5s task(0) activate -> task(1)
//
// The layout is stable so traces can be compared against golden files.
func FormatTrace(events []trace.EventRecord) []byte {
	var b bytes.Buffer
	for _, e := range events {
		fmt.Fprintf(&b, "#%d t=%s task(%d)", e.Seq, e.Clock, e.Task)
		switch {
		case e.Completed:
			b.WriteString(" completed")
		case e.Action == "hold":
			fmt.Fprintf(&b, " hold %s", e.Duration)
		default:
			b.WriteString(" " + e.Action)
		}
		if len(e.Targets) > 0 {
			b.WriteString(" ->")
			for _, id := range e.Targets {
				fmt.Fprintf(&b, " task(%d)", id)
			}
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// AssertTraceGolden compares the formatted trace against testdata/golden/<name>.golden.
func AssertTraceGolden(t *testing.T, name string, st *trace.SimulationTrace) {
	t.Helper()
	NewGolden(t).Assert(t, name, FormatTrace(st.Events))
}
