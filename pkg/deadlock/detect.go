package deadlock

import (
	"time"

	"github.com/matzehuels/waitgraph/pkg/rag"
)

// Analysis bundles every stage output of a Detect call.
type Analysis struct {
	Model     *Model
	Reduction *Reduction
	Cycles    [][]string
	Report    *Report
}

// Option configures Detect.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the time source for report log timestamps. A fixed clock
// makes reports for the same graph byte-identical.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Detect analyzes g and returns the full Analysis. It is a pure function of
// g and the clock; g is read, never written.
func Detect(g rag.Graph, opts ...Option) *Analysis {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	m := Parse(g)
	red := Reduce(m)

	procs := red.Deadlocked(m)
	resources := []string{}
	cycles := [][]string{}
	if len(procs) > 0 {
		resources = m.Touched(procs)
		cycles = FindCycles(m, procs, resources)
	}

	return &Analysis{
		Model:     m,
		Reduction: red,
		Cycles:    cycles,
		Report: BuildReport(ReportInput{
			SafeSequence:        red.SafeSequence,
			DeadlockedProcesses: procs,
			DeadlockedResources: resources,
			Cycles:              cycles,
			Nodes:               g.Nodes,
			Now:                 o.now(),
		}),
	}
}
