// Package cli implements the waitgraph command-line interface.
//
// # Commands
//
//   - analyze: Run deadlock detection and print or save the report
//   - render: Draw the graph as DOT, SVG or JSON with the deadlock highlighted
//   - explain: Step through the reduction interactively
//   - sample: Write the circular-wait sample graph
//   - serve: Start the HTTP API
//   - cache: Manage the local result cache
//   - completion: Generate shell completion scripts
//
// # Output
//
// Reports, renders and samples go to stdout (or the -o file). Spinners,
// outcome lines and logs go to stderr, so stdout can be piped.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and retrieved with loggerFromContext; the
// pipeline runner logs through the same logger.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w with short wall-clock timestamps
// such as "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a command stage took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Analysis complete (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the command logger, or log.Default() outside a
// command run.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
