// Package cli implements the flowlens command-line interface.
//
// The CLI is built with cobra and logs through charmbracelet/log. Human
// output (success lines, file lists, the spinner and the result browser)
// is styled with lipgloss and bubbletea.
//
// # Commands
//
//   - render: Render flow files, or the flows changed between two git revisions
//   - view: Browse a results file written by render
//   - serve: Expose rendering over HTTP
//   - cache: Manage the local diagram cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Command
// helpers pick the logger up from context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat renders timestamps as "HH:MM:SS.cc".
const logTimeFormat = "15:04:05.00"

// newLogger creates the CLI logger: timestamped, filtered at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// progress logs how long a step took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// elapsed is the time since the step started, rounded to milliseconds.
func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs the formatted message with an "elapsed" field.
func (p *progress) done(format string, args ...any) {
	p.logger.Info(fmt.Sprintf(format, args...), "elapsed", p.elapsed())
}

type ctxKey struct{}

// withLogger attaches l to ctx for command helpers.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or the
// package default when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
