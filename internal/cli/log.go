// Package cli implements the panzoom command-line interface.
//
// This package provides commands for rendering charts, replaying scripted
// gestures against them, exploring them interactively in the terminal, and
// serving live viewports over HTTP. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Render a chart to SVG, PNG, PDF, text or a JSON snapshot
//   - replay: Replay a gesture script and list every domain notification
//   - explore: Pan and zoom a chart in the terminal
//   - serve: Serve live viewports over HTTP and WebSocket
//   - cache: Manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/panzoom/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panzoom/pkg/pipeline"
)

// newLogger writes to w at level, stamping each line with "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a pipeline run for the log. Stage has the signature of
// pipeline.Options.Progress and logs each stage at debug level with the
// time spent in the one before it; done logs the total at info level.
type progress struct {
	logger *log.Logger
	start  time.Time

	mu    sync.Mutex
	stage pipeline.Stage
	since time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, since: now}
}

// Stage records the start of stage.
func (p *progress) Stage(stage pipeline.Stage, detail string) {
	p.mu.Lock()
	prev, took := p.stage, time.Since(p.since)
	p.stage, p.since = stage, time.Now()
	p.mu.Unlock()

	kv := []any{"stage", stage, "detail", detail}
	if prev != "" {
		kv = append(kv, "after", prev, "took", took.Round(time.Microsecond))
	}
	p.logger.Debug("pipeline stage", kv...)
}

// done logs msg with the elapsed time, e.g. "Replayed 4 steps (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for the command's handlers.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default when a handler runs outside it (as in tests).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
