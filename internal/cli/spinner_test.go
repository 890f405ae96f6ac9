package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/panzoom/pkg/pipeline"
)

func TestStageLabel(t *testing.T) {
	tests := []struct {
		stage  pipeline.Stage
		detail string
		want   string
	}{
		{pipeline.StageLoad, "latency.toml", "Loading latency.toml..."},
		{pipeline.StageCache, "svg, png", "Looking up cached svg, png..."},
		{pipeline.StageReplay, "3 steps", "Replaying 3 steps on latency.toml..."},
		{pipeline.StageRender, "svg", "Rendering latency.toml as svg..."},
		{"export", "", "export latency.toml..."},
	}
	for _, tt := range tests {
		if got := stageLabel(tt.stage, "latency.toml", tt.detail); got != tt.want {
			t.Errorf("stageLabel(%s) = %q, want %q", tt.stage, got, tt.want)
		}
	}
}

func TestSpinnerFollowsPipeline(t *testing.T) {
	chart, scriptPath := writeTestFiles(t)
	spin := newSpinner(context.Background(), io.Discard, "latency.toml")

	_, err := pipeline.NewRunner(nil, nil, nil).Execute(context.Background(), pipeline.Options{
		ChartPath:  chart,
		ScriptPath: scriptPath,
		Formats:    []string{"svg", "txt"},
		Progress:   spin.Stage,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got, want := spin.Label(), "Rendering latency.toml as svg, txt..."; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	spin := newSpinner(context.Background(), &buf, "latency.toml")
	spin.Stage(pipeline.StageReplay, "2 steps")
	spin.Start()
	time.Sleep(200 * time.Millisecond)
	spin.Stop()

	out := buf.String()
	if !strings.Contains(out, "Replaying 2 steps on latency.toml...") {
		t.Errorf("output %q lacks the stage label", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output %q does not end by clearing the line", out)
	}
	if spin.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerStop(t *testing.T) {
	tests := []struct {
		name  string
		start bool
		stops int
	}{
		{"never started", false, 1},
		{"stopped twice", true, 2},
		{"stopped before start", false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			spin := newSpinner(context.Background(), &buf, "latency.toml")
			if tt.start {
				spin.Start()
			}
			for range tt.stops {
				spin.Stop()
			}
			// Starting after Stop exits at once.
			spin.Start()
			spin.Stop()
		})
	}
}

func TestSpinnerCancelled(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"canceled", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timed out", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()
			spin := newSpinner(ctx, io.Discard, "latency.toml")
			spin.Start()
			<-ctx.Done()
			spin.Stop()
			if !spin.Cancelled() {
				t.Error("Cancelled() = false after the parent context ended")
			}
		})
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	out := captureOutput(t)
	spin := newSpinner(context.Background(), io.Discard, "latency.toml")
	spin.Stage(pipeline.StageRender, "png")
	spin.Start()
	spin.StopWithError(errors.New("size 9000x400 exceeds 8192 pixels"))

	want := "Rendering latency.toml as png failed: size 9000x400 exceeds 8192 pixels"
	if !strings.Contains(out.String(), want) {
		t.Errorf("output = %q, want it to contain %q", out.String(), want)
	}
}
