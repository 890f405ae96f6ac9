package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/panzoom/pkg/pipeline"
	"github.com/matzehuels/panzoom/pkg/scale"
)

// captureOutput redirects status lines to a buffer for the rest of the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestStatsParts(t *testing.T) {
	run := pipeline.Stats{
		Series:        2,
		Steps:         1,
		Notifications: 3,
		ReplayTime:    1500 * time.Microsecond,
		RenderTime:    40 * time.Millisecond,
	}
	tests := []struct {
		name   string
		st     pipeline.Stats
		cached bool
		want   []string
	}{
		{"fresh", run, false, []string{"2 series", "1 step", "3 notifications", "replay 2ms", "render 40ms"}},
		{"cached", run, true, []string{"2 series", "1 step", "3 notifications"}},
		{"no script", pipeline.Stats{Series: 1, RenderTime: time.Millisecond}, false, []string{"1 series", "render 1ms"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statsParts(tt.st, tt.cached); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("statsParts() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintStatsStatus(t *testing.T) {
	tests := []struct {
		cached bool
		want   string
	}{
		{false, iconFresh},
		{true, iconCached},
	}
	for _, tt := range tests {
		out := captureOutput(t)
		printStats(pipeline.Stats{Series: 1}, tt.cached)
		if got := strings.TrimSpace(out.String()); !strings.HasSuffix(got, tt.want) {
			t.Errorf("printStats(cached=%v) = %q, want suffix %q", tt.cached, got, tt.want)
		}
	}
}

func TestPrintDropped(t *testing.T) {
	tests := []struct {
		name    string
		entries int
		size    int64
		want    string
	}{
		{"nothing", 0, 0, ""},
		{"one", 1, 512, "1 entry not stored (512 B)"},
		{"several", 3, 3 << 20, "3 entries not stored (3.0 MiB)"},
		{"kibibytes", 2, 1536, "2 entries not stored (1.5 KiB)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t)
			printDropped(tt.entries, tt.size)
			got := out.String()
			if tt.want == "" {
				if got != "" {
					t.Errorf("printDropped() = %q, want no output", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("printDropped() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestPrintDomains(t *testing.T) {
	out := captureOutput(t)
	printDomains(scale.Domain{Lo: 25, Hi: 75}, scale.Domain{Lo: -0.5, Hi: 2})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := [][]string{{"x domain", "[25, 75]"}, {"y domain", "[-0.5, 2]"}}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), out.String())
	}
	for i, w := range want {
		for _, s := range w {
			if !strings.Contains(lines[i], s) {
				t.Errorf("line %d = %q, missing %q", i, lines[i], s)
			}
		}
	}
}
