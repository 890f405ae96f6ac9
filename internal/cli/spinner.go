package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/panzoom/pkg/pipeline"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a status line on w while a pipeline run is in flight.
// Its label follows the run: pass its Stage method as
// pipeline.Options.Progress. The animation ends when Stop is called or ctx
// is canceled, whichever comes first.
type spinner struct {
	w       io.Writer
	chart   string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started atomic.Bool

	mu    sync.Mutex
	label string
	drawn int // printed width of the last frame
}

func newSpinner(parent context.Context, w io.Writer, chart string) *spinner {
	ctx, cancel := context.WithCancel(parent)
	return &spinner{
		w:      w,
		chart:  chart,
		parent: parent,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		label:  stageLabel(pipeline.StageLoad, chart, ""),
	}
}

// stageLabel describes what a stage is doing to chart.
func stageLabel(stage pipeline.Stage, chart, detail string) string {
	switch stage {
	case pipeline.StageLoad:
		return fmt.Sprintf("Loading %s...", chart)
	case pipeline.StageCache:
		return fmt.Sprintf("Looking up cached %s...", detail)
	case pipeline.StageReplay:
		return fmt.Sprintf("Replaying %s on %s...", detail, chart)
	case pipeline.StageRender:
		return fmt.Sprintf("Rendering %s as %s...", chart, detail)
	}
	return fmt.Sprintf("%s %s...", stage, chart)
}

// Stage switches the label to the given pipeline stage.
func (s *spinner) Stage(stage pipeline.Stage, detail string) {
	s.mu.Lock()
	s.label = stageLabel(stage, s.chart, detail)
	s.mu.Unlock()
}

// Label returns the current status text.
func (s *spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// Start draws a frame every 80ms in a background goroutine. Only the first
// call has an effect.
func (s *spinner) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.label)
	pad := max(s.drawn-lipgloss.Width(line), 0)
	fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad))
	s.drawn = lipgloss.Width(line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
		s.drawn = 0
	}
}

// Stop ends the animation and erases the line. It is safe to call more than
// once, and without Start.
func (s *spinner) Stop() {
	s.cancel()
	if s.started.Load() {
		<-s.done
	}
}

// StopWithError stops the spinner and reports which stage failed.
func (s *spinner) StopWithError(err error) {
	label := s.Label()
	s.Stop()
	printError("%s failed: %v", strings.TrimSuffix(label, "..."), err)
}

// Cancelled reports whether the parent context was canceled, for instance
// by an interrupt.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
