// Package pipeline runs charts through a viewport and renders the result.
//
// The pipeline is shared by the CLI and the server so both produce the same
// bytes for the same inputs.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read and validate the chart and, optionally, an interaction script
//  2. Replay: build a viewport at the chart's size and replay the script
//  3. Render: serialize the viewport in every requested format
//
// Rendered artifacts and the replay log are cached by content hash, so an
// unchanged chart and script skip stages 2 and 3 entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ChartPath:  "latency.toml",
//	    ScriptPath: "zoom.yaml",
//	    Formats:    []string{"svg", "txt"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panzoom/pkg/cache"
	"github.com/matzehuels/panzoom/pkg/config"
	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/render"
	"github.com/matzehuels/panzoom/pkg/script"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = render.FormatSVG

// Stage identifies a step of a pipeline run.
type Stage string

const (
	StageLoad   Stage = "load"
	StageCache  Stage = "cache"
	StageReplay Stage = "replay"
	StageRender Stage = "render"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Chart takes precedence over ChartPath, Script over
	// ScriptPath.
	ChartPath  string         `json:"chart_path,omitempty"`
	Chart      *config.Chart  `json:"chart,omitempty"`
	ScriptPath string         `json:"script_path,omitempty"`
	Script     *script.Script `json:"script,omitempty"`

	// Width and Height override the chart's size when positive.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"`

	// Refresh ignores cached artifacts but still stores new ones.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// Progress, when set, is called as each stage begins. detail names the
	// stage's input: the chart source, the step count or the formats.
	Progress func(stage Stage, detail string) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Chart is the loaded chart after size overrides.
	Chart *config.Chart

	// ChartHash and ScriptHash are the content hashes used for cache keys.
	// ScriptHash is empty without a script.
	ChartHash  string
	ScriptHash string

	// Steps holds one result per replayed script step.
	Steps []script.StepResult

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Viewport is the viewport the artifacts were rendered from. It is nil
	// when every artifact came from the cache.
	Viewport *viewport.Viewport

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Series        int
	Steps         int
	Notifications int
	LoadTime      time.Duration
	ReplayTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ReplayHit bool // Whether the replay log came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Chart == nil && o.ChartPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "chart or chart_path is required")
	}
	if err := errors.ValidateNonNegative("width", o.Width); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("height", o.Height); err != nil {
		return err
	}
	if err := config.ValidateSize(o.Width, o.Height); err != nil {
		return err
	}
	if err := errors.ValidateColor(o.Background); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// HasScript reports whether the run replays a script.
func (o *Options) HasScript() bool {
	return o.Script != nil || o.ScriptPath != ""
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format, scriptHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		ScriptHash: scriptHash,
		Width:      o.Width,
		Height:     o.Height,
		Background: o.Background,
	}
}
