package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panzoom/pkg/cache"
	"github.com/matzehuels/panzoom/pkg/config"
	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/observability"
	"github.com/matzehuels/panzoom/pkg/render"
	"github.com/matzehuels/panzoom/pkg/script"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → replay → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "invalid options")
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	opts.progress(StageLoad, opts.source())
	loadStart := time.Now()
	chart, s, err := r.Load(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "load")
	}
	result.Chart = chart
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Series = len(chart.Series)
	if result.ChartHash, err = cache.HashJSON(chart); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash chart")
	}
	if s != nil {
		result.Stats.Steps = len(s.Steps)
		if result.ScriptHash, err = cache.HashJSON(s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash script")
		}
	}

	r.Logger.Info("loaded chart",
		"title", chart.Title,
		"series", len(chart.Series),
		"steps", result.Stats.Steps,
		"duration", result.Stats.LoadTime)

	if !opts.Refresh {
		opts.progress(StageCache, strings.Join(opts.Formats, ", "))
	}
	if !opts.Refresh && r.fromCache(ctx, result, opts) {
		r.Logger.Info("served from cache", "formats", opts.Formats)
		return result, nil
	}

	// Stage 2: Replay
	opts.progress(StageReplay, fmt.Sprintf("%d steps", result.Stats.Steps))
	replayStart := time.Now()
	surf, err := render.NewMulti(render.Style{Title: chart.Title, Background: opts.Background})
	if err != nil {
		return nil, err
	}
	v, steps, err := r.Replay(ctx, chart, s, surf, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "replay")
	}
	result.Viewport = v
	result.Steps = steps
	result.Stats.ReplayTime = time.Since(replayStart)
	result.Stats.Notifications = countNotifications(steps)
	if s != nil {
		r.store(ctx, "replay", r.Keyer.ReplayKey(result.ChartHash, result.ScriptHash), steps, cache.TTLReplay)
	}

	r.Logger.Info("replayed script",
		"steps", len(steps),
		"notifications", result.Stats.Notifications,
		"duration", result.Stats.ReplayTime)

	// Stage 3: Render
	opts.progress(StageRender, strings.Join(opts.Formats, ", "))
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, v, surf, opts.Formats)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "render")
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(result.ChartHash, opts.ArtifactKeyOpts(format, result.ScriptHash))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the chart and script named by opts and applies the size
// overrides. The script is nil when opts has none.
func (r *Runner) Load(ctx context.Context, opts Options) (chart *config.Chart, s *script.Script, err error) {
	source := opts.source()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()
	defer func() {
		n := 0
		if chart != nil {
			n = len(chart.Series)
		}
		hooks.OnLoadComplete(ctx, source, n, time.Since(start), err)
	}()

	if opts.Chart != nil {
		c := *opts.Chart
		c.Series = append([]config.Series(nil), opts.Chart.Series...)
		chart = &c
		chart.SetDefaults()
		if err := chart.Validate(); err != nil {
			return nil, nil, err
		}
	} else if chart, err = config.Load(opts.ChartPath); err != nil {
		return nil, nil, err
	}
	if opts.Width > 0 {
		chart.Width = opts.Width
	}
	if opts.Height > 0 {
		chart.Height = opts.Height
	}

	switch {
	case opts.Script != nil:
		if err := opts.Script.Validate(); err != nil {
			return nil, nil, err
		}
		s = opts.Script
	case opts.ScriptPath != "":
		if s, err = script.Load(opts.ScriptPath); err != nil {
			return nil, nil, err
		}
	}
	return chart, s, nil
}

// Replay builds a viewport for chart on surf at the chart's size and runs
// s against it. s may be nil, in which case only the initial draw happens.
func (r *Runner) Replay(ctx context.Context, chart *config.Chart, s *script.Script, surf viewport.Surface, opts Options) (v *viewport.Viewport, steps []script.StepResult, err error) {
	rec := &script.Recorder{}
	v, err = viewport.New(rec.Attach(chart.ViewportConfig(viewport.Config{
		Surface: surf,
		Logger:  opts.Logger,
	})))
	if err != nil {
		return nil, nil, err
	}
	if err := v.Resize(chart.Width, chart.Height); err != nil {
		return nil, nil, err
	}
	if s == nil {
		return v, nil, nil
	}

	hooks := observability.Pipeline()
	hooks.OnReplayStart(ctx, len(s.Steps))
	start := time.Now()
	steps, err = script.Replay(v, rec, s)
	hooks.OnReplayComplete(ctx, len(steps), countNotifications(steps), time.Since(start), err)
	if err != nil {
		return nil, steps, err
	}
	return v, steps, nil
}

// Render serializes v in every format. surf must be the surface v was
// built with.
func (r *Runner) Render(ctx context.Context, v *viewport.Viewport, surf *render.Multi, formats []string) (artifacts map[string][]byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, formats, time.Since(start), err) }()

	artifacts = make(map[string][]byte, len(formats))
	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render canceled")
		}
		data, err := surf.Render(v, f)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "%s", f)
		}
		artifacts[f] = data
	}
	return artifacts, nil
}

// fromCache fills result from the cache when every artifact and, with a
// script, the replay log are present.
func (r *Runner) fromCache(ctx context.Context, result *Result, opts Options) bool {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(result.ChartHash, opts.ArtifactKeyOpts(format, result.ScriptHash))
		data, ok := r.lookup(ctx, "artifact", key)
		if !ok {
			return false
		}
		artifacts[format] = data
	}

	var steps []script.StepResult
	if result.ScriptHash != "" {
		data, ok := r.lookup(ctx, "replay", r.Keyer.ReplayKey(result.ChartHash, result.ScriptHash))
		if !ok || json.Unmarshal(data, &steps) != nil {
			return false
		}
		result.CacheInfo.ReplayHit = true
	}

	result.Artifacts = artifacts
	result.Steps = steps
	result.Stats.Notifications = countNotifications(steps)
	result.CacheInfo.RenderHit = true
	return true
}

func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("cache encode failed", "type", keyType, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (o *Options) progress(stage Stage, detail string) {
	if o.Progress != nil {
		o.Progress(stage, detail)
	}
}

// source names where the chart comes from, for progress and hooks.
func (o *Options) source() string {
	if o.Chart != nil {
		return "inline"
	}
	return o.ChartPath
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func countNotifications(steps []script.StepResult) int {
	n := 0
	for _, s := range steps {
		n += len(s.Notifications)
	}
	return n
}
