package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panzoom/pkg/cache"
	"github.com/matzehuels/panzoom/pkg/pipeline"
	"github.com/matzehuels/panzoom/pkg/render"
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file (single format) or base path (multiple)
	noCache bool   // disable the render cache
	watch   bool   // re-render when the chart or script changes
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		ro         renderOpts
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [chart]",
		Short: "Render a chart to SVG, PNG, PDF, text or JSON",
		Long: `Render a chart to one or more output formats.

The chart is loaded from a TOML, YAML or JSON file, drawn into a viewport at
the chart's size and serialized. With --script, the gesture script is replayed
first so the output shows the zoomed and panned state.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ChartPath = args[0]
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if ro.watch {
				return c.watchRender(cmd.Context(), opts, ro)
			}
			return c.runRender(cmd.Context(), opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, txt, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.ScriptPath, "script", "s", "", "gesture script to replay before rendering")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "override the chart width")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "override the chart height")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background color (#rgb or #rrggbb)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached artifacts")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&ro.watch, "watch", "w", false, "re-render when the chart or script changes")

	return cmd
}

// runRender executes the pipeline once and writes its artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, ro renderOpts) error {
	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)

	spin := newSpinner(ctx, os.Stderr, filepath.Base(opts.ChartPath))
	opts.Progress = spin.Stage
	spin.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spin.StopWithError(err)
		return fmt.Errorf("render: %w", err)
	}
	spin.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     opts.ChartPath,
		output:    ro.output,
		result:    result,
	}); err != nil {
		return err
	}
	if nc, ok := runner.Cache.(*cache.NullCache); ok && ro.output != "-" {
		printDropped(nc.Dropped())
	}
	return nil
}

// watchRender renders once, then again whenever the chart or script file
// changes, until ctx is canceled. Render errors are printed, not returned,
// so a broken edit does not end the session.
func (c *CLI) watchRender(ctx context.Context, opts pipeline.Options, ro renderOpts) error {
	logger := loggerFromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	files := map[string]bool{}
	for _, p := range []string{opts.ChartPath, opts.ScriptPath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		files[abs] = true
		// Watch the directory: editors often replace the file on save.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	rerender := func() {
		if err := c.runRender(ctx, opts, ro); err != nil {
			printError("%v", err)
		}
	}
	rerender()
	printInfo("Watching for changes (ctrl+c to stop)")

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if !files[abs] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			debounce.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		case <-debounce.C:
			rerender()
		}
	}
}

// =============================================================================
// Artifact Output
// =============================================================================

// artifactWriteParams groups the inputs of writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	result    *pipeline.Result
}

// writeArtifacts writes every rendered format to disk. A single format goes
// to output, or next to the input when output is empty; several formats
// share a base path and differ by extension. An output of "-" writes a
// single format to stdout.
func writeArtifacts(p artifactWriteParams) error {
	if p.output == "-" {
		if len(p.formats) != 1 {
			return fmt.Errorf("stdout output needs exactly one format, got %d", len(p.formats))
		}
		out, err := openOutput("")
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = out.Write(p.artifacts[p.formats[0]])
		return err
	}

	cached := p.result != nil && p.result.CacheInfo.RenderHit
	printSuccess("Rendered %s", p.input)
	if p.result != nil {
		printStats(p.result.Stats, cached)
	}

	base := basePath(p.output, p.input)
	for _, format := range p.formats {
		path := base + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if render.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
