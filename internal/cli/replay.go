package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panzoom/pkg/pipeline"
	"github.com/matzehuels/panzoom/pkg/render"
	"github.com/matzehuels/panzoom/pkg/script"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "replay [chart] [script]",
		Short: "Replay a gesture script and list the domain notifications",
		Long: `Replay a gesture script against a chart.

Every step of the script is applied to a fresh viewport in order. The command
prints one row per domain-change notification, with the step that caused it,
the axis, the new domain and whether it was user initiated, followed by the
final state of both axes.

With --output, the per-step results are also written as JSON.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ChartPath = args[0]
			opts.ScriptPath = args[1]
			opts.Formats = []string{render.FormatJSON}
			return c.runReplay(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write step results as JSON")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "override the chart width")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "override the chart height")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore the cached replay log")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runReplay executes the pipeline with the script and prints its log.
func (c *CLI) runReplay(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	prog := newProgress(opts.Logger)
	opts.Progress = prog.Stage

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	prog.done(fmt.Sprintf("Replayed %d steps", len(result.Steps)))

	var snap viewport.Snapshot
	if err := json.Unmarshal(result.Artifacts[render.FormatJSON], &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	printSuccess("Replayed %s against %s", opts.ScriptPath, opts.ChartPath)
	printStats(result.Stats, result.CacheInfo.ReplayHit)
	printNewline()

	if result.Stats.Notifications == 0 {
		printWarning("Script produced no domain notifications")
	} else {
		printLine(notificationTable(result.Steps))
	}
	printNewline()
	printDomains(snap.XDomain, snap.YDomain)
	printKeyValue("phase", snap.Phase)

	if output == "" {
		return nil
	}
	data, err := json.MarshalIndent(result.Steps, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFile(output, append(data, '\n')); err != nil {
		return err
	}
	printFile(output)
	return nil
}

// notificationTable renders one row per notification, plus a row for every
// step that reported a data point.
func notificationTable(steps []script.StepResult) string {
	var rows [][]string
	var user []bool
	for _, st := range steps {
		for _, n := range st.Notifications {
			rows = append(rows, []string{
				strconv.Itoa(st.Index), st.Kind, n.Axis, n.Domain.String(), strconv.FormatBool(n.User),
			})
			user = append(user, n.User)
		}
		if st.Point != nil {
			rows = append(rows, []string{
				strconv.Itoa(st.Index), st.Kind, "point", fmt.Sprintf("(%g, %g)", st.Point.X, st.Point.Y), "",
			})
			user = append(user, false)
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Step", "Kind", "Axis", "Value", "User").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case col == 0:
				return base.Foreground(colorDim)
			case col == 3:
				return base.Inherit(StyleNumber)
			case col == 4 && row < len(user) && user[row]:
				return base.Inherit(StyleSuccess)
			}
			return base.Inherit(StyleValue)
		})

	return t.Render()
}
