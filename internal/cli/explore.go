package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panzoom/pkg/config"
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var noMouse bool

	cmd := &cobra.Command{
		Use:   "explore [chart]",
		Short: "Pan and zoom a chart in the terminal",
		Long: `Explore a chart interactively in the terminal.

Scroll over the plot to zoom both axes, over the x axis below the plot to
zoom only x, or over the y axis left of the plot to zoom only y. Drag to pan
and right-click to read the data value under the cursor. Keyboard controls
are listed at the bottom of the screen.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], !noMouse)
		},
	}

	cmd.Flags().BoolVar(&noMouse, "no-mouse", false, "disable mouse input")

	return cmd
}

// runExplore loads the chart and runs the terminal UI until the user quits.
func (c *CLI) runExplore(ctx context.Context, path string, mouse bool) error {
	logger := loggerFromContext(ctx)

	chart, err := config.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded chart", "title", chart.Title, "series", len(chart.Series))

	m, err := NewExploreModel(chart)
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}

	if fm, ok := final.(ExploreModel); ok && fm.Viewport().Ready() {
		x, y := fm.Viewport().XScale().Domain(), fm.Viewport().YScale().Domain()
		printDomains(x, y)
	}
	return nil
}
