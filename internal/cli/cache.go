package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panzoom/pkg/cache"
)

// cacheCommand groups the render cache subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
		Long: `Manage the cache of rendered artifacts and replay logs.

Artifacts expire after a week and replay logs after a day. Expired entries
are dropped when next read; "cache clear --expired" drops them all at once.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached artifacts and replay logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, dir, err := openCache()
			if err != nil || fc == nil {
				return err
			}

			var n int
			if expired {
				n, err = fc.Prune()
			} else {
				n, err = fc.Clear()
			}
			if err != nil {
				return err
			}

			what := "cached"
			if expired {
				what = "expired"
			}
			printSuccess("Removed %s", plural(n, what+" entry", what+" entries"))
			printDetail("Directory: %s", dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired or unreadable entries")
	return cmd
}

func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how much the cache holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, dir, err := openCache()
			if err != nil || fc == nil {
				return err
			}
			u, err := fc.Usage()
			if err != nil {
				return err
			}
			printKeyValue("directory", dir)
			printKeyValue("entries", fmt.Sprint(u.Entries))
			printKeyValue("size", formatBytes(u.Bytes))
			printKeyValue("expired", fmt.Sprint(u.Expired))
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// openCache opens the cache directory without creating it. A nil cache
// with a nil error means nothing has been cached yet, which is reported.
func openCache() (*cache.FileCache, string, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, "", fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil, dir, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, dir, err
	}
	return fc, dir, nil
}
