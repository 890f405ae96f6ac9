package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panzoom/pkg/render"
)

// definitionExts are the file types charts and scripts load from.
var definitionExts = []string{"toml", "yaml", "yml", "json"}

var renderFormats = []string{render.FormatSVG, render.FormatPNG, render.FormatPDF, render.FormatText, render.FormatJSON}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for panzoom.

Completion covers subcommands, chart and script paths (.toml, .yaml, .yml,
.json) and the values of --format. For example:

  $ source <(panzoom completion bash)
  $ panzoom completion zsh > "${fpath[1]}/_panzoom"
  $ panzoom completion fish > ~/.config/fish/completions/panzoom.fish
  PS> panzoom completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeDefinitions completes the first maxArgs positional arguments as
// chart or script files.
func completeDefinitions(maxArgs int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= maxArgs {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return definitionExts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeFormats completes the last element of a comma-separated --format
// value, leaving out formats already listed.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, prefix := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, prefix = toComplete[:i+1], toComplete[i+1:]
	}
	chosen := map[string]bool{}
	for _, f := range strings.Split(done, ",") {
		chosen[strings.TrimSpace(f)] = true
	}

	var out []string
	for _, f := range renderFormats {
		if !chosen[f] && strings.HasPrefix(f, prefix) {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// registerCompletions attaches argument and flag completion to the chart
// commands under root.
func registerCompletions(root *cobra.Command) {
	for name, n := range map[string]int{"render": 1, "replay": 2, "explore": 1} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			continue
		}
		cmd.ValidArgsFunction = completeDefinitions(n)
		if cmd.Flags().Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
		}
		if cmd.Flags().Lookup("script") != nil {
			_ = cmd.MarkFlagFilename("script", definitionExts...)
		}
		if cmd.Flags().Lookup("output") != nil {
			_ = cmd.MarkFlagFilename("output")
		}
	}
}
