package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waitgraph/pkg/io"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for waitgraph. Graph file arguments
complete to .json, .toml, .yaml, .yml and .hcl files.

Bash:
  $ source <(waitgraph completion bash)

Zsh:
  $ waitgraph completion zsh > "${fpath[1]}/_waitgraph"

Fish:
  $ waitgraph completion fish > ~/.config/fish/completions/waitgraph.fish

PowerShell:
  PS> waitgraph completion powershell | Out-String | Invoke-Expression
`,
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
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeGraphFile limits the single positional argument of analyze, render
// and explain to graph files.
func completeGraphFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	exts := make([]string, 0, len(io.Extensions()))
	for _, ext := range io.Extensions() {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	return exts, cobra.ShellCompDirectiveFilterFileExt
}
