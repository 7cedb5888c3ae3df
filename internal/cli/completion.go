package cli

import (
	"github.com/guiyumin/mfetch/internal/core/media"
	"github.com/spf13/cobra"
)

func newCompletionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for mfetch.

Bash:
  source <(mfetch completion bash)

Zsh:
  mfetch completion zsh > "${fpath[1]}/_mfetch"

Fish:
  mfetch completion fish > ~/.config/fish/completions/mfetch.fish

PowerShell:
  mfetch completion powershell >> $PROFILE
`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(a.stdout)
			case "zsh":
				return root.GenZshCompletion(a.stdout)
			case "fish":
				return root.GenFishCompletion(a.stdout, true)
			default:
				return root.GenPowerShellCompletion(a.stdout)
			}
		},
	}
}

// completeFetchArgs completes <url> <output_dir> [video|audio]
func completeFetchArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return nil, cobra.ShellCompDirectiveNoFileComp
	case 1:
		return nil, cobra.ShellCompDirectiveFilterDirs
	case 2:
		return []string{string(media.ModeVideo), string(media.ModeAudio)}, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
