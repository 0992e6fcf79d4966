package cli

import (
	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var completionCmd = &cobra.Command{
	Use:     "completion [bash|zsh|fish|powershell]",
	Short:   "Generate shell completion script",
	GroupID: groupConfig,
	Long: `Generate a shell completion script for tollgate and write it to stdout.

Load it in the current shell, or save it where your shell looks for
completions to load it in every new session. Zsh needs compinit enabled
("autoload -U compinit; compinit" in ~/.zshrc).`,
	Example: `  source <(tollgate completion bash)
  tollgate completion bash > /etc/bash_completion.d/tollgate
  tollgate completion zsh > "${fpath[1]}/_tollgate"
  tollgate completion fish > ~/.config/fish/completions/tollgate.fish
  tollgate completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(w)
		case "zsh":
			return cmd.Root().GenZshCompletion(w)
		case "fish":
			return cmd.Root().GenFishCompletion(w, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(w)
		}
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(completionCmd)
}
