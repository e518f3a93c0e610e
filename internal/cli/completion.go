package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for repoexplorer.

To load completions:

Bash:
  $ source <(repoexplorer completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ repoexplorer completion bash > /etc/bash_completion.d/repoexplorer
  # macOS:
  $ repoexplorer completion bash > $(brew --prefix)/etc/bash_completion.d/repoexplorer

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ repoexplorer completion zsh > "${fpath[1]}/_repoexplorer"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ repoexplorer completion fish | source

  # To load completions for each session, execute once:
  $ repoexplorer completion fish > ~/.config/fish/completions/repoexplorer.fish

PowerShell:
  PS> repoexplorer completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> repoexplorer completion powershell > repoexplorer.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
