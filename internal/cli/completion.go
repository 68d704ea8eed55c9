package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/todo/pkg/models"
)

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print a shell completion script",
	Long: `Print the completion script for todo. Supported shells: bash, zsh,
fish, powershell.

  eval "$(todo completion bash)"
  todo completion fish | source

Todo ids are completed for toggle, edit and rm, with the todo text as the
description.`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
		}
	},
}

// completeTodoIDs completes the first argument with todo ids. keep selects
// which todos are offered; nil offers all of them.
func completeTodoIDs(keep func(models.Task) bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if TodoMgr == nil || len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var ids []string
		for _, t := range TodoMgr.GetAllTodos() {
			if keep != nil && !keep(t) {
				continue
			}
			id := formatID(t.ID)
			if strings.HasPrefix(id, toComplete) {
				ids = append(ids, id+"\t"+checkbox(t.Completed)+" "+displayText(t.Text))
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)

	toggleCmd.ValidArgsFunction = completeTodoIDs(nil)
	editCmd.ValidArgsFunction = completeTodoIDs(nil)
	rmCmd.ValidArgsFunction = completeTodoIDs(nil)
}
