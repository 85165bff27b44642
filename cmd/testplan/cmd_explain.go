// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"testplan-cli/internal/issue"
	"testplan-cli/pkg/types"

	"github.com/spf13/cobra"
)

func newExplainCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [ISSUE]",
		Short: "Show the troubleshooting guide for an issue",
		Long: `Without arguments, list the known issues. With an issue name (as printed
under a failure), render its troubleshooting guide.`,
		Example: `  testplan explain
  testplan explain duplicate-project-name`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			names := make([]string, 0, len(issue.Values()))
			for _, i := range issue.Values() {
				names = append(names, i.Name())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(w, TitleStyle.Render("Known issues"))
				for _, i := range issue.Values() {
					fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render(infoIcon), CmdStyle.Render(i.Name()))
				}
				return nil
			}

			entry, ok := issue.Lookup(args[0])
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s unknown issue %q; run 'testplan explain' to list them\n", ErrorStyle.Render("Error:"), args[0])
				return &ExitError{Code: types.ExitFailure}
			}

			rendered, err := entry.Render(app.issueStyle())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprint(w, rendered)
			return nil
		},
	}
}
