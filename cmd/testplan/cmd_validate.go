// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"testplan-cli/internal/resolver"

	"github.com/spf13/cobra"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the test plan definition",
		Long: `Load the test plan definition and report every problem at once.

Exits with status 2 when the definition cannot be found, parsed or resolved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, app)
		},
	}
}

func runValidate(cmd *cobra.Command, app *App) error {
	stdout := cmd.OutOrStdout()

	_, cfg, err := app.loadPlan(cmd.Context())
	if err != nil {
		var defErr *resolver.InvalidDefinitionError
		if errors.As(err, &defErr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %d problem(s) found\n",
				ErrorStyle.Render(errorIcon), CmdStyle.Render(defErr.Source), len(defErr.FieldErrors))
		}
		return app.fail(cmd, err)
	}

	fmt.Fprintln(stdout, TitleStyle.Render("Test Plan Validation"))
	fmt.Fprintf(stdout, "%s Definition: %s\n", infoIcon, CmdStyle.Render(cfg.Source()))
	fmt.Fprintf(stdout, "%s Root: %s\n", infoIcon, CmdStyle.Render(cfg.RootDir()))
	fmt.Fprintln(stdout)

	for _, p := range cfg.Projects() {
		fmt.Fprintf(stdout, "  %s %s %s\n",
			SuccessStyle.Render(successIcon),
			projectStyle.Render(p.DisplayName()),
			SubtitleStyle.Render("("+p.Environment().String()+")"))
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s %d project(s) valid\n", SuccessStyle.Render(successIcon), len(cfg.Projects()))
	return nil
}
