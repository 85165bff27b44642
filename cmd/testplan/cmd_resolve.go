// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"testplan-cli/pkg/types"

	"github.com/spf13/cobra"
)

type (
	moduleResolution struct {
		Request  string `json:"request" yaml:"request" toml:"request"`
		Resolved string `json:"resolved,omitempty" yaml:"resolved,omitempty" toml:"resolved,omitempty"`
		Mapped   bool   `json:"mapped" yaml:"mapped" toml:"mapped"`
	}

	resolveReport struct {
		Project     string             `json:"project" yaml:"project" toml:"project"`
		Resolutions []moduleResolution `json:"resolutions" yaml:"resolutions" toml:"resolutions"`
	}
)

func newResolveCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve PROJECT REQUEST...",
		Short: "Map module requests through a project's moduleNameMapper",
		Long: `Resolve each module request through the first matching moduleNameMapper
entry of PROJECT, expanding $1..$9 capture references.

The command exits with status 3 when any request matches no entry.`,
		Example: `  testplan resolve client styles/app.css
  testplan resolve client ~/utils/format -o json`,
		Args: cobra.MinimumNArgs(2),
	}
	output := addOutputFlag(cmd, OutputText, OutputText, OutputJSON, OutputYAML, OutputTOML)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		_, cfg, err := app.loadPlan(cmd.Context())
		if err != nil {
			return app.fail(cmd, err)
		}
		projects, err := app.selectProjects(cfg, args[:1])
		if err != nil {
			return app.fail(cmd, err)
		}
		project := projects[0]

		report := resolveReport{Project: project.DisplayName()}
		unmapped := 0
		for _, req := range args[1:] {
			resolved, ok := project.MapModuleName(req)
			if !ok {
				unmapped++
			}
			report.Resolutions = append(report.Resolutions, moduleResolution{Request: req, Resolved: resolved, Mapped: ok})
		}

		w := cmd.OutOrStdout()
		if *output != OutputText {
			if err := writeStructured(w, *output, report); err != nil {
				return app.fail(cmd, err)
			}
		} else {
			for _, r := range report.Resolutions {
				if r.Mapped {
					fmt.Fprintf(w, "%s %s %s %s\n", SuccessStyle.Render(successIcon), CmdStyle.Render(r.Request), SubtitleStyle.Render("->"), r.Resolved)
				} else {
					fmt.Fprintf(w, "%s %s %s\n", WarningStyle.Render(infoIcon), CmdStyle.Render(r.Request), WarningStyle.Render("(not mapped)"))
				}
			}
		}

		if unmapped > 0 {
			return &ExitError{Code: types.ExitNoMatch}
		}
		return nil
	}

	return cmd
}
