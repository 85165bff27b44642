// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"testplan-cli/internal/resolver"

	"github.com/spf13/cobra"
)

func newShowCommand(app *App) *cobra.Command {
	var selected []string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the fully resolved configuration: global settings, path thresholds
and every selected project with defaults applied and global settings merged
in. Paths are absolute.`,
		Example: `  testplan show
  testplan show --select server -o json`,
		Args: cobra.NoArgs,
	}
	output := addOutputFlag(cmd, OutputYAML, OutputJSON, OutputYAML, OutputTOML)
	cmd.Flags().StringSliceVarP(&selected, "select", "s", nil, "comma-separated project names (default: all)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		_, cfg, err := app.loadPlan(cmd.Context())
		if err != nil {
			return app.fail(cmd, err)
		}
		projects, err := app.selectProjects(cfg, selected)
		if err != nil {
			return app.fail(cmd, err)
		}

		snapshot := cfg.Snapshot()
		snapshot.Projects = make([]resolver.ProjectSnapshot, 0, len(projects))
		for _, p := range projects {
			snapshot.Projects = append(snapshot.Projects, p.Snapshot())
		}

		if err := writeStructured(cmd.OutOrStdout(), *output, snapshot); err != nil {
			return app.fail(cmd, err)
		}
		return nil
	}

	return cmd
}
