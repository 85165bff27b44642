// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"testplan-cli/internal/resolver"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// projectList wraps project snapshots so every structured format, TOML
// included, gets a top-level table.
type projectList struct {
	Projects []resolver.ProjectSnapshot `json:"projects" yaml:"projects" toml:"projects"`
}

func newProjectsCommand(app *App) *cobra.Command {
	var selected []string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the declared projects",
		Long:  `List the selected projects (all by default) in declaration order with their effective settings.`,
		Args:  cobra.NoArgs,
	}
	output := addOutputFlag(cmd, OutputText, OutputText, OutputJSON, OutputYAML, OutputTOML)
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

		if *output != OutputText {
			list := projectList{Projects: make([]resolver.ProjectSnapshot, 0, len(projects))}
			for _, p := range projects {
				list.Projects = append(list.Projects, p.Snapshot())
			}
			return writeStructured(cmd.OutOrStdout(), *output, list)
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderProjectTable(projects))
		return nil
	}

	return cmd
}

func renderProjectTable(projects []*resolver.ProjectConfiguration) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.DisplayName(),
			p.Environment().String(),
			strings.Join(p.TestMatch(), "\n"),
			strings.Join(p.ModuleFileExtensions(), ","),
			formatThreshold(p.CoverageThreshold()),
			strconv.FormatInt(p.TestTimeout().Milliseconds(), 10) + "ms",
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtitleStyle).
		Headers("PROJECT", "ENVIRONMENT", "TEST MATCH", "EXTENSIONS", "THRESHOLD", "TIMEOUT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return projectStyle.Padding(0, 1)
			default:
				return tableCellStyle
			}
		}).
		String()
}

// formatThreshold renders "statements 80% branches 70%" in metric order, or
// "none".
func formatThreshold(t resolver.CoverageThreshold) string {
	if t.IsZero() {
		return "none"
	}
	parts := make([]string, 0, len(resolver.Metrics()))
	for _, m := range resolver.Metrics() {
		if v, ok := t.Get(m); ok {
			parts = append(parts, fmt.Sprintf("%s %s%%", m, v))
		}
	}
	return strings.Join(parts, " ")
}
