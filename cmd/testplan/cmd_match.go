// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"testplan-cli/internal/resolver"
	"testplan-cli/pkg/types"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
)

type (
	// fileMatch describes how the selected projects treat one file.
	fileMatch struct {
		Path         string             `json:"path" yaml:"path" toml:"path"`
		Projects     []string           `json:"projects" yaml:"projects" toml:"projects"`
		Coverage     []string           `json:"coverage" yaml:"coverage" toml:"coverage"`
		Transformers map[string]string  `json:"transformers,omitempty" yaml:"transformers,omitempty" toml:"transformers,omitempty"`
		Threshold    map[string]float64 `json:"threshold,omitempty" yaml:"threshold,omitempty" toml:"threshold,omitempty"`
	}

	matchReport struct {
		Matches []fileMatch `json:"matches" yaml:"matches" toml:"matches"`
	}
)

func newMatchCommand(app *App) *cobra.Command {
	var selected []string

	cmd := &cobra.Command{
		Use:   "match PATH...",
		Short: "Show which projects run or cover the given files",
		Long: `Report, for each path, the projects whose test patterns match it, the
projects that count it for coverage, the transformer each of those projects
applies and the coverage threshold in effect.

Paths are absolute or relative to the root directory. The command exits
with status 3 when a path is neither a test file nor covered by any
selected project.`,
		Example: `  testplan match server/tests/api.test.js
  testplan match --select client client/src/app.js -o json`,
		Args: cobra.MinimumNArgs(1),
	}
	output := addOutputFlag(cmd, OutputText, OutputText, OutputJSON, OutputYAML, OutputTOML)
	cmd.Flags().StringSliceVarP(&selected, "select", "s", nil, "comma-separated project names (default: all)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		_, cfg, err := app.loadPlan(cmd.Context())
		if err != nil {
			return app.fail(cmd, err)
		}
		projects, err := app.selectProjects(cfg, selected)
		if err != nil {
			return app.fail(cmd, err)
		}

		report := matchReport{Matches: make([]fileMatch, 0, len(args))}
		unmatched := 0
		for _, p := range args {
			m := matchFile(cfg, projects, p)
			if len(m.Projects) == 0 && len(m.Coverage) == 0 {
				unmatched++
			}
			report.Matches = append(report.Matches, m)
		}

		if *output != OutputText {
			if err := writeStructured(cmd.OutOrStdout(), *output, report); err != nil {
				return app.fail(cmd, err)
			}
		} else {
			renderMatches(cmd.OutOrStdout(), report)
		}

		if unmatched > 0 {
			return &ExitError{Code: types.ExitNoMatch}
		}
		return nil
	}

	return cmd
}

func matchFile(cfg *resolver.RunConfiguration, projects []*resolver.ProjectConfiguration, filePath string) fileMatch {
	m := fileMatch{
		Path:      filePath,
		Projects:  []string{},
		Coverage:  []string{},
		Threshold: cfg.ThresholdFor(filePath).Percentages(),
	}
	tests := cfg.ProjectsForFile(filePath)
	for _, p := range projects {
		test := slices.Contains(tests, p)
		covered := p.IsCoverageIncluded(filePath)
		if test {
			m.Projects = append(m.Projects, p.DisplayName())
		}
		if covered {
			m.Coverage = append(m.Coverage, p.DisplayName())
		}
		if !test && !covered {
			continue
		}
		if t, ok := p.TransformerFor(filePath); ok {
			if m.Transformers == nil {
				m.Transformers = make(map[string]string)
			}
			m.Transformers[p.DisplayName()] = t
		}
	}
	return m
}

func renderMatches(w io.Writer, report matchReport) {
	for i, m := range report.Matches {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, CmdStyle.Render(m.Path))

		if len(m.Projects) == 0 && len(m.Coverage) == 0 {
			fmt.Fprintf(w, "  %s %s\n", WarningStyle.Render(infoIcon), WarningStyle.Render("no matching project"))
			continue
		}

		fmt.Fprintf(w, "  %s %s\n", label("tests:"), joinProjects(m.Projects))
		fmt.Fprintf(w, "  %s %s\n", label("coverage:"), joinProjects(m.Coverage))
		for _, name := range slices.Sorted(maps.Keys(m.Transformers)) {
			fmt.Fprintf(w, "  %s %s %s\n", label("transform:"), projectStyle.Render(name), m.Transformers[name])
		}
		fmt.Fprintf(w, "  %s %s\n", label("threshold:"), formatPercentages(m.Threshold))
	}
}

// label pads before styling so columns line up despite escape codes.
func label(s string) string {
	return SubtitleStyle.Render(fmt.Sprintf("%-10s", s))
}

func joinProjects(names []string) string {
	if len(names) == 0 {
		return SubtitleStyle.Render("-")
	}
	styled := make([]string, len(names))
	for i, n := range names {
		styled[i] = projectStyle.Render(n)
	}
	return strings.Join(styled, ", ")
}

// formatPercentages renders a metric map in report order.
func formatPercentages(values map[string]float64) string {
	t := make(resolver.CoverageThreshold, len(values))
	for name, v := range values {
		t[resolver.Metric(name)] = types.Percentage(v)
	}
	return formatThreshold(t)
}
