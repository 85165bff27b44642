// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"testplan-cli/internal/discovery"
	"testplan-cli/internal/resolver"

	"github.com/spf13/cobra"
)

type (
	projectFilesView struct {
		Project string   `json:"project" yaml:"project" toml:"project"`
		Files   []string `json:"files" yaml:"files" toml:"files"`

		// Thresholds holds the effective threshold per file, keyed by path.
		Thresholds map[string]map[string]float64 `json:"thresholds,omitempty" yaml:"thresholds,omitempty" toml:"thresholds,omitempty"`
	}

	diagnosticView struct {
		Severity string `json:"severity" yaml:"severity" toml:"severity"`
		Code     string `json:"code" yaml:"code" toml:"code"`
		Message  string `json:"message" yaml:"message" toml:"message"`
		Path     string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
		Cause    string `json:"cause,omitempty" yaml:"cause,omitempty" toml:"cause,omitempty"`
	}

	discoveryReport struct {
		Projects    []projectFilesView `json:"projects" yaml:"projects" toml:"projects"`
		Diagnostics []diagnosticView   `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty" toml:"diagnostics,omitempty"`
	}

	// discoverFunc is discovery.Discovery.List or discovery.Discovery.Coverage.
	discoverFunc func(*discovery.Discovery, context.Context, []*resolver.ProjectConfiguration) (*discovery.Result, error)
)

func newListCommand(app *App) *cobra.Command {
	return newDiscoveryCommand(app, discoveryCommandSpec{
		use:   "list",
		short: "List the test files of each project",
		long: `Walk the root directory and list, per selected project, the files that
match the project's test patterns and carry one of its module file
extensions. node_modules and .git are never descended into.`,
		example: `  testplan list
  testplan list --select server -o json`,
		run: (*discovery.Discovery).List,
	})
}

func newCoverageCommand(app *App) *cobra.Command {
	return newDiscoveryCommand(app, discoveryCommandSpec{
		use:   "coverage",
		short: "List the files each project collects coverage from",
		long: `Walk the root directory and list, per selected project, the files counted
for coverage: files matching an inclusion pattern and no exclusion pattern.
Each file is shown with the coverage threshold that applies to it.`,
		example: `  testplan coverage --select client
  testplan coverage -o yaml`,
		run:        (*discovery.Discovery).Coverage,
		thresholds: true,
	})
}

type discoveryCommandSpec struct {
	use, short, long, example string
	run                       discoverFunc
	thresholds                bool
}

func newDiscoveryCommand(app *App, spec discoveryCommandSpec) *cobra.Command {
	var selected []string

	cmd := &cobra.Command{
		Use:     spec.use,
		Short:   spec.short,
		Long:    spec.long,
		Example: spec.example,
		Args:    cobra.NoArgs,
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

		d := discovery.New(cfg, discovery.WithFs(app.fs), discovery.WithLogger(app.logger))
		result, err := spec.run(d, cmd.Context(), projects)
		if err != nil {
			return app.fail(cmd, err)
		}

		if *output != OutputText {
			return writeStructured(cmd.OutOrStdout(), *output, buildDiscoveryReport(cfg, result, spec.thresholds))
		}

		renderDiagnostics(cmd.ErrOrStderr(), result.Diagnostics)
		renderProjectFiles(cmd.OutOrStdout(), cfg, result, spec.thresholds)
		return nil
	}

	return cmd
}

func buildDiscoveryReport(cfg *resolver.RunConfiguration, result *discovery.Result, thresholds bool) discoveryReport {
	report := discoveryReport{Projects: make([]projectFilesView, 0, len(result.Projects))}
	for _, pf := range result.Projects {
		view := projectFilesView{Project: pf.Project.DisplayName(), Files: pf.Files}
		if thresholds {
			for _, f := range pf.Files {
				if t := cfg.ThresholdFor(f).Percentages(); t != nil {
					if view.Thresholds == nil {
						view.Thresholds = make(map[string]map[string]float64, len(pf.Files))
					}
					view.Thresholds[f] = t
				}
			}
		}
		report.Projects = append(report.Projects, view)
	}
	for _, d := range result.Diagnostics {
		view := diagnosticView{Severity: string(d.Severity), Code: d.Code, Message: d.Message, Path: d.Path}
		if d.Cause != nil {
			view.Cause = d.Cause.Error()
		}
		report.Diagnostics = append(report.Diagnostics, view)
	}
	return report
}

func renderDiagnostics(w io.Writer, diags []discovery.Diagnostic) {
	for _, d := range diags {
		prefix := WarningStyle.Render("Warning:")
		if d.Severity == discovery.SeverityError {
			prefix = ErrorStyle.Render("Error:")
		}
		msg := d.Message
		if d.Path != "" {
			msg = d.Path + ": " + msg
		}
		if d.Cause != nil {
			msg += " (" + d.Cause.Error() + ")"
		}
		fmt.Fprintf(w, "%s %s\n", prefix, msg)
	}
}

func renderProjectFiles(w io.Writer, cfg *resolver.RunConfiguration, result *discovery.Result, thresholds bool) {
	for i, pf := range result.Projects {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", projectStyle.Render(pf.Project.DisplayName()), SubtitleStyle.Render(fmt.Sprintf("(%d files)", len(pf.Files))))
		for _, f := range pf.Files {
			if thresholds {
				fmt.Fprintf(w, "  %s %s\n", f, SubtitleStyle.Render(formatThreshold(cfg.ThresholdFor(f))))
				continue
			}
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}
