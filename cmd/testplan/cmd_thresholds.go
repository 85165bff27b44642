// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"testplan-cli/internal/issue"
	"testplan-cli/internal/resolver"
	"testplan-cli/pkg/testplan"
	"testplan-cli/pkg/types"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
)

// summaryTotalKey is the aggregate entry of a json-summary coverage report.
const summaryTotalKey = "total"

type (
	// coverageSummary is the json-summary reporter output: "total" plus one
	// entry per file, each keyed by metric.
	coverageSummary map[string]map[string]struct {
		Pct any `json:"pct"`
	}

	metricResult struct {
		Metric   string  `json:"metric" yaml:"metric" toml:"metric"`
		Actual   float64 `json:"actual" yaml:"actual" toml:"actual"`
		Required float64 `json:"required" yaml:"required" toml:"required"`
		Met      bool    `json:"met" yaml:"met" toml:"met"`
	}

	thresholdCheck struct {
		Scope   string         `json:"scope" yaml:"scope" toml:"scope"`
		Key     string         `json:"key" yaml:"key" toml:"key"`
		Results []metricResult `json:"results" yaml:"results" toml:"results"`
	}

	thresholdReport struct {
		Passed bool             `json:"passed" yaml:"passed" toml:"passed"`
		Checks []thresholdCheck `json:"checks" yaml:"checks" toml:"checks"`
	}
)

func newThresholdsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds SUMMARY",
		Short: "Check a coverage summary against the configured thresholds",
		Long: `Check a json-summary coverage report (coverage-summary.json) against the
coverageThreshold of the test plan.

The "total" entry is checked against the global threshold. Each file entry
matching a path-keyed threshold is checked against that threshold. Metrics
reported as "Unknown" (no measurable code) count as fully covered.

The command exits with status 1 when any requirement is unmet.`,
		Example: `  testplan thresholds coverage/coverage-summary.json
  testplan thresholds coverage/coverage-summary.json -o json`,
		Args: cobra.ExactArgs(1),
	}
	output := addOutputFlag(cmd, OutputText, OutputText, OutputJSON, OutputYAML, OutputTOML)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		_, cfg, err := app.loadPlan(cmd.Context())
		if err != nil {
			return app.fail(cmd, err)
		}

		summary, err := readCoverageSummary(app.fs, args[0])
		if err != nil {
			return app.fail(cmd, issue.WrapWithContext(err, "read coverage summary", args[0]))
		}

		report := checkThresholds(cfg, summary)
		w := cmd.OutOrStdout()
		if *output != OutputText {
			if err := writeStructured(w, *output, report); err != nil {
				return app.fail(cmd, err)
			}
		} else {
			renderThresholdReport(w, report)
		}

		if !report.Passed {
			return &ExitError{Code: types.ExitFailure}
		}
		return nil
	}

	return cmd
}

func readCoverageSummary(fs afero.Fs, path string) (coverageSummary, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var summary coverageSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return summary, nil
}

// actuals converts one summary entry to metric percentages. Non-numeric
// percentages ("Unknown") are reported as 100.
func (s coverageSummary) actuals(key string) map[resolver.Metric]float64 {
	out := make(map[resolver.Metric]float64, len(resolver.Metrics()))
	for _, m := range resolver.Metrics() {
		pct, ok := s[key][string(m)].Pct.(float64)
		if !ok {
			pct = 100
		}
		out[m] = pct
	}
	return out
}

func checkThresholds(cfg *resolver.RunConfiguration, summary coverageSummary) thresholdReport {
	report := thresholdReport{Passed: true}

	add := func(scope, key string, th resolver.CoverageThreshold) {
		actual := summary.actuals(scope)
		unmet := th.Unmet(actual)
		check := thresholdCheck{Scope: scope, Key: key}
		for _, m := range resolver.Metrics() {
			want, ok := th.Get(m)
			if !ok {
				continue
			}
			check.Results = append(check.Results, metricResult{
				Metric:   m.String(),
				Actual:   actual[m],
				Required: float64(want),
				Met:      !slices.Contains(unmet, m),
			})
		}
		if len(unmet) > 0 {
			report.Passed = false
		}
		report.Checks = append(report.Checks, check)
	}

	if global := cfg.GlobalThreshold(); !global.IsZero() {
		if _, ok := summary[summaryTotalKey]; ok {
			add(summaryTotalKey, testplan.GlobalThresholdKey, global)
		}
	}

	for _, file := range slices.Sorted(maps.Keys(summary)) {
		if file == summaryTotalKey {
			continue
		}
		if pt, ok := cfg.PathThresholdFor(file); ok && !pt.Threshold.IsZero() {
			add(file, pt.Pattern, pt.Threshold)
		}
	}
	return report
}

func renderThresholdReport(w io.Writer, report thresholdReport) {
	if len(report.Checks) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("no thresholds apply to this summary"))
		return
	}

	for _, check := range report.Checks {
		fmt.Fprintf(w, "%s %s\n", CmdStyle.Render(check.Scope), SubtitleStyle.Render("("+check.Key+")"))
		for _, r := range check.Results {
			if r.Met {
				fmt.Fprintf(w, "  %s %s %g%% >= %g%%\n", SuccessStyle.Render(successIcon), r.Metric, r.Actual, r.Required)
			} else {
				fmt.Fprintf(w, "  %s %s %g%% < %g%%\n", ErrorStyle.Render(errorIcon), r.Metric, r.Actual, r.Required)
			}
		}
	}

	if report.Passed {
		fmt.Fprintf(w, "\n%s all coverage thresholds met\n", SuccessStyle.Render(successIcon))
	} else {
		fmt.Fprintf(w, "\n%s coverage thresholds not met\n", ErrorStyle.Render(errorIcon))
	}
}
