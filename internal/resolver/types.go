// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"slices"

	"testplan-cli/pkg/testplan"
	"testplan-cli/pkg/types"

	"golang.org/x/exp/maps"
)

const (
	// EnvNode runs tests in a plain server-side runtime.
	EnvNode Environment = "node"
	// EnvBrowserDOM runs tests against a simulated browser DOM.
	EnvBrowserDOM Environment = "browser-dom"

	// envJSDOMAlias is accepted in definitions and normalized to EnvBrowserDOM.
	envJSDOMAlias = "jsdom"

	// MetricStatements is the statement coverage metric.
	MetricStatements Metric = "statements"
	// MetricBranches is the branch coverage metric.
	MetricBranches Metric = "branches"
	// MetricFunctions is the function coverage metric.
	MetricFunctions Metric = "functions"
	// MetricLines is the line coverage metric.
	MetricLines Metric = "lines"
)

type (
	// Environment is the simulated execution environment of a project.
	Environment string

	// Metric names one coverage metric.
	Metric string

	// CoverageThreshold maps a metric to its minimum percentage. Metrics
	// without a requirement are absent.
	CoverageThreshold map[Metric]types.Percentage
)

// Metrics lists every metric in report order.
func Metrics() []Metric {
	return []Metric{MetricStatements, MetricBranches, MetricFunctions, MetricLines}
}

// ParseEnvironment maps a definition tag to an Environment. The empty tag
// selects EnvNode and "jsdom" is an alias of EnvBrowserDOM.
func ParseEnvironment(tag string) (Environment, bool) {
	switch tag {
	case "", string(EnvNode):
		return EnvNode, true
	case string(EnvBrowserDOM), envJSDOMAlias:
		return EnvBrowserDOM, true
	default:
		return "", false
	}
}

func environmentNames() []string {
	return []string{string(EnvNode), string(EnvBrowserDOM), envJSDOMAlias}
}

// String returns the string representation of the Environment.
func (e Environment) String() string { return string(e) }

// IsValid reports whether the Environment is a canonical tag.
func (e Environment) IsValid() bool {
	return e == EnvNode || e == EnvBrowserDOM
}

// String returns the string representation of the Metric.
func (m Metric) String() string { return string(m) }

// IsValid reports whether the Metric is one of the known metrics.
func (m Metric) IsValid() bool {
	return slices.Contains(Metrics(), m)
}

// Get returns the requirement for a metric.
func (t CoverageThreshold) Get(m Metric) (types.Percentage, bool) {
	p, ok := t[m]
	return p, ok
}

// IsZero reports whether no metric carries a requirement.
func (t CoverageThreshold) IsZero() bool { return len(t) == 0 }

// Clone returns an independent copy.
func (t CoverageThreshold) Clone() CoverageThreshold {
	return maps.Clone(t)
}

// Merge returns t with every metric set in override replaced.
func (t CoverageThreshold) Merge(override CoverageThreshold) CoverageThreshold {
	out := t.Clone()
	if out == nil && len(override) > 0 {
		out = make(CoverageThreshold, len(override))
	}
	maps.Copy(out, override)
	return out
}

// Unmet returns the metrics whose actual value falls below the requirement,
// in report order. Metrics missing from actual count as 0.
func (t CoverageThreshold) Unmet(actual map[Metric]float64) []Metric {
	var unmet []Metric
	for _, m := range Metrics() {
		want, ok := t[m]
		if !ok {
			continue
		}
		if actual[m] < float64(want) {
			unmet = append(unmet, m)
		}
	}
	return unmet
}

// thresholdFromDefinition converts a definition threshold, validating each
// metric. scope labels errors.
func thresholdFromDefinition(scope string, th testplan.Threshold) (CoverageThreshold, []error) {
	var errs []error
	out := CoverageThreshold{}
	set := func(m Metric, v *float64) {
		if v == nil {
			return
		}
		if err := types.Percentage(*v).Validate(); err != nil {
			errs = append(errs, &InvalidThresholdError{Scope: scope, Metric: m, Value: *v})
			return
		}
		out[m] = types.Percentage(*v)
	}
	set(MetricStatements, th.Statements)
	set(MetricBranches, th.Branches)
	set(MetricFunctions, th.Functions)
	set(MetricLines, th.Lines)
	return out, errs
}
