// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"testplan-cli/pkg/testplan"
)

type (
	// Snapshot is a plain, serializable copy of the effective configuration.
	Snapshot struct {
		Source            string             `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
		RootDir           string             `json:"rootDir" yaml:"rootDir" toml:"rootDir"`
		Verbose           bool               `json:"verbose" yaml:"verbose" toml:"verbose"`
		CollectCoverage   bool               `json:"collectCoverage" yaml:"collectCoverage" toml:"collectCoverage"`
		CoverageReporters []string           `json:"coverageReporters" yaml:"coverageReporters" toml:"coverageReporters"`
		CoverageThreshold map[string]float64 `json:"coverageThreshold,omitempty" yaml:"coverageThreshold,omitempty" toml:"coverageThreshold,omitempty"`
		PathThresholds    []PathSnapshot     `json:"pathThresholds,omitempty" yaml:"pathThresholds,omitempty" toml:"pathThresholds,omitempty"`
		TestTimeoutMillis int64              `json:"testTimeout" yaml:"testTimeout" toml:"testTimeout"`
		Projects          []ProjectSnapshot  `json:"projects" yaml:"projects" toml:"projects"`
	}

	// PathSnapshot is a serializable path-keyed threshold.
	PathSnapshot struct {
		Pattern   string             `json:"pattern" yaml:"pattern" toml:"pattern"`
		Threshold map[string]float64 `json:"threshold" yaml:"threshold" toml:"threshold"`
	}

	// MappingSnapshot is a serializable mapping entry.
	MappingSnapshot struct {
		Pattern string `json:"pattern" yaml:"pattern" toml:"pattern"`
		Value   string `json:"value" yaml:"value" toml:"value"`
	}

	// ProjectSnapshot is a serializable effective project.
	ProjectSnapshot struct {
		DisplayName          string             `json:"displayName" yaml:"displayName" toml:"displayName"`
		TestEnvironment      string             `json:"testEnvironment" yaml:"testEnvironment" toml:"testEnvironment"`
		TestMatch            []string           `json:"testMatch" yaml:"testMatch" toml:"testMatch"`
		ModuleFileExtensions []string           `json:"moduleFileExtensions" yaml:"moduleFileExtensions" toml:"moduleFileExtensions"`
		ModuleNameMapper     []MappingSnapshot  `json:"moduleNameMapper,omitempty" yaml:"moduleNameMapper,omitempty" toml:"moduleNameMapper,omitempty"`
		SetupFilesAfterEnv   []string           `json:"setupFilesAfterEnv,omitempty" yaml:"setupFilesAfterEnv,omitempty" toml:"setupFilesAfterEnv,omitempty"`
		Transform            []MappingSnapshot  `json:"transform,omitempty" yaml:"transform,omitempty" toml:"transform,omitempty"`
		CoverageDirectory    string             `json:"coverageDirectory" yaml:"coverageDirectory" toml:"coverageDirectory"`
		CoverageInclude      []string           `json:"coverageInclude,omitempty" yaml:"coverageInclude,omitempty" toml:"coverageInclude,omitempty"`
		CoverageExclude      []string           `json:"coverageExclude,omitempty" yaml:"coverageExclude,omitempty" toml:"coverageExclude,omitempty"`
		Verbose              bool               `json:"verbose" yaml:"verbose" toml:"verbose"`
		CollectCoverage      bool               `json:"collectCoverage" yaml:"collectCoverage" toml:"collectCoverage"`
		CoverageReporters    []string           `json:"coverageReporters" yaml:"coverageReporters" toml:"coverageReporters"`
		CoverageThreshold    map[string]float64 `json:"coverageThreshold,omitempty" yaml:"coverageThreshold,omitempty" toml:"coverageThreshold,omitempty"`
		TestTimeoutMillis    int64              `json:"testTimeout" yaml:"testTimeout" toml:"testTimeout"`
	}
)

// Snapshot returns a serializable copy of the effective configuration.
func (c *RunConfiguration) Snapshot() Snapshot {
	s := Snapshot{
		Source:            c.source,
		RootDir:           c.rootDir,
		Verbose:           c.verbose,
		CollectCoverage:   c.collectCoverage,
		CoverageReporters: c.CoverageReporters(),
		CoverageThreshold: c.globalThreshold.Percentages(),
		TestTimeoutMillis: c.testTimeout.Milliseconds(),
	}
	for _, pt := range c.pathThresholds {
		s.PathThresholds = append(s.PathThresholds, PathSnapshot{Pattern: pt.key, Threshold: pt.threshold.Percentages()})
	}
	for _, p := range c.projects {
		s.Projects = append(s.Projects, p.Snapshot())
	}
	return s
}

// Snapshot returns a serializable copy of the effective project.
func (p *ProjectConfiguration) Snapshot() ProjectSnapshot {
	return ProjectSnapshot{
		DisplayName:          p.name,
		TestEnvironment:      p.environment.String(),
		TestMatch:            p.TestMatch(),
		ModuleFileExtensions: p.ModuleFileExtensions(),
		ModuleNameMapper:     mappingSnapshot(p.ModuleNameMapper()),
		SetupFilesAfterEnv:   p.SetupFiles(),
		Transform:            mappingSnapshot(p.Transform()),
		CoverageDirectory:    p.coverageDirectory,
		CoverageInclude:      p.CoverageInclude(),
		CoverageExclude:      p.CoverageExclude(),
		Verbose:              p.verbose,
		CollectCoverage:      p.collectCoverage,
		CoverageReporters:    p.CoverageReporters(),
		CoverageThreshold:    p.coverageThreshold.Percentages(),
		TestTimeoutMillis:    p.testTimeout.Milliseconds(),
	}
}

// Percentages returns the threshold keyed by metric name, or nil when empty.
func (t CoverageThreshold) Percentages() map[string]float64 {
	if len(t) == 0 {
		return nil
	}
	out := make(map[string]float64, len(t))
	for m, v := range t {
		out[m.String()] = float64(v)
	}
	return out
}

func mappingSnapshot(m testplan.Mapping) []MappingSnapshot {
	if len(m) == 0 {
		return nil
	}
	out := make([]MappingSnapshot, len(m))
	for i, e := range m {
		out[i] = MappingSnapshot{Pattern: e.Pattern, Value: e.Value}
	}
	return out
}
