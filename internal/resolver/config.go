// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"slices"
	"time"
)

type (
	// RunConfiguration is the validated, immutable result of Load.
	// All methods are safe for concurrent use.
	RunConfiguration struct {
		source   string
		rootDir  string
		projects []*ProjectConfiguration
		byName   map[string]*ProjectConfiguration

		verbose           bool
		collectCoverage   bool
		coverageReporters []string
		globalThreshold   CoverageThreshold
		pathThresholds    []pathThreshold
		testTimeout       time.Duration
	}

	pathThreshold struct {
		key       string
		glob      glob
		threshold CoverageThreshold
	}

	// PathThreshold is a coverage threshold scoped to files matching Pattern.
	PathThreshold struct {
		Pattern   string
		Threshold CoverageThreshold
	}
)

// Source returns the definition file path, or "" for in-memory definitions.
func (c *RunConfiguration) Source() string { return c.source }

// RootDir returns the absolute root directory.
func (c *RunConfiguration) RootDir() string { return c.rootDir }

// Projects returns every project in declaration order.
func (c *RunConfiguration) Projects() []*ProjectConfiguration { return slices.Clone(c.projects) }

// Project returns the project with the given display name.
func (c *RunConfiguration) Project(name string) (*ProjectConfiguration, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Verbose reports the global verbosity flag.
func (c *RunConfiguration) Verbose() bool { return c.verbose }

// CollectCoverage reports the global coverage flag.
func (c *RunConfiguration) CollectCoverage() bool { return c.collectCoverage }

// CoverageReporters returns the global reporter list.
func (c *RunConfiguration) CoverageReporters() []string { return slices.Clone(c.coverageReporters) }

// GlobalThreshold returns the "global" coverage threshold.
func (c *RunConfiguration) GlobalThreshold() CoverageThreshold { return c.globalThreshold.Clone() }

// PathThresholds returns the path-keyed thresholds in declaration order.
func (c *RunConfiguration) PathThresholds() []PathThreshold {
	out := make([]PathThreshold, len(c.pathThresholds))
	for i, pt := range c.pathThresholds {
		out[i] = PathThreshold{Pattern: pt.key, Threshold: pt.threshold.Clone()}
	}
	return out
}

// TestTimeout returns the global per-test timeout.
func (c *RunConfiguration) TestTimeout() time.Duration { return c.testTimeout }

// SelectProjects returns the projects whose display name is in names, in
// declaration order. An empty names selects every project. Names matching
// no project are ignored; see UnknownProjects.
func (c *RunConfiguration) SelectProjects(names []string) []*ProjectConfiguration {
	if len(names) == 0 {
		return c.Projects()
	}

	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}

	selected := make([]*ProjectConfiguration, 0, len(want))
	for _, p := range c.projects {
		if _, ok := want[p.name]; ok {
			selected = append(selected, p)
		}
	}
	return selected
}

// UnknownProjects returns the names that match no declared project, in the
// order given, without duplicates.
func (c *RunConfiguration) UnknownProjects(names []string) []string {
	var unknown []string
	for _, n := range names {
		if _, ok := c.byName[n]; ok || slices.Contains(unknown, n) {
			continue
		}
		unknown = append(unknown, n)
	}
	return unknown
}

// ProjectsForFile returns every project whose test patterns match filePath,
// in declaration order.
func (c *RunConfiguration) ProjectsForFile(filePath string) []*ProjectConfiguration {
	var out []*ProjectConfiguration
	for _, p := range c.projects {
		if p.MatchesProject(filePath) {
			out = append(out, p)
		}
	}
	return out
}

// ThresholdFor returns the threshold that applies to filePath: the first
// path-keyed threshold whose pattern matches, otherwise the global one.
func (c *RunConfiguration) ThresholdFor(filePath string) CoverageThreshold {
	if pt, ok := c.PathThresholdFor(filePath); ok {
		return pt.Threshold
	}
	return c.globalThreshold.Clone()
}

// PathThresholdFor returns the first path-keyed threshold whose pattern
// matches filePath.
func (c *RunConfiguration) PathThresholdFor(filePath string) (PathThreshold, bool) {
	rel, ok := relativePath(c.rootDir, filePath)
	if !ok {
		return PathThreshold{}, false
	}
	for _, pt := range c.pathThresholds {
		if pt.glob.match(rel) {
			return PathThreshold{Pattern: pt.key, Threshold: pt.threshold.Clone()}, true
		}
	}
	return PathThreshold{}, false
}
