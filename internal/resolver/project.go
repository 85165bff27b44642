// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"testplan-cli/pkg/testplan"
)

// ProjectConfiguration is the fully merged, immutable view of one project.
// Global settings are folded in at load time, so every getter returns the
// effective value.
type ProjectConfiguration struct {
	name        string
	environment Environment
	rootDir     string

	testMatch  []glob
	extensions []string
	mapper     []rule
	transform  []rule
	setupFiles []string

	coverageDirectory string
	coverageInclude   []glob
	coverageExclude   []glob

	verbose           bool
	collectCoverage   bool
	coverageReporters []string
	coverageThreshold CoverageThreshold
	testTimeout       time.Duration
}

// DisplayName returns the unique project name.
func (p *ProjectConfiguration) DisplayName() string { return p.name }

// Environment returns the canonical environment tag.
func (p *ProjectConfiguration) Environment() Environment { return p.environment }

// RootDir returns the absolute root directory patterns are relative to.
func (p *ProjectConfiguration) RootDir() string { return p.rootDir }

// TestMatch returns the declared test file patterns.
func (p *ProjectConfiguration) TestMatch() []string { return declaredPatterns(p.testMatch) }

// ModuleFileExtensions returns the recognized extensions without leading dots.
func (p *ProjectConfiguration) ModuleFileExtensions() []string { return slices.Clone(p.extensions) }

// ModuleNameMapper returns the mapper entries in declaration order, with
// <rootDir> resolved in the replacements.
func (p *ProjectConfiguration) ModuleNameMapper() testplan.Mapping { return entries(p.mapper) }

// Transform returns the transform entries in declaration order.
func (p *ProjectConfiguration) Transform() testplan.Mapping { return entries(p.transform) }

// SetupFiles returns the absolute setup script paths in declaration order.
func (p *ProjectConfiguration) SetupFiles() []string { return slices.Clone(p.setupFiles) }

// CoverageDirectory returns the absolute coverage output directory.
func (p *ProjectConfiguration) CoverageDirectory() string { return p.coverageDirectory }

// CoverageInclude returns the coverage inclusion patterns.
func (p *ProjectConfiguration) CoverageInclude() []string { return declaredPatterns(p.coverageInclude) }

// CoverageExclude returns the coverage exclusion patterns without the "!" prefix.
func (p *ProjectConfiguration) CoverageExclude() []string { return declaredPatterns(p.coverageExclude) }

// Verbose reports whether individual tests are reported.
func (p *ProjectConfiguration) Verbose() bool { return p.verbose }

// CollectCoverage reports whether coverage is collected.
func (p *ProjectConfiguration) CollectCoverage() bool { return p.collectCoverage }

// CoverageReporters returns the effective reporter list.
func (p *ProjectConfiguration) CoverageReporters() []string { return slices.Clone(p.coverageReporters) }

// CoverageThreshold returns the effective threshold: the global one with
// any project overrides applied.
func (p *ProjectConfiguration) CoverageThreshold() CoverageThreshold { return p.coverageThreshold.Clone() }

// TestTimeout returns the effective per-test timeout.
func (p *ProjectConfiguration) TestTimeout() time.Duration { return p.testTimeout }

// MatchesProject reports whether filePath matches at least one of the
// project's test patterns. filePath may be absolute (inside the root) or
// root-relative.
func (p *ProjectConfiguration) MatchesProject(filePath string) bool {
	rel, ok := relativePath(p.rootDir, filePath)
	if !ok {
		return false
	}
	return matchAny(p.testMatch, rel)
}

// IsCoverageIncluded reports whether filePath matches an inclusion pattern
// and no exclusion pattern. Without inclusion patterns nothing is included.
func (p *ProjectConfiguration) IsCoverageIncluded(filePath string) bool {
	rel, ok := relativePath(p.rootDir, filePath)
	if !ok {
		return false
	}
	return matchAny(p.coverageInclude, rel) && !matchAny(p.coverageExclude, rel)
}

// RecognizesExtension reports whether filePath ends in one of the module
// file extensions.
func (p *ProjectConfiguration) RecognizesExtension(filePath string) bool {
	ext := strings.TrimPrefix(path.Ext(filePath), ".")
	return ext != "" && slices.Contains(p.extensions, ext)
}

// MapModuleName resolves a module request through the first matching
// moduleNameMapper entry, expanding $n capture references.
func (p *ProjectConfiguration) MapModuleName(request string) (string, bool) {
	for _, r := range p.mapper {
		if m := r.find(request); m != nil {
			return r.expand(m), true
		}
	}
	return "", false
}

// TransformerFor returns the transformer of the first transform entry whose
// pattern matches filePath. Patterns are matched against the absolute slash
// path, so keys such as `/client/.*\.jsx$` work.
func (p *ProjectConfiguration) TransformerFor(filePath string) (string, bool) {
	subject := filepath.ToSlash(filePath)
	if rel, ok := relativePath(p.rootDir, filePath); ok {
		subject = path.Join(filepath.ToSlash(p.rootDir), rel)
	}
	for _, r := range p.transform {
		if r.find(subject) != nil {
			return r.value, true
		}
	}
	return "", false
}

// MatchesProject reports whether filePath is one of project's test files.
func MatchesProject(project *ProjectConfiguration, filePath string) bool {
	return project.MatchesProject(filePath)
}

// IsCoverageIncluded reports whether filePath counts toward project's coverage.
func IsCoverageIncluded(project *ProjectConfiguration, filePath string) bool {
	return project.IsCoverageIncluded(filePath)
}

func entries(rules []rule) testplan.Mapping {
	if len(rules) == 0 {
		return nil
	}
	m := make(testplan.Mapping, len(rules))
	for i, r := range rules {
		m[i] = r.entry()
	}
	return m
}
