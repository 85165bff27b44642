// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"testplan-cli/pkg/testplan"

	"mvdan.cc/sh/v3/shell"
)

// DefaultTestTimeout applies when the definition sets no testTimeout.
const DefaultTestTimeout = 5000 * time.Millisecond

var (
	// DefaultTestMatch is used by projects that declare no testMatch.
	DefaultTestMatch = []string{"**/__tests__/**/*.{js,jsx,ts,tsx}", "**/*.{spec,test}.{js,jsx,ts,tsx}"}
	// DefaultModuleFileExtensions is used by projects that declare none.
	DefaultModuleFileExtensions = []string{"js", "mjs", "cjs", "jsx", "ts", "tsx", "json", "node"}
	// DefaultCoverageReporters is used when neither the definition nor the project names reporters.
	DefaultCoverageReporters = []string{"json", "lcov", "text", "clover"}
	// DefaultCoverageDirectory is used by projects that declare no coverageDirectory.
	DefaultCoverageDirectory = testplan.RootDirToken + "/coverage"
)

// loader carries the state of one Load call and collects violations.
type loader struct {
	opts loadOptions
	root string
	errs []error
}

// LoadFile parses the definition at path and loads it.
func LoadFile(ctx context.Context, path string, opts ...Option) (*RunConfiguration, error) {
	o := applyOptions(opts)
	def, err := testplan.ParseFile(o.fs, path)
	if err != nil {
		return nil, err
	}
	return Load(ctx, def, opts...)
}

// Load validates def and resolves it into a RunConfiguration. Every
// violation is collected and returned in one *InvalidDefinitionError; no
// partial configuration is ever returned.
func Load(ctx context.Context, def *testplan.Definition, opts ...Option) (*RunConfiguration, error) {
	if def == nil {
		return nil, errors.New("nil definition")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := &loader{opts: applyOptions(opts)}
	root, err := l.resolveRoot(def)
	if err != nil {
		return nil, &InvalidDefinitionError{Source: def.Path, FieldErrors: []error{err}}
	}
	l.root = root

	cfg := &RunConfiguration{
		source:            def.Path,
		rootDir:           root,
		byName:            make(map[string]*ProjectConfiguration, len(def.Projects)),
		verbose:           def.Verbose,
		collectCoverage:   def.CollectCoverage,
		coverageReporters: orDefault(def.CoverageReporters, DefaultCoverageReporters),
		testTimeout:       DefaultTestTimeout,
	}
	if def.TestTimeout > 0 {
		cfg.testTimeout = time.Duration(def.TestTimeout) * time.Millisecond
	}

	l.loadThresholds(def, cfg)

	if len(def.Projects) == 0 {
		l.fail(ErrNoProjects)
	}

	firstIndex := make(map[string]int, len(def.Projects))
	for i := range def.Projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := &def.Projects[i]
		if src.DisplayName == "" {
			l.fail(&MissingProjectNameError{Index: i})
		} else if first, dup := firstIndex[src.DisplayName]; dup {
			l.fail(&DuplicateProjectNameError{Name: src.DisplayName, FirstIndex: first, Index: i})
		} else {
			firstIndex[src.DisplayName] = i
		}

		p := l.loadProject(src, cfg)
		cfg.projects = append(cfg.projects, p)
		if _, exists := cfg.byName[p.name]; !exists && p.name != "" {
			cfg.byName[p.name] = p
		}
	}

	if len(l.errs) > 0 {
		l.opts.logger.Debug("definition rejected", "source", def.Path, "errors", len(l.errs))
		return nil, &InvalidDefinitionError{Source: def.Path, FieldErrors: l.errs}
	}

	l.opts.logger.Debug("definition loaded", "source", def.Path, "root", root, "projects", len(cfg.projects))
	return cfg, nil
}

func (l *loader) fail(err error) { l.errs = append(l.errs, err) }

// resolveRoot picks the root directory: the WithRootDir override, then the
// definition's rootDir (relative to the definition file), then the
// directory of the definition file, then the working directory.
func (l *loader) resolveRoot(def *testplan.Definition) (string, error) {
	base := ""
	if def.Path != "" {
		base = filepath.Dir(def.Path)
	}

	root := l.opts.rootDir
	if root == "" && def.RootDir != "" {
		expanded, err := shell.Expand(def.RootDir, l.opts.getenv)
		if err != nil {
			return "", &InvalidPathError{Field: "rootDir", Value: def.RootDir, Cause: err}
		}
		root = expanded
		if !filepath.IsAbs(root) && base != "" {
			root = filepath.Join(base, root)
		}
	}
	if root == "" {
		root = base
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve root directory: %w", err)
		}
		root = wd
	}
	return filepath.Abs(root)
}

func (l *loader) loadThresholds(def *testplan.Definition, cfg *RunConfiguration) {
	for _, entry := range def.CoverageThreshold {
		th, errs := thresholdFromDefinition(entry.Key, entry.Threshold)
		for _, err := range errs {
			l.fail(err)
		}

		if entry.Key == testplan.GlobalThresholdKey {
			cfg.globalThreshold = th
			continue
		}

		key := thresholdPattern(entry.Key)
		g, ok := compileGlob(l.root, key)
		if !ok {
			l.fail(&InvalidPatternError{Field: "coverageThreshold", Pattern: entry.Key})
			continue
		}
		cfg.pathThresholds = append(cfg.pathThresholds, pathThreshold{key: entry.Key, glob: g, threshold: th})
	}
	if cfg.globalThreshold == nil {
		cfg.globalThreshold = CoverageThreshold{}
	}
}

// thresholdPattern turns a path-keyed threshold into a glob. A trailing
// slash selects the whole directory.
func thresholdPattern(key string) string {
	key = strings.TrimPrefix(key, "./")
	if strings.HasSuffix(key, "/") {
		key += "**"
	}
	return key
}

func (l *loader) loadProject(src *testplan.Project, cfg *RunConfiguration) *ProjectConfiguration {
	p := &ProjectConfiguration{
		name:              src.DisplayName,
		rootDir:           l.root,
		verbose:           cfg.verbose,
		collectCoverage:   cfg.collectCoverage,
		coverageReporters: orDefault(src.CoverageReporters, cfg.coverageReporters),
		coverageThreshold: cfg.globalThreshold.Clone(),
		testTimeout:       cfg.testTimeout,
	}
	if src.TestTimeout != nil && *src.TestTimeout > 0 {
		p.testTimeout = time.Duration(*src.TestTimeout) * time.Millisecond
	}

	env, ok := ParseEnvironment(src.TestEnvironment)
	if !ok {
		l.fail(&UnknownEnvironmentError{Project: src.DisplayName, Value: src.TestEnvironment})
	}
	p.environment = env

	if src.CoverageThreshold != nil {
		override, errs := thresholdFromDefinition("project "+src.DisplayName, *src.CoverageThreshold)
		for _, err := range errs {
			l.fail(err)
		}
		p.coverageThreshold = p.coverageThreshold.Merge(override)
	}

	p.testMatch = l.globs(src.DisplayName, "testMatch", orDefault(src.TestMatch, DefaultTestMatch))

	for _, ext := range orDefault(src.ModuleFileExtensions, DefaultModuleFileExtensions) {
		p.extensions = append(p.extensions, strings.TrimPrefix(ext, "."))
	}

	p.mapper = l.rules(src.DisplayName, "moduleNameMapper", src.ModuleNameMapper)
	p.transform = l.rules(src.DisplayName, "transform", src.Transform)

	for _, declared := range src.SetupFilesAfterEnv {
		if resolved, ok := l.setupFile(src.DisplayName, declared); ok {
			p.setupFiles = append(p.setupFiles, resolved)
		}
	}

	dir := src.CoverageDirectory
	if dir == "" {
		dir = DefaultCoverageDirectory
	}
	if resolved, err := l.resolvePath(dir); err != nil {
		l.fail(&InvalidPathError{Project: src.DisplayName, Field: "coverageDirectory", Value: dir, Cause: err})
	} else {
		p.coverageDirectory = resolved
	}

	var include, exclude []string
	for _, pattern := range src.CollectCoverageFrom {
		if rest, ok := strings.CutPrefix(pattern, testplan.ExclusionPrefix); ok {
			exclude = append(exclude, rest)
		} else {
			include = append(include, pattern)
		}
	}
	p.coverageInclude = l.globs(src.DisplayName, "collectCoverageFrom", include)
	p.coverageExclude = l.globs(src.DisplayName, "collectCoverageFrom", exclude)

	l.opts.logger.Debug("project resolved",
		"project", p.name,
		"environment", p.environment,
		"testMatch", len(p.testMatch),
		"setupFiles", len(p.setupFiles))
	return p
}

func (l *loader) globs(project, field string, patterns []string) []glob {
	out := make([]glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, ok := compileGlob(l.root, pattern)
		if !ok {
			l.fail(&InvalidPatternError{Project: project, Field: field, Pattern: pattern})
			continue
		}
		out = append(out, g)
	}
	return out
}

func (l *loader) rules(project, field string, m testplan.Mapping) []rule {
	out := make([]rule, 0, len(m))
	for _, e := range m {
		r, err := compileRule(l.root, e)
		if err != nil {
			l.fail(&InvalidMappingError{Project: project, Field: field, Pattern: e.Pattern, Cause: err})
			continue
		}
		out = append(out, r)
	}
	return out
}

// setupFile expands and resolves a setup script path and checks that it
// names an existing regular file.
func (l *loader) setupFile(project, declared string) (string, bool) {
	resolved, err := l.resolvePath(declared)
	if err != nil {
		l.fail(&InvalidPathError{Project: project, Field: "setupFilesAfterEnv", Value: declared, Cause: err})
		return "", false
	}

	info, err := l.opts.fs.Stat(resolved)
	switch {
	case err != nil:
		l.fail(&MissingSetupFileError{Project: project, Declared: declared, Resolved: resolved, Cause: err})
		return "", false
	case !info.Mode().IsRegular():
		l.fail(&MissingSetupFileError{Project: project, Declared: declared, Resolved: resolved, Cause: errors.New("not a regular file")})
		return "", false
	}
	return resolved, true
}

// resolvePath expands $VAR references, substitutes <rootDir> and makes the
// result absolute against the root.
func (l *loader) resolvePath(p string) (string, error) {
	expanded, err := shell.Expand(p, l.opts.getenv)
	if err != nil {
		return "", err
	}
	expanded = strings.ReplaceAll(expanded, testplan.RootDirToken, l.root)
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(l.root, expanded)
	}
	return filepath.Clean(expanded), nil
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return slices.Clone(fallback)
	}
	return slices.Clone(values)
}
