// SPDX-License-Identifier: MPL-2.0

package testplan

const (
	// RootDirToken is replaced by the resolved root directory in patterns and paths.
	RootDirToken = "<rootDir>"

	// GlobalThresholdKey is the coverageThreshold key holding the global thresholds.
	GlobalThresholdKey = "global"

	// ExclusionPrefix marks a collectCoverageFrom entry as an exclusion.
	ExclusionPrefix = "!"
)

type (
	// Definition is a parsed test plan definition, before validation.
	// Mapping fields keep their declaration order and are filled by the parser
	// from the unified CUE value, not by Decode.
	Definition struct {
		// RootDir overrides the directory <rootDir> expands to. Relative values
		// are resolved against the directory of the definition file.
		RootDir string `json:"rootDir,omitempty"`
		// Projects are the declared projects in declaration order.
		Projects []Project `json:"projects"`
		// Verbose reports each individual test during the run.
		Verbose bool `json:"verbose,omitempty"`
		// CollectCoverage enables coverage collection.
		CollectCoverage bool `json:"collectCoverage,omitempty"`
		// CoverageReporters names the coverage report formats.
		CoverageReporters []string `json:"coverageReporters,omitempty"`
		// CoverageThreshold holds the "global" threshold and any path-keyed ones.
		CoverageThreshold []ThresholdEntry `json:"-"`
		// TestTimeout is the default per-test timeout in milliseconds.
		TestTimeout int `json:"testTimeout,omitempty"`

		// Path is the file the definition was read from, if any.
		Path string `json:"-"`
	}

	// Project is one named test group.
	Project struct {
		DisplayName          string   `json:"displayName"`
		TestEnvironment      string   `json:"testEnvironment,omitempty"`
		TestMatch            []string `json:"testMatch,omitempty"`
		ModuleFileExtensions []string `json:"moduleFileExtensions,omitempty"`
		// ModuleNameMapper maps module request regexes to replacement paths.
		ModuleNameMapper Mapping `json:"-"`
		// SetupFilesAfterEnv are scripts run once per project before its tests.
		SetupFilesAfterEnv []string `json:"setupFilesAfterEnv,omitempty"`
		// Transform maps file regexes to transformer names.
		Transform           Mapping  `json:"-"`
		CoverageDirectory   string   `json:"coverageDirectory,omitempty"`
		CollectCoverageFrom []string `json:"collectCoverageFrom,omitempty"`

		// Per-project overrides of global settings. Nil means inherit.
		TestTimeout       *int       `json:"testTimeout,omitempty"`
		CoverageReporters []string   `json:"coverageReporters,omitempty"`
		CoverageThreshold *Threshold `json:"coverageThreshold,omitempty"`
	}

	// Threshold holds minimum coverage percentages. Nil metrics are unset.
	Threshold struct {
		Statements *float64 `json:"statements,omitempty"`
		Branches   *float64 `json:"branches,omitempty"`
		Functions  *float64 `json:"functions,omitempty"`
		Lines      *float64 `json:"lines,omitempty"`
	}

	// ThresholdEntry is one coverageThreshold entry: "global" or a path/glob key.
	ThresholdEntry struct {
		Key       string
		Threshold Threshold
	}

	// MappingEntry is one ordered key/value pair of a mapping field.
	MappingEntry struct {
		Pattern string
		Value   string
	}

	// Mapping is an ordered regex-keyed table. Lookups use the first matching
	// entry, so order is significant.
	Mapping []MappingEntry
)

// Lookup returns the value for an exact pattern key.
func (m Mapping) Lookup(pattern string) (string, bool) {
	for _, e := range m {
		if e.Pattern == pattern {
			return e.Value, true
		}
	}
	return "", false
}

// Float returns a pointer to f, for building Threshold literals.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to i, for building per-project overrides.
func Int(i int) *int { return &i }
