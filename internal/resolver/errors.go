// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"strings"

	"testplan-cli/pkg/types"
)

var (
	// ErrConfig is matched by every definition validation error.
	ErrConfig = errors.New("invalid test plan definition")

	// ErrDuplicateProjectName is returned when two projects share a display name.
	ErrDuplicateProjectName = fmt.Errorf("%w: duplicate project name", ErrConfig)
	// ErrInvalidThreshold is returned when a coverage threshold is outside [0, 100].
	ErrInvalidThreshold = fmt.Errorf("%w: invalid coverage threshold", ErrConfig)
	// ErrMissingSetupFile is returned when a setup script does not exist.
	ErrMissingSetupFile = fmt.Errorf("%w: missing setup file", ErrConfig)
	// ErrUnknownEnvironment is returned for an unrecognized test environment tag.
	ErrUnknownEnvironment = fmt.Errorf("%w: unknown test environment", ErrConfig)
	// ErrInvalidPattern is returned for a malformed glob pattern.
	ErrInvalidPattern = fmt.Errorf("%w: invalid glob pattern", ErrConfig)
	// ErrInvalidMapping is returned for a malformed moduleNameMapper or transform regex.
	ErrInvalidMapping = fmt.Errorf("%w: invalid mapping pattern", ErrConfig)
	// ErrInvalidPath is returned when a path field cannot be expanded.
	ErrInvalidPath = fmt.Errorf("%w: invalid path", ErrConfig)
	// ErrMissingProjectName is returned for a project without a display name.
	ErrMissingProjectName = fmt.Errorf("%w: missing project name", ErrConfig)
	// ErrNoProjects is returned for a definition without projects.
	ErrNoProjects = fmt.Errorf("%w: no projects declared", ErrConfig)

	// ErrUnknownProject is returned when a query names a project that is not declared.
	ErrUnknownProject = errors.New("unknown project")

	// ErrNotLoaded is returned by Resolver queries before a successful Load.
	ErrNotLoaded = errors.New("test plan not loaded")
	// ErrAlreadyLoaded is returned by Resolver.Load once a configuration is loaded.
	ErrAlreadyLoaded = errors.New("test plan already loaded")
)

type (
	// DuplicateProjectNameError is returned when two projects share a display name.
	DuplicateProjectNameError struct {
		Name       string
		FirstIndex int
		Index      int
	}

	// InvalidThresholdError is returned when a threshold percentage is outside [0, 100].
	// Scope is "global", a path key, or "project <name>".
	InvalidThresholdError struct {
		Scope  string
		Metric Metric
		Value  float64
	}

	// MissingSetupFileError is returned when a setup script path does not
	// resolve to an existing regular file.
	MissingSetupFileError struct {
		Project  string
		Declared string
		Resolved string
		Cause    error
	}

	// UnknownEnvironmentError is returned for an unrecognized environment tag.
	UnknownEnvironmentError struct {
		Project string
		Value   string
	}

	// InvalidPatternError is returned for a malformed glob pattern.
	InvalidPatternError struct {
		Project string
		Field   string
		Pattern string
	}

	// InvalidMappingError is returned for a malformed regex key.
	InvalidMappingError struct {
		Project string
		Field   string
		Pattern string
		Cause   error
	}

	// InvalidPathError is returned when $VAR expansion of a path field fails.
	// Project is empty for the top-level rootDir.
	InvalidPathError struct {
		Project string
		Field   string
		Value   string
		Cause   error
	}

	// MissingProjectNameError is returned for a project without a display name.
	MissingProjectNameError struct {
		Index int
	}

	// UnknownProjectError is returned when a query names an undeclared project.
	UnknownProjectError struct {
		Name string
	}

	// InvalidDefinitionError aggregates every violation found by Load.
	// errors.Is and errors.As see each collected error.
	InvalidDefinitionError struct {
		Source      string
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *DuplicateProjectNameError) Error() string {
	return fmt.Sprintf("projects[%d]: duplicate project name %q (already declared by projects[%d])", e.Index, e.Name, e.FirstIndex)
}

// Unwrap returns ErrDuplicateProjectName for errors.Is compatibility.
func (e *DuplicateProjectNameError) Unwrap() error { return ErrDuplicateProjectName }

// Error implements the error interface.
func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("coverageThreshold %s.%s: %s is outside [0, 100]", e.Scope, e.Metric, types.Percentage(e.Value))
}

// Unwrap returns ErrInvalidThreshold for errors.Is compatibility.
func (e *InvalidThresholdError) Unwrap() error { return ErrInvalidThreshold }

// Error implements the error interface.
func (e *MissingSetupFileError) Error() string {
	msg := fmt.Sprintf("project %q: setup file %q not found", e.Project, e.Declared)
	if e.Resolved != e.Declared {
		msg += " (resolved to " + e.Resolved + ")"
	}
	return msg
}

// Unwrap returns ErrMissingSetupFile for errors.Is compatibility.
func (e *MissingSetupFileError) Unwrap() error { return ErrMissingSetupFile }

// Error implements the error interface.
func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("project %q: unknown test environment %q (valid: %s)", e.Project, e.Value, strings.Join(environmentNames(), ", "))
}

// Unwrap returns ErrUnknownEnvironment for errors.Is compatibility.
func (e *UnknownEnvironmentError) Unwrap() error { return ErrUnknownEnvironment }

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	if e.Project == "" {
		return fmt.Sprintf("%s: invalid glob pattern %q", e.Field, e.Pattern)
	}
	return fmt.Sprintf("project %q: %s: invalid glob pattern %q", e.Project, e.Field, e.Pattern)
}

// Unwrap returns ErrInvalidPattern for errors.Is compatibility.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }

// Error implements the error interface.
func (e *InvalidMappingError) Error() string {
	return fmt.Sprintf("project %q: %s: invalid regular expression %q: %v", e.Project, e.Field, e.Pattern, e.Cause)
}

// Unwrap returns ErrInvalidMapping for errors.Is compatibility.
func (e *InvalidMappingError) Unwrap() error { return ErrInvalidMapping }

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	if e.Project == "" {
		return fmt.Sprintf("%s: cannot expand %q: %v", e.Field, e.Value, e.Cause)
	}
	return fmt.Sprintf("project %q: %s: cannot expand %q: %v", e.Project, e.Field, e.Value, e.Cause)
}

// Unwrap returns ErrInvalidPath for errors.Is compatibility.
func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }

// Error implements the error interface.
func (e *MissingProjectNameError) Error() string {
	return fmt.Sprintf("projects[%d]: displayName must not be empty", e.Index)
}

// Unwrap returns ErrMissingProjectName for errors.Is compatibility.
func (e *MissingProjectNameError) Unwrap() error { return ErrMissingProjectName }

// Error implements the error interface.
func (e *UnknownProjectError) Error() string {
	return fmt.Sprintf("unknown project %q", e.Name)
}

// Unwrap returns ErrUnknownProject for errors.Is compatibility.
func (e *UnknownProjectError) Unwrap() error { return ErrUnknownProject }

// Error implements the error interface.
func (e *InvalidDefinitionError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrConfig.Error())
	if e.Source != "" {
		sb.WriteString(" " + e.Source)
	}
	fmt.Fprintf(&sb, ": %d error(s)", len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *InvalidDefinitionError) Unwrap() []error { return e.FieldErrors }
