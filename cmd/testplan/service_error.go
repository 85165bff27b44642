// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"testplan-cli/internal/issue"
	"testplan-cli/internal/resolver"
	"testplan-cli/pkg/testplan"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled message (if present) and the linked issue guide.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints any styled message first, then the optional
// issue guide rendered with the given glamour style.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			fmt.Fprintf(stderr, "%s failed to render issue guide %s: %v\n", WarningStyle.Render("Warning:"), catalogEntry.Name(), renderErr)
			return
		}
		fmt.Fprint(stderr, rendered)
	}
}

// classifyPlanError picks the catalog entry that best explains a test plan
// failure. For aggregated violations the first matching kind wins, in the
// order checked here.
func classifyPlanError(err error) issue.Id {
	switch {
	case errors.Is(err, testplan.ErrDefinitionNotFound), errors.Is(err, os.ErrNotExist):
		return issue.DefinitionNotFoundId
	case errors.Is(err, resolver.ErrUnknownEnvironment):
		return issue.UnknownEnvironmentId
	case errors.Is(err, resolver.ErrDuplicateProjectName):
		return issue.DuplicateProjectNameId
	case errors.Is(err, resolver.ErrMissingSetupFile):
		return issue.MissingSetupFileId
	case errors.Is(err, resolver.ErrInvalidThreshold):
		return issue.InvalidThresholdId
	case errors.Is(err, resolver.ErrInvalidMapping):
		return issue.InvalidMappingId
	case errors.Is(err, resolver.ErrInvalidPattern):
		return issue.InvalidPatternId
	case errors.Is(err, resolver.ErrUnknownProject):
		return issue.UnknownProjectId
	default:
		return issue.DefinitionParseErrorId
	}
}
