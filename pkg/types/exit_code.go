// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitOK means the command completed successfully.
	ExitOK ExitCode = 0
	// ExitFailure is the generic failure exit code.
	ExitFailure ExitCode = 1
	// ExitInvalidDefinition means the test plan definition failed to load or validate.
	ExitInvalidDefinition ExitCode = 2
	// ExitNoMatch means a query matched nothing (e.g., `match` on a file no project owns).
	ExitNoMatch ExitCode = 3
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code in the POSIX range 0-255.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode for errors.Is compatibility.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether the exit code indicates success.
func (c ExitCode) IsSuccess() bool { return c == ExitOK }

// String returns the decimal representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
