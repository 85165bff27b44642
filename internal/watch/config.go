// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrInvalidWatchConfig is the sentinel wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidPattern is the sentinel wrapped by InvalidPatternError.
	ErrInvalidPattern = errors.New("invalid watch pattern")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watcher already running")

	defaultIgnores = []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/coverage/**",
		"**/*.swp",
		"**/*.swx",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the directory watched recursively. Empty means the
		// working directory.
		BaseDir string

		// Patterns select which root-relative paths are reported. Empty
		// reports every non-ignored path.
		Patterns []string

		// Ignore patterns are added to the built-in ignores.
		Ignore []string

		// Filter, when set, is consulted after the patterns; paths for which
		// it returns false are dropped.
		Filter func(rel string) bool

		// Debounce is the quiet period after the last event. Zero or negative
		// selects DefaultDebounce.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before each
		// callback.
		ClearScreen bool
		Stdout      io.Writer

		// OnChange receives the changed paths. Errors are logged and do not
		// stop the watcher.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives watcher diagnostics. Nil discards them.
		Logger *log.Logger
	}

	// InvalidPatternError is returned for a malformed watch or ignore glob.
	InvalidPatternError struct {
		Field   string
		Pattern string
	}

	// InvalidWatchConfigError aggregates Config validation failures.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q", e.Field, e.Pattern)
}

// Unwrap returns ErrInvalidPattern for errors.Is compatibility.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid watch config: %d error(s): %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// Validate checks every pattern and the base directory.
func (c Config) Validate() error {
	var errs []error
	for _, p := range c.Patterns {
		if p == "" || !doublestar.ValidatePattern(p) {
			errs = append(errs, &InvalidPatternError{Field: "watch", Pattern: p})
		}
	}
	for _, p := range c.Ignore {
		if p == "" || !doublestar.ValidatePattern(p) {
			errs = append(errs, &InvalidPatternError{Field: "ignore", Pattern: p})
		}
	}
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, errors.New("base directory must not be whitespace"))
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	out := make([]string, len(defaultIgnores))
	copy(out, defaultIgnores)
	return out
}
