// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultDebounceMs is the default watch debounce window in milliseconds.
	DefaultDebounceMs = 300
	maxDebounceMs     = 60000
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidUIConfigError collects UIConfig field errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidWatchConfigError collects WatchConfig field errors.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application settings.
	Config struct {
		// Definition is the test plan file used when --definition is not given.
		Definition string `json:"definition" mapstructure:"definition"`
		// RootDir is the root directory used when --root is not given.
		RootDir string `json:"root_dir" mapstructure:"root_dir"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Watch configures watch mode.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		DebounceMs  int      `json:"debounce_ms" mapstructure:"debounce_ms"`
		ClearScreen bool     `json:"clear_screen" mapstructure:"clear_screen"`
		Ignore      []string `json:"ignore" mapstructure:"ignore"`
	}
)

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// IsValid delegates to ColorScheme.IsValid(); Verbose needs no validation.
func (c UIConfig) IsValid() (bool, []error) {
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		return false, []error{&InvalidUIConfigError{FieldErrors: fieldErrs}}
	}
	return true, nil
}

func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid checks the debounce range and that every ignore pattern is a valid glob.
func (c WatchConfig) IsValid() (bool, []error) {
	var errs []error
	if c.DebounceMs < 0 || c.DebounceMs > maxDebounceMs {
		errs = append(errs, fmt.Errorf("debounce_ms %d out of range [0, %d]", c.DebounceMs, maxDebounceMs))
	}
	for i, pattern := range c.Ignore {
		if strings.TrimSpace(pattern) == "" || !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("ignore[%d]: invalid pattern %q", i, pattern))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidWatchConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %s", errors.Join(e.FieldErrors...))
}

func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// Debounce returns the debounce window as a duration.
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if c.RootDir != "" && strings.TrimSpace(c.RootDir) == "" {
		errs = append(errs, errors.New("root_dir must not be whitespace-only"))
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Watch.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Watch: WatchConfig{
			DebounceMs: DefaultDebounceMs,
			Ignore:     []string{},
		},
	}
}
