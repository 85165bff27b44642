// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	// OutputText is human-readable styled output.
	OutputText OutputFormat = "text"
	// OutputJSON is indented JSON.
	OutputJSON OutputFormat = "json"
	// OutputYAML is YAML.
	OutputYAML OutputFormat = "yaml"
	// OutputTOML is TOML.
	OutputTOML OutputFormat = "toml"
)

// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
var ErrInvalidOutputFormat = errors.New("invalid output format")

type (
	// OutputFormat selects how a command renders its result.
	OutputFormat string

	// InvalidOutputFormatError is returned for an unsupported -o value.
	InvalidOutputFormatError struct {
		Value   OutputFormat
		Allowed []OutputFormat
	}
)

func (e *InvalidOutputFormatError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, f := range e.Allowed {
		allowed[i] = string(f)
	}
	return fmt.Sprintf("invalid output format %q (valid: %s)", e.Value, strings.Join(allowed, ", "))
}

func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// IsValid reports whether f is one of allowed.
func (f OutputFormat) IsValid(allowed ...OutputFormat) (bool, []error) {
	if slices.Contains(allowed, f) {
		return true, nil
	}
	return false, []error{&InvalidOutputFormatError{Value: f, Allowed: allowed}}
}

// addOutputFlag registers -o/--output with a default and returns the
// target variable.
func addOutputFlag(cmd *cobra.Command, def OutputFormat, allowed ...OutputFormat) *OutputFormat {
	names := make([]string, len(allowed))
	for i, f := range allowed {
		names[i] = string(f)
	}
	out := new(OutputFormat)
	cmd.Flags().StringVarP((*string)(out), "output", "o", string(def), "output format ("+strings.Join(names, "|")+")")
	cmd.PreRunE = chainPreRun(cmd.PreRunE, func(*cobra.Command, []string) error {
		if valid, errs := out.IsValid(allowed...); !valid {
			return errs[0]
		}
		return nil
	})
	return out
}

func chainPreRun(first, second func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	if first == nil {
		return second
	}
	return func(cmd *cobra.Command, args []string) error {
		if err := first(cmd, args); err != nil {
			return err
		}
		return second(cmd, args)
	}
}

// writeStructured encodes v as JSON, YAML or TOML.
func writeStructured(w io.Writer, format OutputFormat, v any) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case OutputTOML:
		return toml.NewEncoder(w).Encode(v)
	default:
		return &InvalidOutputFormatError{Value: format, Allowed: []OutputFormat{OutputJSON, OutputYAML, OutputTOML}}
	}
}
