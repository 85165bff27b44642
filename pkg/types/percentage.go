// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidPercentage is the sentinel error wrapped by InvalidPercentageError.
var ErrInvalidPercentage = errors.New("invalid percentage")

type (
	// Percentage is a value in the closed interval [0, 100].
	Percentage float64

	// InvalidPercentageError is returned when a Percentage is NaN or outside [0, 100].
	InvalidPercentageError struct {
		Value Percentage
	}
)

// Error implements the error interface.
func (e *InvalidPercentageError) Error() string {
	return fmt.Sprintf("invalid percentage %s (must be within [0, 100])", e.Value)
}

// Unwrap returns ErrInvalidPercentage for errors.Is compatibility.
func (e *InvalidPercentageError) Unwrap() error { return ErrInvalidPercentage }

// Validate returns an error if the Percentage is NaN or outside [0, 100].
func (p Percentage) Validate() error {
	f := float64(p)
	if math.IsNaN(f) || f < 0 || f > 100 {
		return &InvalidPercentageError{Value: p}
	}
	return nil
}

// String formats the percentage without trailing zeros (70, 62.5).
func (p Percentage) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}
