// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE schema handling.
//
// Both the test plan definition and the application settings follow the same
// flow:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Build the user value (from CUE source, or from an AST/Go value produced
//     by another decoder) in the schema's context and unify the two
//  3. Validate and decode to a Go struct
//
// # Usage
//
//	//go:embed testplan_schema.cue
//	var schemaSource string
//
//	result, err := cueutil.ParseAndDecode[Definition](
//	    []byte(schemaSource),
//	    data,
//	    "#Definition",
//	    cueutil.WithFilename("testplan.cue"),
//	)
//	if err != nil {
//	    return nil, err // error carries file and JSON-path prefixes
//	}
//	return result.Value, nil
package cueutil
