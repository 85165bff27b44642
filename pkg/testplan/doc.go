// SPDX-License-Identifier: MPL-2.0

// Package testplan defines the test plan definition file format.
//
// A definition declares named test projects (display name, environment,
// test-matching globs, module mapping, setup scripts, coverage settings) and a
// global section (verbosity, coverage collection, reporters, thresholds, test
// timeout). Definitions are written in CUE, JSON, YAML or TOML and are always
// validated against the embedded CUE schema (testplan_schema.cue), which is
// closed: unknown fields are rejected.
//
// This package only parses. Semantic validation (unique names, threshold
// ranges, environments, setup file existence, pattern syntax) and the merge of
// global settings into projects happen in internal/resolver.
package testplan
