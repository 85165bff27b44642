// SPDX-License-Identifier: MPL-2.0

// Package resolver turns a parsed test plan definition into an immutable
// RunConfiguration.
//
// Load validates the definition (unique project names, known environments,
// thresholds within [0, 100], well-formed globs and regexes, existing setup
// files), merges the global section into every project, and compiles all
// patterns once. The result is never mutated afterwards, so SelectProjects,
// MatchesProject, IsCoverageIncluded and the other queries are safe for
// concurrent use without locking.
//
// Resolver wraps Load in a two-state lifecycle (Unloaded -> Loaded) for
// callers that hold the configuration for the duration of a run.
package resolver
