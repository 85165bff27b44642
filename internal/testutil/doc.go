// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixture helpers for tests that fail the test
// immediately on setup errors, reducing boilerplate.
//
// NewMemFs builds an in-memory afero tree for resolver and discovery tests;
// WriteFiles lays out the same kind of tree on disk for tests that need a
// real filesystem, such as watch mode or the CLI.
package testutil
