// SPDX-License-Identifier: MPL-2.0

// Package discovery walks a project root and sorts files into the test and
// coverage sets of each resolved project.
//
// A single walk serves every requested project. Directories named in
// DefaultSkipDirs are not descended into. Unreadable entries do not abort
// the walk; they are reported as Diagnostics for the CLI to render.
package discovery
