// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for testplan.
//
// This package implements the Cobra command hierarchy for the testplan CLI:
// validation of test plan definitions, project and file queries, discovery
// listings, the watch loop and application config management.
package cmd
