// SPDX-License-Identifier: MPL-2.0

// Package config handles application settings using Viper with CUE as the file format.
//
// Settings are loaded from config.cue in the platform config directory
// ($XDG_CONFIG_HOME/testplan on Linux, ~/Library/Application Support/testplan
// on macOS, %APPDATA%\testplan on Windows) or from an explicit file, validated
// against the embedded config_schema.cue, and merged over defaults. Keys can
// be overridden with TESTPLAN_* environment variables, for example
// TESTPLAN_UI_VERBOSE=true or TESTPLAN_WATCH_DEBOUNCE_MS=500.
//
// These are settings of the tool itself. Test plan definitions are handled
// by pkg/testplan and internal/resolver.
package config
