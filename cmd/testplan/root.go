// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"testplan-cli/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree bound to app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "testplan",
		Short: "Resolve and inspect multi-project test configurations",
		Long: TitleStyle.Render("testplan") + SubtitleStyle.Render(" - Resolve and inspect multi-project test configurations") + `

testplan loads a test plan definition (CUE, JSON, YAML or TOML), validates
it and resolves every project's effective settings: which files are tests,
which files count for coverage, how modules are mapped and transformed,
and which coverage thresholds apply.

` + SubtitleStyle.Render("Examples:") + `
  testplan validate                     Check the definition and report every problem
  testplan projects                     List the declared projects
  testplan match server/tests/a.test.js Show which projects run a file
  testplan list --select client         List the client project's test files
  testplan thresholds summary.json      Check coverage against the thresholds
  testplan show -o json                 Print the effective configuration
  testplan watch                        Report affected projects as files change`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.loadSettings(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&app.flags.definition, "definition", "d", "", "test plan definition file (default: testplan.{cue,json,yaml,yml,toml} in the root)")
	flags.StringVar(&app.flags.root, "root", "", "root directory (overrides rootDir in the definition)")
	flags.StringVar(&app.flags.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/testplan/config.cue)")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newValidateCommand(app),
		newProjectsCommand(app),
		newMatchCommand(app),
		newResolveCommand(app),
		newListCommand(app),
		newCoverageCommand(app),
		newThresholdsCommand(app),
		newShowCommand(app),
		newWatchCommand(app),
		newSchemaCommand(),
		newExplainCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the App and runs the command tree. It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(int(types.ExitFailure))
	}

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}

// handleError defers to fang's styled output, except for failures the
// command already reported.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
