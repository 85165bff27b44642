// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"testplan-cli/internal/config"
	"testplan-cli/internal/issue"
	"testplan-cli/internal/resolver"
	"testplan-cli/pkg/testplan"
	"testplan-cli/pkg/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command handler receives an App and
	// reaches settings, the filesystem and the resolver through it.
	App struct {
		Config ConfigProvider
		fs     afero.Fs
		getenv func(string) string
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger

		flags        globalFlags
		settings     *config.Config
		settingsPath string
		// settingsErr is the load failure that made settings fall back to
		// defaults, if any.
		settingsErr error
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Fs     afero.Fs
		Getenv func(string) string
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads application settings using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Path(opts config.LoadOptions) (string, error)
	}

	globalFlags struct {
		definition string
		root       string
		configFile string
		verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}

	logger := log.NewWithOptions(deps.Stderr, log.Options{Prefix: config.AppName})

	return &App{
		Config:   deps.Config,
		fs:       deps.Fs,
		getenv:   deps.Getenv,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		logger:   logger,
		settings: config.DefaultConfig(),
	}, nil
}

// loadSettings reads application settings once per invocation. A broken
// file at the default location degrades to defaults with a warning; a file
// named with --config must load.
func (a *App) loadSettings(ctx context.Context) error {
	opts := config.LoadOptions{ConfigFilePath: a.flags.configFile}

	cfg, err := a.Config.Load(ctx, opts)
	switch {
	case err == nil:
		a.settings = cfg
		a.settingsPath, _ = a.Config.Path(opts)
	case a.flags.configFile != "":
		return err
	default:
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
		a.settings = config.DefaultConfig()
		a.settingsErr = err
	}

	if a.verbose() {
		a.logger.SetLevel(log.DebugLevel)
	}
	a.logger.Debug("settings loaded", "path", a.settingsPath, "color_scheme", a.settings.UI.ColorScheme)
	return nil
}

func (a *App) verbose() bool {
	return a.flags.verbose || a.settings.UI.Verbose
}

// rootOverride is the root directory forced on the definition, if any.
func (a *App) rootOverride() string {
	if a.flags.root != "" {
		return a.flags.root
	}
	return a.settings.RootDir
}

// definitionPath picks the definition file: --definition, then the
// configured default, then the first well-known file name in the root.
func (a *App) definitionPath() (string, error) {
	if a.flags.definition != "" {
		return a.flags.definition, nil
	}

	searchDir := a.rootOverride()
	if searchDir == "" {
		searchDir = "."
	}

	if p := a.settings.Definition; p != "" {
		if !filepath.IsAbs(p) {
			p = filepath.Join(searchDir, p)
		}
		return p, nil
	}

	return testplan.Find(a.fs, searchDir)
}

// loadPlan resolves the test plan for this invocation. Failures come back
// as an *ExitError carrying a *ServiceError, ready for fail.
func (a *App) loadPlan(ctx context.Context) (*resolver.Resolver, *resolver.RunConfiguration, error) {
	path, err := a.definitionPath()
	if err != nil {
		return nil, nil, definitionFailure(err, "")
	}

	opts := []resolver.Option{
		resolver.WithFs(a.fs),
		resolver.WithLogger(a.logger),
		resolver.WithEnv(a.getenv),
	}
	if root := a.rootOverride(); root != "" {
		opts = append(opts, resolver.WithRootDir(root))
	}

	r := resolver.New(opts...)
	cfg, err := r.LoadFile(ctx, path)
	if err != nil {
		return nil, nil, definitionFailure(err, path)
	}

	a.logger.Debug("test plan loaded", "path", path, "root", cfg.RootDir(), "projects", len(cfg.Projects()))
	return r, cfg, nil
}

func definitionFailure(err error, path string) error {
	ctx := issue.NewErrorContext().
		WithOperation("load test plan").
		WithResource(path).
		WithIssue(classifyPlanError(err)).
		Wrap(err)
	if errors.Is(err, testplan.ErrDefinitionNotFound) || errors.Is(err, os.ErrNotExist) {
		ctx = ctx.WithSuggestion("Pass --definition or create testplan.cue in the root directory")
	} else {
		ctx = ctx.WithSuggestion("Run 'testplan validate' to list every problem")
	}

	ae := ctx.Build()
	return &ExitError{
		Code: types.ExitInvalidDefinition,
		Err:  newServiceError(ae, ae.IssueId, ""),
	}
}

// selectProjects applies --select and rejects names that match nothing.
func (a *App) selectProjects(cfg *resolver.RunConfiguration, names []string) ([]*resolver.ProjectConfiguration, error) {
	if unknown := cfg.UnknownProjects(names); len(unknown) > 0 {
		errs := make([]error, 0, len(unknown))
		for _, name := range unknown {
			errs = append(errs, &resolver.UnknownProjectError{Name: name})
		}
		ae := issue.NewErrorContext().
			WithOperation("select projects").
			WithSuggestion("Run 'testplan projects' to list the declared projects").
			WithIssue(issue.UnknownProjectId).
			Wrap(errors.Join(errs...)).
			Build()
		return nil, newServiceError(ae, issue.UnknownProjectId, "")
	}
	return cfg.SelectProjects(names), nil
}

// fail renders err on the command's stderr and converts it into an
// already-reported *ExitError.
func (a *App) fail(cmd *cobra.Command, err error) error {
	stderr := cmd.ErrOrStderr()
	fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose()))

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(stderr, svcErr, a.issueStyle())
	}

	code := types.ExitFailure
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}
	return &ExitError{Code: code}
}

// issueStyle maps the color scheme to a glamour style. Output that is not a
// terminal gets the plain style.
func (a *App) issueStyle() string {
	switch a.settings.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	}
	if f, ok := a.stderr.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
