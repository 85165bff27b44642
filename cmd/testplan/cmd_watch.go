// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"

	"testplan-cli/internal/issue"
	"testplan-cli/internal/resolver"
	"testplan-cli/internal/watch"
	"testplan-cli/pkg/types"

	"github.com/spf13/cobra"
)

// planWatch reports which projects a batch of changed files affects. The
// plan is swapped atomically when the definition file itself changes.
type planWatch struct {
	plan        atomic.Pointer[resolver.RunConfiguration]
	selected    []string
	definition  string // root-relative slash path, empty when outside the root
	reload      func(context.Context) (*resolver.RunConfiguration, error)
	stdout      io.Writer
	stderr      io.Writer
	verboseMode bool
}

func newWatchCommand(app *App) *cobra.Command {
	var selected []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report affected projects as files change",
		Long: `Watch the root directory and, after each burst of changes, print which
selected projects run or cover every changed file. Editing the definition
reloads it; an invalid edit is reported and the previous plan is kept.

Debounce, screen clearing and extra ignore patterns come from the watch
section of the config file. Press Ctrl+C to stop.`,
		Example: `  testplan watch
  testplan watch --select client`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringSliceVarP(&selected, "select", "s", nil, "comma-separated project names (default: all)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		_, cfg, err := app.loadPlan(cmd.Context())
		if err != nil {
			return app.fail(cmd, err)
		}
		if _, err := app.selectProjects(cfg, selected); err != nil {
			return app.fail(cmd, err)
		}

		pw := &planWatch{
			selected:    selected,
			definition:  definitionRel(cfg),
			stdout:      cmd.OutOrStdout(),
			stderr:      cmd.ErrOrStderr(),
			verboseMode: app.verbose(),
			reload: func(ctx context.Context) (*resolver.RunConfiguration, error) {
				_, next, err := app.loadPlan(ctx)
				return next, err
			},
		}
		pw.plan.Store(cfg)

		settings := app.settings.Watch
		w, err := watch.New(watch.Config{
			BaseDir:     cfg.RootDir(),
			Ignore:      settings.Ignore,
			Filter:      pw.relevant,
			Debounce:    settings.Debounce(),
			ClearScreen: settings.ClearScreen,
			Stdout:      cmd.OutOrStdout(),
			OnChange:    pw.onChange,
			Logger:      app.logger,
		})
		if err != nil {
			return app.fail(cmd, watchFailure(err, cfg.RootDir()))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Watching %s for %d project(s) (Ctrl+C to stop)...\n",
			CmdStyle.Render("→"), cfg.RootDir(), len(cfg.SelectProjects(selected)))

		if err := w.Run(cmd.Context()); err != nil {
			return app.fail(cmd, watchFailure(err, cfg.RootDir()))
		}
		return nil
	}

	return cmd
}

func watchFailure(err error, root string) error {
	ae := issue.NewErrorContext().
		WithOperation("watch files").
		WithResource(root).
		WithSuggestion("Raise the inotify watch limit or narrow the tree with watch.ignore").
		WithIssue(issue.WatchFailedId).
		Wrap(err).
		Build()
	return &ExitError{Code: types.ExitFailure, Err: newServiceError(ae, issue.WatchFailedId, "")}
}

// definitionRel returns the definition's path relative to the root, or ""
// when it lives outside the watched tree.
func definitionRel(cfg *resolver.RunConfiguration) string {
	if cfg.Source() == "" {
		return ""
	}
	src, err := filepath.Abs(cfg.Source())
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(cfg.RootDir(), src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}

// relevant keeps the definition and files a selected project runs or covers.
func (pw *planWatch) relevant(rel string) bool {
	if rel == pw.definition {
		return true
	}
	for _, p := range pw.plan.Load().SelectProjects(pw.selected) {
		if p.MatchesProject(rel) || p.IsCoverageIncluded(rel) {
			return true
		}
	}
	return false
}

func (pw *planWatch) onChange(ctx context.Context, changed []string) error {
	for _, rel := range changed {
		if rel != pw.definition {
			continue
		}
		next, err := pw.reload(ctx)
		if err != nil {
			fmt.Fprintf(pw.stderr, "%s definition changed but failed to load, keeping the previous plan: %s\n",
				WarningStyle.Render("Warning:"), formatErrorForDisplay(planCause(err), pw.verboseMode))
			break
		}
		pw.plan.Store(next)
		fmt.Fprintf(pw.stdout, "%s Reloaded %s (%d project(s))\n", SuccessStyle.Render(successIcon), rel, len(next.Projects()))
	}

	plan := pw.plan.Load()
	projects := plan.SelectProjects(pw.selected)
	for _, rel := range changed {
		if rel == pw.definition {
			continue
		}
		m := matchFile(plan, projects, rel)
		fmt.Fprintf(pw.stdout, "%s %s %s tests: %s coverage: %s\n", SubtitleStyle.Render(infoIcon), CmdStyle.Render(rel),
			SubtitleStyle.Render("|"), joinProjects(m.Projects), joinProjects(m.Coverage))
	}
	return nil
}

// planCause unwraps the CLI envelope loadPlan puts around resolver errors.
func planCause(err error) error {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Err
	}
	return err
}
