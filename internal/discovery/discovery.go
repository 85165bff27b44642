// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"testplan-cli/internal/resolver"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// DefaultSkipDirs are directory names never descended into.
var DefaultSkipDirs = []string{"node_modules", ".git"}

type (
	// Option configures a Discovery.
	Option func(*Discovery)

	// Discovery finds project files below the configuration root.
	Discovery struct {
		cfg      *resolver.RunConfiguration
		fs       afero.Fs
		skipDirs []string
		logger   *log.Logger
	}

	// ProjectFiles lists the files of one project as sorted, slash-separated
	// root-relative paths.
	ProjectFiles struct {
		Project *resolver.ProjectConfiguration
		Files   []string
	}

	// Result bundles per-project files with diagnostics from the walk.
	Result struct {
		Projects    []ProjectFiles
		Diagnostics []Diagnostic
	}
)

// WithFs sets the filesystem to walk. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(d *Discovery) {
		d.fs = fsys
	}
}

// WithSkipDirs replaces DefaultSkipDirs.
func WithSkipDirs(names ...string) Option {
	return func(d *Discovery) {
		d.skipDirs = names
	}
}

// WithLogger sets the logger for walk diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(d *Discovery) {
		d.logger = l
	}
}

// New creates a Discovery for cfg.
func New(cfg *resolver.RunConfiguration, opts ...Option) *Discovery {
	d := &Discovery{
		cfg:      cfg,
		fs:       afero.NewOsFs(),
		skipDirs: DefaultSkipDirs,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	return d
}

// List returns the test files of each project: files matching the
// project's test patterns whose extension the project recognizes.
func (d *Discovery) List(ctx context.Context, projects []*resolver.ProjectConfiguration) (*Result, error) {
	return d.collect(ctx, projects, func(p *resolver.ProjectConfiguration, rel string) bool {
		return p.MatchesProject(rel) && p.RecognizesExtension(rel)
	})
}

// Coverage returns the coverage-collected files of each project.
func (d *Discovery) Coverage(ctx context.Context, projects []*resolver.ProjectConfiguration) (*Result, error) {
	return d.collect(ctx, projects, (*resolver.ProjectConfiguration).IsCoverageIncluded)
}

func (d *Discovery) collect(ctx context.Context, projects []*resolver.ProjectConfiguration, keep func(*resolver.ProjectConfiguration, string) bool) (*Result, error) {
	files, diags, err := d.walk(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Diagnostics: diags}
	for _, p := range projects {
		pf := ProjectFiles{Project: p, Files: []string{}}
		for _, rel := range files {
			if keep(p, rel) {
				pf.Files = append(pf.Files, rel)
			}
		}
		result.Projects = append(result.Projects, pf)
	}
	return result, nil
}

// walk returns every regular file below the root as a sorted list of
// slash-separated root-relative paths.
func (d *Discovery) walk(ctx context.Context) ([]string, []Diagnostic, error) {
	root := d.cfg.RootDir()

	var (
		files []string
		diags []Diagnostic
	)

	if _, err := d.fs.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeRootMissing,
				Message:  "root directory does not exist",
				Path:     root,
				Cause:    err,
			})
			return nil, diags, nil
		}
		return nil, nil, err
	}

	err := afero.Walk(d.fs, root, func(path string, info fs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			d.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeWalkError,
				Message:  "entry could not be read and was skipped",
				Path:     path,
				Cause:    err,
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if path != root && slices.Contains(d.skipDirs, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slices.Sort(files)
	d.logger.Debug("walk complete", "root", root, "files", len(files), "diagnostics", len(diags))
	return files, diags, nil
}
