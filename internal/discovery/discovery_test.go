// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"testing"

	"testplan-cli/internal/resolver"
	"testplan-cli/internal/testutil"
	"testplan-cli/pkg/testplan"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

var repoFiles = []string{
	"/repo/server/tests/setup.js",
	"/repo/server/tests/users.test.js",
	"/repo/server/tests/api/auth.test.js",
	"/repo/server/tests/api/notes.md",
	"/repo/server/src/app.js",
	"/repo/server/src/config/db.js",
	"/repo/server/src/routes/users.js",
	"/repo/client/src/App.jsx",
	"/repo/client/src/App.test.jsx",
	"/repo/client/src/index.js",
	"/repo/client/src/tests/setup.js",
	"/repo/client/src/components/Button.test.js",
	"/repo/client/src/components/Button.jsx",
	"/repo/client/src/components/Button.test.tsx",
	"/repo/node_modules/left-pad/index.test.js",
	"/repo/client/node_modules/react/index.js",
	"/repo/.git/hooks/pre-commit.test.js",
}

func newRepo(t *testing.T) (afero.Fs, *resolver.RunConfiguration) {
	t.Helper()

	fs := testutil.NewMemFsFiles(t, repoFiles...)

	def := &testplan.Definition{
		RootDir: "/repo",
		Projects: []testplan.Project{
			{
				DisplayName:          "server",
				TestEnvironment:      "node",
				TestMatch:            []string{"<rootDir>/server/tests/**/*.test.js", "**/*.test.js"},
				ModuleFileExtensions: []string{"js", "json", "node"},
				SetupFilesAfterEnv:   []string{"<rootDir>/server/tests/setup.js"},
				CollectCoverageFrom:  []string{"server/src/**/*.js", "!server/src/config/**", "!**/node_modules/**"},
			},
			{
				DisplayName:          "client",
				TestEnvironment:      "jsdom",
				TestMatch:            []string{"<rootDir>/client/src/**/*.test.{js,jsx,tsx}"},
				ModuleFileExtensions: []string{"js", "jsx", "json"},
				CollectCoverageFrom:  []string{"client/src/**/*.{js,jsx}", "!client/src/index.js", "!**/node_modules/**"},
			},
		},
	}

	cfg, err := resolver.Load(context.Background(), def, resolver.WithFs(fs))
	if err != nil {
		t.Fatalf("resolver.Load() error = %v", err)
	}
	return fs, cfg
}

func filesByProject(r *Result) map[string][]string {
	out := make(map[string][]string, len(r.Projects))
	for _, pf := range r.Projects {
		out[pf.Project.DisplayName()] = pf.Files
	}
	return out
}

func TestList(t *testing.T) {
	t.Parallel()

	fs, cfg := newRepo(t)
	d := New(cfg, WithFs(fs))

	result, err := d.List(context.Background(), cfg.SelectProjects(nil))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := map[string][]string{
		"server": {
			"client/src/components/Button.test.js",
			"server/tests/api/auth.test.js",
			"server/tests/users.test.js",
		},
		"client": {
			"client/src/App.test.jsx",
			"client/src/components/Button.test.js",
		},
	}
	if diff := cmp.Diff(want, filesByProject(result)); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %v, want none", result.Diagnostics)
	}
}

func TestList_SelectedProjectsOnly(t *testing.T) {
	t.Parallel()

	fs, cfg := newRepo(t)
	d := New(cfg, WithFs(fs))

	result, err := d.List(context.Background(), cfg.SelectProjects([]string{"client"}))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(result.Projects) != 1 || result.Projects[0].Project.DisplayName() != "client" {
		t.Fatalf("List() projects = %v, want [client]", filesByProject(result))
	}
}

func TestList_SkipDirsOverride(t *testing.T) {
	t.Parallel()

	fs, cfg := newRepo(t)
	d := New(cfg, WithFs(fs), WithSkipDirs(".git"))

	result, err := d.List(context.Background(), cfg.SelectProjects([]string{"server"}))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	got := filesByProject(result)["server"]
	want := []string{
		"client/src/components/Button.test.js",
		"node_modules/left-pad/index.test.js",
		"server/tests/api/auth.test.js",
		"server/tests/users.test.js",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestCoverage(t *testing.T) {
	t.Parallel()

	fs, cfg := newRepo(t)
	d := New(cfg, WithFs(fs))

	result, err := d.Coverage(context.Background(), cfg.SelectProjects(nil))
	if err != nil {
		t.Fatalf("Coverage() error = %v", err)
	}

	want := map[string][]string{
		"server": {
			"server/src/app.js",
			"server/src/routes/users.js",
		},
		"client": {
			"client/src/App.jsx",
			"client/src/App.test.jsx",
			"client/src/components/Button.jsx",
			"client/src/components/Button.test.js",
			"client/src/tests/setup.js",
		},
	}
	if diff := cmp.Diff(want, filesByProject(result)); diff != "" {
		t.Errorf("Coverage() mismatch (-want +got):\n%s", diff)
	}
}

func TestList_EmptyProjectHasEmptyFileList(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/empty", 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolver.Load(context.Background(), &testplan.Definition{
		RootDir:  "/empty",
		Projects: []testplan.Project{{DisplayName: "unit"}},
	}, resolver.WithFs(fs))
	if err != nil {
		t.Fatalf("resolver.Load() error = %v", err)
	}

	result, err := New(cfg, WithFs(fs)).List(context.Background(), cfg.Projects())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := result.Projects[0].Files; got == nil || len(got) != 0 {
		t.Errorf("Files = %#v, want empty non-nil slice", got)
	}
}

func TestList_MissingRoot(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := resolver.Load(context.Background(), &testplan.Definition{
		RootDir:  "/nowhere",
		Projects: []testplan.Project{{DisplayName: "unit"}},
	}, resolver.WithFs(fs))
	if err != nil {
		t.Fatalf("resolver.Load() error = %v", err)
	}

	result, err := New(cfg, WithFs(fs)).List(context.Background(), cfg.Projects())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Code != CodeRootMissing {
		t.Errorf("Diagnostics = %+v, want one %s", result.Diagnostics, CodeRootMissing)
	}
}

func TestList_CanceledContext(t *testing.T) {
	t.Parallel()

	fs, cfg := newRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, WithFs(fs)).List(ctx, cfg.Projects())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
}
