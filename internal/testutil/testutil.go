// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/afero"
	"golang.org/x/exp/maps"
)

// Placeholder is the content given to files listed without content.
const Placeholder = "// fixture\n"

// NewMemFs returns an in-memory filesystem holding files. Keys are absolute
// slash paths; an empty value is replaced by Placeholder.
func NewMemFs(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, name := range slices.Sorted(maps.Keys(files)) {
		if err := afero.WriteFile(fs, name, []byte(contentOf(files[name])), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return fs
}

// NewMemFsFiles is NewMemFs for placeholder-only trees.
func NewMemFsFiles(t testing.TB, names ...string) afero.Fs {
	t.Helper()

	files := make(map[string]string, len(names))
	for _, name := range names {
		files[name] = ""
	}
	return NewMemFs(t, files)
}

// WriteFiles writes files below dir, creating parent directories. Keys are
// slash-separated paths relative to dir.
func WriteFiles(t testing.TB, dir string, files map[string]string) {
	t.Helper()

	for _, name := range slices.Sorted(maps.Keys(files)) {
		path := filepath.Join(dir, filepath.FromSlash(name))
		MustMkdirAll(t, filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, []byte(contentOf(files[name])), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// MustMkdirAll creates a directory along with any necessary parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustChdir changes the current working directory to dir and restores it
// when the test ends. Tests using it must not run in parallel.
func MustChdir(t testing.TB, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", originalWd, err)
		}
	})
}

func contentOf(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
