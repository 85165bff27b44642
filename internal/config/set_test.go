// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key, value string
		modify     func(*Config)
	}{
		{"definition", "plans/ci.cue", func(c *Config) { c.Definition = "plans/ci.cue" }},
		{"root_dir", "/repo", func(c *Config) { c.RootDir = "/repo" }},
		{"ui.color_scheme", "light", func(c *Config) { c.UI.ColorScheme = ColorSchemeLight }},
		{"ui.verbose", "true", func(c *Config) { c.UI.Verbose = true }},
		{"watch.debounce_ms", "50", func(c *Config) { c.Watch.DebounceMs = 50 }},
		{"watch.clear_screen", "1", func(c *Config) { c.Watch.ClearScreen = true }},
		{"watch.ignore", "dist/**, coverage/**,", func(c *Config) { c.Watch.Ignore = []string{"dist/**", "coverage/**"} }},
		{"watch.ignore", "", func(c *Config) { c.Watch.Ignore = []string{} }},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Parallel()

			want := DefaultConfig()
			tt.modify(want)

			got, err := SetValue(DefaultConfig(), tt.key, tt.value)
			if err != nil {
				t.Fatalf("SetValue() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("SetValue() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetValue_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key, value string
		wantErr    error
	}{
		{"ui.color_scheme", "neon", ErrInvalidColorScheme},
		{"watch.debounce_ms", "-1", ErrInvalidWatchConfig},
		{"watch.ignore", "[", ErrInvalidWatchConfig},
		{"container_engine", "docker", ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			_, err := SetValue(DefaultConfig(), tt.key, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetValue() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("unparsable bool", func(t *testing.T) {
		t.Parallel()
		if _, err := SetValue(DefaultConfig(), "ui.verbose", "maybe"); err == nil {
			t.Error("SetValue() expected error")
		}
	})
}

func TestSetValue_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	orig := DefaultConfig()
	orig.Watch.Ignore = []string{"dist/**"}
	if _, err := SetValue(orig, "watch.ignore", "tmp/**"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if diff := cmp.Diff([]string{"dist/**"}, orig.Watch.Ignore); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Definition = "plans/ci.cue"
	cfg.UI.ColorScheme = ColorSchemeDark
	cfg.Watch.Ignore = []string{"dist/**"}

	path, err := Save(cfg, dir)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, gotPath, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if gotPath != path {
		t.Errorf("loaded path = %q, want %q", gotPath, path)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveFile_UsesGivenPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.cue")
	cfg := DefaultConfig()
	cfg.Watch.DebounceMs = 75

	if err := SaveFile(cfg, path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	got, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if got.Watch.DebounceMs != 75 {
		t.Errorf("DebounceMs = %d, want 75", got.Watch.DebounceMs)
	}
	if _, err := os.Stat(filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)); !os.IsNotExist(err) {
		t.Errorf("SaveFile created %s.%s (stat err = %v)", ConfigFileName, ConfigFileExt, err)
	}
}
