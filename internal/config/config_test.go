// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"testplan-cli/internal/issue"
	"testplan-cli/internal/testutil"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	want := &Config{
		UI:    UIConfig{ColorScheme: ColorSchemeAuto},
		Watch: WatchConfig{DebounceMs: DefaultDebounceMs, Ignore: []string{}},
	}
	if diff := cmp.Diff(want, DefaultConfig()); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-want +got):\n%s", diff)
	}
	if valid, errs := DefaultConfig().IsValid(); !valid {
		t.Errorf("DefaultConfig() should be valid: %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-specific")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestConfigDir_Override(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/custom/dir")
	if dir, err := ConfigDir(); err != nil || dir != "/custom/dir" {
		t.Errorf("ConfigDir() = %q, %v", dir, err)
	}

	Reset()
	if dir, err := ConfigDir(); err != nil || dir == "/custom/dir" {
		t.Errorf("ConfigDir() after Reset() = %q, %v", dir, err)
	}
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"config.cue": `
definition: "config/testplan.yaml"
ui: verbose: true
watch: {
	debounce_ms: 750
	ignore: ["**/dist/**"]
}
`,
	})

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if want := filepath.Join(dir, "config.cue"); path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}

	want := &Config{
		Definition: "config/testplan.yaml",
		UI:         UIConfig{ColorScheme: ColorSchemeAuto, Verbose: true},
		Watch:      WatchConfig{DebounceMs: 750, Ignore: []string{"**/dist/**"}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"config.cue": `ui: color_scheme: "light"` + "\n"})

	t.Setenv("TESTPLAN_UI_COLOR_SCHEME", "dark")
	t.Setenv("TESTPLAN_WATCH_DEBOUNCE_MS", "25")
	t.Setenv("TESTPLAN_ROOT_DIR", "/srv/app")

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("ColorScheme = %q, want dark (env wins over file)", cfg.UI.ColorScheme)
	}
	if cfg.Watch.DebounceMs != 25 {
		t.Errorf("DebounceMs = %d, want 25", cfg.Watch.DebounceMs)
	}
	if cfg.RootDir != "/srv/app" {
		t.Errorf("RootDir = %q", cfg.RootDir)
	}
}

func TestLoad_IgnoreEnv(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"config.cue": "watch: debounce_ms: 80\n"})

	t.Setenv("TESTPLAN_WATCH_DEBOUNCE_MS", "25")
	t.Setenv("TESTPLAN_UI_VERBOSE", "true")

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir, IgnoreEnv: true})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.Watch.DebounceMs != 80 {
		t.Errorf("DebounceMs = %d, want 80 from the file", cfg.Watch.DebounceMs)
	}
	if cfg.UI.Verbose {
		t.Error("Verbose = true, want the default when env is ignored")
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("TESTPLAN_UI_COLOR_SCHEME", "neon")

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected an error for an invalid color scheme override")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Operation != "validate configuration" {
		t.Errorf("expected an ActionableError for validation, got %T", err)
	}
}

func TestLoad_CustomPath_Valid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"custom.cue": "root_dir: \"/repo\"\nwatch: clear_screen: true\n"})
	path := filepath.Join(dir, "custom.cue")

	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: path,
		ConfigDirPath:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.RootDir != "/repo" || !cfg.Watch.ClearScreen {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoad_CustomPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T", err)
	}
	if ae.Resource != missing || !ae.HasSuggestions() || ae.IssueId != issue.ConfigLoadFailedId {
		t.Errorf("ActionableError = %+v", ae)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax error", "ui: {color_scheme: \n", "config.cue"},
		{"unknown field", "container_engine: \"docker\"\n", "container_engine"},
		{"bad enum", "ui: color_scheme: \"neon\"\n", "color_scheme"},
		{"negative debounce", "watch: debounce_ms: -1\n", "debounce_ms"},
		{"blank default file", "definition: \"\"\n", "definition"},
		{"oversized file", strings.Repeat("// padding\n", int(maxConfigFileSize/10)), "exceeds maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			testutil.WriteFiles(t, dir, map[string]string{"config.cue": tt.content})

			_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Operation != "load configuration" {
				t.Errorf("expected a load configuration ActionableError, got %v", err)
			}
		})
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := loadWithOptions(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "testplan")

	path, created, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created || path != filepath.Join(dir, "config.cue") {
		t.Errorf("CreateDefaultConfig() = %q, %v", path, created)
	}

	// The generated file must load back to the defaults.
	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loading generated config: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if err := os.WriteFile(path, []byte("ui: verbose: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, created, err := CreateDefaultConfig(dir); err != nil || created {
		t.Errorf("second CreateDefaultConfig() = created %v, err %v", created, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "ui: verbose: true\n" {
		t.Error("existing config must not be overwritten")
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Definition = "plans/testplan.toml"
	cfg.Watch.Ignore = []string{"**/tmp/**", "*.log"}

	got := GenerateCUE(cfg)
	for _, want := range []string{
		`definition: "plans/testplan.toml"`,
		`color_scheme: "auto"`,
		"debounce_ms: 300",
		`"**/tmp/**",`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateCUE() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "root_dir") {
		t.Error("empty root_dir should be omitted")
	}
}
