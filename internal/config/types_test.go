// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value ColorScheme
		want  bool
	}{
		{ColorSchemeAuto, true},
		{ColorSchemeDark, true},
		{ColorSchemeLight, true},
		{"", false},
		{"Dark", false},
		{"solarized", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.value.IsValid()
			if valid != tt.want {
				t.Fatalf("IsValid() = %v, want %v", valid, tt.want)
			}
			if !tt.want {
				if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidColorScheme) {
					t.Errorf("errors = %v, want one ErrInvalidColorScheme", errs)
				}
				var csErr *InvalidColorSchemeError
				if !errors.As(errs[0], &csErr) || csErr.Value != tt.value {
					t.Errorf("InvalidColorSchemeError.Value = %v", csErr)
				}
			}
		})
	}
}

func TestWatchConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       WatchConfig
		wantValid bool
		wantErrs  int
	}{
		{"defaults", DefaultConfig().Watch, true, 0},
		{"zero debounce", WatchConfig{DebounceMs: 0}, true, 0},
		{"negative debounce", WatchConfig{DebounceMs: -5}, false, 1},
		{"huge debounce", WatchConfig{DebounceMs: 3600000}, false, 1},
		{"bad pattern", WatchConfig{Ignore: []string{"**/dist/**", "[oops"}}, false, 1},
		{"blank pattern and bad debounce", WatchConfig{DebounceMs: -1, Ignore: []string{"  "}}, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.cfg.IsValid()
			if valid != tt.wantValid {
				t.Fatalf("IsValid() = %v, want %v (%v)", valid, tt.wantValid, errs)
			}
			if tt.wantValid {
				return
			}
			var wErr *InvalidWatchConfigError
			if len(errs) != 1 || !errors.As(errs[0], &wErr) {
				t.Fatalf("errors = %v, want one *InvalidWatchConfigError", errs)
			}
			if len(wErr.FieldErrors) != tt.wantErrs {
				t.Errorf("FieldErrors = %v, want %d", wErr.FieldErrors, tt.wantErrs)
			}
			if !errors.Is(wErr, ErrInvalidWatchConfig) {
				t.Error("should wrap ErrInvalidWatchConfig")
			}
		})
	}
}

func TestWatchConfig_Debounce(t *testing.T) {
	t.Parallel()

	if got := (WatchConfig{DebounceMs: 450}).Debounce(); got != 450*time.Millisecond {
		t.Errorf("Debounce() = %v", got)
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.RootDir = "   "
	cfg.UI.ColorScheme = "neon"
	cfg.Watch.DebounceMs = -1

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("IsValid() = true, want false")
	}
	var cfgErr *InvalidConfigError
	if len(errs) != 1 || !errors.As(errs[0], &cfgErr) {
		t.Fatalf("errors = %v", errs)
	}
	if len(cfgErr.FieldErrors) != 3 {
		t.Errorf("FieldErrors = %v, want root_dir, ui and watch errors", cfgErr.FieldErrors)
	}
	if !errors.Is(cfgErr, ErrInvalidConfig) {
		t.Error("should wrap ErrInvalidConfig")
	}
	if !errors.Is(cfgErr.FieldErrors[1], ErrInvalidUIConfig) || !errors.Is(cfgErr.FieldErrors[2], ErrInvalidWatchConfig) {
		t.Errorf("unexpected nested errors: %v", cfgErr.FieldErrors)
	}
}
