// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"slices"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        Config
		wantErrors int
	}{
		{name: "zero value", cfg: Config{}},
		{name: "valid patterns", cfg: Config{Patterns: []string{"**/*.{js,jsx}"}, Ignore: []string{"dist/**"}}},
		{name: "empty pattern", cfg: Config{Patterns: []string{""}}, wantErrors: 1},
		{name: "unclosed brace", cfg: Config{Patterns: []string{"src/{a,b"}}, wantErrors: 1},
		{name: "bad ignore", cfg: Config{Ignore: []string{"[z-"}}, wantErrors: 1},
		{name: "whitespace base dir", cfg: Config{BaseDir: "  "}, wantErrors: 1},
		{
			name:       "errors accumulate",
			cfg:        Config{Patterns: []string{"", "[a-"}, Ignore: []string{""}, BaseDir: " "},
			wantErrors: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErrors == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var cfgErr *InvalidWatchConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %T %v, want *InvalidWatchConfigError", err, err)
			}
			if len(cfgErr.FieldErrors) != tt.wantErrors {
				t.Errorf("len(FieldErrors) = %d, want %d: %v", len(cfgErr.FieldErrors), tt.wantErrors, cfgErr.FieldErrors)
			}
			if !errors.Is(err, ErrInvalidWatchConfig) {
				t.Error("errors.Is(err, ErrInvalidWatchConfig) = false")
			}
		})
	}
}

func TestInvalidPatternError(t *testing.T) {
	t.Parallel()

	err := &InvalidPatternError{Field: "ignore", Pattern: "[x"}
	if !errors.Is(err, ErrInvalidPattern) {
		t.Error("errors.Is(err, ErrInvalidPattern) = false")
	}
	if got, want := err.Error(), `invalid ignore pattern "[x"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	got := DefaultIgnores()
	for _, want := range []string{"**/.git/**", "**/node_modules/**", "**/coverage/**"} {
		if !slices.Contains(got, want) {
			t.Errorf("DefaultIgnores() missing %q", want)
		}
	}

	got[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() returned the internal slice")
	}

	cases := map[string]bool{
		"node_modules/react/index.js": true,
		"client/node_modules/x.js":    true,
		".git/HEAD":                   true,
		"coverage/lcov.info":          true,
		"src/App.jsx.swp":             true,
		"src/App.jsx":                 false,
		"server/tests/a.test.js":      false,
	}
	for rel, want := range cases {
		if got := matchAny(defaultIgnores, rel); got != want {
			t.Errorf("ignored(%q) = %v, want %v", rel, got, want)
		}
	}
}
