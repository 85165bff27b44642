// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnknownKey is the sentinel error wrapped by UnknownKeyError.
var ErrUnknownKey = errors.New("unknown configuration key")

// UnknownKeyError is returned by SetValue for a key it does not manage.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown configuration key %q (valid keys: %s)", e.Key, strings.Join(Keys(), ", "))
}

// Unwrap returns ErrUnknownKey for errors.Is compatibility.
func (e *UnknownKeyError) Unwrap() error { return ErrUnknownKey }

// Keys lists the dotted keys accepted by SetValue.
func Keys() []string {
	return []string{
		"definition",
		"root_dir",
		"ui.color_scheme",
		"ui.verbose",
		"watch.debounce_ms",
		"watch.clear_screen",
		"watch.ignore",
	}
}

// SetValue assigns value to the dotted key on a copy of cfg and validates
// the result. watch.ignore takes a comma-separated list; an empty value
// clears it.
func SetValue(cfg *Config, key, value string) (*Config, error) {
	out := *cfg
	out.Watch.Ignore = append([]string(nil), cfg.Watch.Ignore...)

	switch key {
	case "definition":
		out.Definition = value
	case "root_dir":
		out.RootDir = value
	case "ui.color_scheme":
		out.UI.ColorScheme = ColorScheme(value)
	case "ui.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out.UI.Verbose = b
	case "watch.debounce_ms":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out.Watch.DebounceMs = n
	case "watch.clear_screen":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out.Watch.ClearScreen = b
	case "watch.ignore":
		out.Watch.Ignore = []string{}
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out.Watch.Ignore = append(out.Watch.Ignore, p)
			}
		}
	default:
		return nil, &UnknownKeyError{Key: key}
	}

	if valid, errs := out.IsValid(); !valid {
		return nil, errors.Join(errs...)
	}
	return &out, nil
}

// Save writes cfg as CUE into dir (the platform config directory when
// empty), replacing any existing file, and returns the file path.
func Save(cfg *Config, dir string) (string, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if err := SaveFile(cfg, cfgPath); err != nil {
		return "", err
	}
	return cfgPath, nil
}

// SaveFile writes cfg as CUE to path, replacing any existing file.
func SaveFile(cfg *Config, path string) error {
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
