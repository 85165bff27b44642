// SPDX-License-Identifier: MPL-2.0

package testplan

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"testplan-cli/pkg/cueutil"

	"cuelang.org/go/cue"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	// FormatCUE is a CUE definition (.cue).
	FormatCUE Format = "cue"
	// FormatJSON is a JSON definition (.json). JSON is compiled as CUE.
	FormatJSON Format = "json"
	// FormatYAML is a YAML definition (.yaml, .yml).
	FormatYAML Format = "yaml"
	// FormatTOML is a TOML definition (.toml).
	FormatTOML Format = "toml"

	schemaRoot = "#Definition"
)

var (
	//go:embed testplan_schema.cue
	schemaSource []byte

	// ErrUnsupportedFormat is returned for definition files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported definition format")
	// ErrDefinitionNotFound is returned by Find when no default definition file exists.
	ErrDefinitionNotFound = errors.New("no test plan definition found")

	// DefaultFileNames are the file names Find looks for, in order.
	DefaultFileNames = []string{"testplan.cue", "testplan.json", "testplan.yaml", "testplan.yml", "testplan.toml"}
)

type (
	// Format identifies a definition file encoding.
	Format string

	// UnsupportedFormatError carries the offending path.
	UnsupportedFormatError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported definition format %q (valid: .cue, .json, .yaml, .yml, .toml)", filepath.Ext(e.Path))
}

// Unwrap returns ErrUnsupportedFormat for errors.Is compatibility.
func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", &UnsupportedFormatError{Path: path}
	}
}

// Schema returns the embedded CUE schema source.
func Schema() string { return string(schemaSource) }

// Parse decodes data in the given format and validates it against the schema.
// filename is used in error messages and recorded as Definition.Path.
func Parse(data []byte, format Format, filename string) (*Definition, error) {
	opts := []cueutil.Option{cueutil.WithFilename(filename)}

	schema, err := cueutil.CompileSchema(schemaSource, schemaRoot)
	if err != nil {
		return nil, err
	}

	user, err := buildValue(schema, data, format, filename, opts)
	if err != nil {
		return nil, err
	}

	result, err := cueutil.Decode[Definition](schema, user, opts...)
	if err != nil {
		return nil, err
	}

	def := result.Value
	if err := readOrderedFields(def, result.Unified); err != nil {
		return nil, cueutil.FormatError(err, filename)
	}
	def.Path = filename
	return def, nil
}

// ParseFile reads and parses the definition at path.
func ParseFile(fsys afero.Fs, path string) (*Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}

	return Parse(data, format, path)
}

// Find returns the first of DefaultFileNames present in dir.
func Find(fsys afero.Fs, dir string) (string, error) {
	for _, name := range DefaultFileNames {
		candidate := filepath.Join(dir, name)
		info, err := fsys.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrDefinitionNotFound, dir, strings.Join(DefaultFileNames, ", "))
}

func buildValue(schema *cueutil.Schema, data []byte, format Format, filename string, opts []cueutil.Option) (cue.Value, error) {
	switch format {
	case FormatCUE, FormatJSON:
		return schema.CompileSource(data, opts...)
	case FormatYAML:
		if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
			return cue.Value{}, err
		}
		f, err := cueyaml.Extract(filename, data)
		if err != nil {
			return cue.Value{}, fmt.Errorf("%s: %w", filename, err)
		}
		return schema.BuildFile(f, opts...)
	case FormatTOML:
		if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
			return cue.Value{}, err
		}
		// TOML tables are unordered, so mapping entries from TOML end up in
		// key order once they pass through a Go map.
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return cue.Value{}, fmt.Errorf("%s: %w", filename, err)
		}
		return schema.Encode(raw, opts...)
	default:
		return cue.Value{}, &UnsupportedFormatError{Path: filename}
	}
}

// readOrderedFields fills the mapping and threshold fields from the unified
// value, where struct field order survives.
func readOrderedFields(def *Definition, unified cue.Value) error {
	for i := range def.Projects {
		mapper, err := mappingAt(unified, cue.MakePath(cue.Str("projects"), cue.Index(i), cue.Str("moduleNameMapper")))
		if err != nil {
			return err
		}
		transform, err := mappingAt(unified, cue.MakePath(cue.Str("projects"), cue.Index(i), cue.Str("transform")))
		if err != nil {
			return err
		}
		def.Projects[i].ModuleNameMapper = mapper
		def.Projects[i].Transform = transform
	}

	labels, values, err := cueutil.StructFields(unified.LookupPath(cue.MakePath(cue.Str("coverageThreshold"))))
	if err != nil {
		return err
	}
	for i, label := range labels {
		var th Threshold
		if err := values[i].Decode(&th); err != nil {
			return err
		}
		def.CoverageThreshold = append(def.CoverageThreshold, ThresholdEntry{Key: label, Threshold: th})
	}
	return nil
}

func mappingAt(unified cue.Value, path cue.Path) (Mapping, error) {
	labels, values, err := cueutil.StructFields(unified.LookupPath(path))
	if err != nil {
		return nil, err
	}

	var m Mapping
	for i, label := range labels {
		s, err := values[i].String()
		if err != nil {
			return nil, err
		}
		m = append(m, MappingEntry{Pattern: label, Value: s})
	}
	return m, nil
}
