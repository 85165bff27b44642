// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
)

type (
	// Schema is a compiled CUE schema rooted at one definition. User values
	// must be built through the Schema so they share its cue.Context; a
	// Schema is not safe for concurrent use.
	Schema struct {
		ctx  *cue.Context
		root cue.Value
		path string
	}

	// ParseResult contains the result of a successful parse.
	ParseResult[T any] struct {
		// Value is the decoded Go struct.
		Value *T

		// Unified is the unified CUE value. Callers use it to read data that
		// a plain Decode loses, such as struct field order.
		Unified cue.Value
	}
)

// CompileSchema compiles schema source and looks up the root definition
// (e.g. "#Definition").
func CompileSchema(schema []byte, definition string) (*Schema, error) {
	ctx := cuecontext.New()

	value := ctx.CompileBytes(schema)
	if value.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", value.Err())
	}

	root := value.LookupPath(cue.ParsePath(definition))
	if root.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", definition, root.Err())
	}

	return &Schema{ctx: ctx, root: root, path: definition}, nil
}

// CompileSource compiles CUE (or JSON, which is valid CUE) source in the
// schema's context.
func (s *Schema) CompileSource(data []byte, opts ...Option) (cue.Value, error) {
	options := applyOptions(opts)
	if err := CheckFileSize(data, options.maxFileSize, options.displayName()); err != nil {
		return cue.Value{}, err
	}

	v := s.ctx.CompileBytes(data, cue.Filename(options.displayName()))
	if v.Err() != nil {
		return cue.Value{}, FormatError(v.Err(), options.displayName())
	}
	return v, nil
}

// BuildFile builds a CUE value from an AST produced by another decoder
// (for example the YAML extractor).
func (s *Schema) BuildFile(f *ast.File, opts ...Option) (cue.Value, error) {
	options := applyOptions(opts)
	v := s.ctx.BuildFile(f, cue.Filename(options.displayName()))
	if v.Err() != nil {
		return cue.Value{}, FormatError(v.Err(), options.displayName())
	}
	return v, nil
}

// Encode converts a plain Go value (maps, slices, scalars) to a CUE value.
func (s *Schema) Encode(x any, opts ...Option) (cue.Value, error) {
	options := applyOptions(opts)
	v := s.ctx.Encode(x)
	if v.Err() != nil {
		return cue.Value{}, FormatError(v.Err(), options.displayName())
	}
	return v, nil
}

// Decode unifies user with the schema root, validates the result and decodes
// it into T.
func Decode[T any](s *Schema, user cue.Value, opts ...Option) (*ParseResult[T], error) {
	options := applyOptions(opts)
	filename := options.displayName()

	unified := s.root.Unify(user)

	var err error
	if options.concrete {
		err = unified.Validate(cue.Concrete(true))
	} else {
		err = unified.Validate()
	}
	if err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}

// ParseAndDecode compiles schema, compiles data against it and decodes the
// unified value into T in one call.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	s, err := CompileSchema(schema, schemaPath)
	if err != nil {
		return nil, err
	}

	user, err := s.CompileSource(data, opts...)
	if err != nil {
		return nil, err
	}

	return Decode[T](s, user, opts...)
}

// StructFields returns the labels and values of a CUE struct in declaration
// order. A missing or non-struct value yields no fields.
func StructFields(v cue.Value) ([]string, []cue.Value, error) {
	if !v.Exists() {
		return nil, nil, nil
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, nil, err
	}

	var (
		labels []string
		values []cue.Value
	)
	for iter.Next() {
		labels = append(labels, iter.Selector().Unquoted())
		values = append(values, iter.Value())
	}
	return labels, values, nil
}

func applyOptions(opts []Option) parseOptions {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
