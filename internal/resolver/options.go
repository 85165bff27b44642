// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// Option configures Load.
	Option func(*loadOptions)

	loadOptions struct {
		fs      afero.Fs
		logger  *log.Logger
		rootDir string
		getenv  func(string) string
	}
)

// WithFs sets the filesystem used for setup file checks and LoadFile.
func WithFs(fs afero.Fs) Option {
	return func(o *loadOptions) {
		o.fs = fs
	}
}

// WithLogger sets the logger for load diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *loadOptions) {
		o.logger = l
	}
}

// WithRootDir overrides the root directory from the definition.
func WithRootDir(dir string) Option {
	return func(o *loadOptions) {
		o.rootDir = dir
	}
}

// WithEnv sets the variable lookup used to expand $VAR references in
// path fields.
func WithEnv(getenv func(string) string) Option {
	return func(o *loadOptions) {
		o.getenv = getenv
	}
}

func applyOptions(opts []Option) loadOptions {
	o := loadOptions{
		fs:     afero.NewOsFs(),
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return o
}
