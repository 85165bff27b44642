// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"sync"
	"sync/atomic"

	"testplan-cli/pkg/testplan"
)

const (
	// StateUnloaded is the initial state and the state after a failed Load.
	StateUnloaded State = iota
	// StateLoaded is terminal: the configuration is held until process exit.
	StateLoaded
)

type (
	// State is the lifecycle state of a Resolver.
	State int

	// Resolver holds one RunConfiguration for the lifetime of a run.
	// Queries never block; Load serializes with itself.
	Resolver struct {
		mu   sync.Mutex
		cfg  atomic.Pointer[RunConfiguration]
		opts []Option
	}
)

// String returns the state name.
func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "unloaded"
}

// New creates an unloaded Resolver. opts are passed to every Load.
func New(opts ...Option) *Resolver {
	return &Resolver{opts: opts}
}

// State returns the current lifecycle state.
func (r *Resolver) State() State {
	if r.cfg.Load() != nil {
		return StateLoaded
	}
	return StateUnloaded
}

// Load validates def and transitions to StateLoaded. On failure the
// resolver stays unloaded and can be loaded again.
func (r *Resolver) Load(ctx context.Context, def *testplan.Definition) (*RunConfiguration, error) {
	return r.load(func() (*RunConfiguration, error) {
		return Load(ctx, def, r.opts...)
	})
}

// LoadFile parses and loads the definition at path.
func (r *Resolver) LoadFile(ctx context.Context, path string) (*RunConfiguration, error) {
	return r.load(func() (*RunConfiguration, error) {
		return LoadFile(ctx, path, r.opts...)
	})
}

func (r *Resolver) load(fn func() (*RunConfiguration, error)) (*RunConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.Load() != nil {
		return nil, ErrAlreadyLoaded
	}
	cfg, err := fn()
	if err != nil {
		return nil, err
	}
	r.cfg.Store(cfg)
	return cfg, nil
}

// Config returns the loaded configuration.
func (r *Resolver) Config() (*RunConfiguration, error) {
	cfg := r.cfg.Load()
	if cfg == nil {
		return nil, ErrNotLoaded
	}
	return cfg, nil
}

// SelectProjects is RunConfiguration.SelectProjects on the loaded configuration.
func (r *Resolver) SelectProjects(names []string) ([]*ProjectConfiguration, error) {
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	return cfg.SelectProjects(names), nil
}

// MatchesProject reports whether filePath is a test file of the named project.
func (r *Resolver) MatchesProject(project, filePath string) (bool, error) {
	p, err := r.project(project)
	if err != nil {
		return false, err
	}
	return p.MatchesProject(filePath), nil
}

// IsCoverageIncluded reports whether filePath counts toward the named project's coverage.
func (r *Resolver) IsCoverageIncluded(project, filePath string) (bool, error) {
	p, err := r.project(project)
	if err != nil {
		return false, err
	}
	return p.IsCoverageIncluded(filePath), nil
}

func (r *Resolver) project(name string) (*ProjectConfiguration, error) {
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	p, ok := cfg.Project(name)
	if !ok {
		return nil, &UnknownProjectError{Name: name}
	}
	return p, nil
}
