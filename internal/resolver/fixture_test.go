// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"testing"

	"testplan-cli/internal/testutil"
	"testplan-cli/pkg/testplan"

	"github.com/spf13/afero"
)

const testRoot = "/repo"

// sampleDefinition mirrors a two-project client/server setup.
func sampleDefinition() *testplan.Definition {
	return &testplan.Definition{
		RootDir: testRoot,
		Projects: []testplan.Project{
			{
				DisplayName:          "server",
				TestEnvironment:      "node",
				TestMatch:            []string{"<rootDir>/server/tests/**/*.test.js"},
				ModuleFileExtensions: []string{"js", "json", "node"},
				SetupFilesAfterEnv:   []string{"<rootDir>/server/tests/setup.js"},
				CoverageDirectory:    "<rootDir>/coverage/server",
				CollectCoverageFrom:  []string{"server/src/**/*.js", "!server/src/config/**", "!**/node_modules/**"},
			},
			{
				DisplayName:          "client",
				TestEnvironment:      "jsdom",
				TestMatch:            []string{"<rootDir>/client/src/**/*.test.{js,jsx}"},
				ModuleFileExtensions: []string{"js", "jsx", "json"},
				ModuleNameMapper: testplan.Mapping{
					{Pattern: `\.(css|less|scss|sass)$`, Value: "identity-obj-proxy"},
					{Pattern: `\.(jpg|jpeg|png|gif|webp|svg)$`, Value: "<rootDir>/client/src/tests/__mocks__/fileMock.js"},
				},
				SetupFilesAfterEnv:  []string{"<rootDir>/client/src/tests/setup.js"},
				Transform:           testplan.Mapping{{Pattern: `^.+\.(js|jsx)$`, Value: "babel-jest"}},
				CoverageDirectory:   "<rootDir>/coverage/client",
				CollectCoverageFrom: []string{"client/src/**/*.{js,jsx}", "!client/src/index.js", "!**/node_modules/**"},
			},
		},
		Verbose:           true,
		CollectCoverage:   true,
		CoverageReporters: []string{"text", "lcov", "clover", "html"},
		CoverageThreshold: []testplan.ThresholdEntry{
			{Key: testplan.GlobalThresholdKey, Threshold: testplan.Threshold{
				Statements: testplan.Float(70),
				Branches:   testplan.Float(60),
				Functions:  testplan.Float(70),
				Lines:      testplan.Float(70),
			}},
		},
		TestTimeout: 10000,
	}
}

// sampleFs holds the setup scripts sampleDefinition refers to.
func sampleFs(t *testing.T) afero.Fs {
	t.Helper()

	return testutil.NewMemFsFiles(t,
		"/repo/server/tests/setup.js",
		"/repo/client/src/tests/setup.js",
	)
}

func mustLoad(t *testing.T, def *testplan.Definition, opts ...Option) *RunConfiguration {
	t.Helper()

	cfg, err := Load(context.Background(), def, append([]Option{WithFs(sampleFs(t))}, opts...)...)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func mustProject(t *testing.T, cfg *RunConfiguration, name string) *ProjectConfiguration {
	t.Helper()

	p, ok := cfg.Project(name)
	if !ok {
		t.Fatalf("Project(%q) not found", name)
	}
	return p
}
