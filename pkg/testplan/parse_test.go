// SPDX-License-Identifier: MPL-2.0

package testplan

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

const cueDefinition = `
projects: [
	{
		displayName:     "server"
		testEnvironment: "node"
		testMatch: ["<rootDir>/server/tests/**/*.test.js"]
		moduleFileExtensions: ["js", "json", "node"]
		setupFilesAfterEnv: ["<rootDir>/server/tests/setup.js"]
		coverageDirectory: "<rootDir>/coverage/server"
		collectCoverageFrom: ["server/src/**/*.js", "!server/src/config/**", "!**/node_modules/**"]
	},
	{
		displayName:     "client"
		testEnvironment: "jsdom"
		testMatch: ["<rootDir>/client/src/**/*.test.{js,jsx}"]
		moduleFileExtensions: ["js", "jsx", "json"]
		moduleNameMapper: {
			"\\.(css|less|scss|sass)$":        "identity-obj-proxy"
			"\\.(jpg|jpeg|png|gif|webp|svg)$": "<rootDir>/client/src/tests/__mocks__/fileMock.js"
		}
		transform: {"^.+\\.(js|jsx)$": "babel-jest"}
	},
]
verbose:         true
collectCoverage: true
coverageReporters: ["text", "lcov", "clover", "html"]
coverageThreshold: global: {statements: 70, branches: 60, functions: 70, lines: 70}
testTimeout: 10000
`

const jsonDefinition = `{
  "projects": [
    {
      "displayName": "server",
      "testEnvironment": "node",
      "testMatch": ["<rootDir>/server/tests/**/*.test.js"],
      "moduleFileExtensions": ["js", "json", "node"],
      "setupFilesAfterEnv": ["<rootDir>/server/tests/setup.js"],
      "coverageDirectory": "<rootDir>/coverage/server",
      "collectCoverageFrom": ["server/src/**/*.js", "!server/src/config/**", "!**/node_modules/**"]
    },
    {
      "displayName": "client",
      "testEnvironment": "jsdom",
      "testMatch": ["<rootDir>/client/src/**/*.test.{js,jsx}"],
      "moduleFileExtensions": ["js", "jsx", "json"],
      "moduleNameMapper": {
        "\\.(css|less|scss|sass)$": "identity-obj-proxy",
        "\\.(jpg|jpeg|png|gif|webp|svg)$": "<rootDir>/client/src/tests/__mocks__/fileMock.js"
      },
      "transform": {"^.+\\.(js|jsx)$": "babel-jest"}
    }
  ],
  "verbose": true,
  "collectCoverage": true,
  "coverageReporters": ["text", "lcov", "clover", "html"],
  "coverageThreshold": {"global": {"statements": 70, "branches": 60, "functions": 70, "lines": 70}},
  "testTimeout": 10000
}`

const yamlDefinition = `
projects:
  - displayName: server
    testEnvironment: node
    testMatch: ["<rootDir>/server/tests/**/*.test.js"]
    moduleFileExtensions: [js, json, node]
    setupFilesAfterEnv: ["<rootDir>/server/tests/setup.js"]
    coverageDirectory: "<rootDir>/coverage/server"
    collectCoverageFrom: ["server/src/**/*.js", "!server/src/config/**", "!**/node_modules/**"]
  - displayName: client
    testEnvironment: jsdom
    testMatch: ["<rootDir>/client/src/**/*.test.{js,jsx}"]
    moduleFileExtensions: [js, jsx, json]
    moduleNameMapper:
      '\.(css|less|scss|sass)$': identity-obj-proxy
      '\.(jpg|jpeg|png|gif|webp|svg)$': "<rootDir>/client/src/tests/__mocks__/fileMock.js"
    transform:
      '^.+\.(js|jsx)$': babel-jest
verbose: true
collectCoverage: true
coverageReporters: [text, lcov, clover, html]
coverageThreshold:
  global: {statements: 70, branches: 60, functions: 70, lines: 70}
testTimeout: 10000
`

// TOML tables are unordered; the mapper keys below are declared in key order
// so the parsed result matches the other formats.
const tomlDefinition = `
verbose = true
collectCoverage = true
coverageReporters = ["text", "lcov", "clover", "html"]
testTimeout = 10000

[coverageThreshold.global]
statements = 70
branches = 60
functions = 70
lines = 70

[[projects]]
displayName = "server"
testEnvironment = "node"
testMatch = ["<rootDir>/server/tests/**/*.test.js"]
moduleFileExtensions = ["js", "json", "node"]
setupFilesAfterEnv = ["<rootDir>/server/tests/setup.js"]
coverageDirectory = "<rootDir>/coverage/server"
collectCoverageFrom = ["server/src/**/*.js", "!server/src/config/**", "!**/node_modules/**"]

[[projects]]
displayName = "client"
testEnvironment = "jsdom"
testMatch = ["<rootDir>/client/src/**/*.test.{js,jsx}"]
moduleFileExtensions = ["js", "jsx", "json"]

[projects.moduleNameMapper]
'\.(css|less|scss|sass)$' = "identity-obj-proxy"
'\.(jpg|jpeg|png|gif|webp|svg)$' = "<rootDir>/client/src/tests/__mocks__/fileMock.js"

[projects.transform]
'^.+\.(js|jsx)$' = "babel-jest"
`

func expectedDefinition(path string) *Definition {
	return &Definition{
		Projects: []Project{
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
				ModuleNameMapper: Mapping{
					{Pattern: `\.(css|less|scss|sass)$`, Value: "identity-obj-proxy"},
					{Pattern: `\.(jpg|jpeg|png|gif|webp|svg)$`, Value: "<rootDir>/client/src/tests/__mocks__/fileMock.js"},
				},
				Transform: Mapping{{Pattern: `^.+\.(js|jsx)$`, Value: "babel-jest"}},
			},
		},
		Verbose:           true,
		CollectCoverage:   true,
		CoverageReporters: []string{"text", "lcov", "clover", "html"},
		CoverageThreshold: []ThresholdEntry{{
			Key: GlobalThresholdKey,
			Threshold: Threshold{
				Statements: Float(70),
				Branches:   Float(60),
				Functions:  Float(70),
				Lines:      Float(70),
			},
		}},
		TestTimeout: 10000,
		Path:        path,
	}
}

func TestParse_AllFormatsAgree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		file   string
		data   string
	}{
		{name: "cue", format: FormatCUE, file: "testplan.cue", data: cueDefinition},
		{name: "json", format: FormatJSON, file: "testplan.json", data: jsonDefinition},
		{name: "yaml", format: FormatYAML, file: "testplan.yaml", data: yamlDefinition},
		{name: "toml", format: FormatTOML, file: "testplan.toml", data: tomlDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse([]byte(tt.data), tt.format, tt.file)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if diff := cmp.Diff(expectedDefinition(tt.file), got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_MappingOrderPreserved(t *testing.T) {
	t.Parallel()

	def, err := Parse([]byte(`projects: [{
		displayName: "web"
		moduleNameMapper: {"z$": "last", "a$": "first", "m$": "middle"}
	}]`), FormatCUE, "order.cue")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var got []string
	for _, e := range def.Projects[0].ModuleNameMapper {
		got = append(got, e.Pattern)
	}
	if diff := cmp.Diff([]string{"z$", "a$", "m$"}, got); diff != "" {
		t.Errorf("mapper order mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_PathKeyedThresholds(t *testing.T) {
	t.Parallel()

	def, err := Parse([]byte(`
projects: [{displayName: "web"}]
coverageThreshold: {
	global: {lines: 70}
	"./src/components/": {lines: 90, branches: 80}
}
`), FormatCUE, "thresholds.cue")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(def.CoverageThreshold) != 2 {
		t.Fatalf("len(CoverageThreshold) = %d, want 2", len(def.CoverageThreshold))
	}
	if def.CoverageThreshold[1].Key != "./src/components/" {
		t.Errorf("second key = %q", def.CoverageThreshold[1].Key)
	}
	global := def.CoverageThreshold[0]
	if global.Key != GlobalThresholdKey || global.Threshold.Lines == nil || *global.Threshold.Lines != 70 {
		t.Errorf("first entry = %+v", global)
	}
	if global.Threshold.Branches != nil {
		t.Errorf("unset metric should be nil, got %v", *global.Threshold.Branches)
	}
}

func TestParse_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{name: "no projects", data: `projects: []`, wantMsg: "projects"},
		{name: "unknown top-level field", data: `projects: [{displayName: "a"}], bail: true`, wantMsg: "bail"},
		{name: "unknown project field", data: `projects: [{displayName: "a", testRegex: "x"}]`, wantMsg: "testRegex"},
		{name: "wrong type", data: `projects: [{displayName: "a"}], testTimeout: "slow"`, wantMsg: "testTimeout"},
		{name: "missing display name", data: `projects: [{testEnvironment: "node"}]`, wantMsg: "displayName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.data), FormatCUE, "bad.cue")
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), "bad.cue") || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention bad.cue and %q", err, tt.wantMsg)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]Format{
		"testplan.cue":     FormatCUE,
		"a/b/plan.JSON":    FormatJSON,
		"plan.yml":         FormatYAML,
		"plan.yaml":        FormatYAML,
		"config/plan.toml": FormatTOML,
	} {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}

	_, err := FormatFromPath("jest.config.js")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FormatFromPath(.js) error = %v, want ErrUnsupportedFormat", err)
	}
	var ufe *UnsupportedFormatError
	if !errors.As(err, &ufe) || ufe.Path != "jest.config.js" {
		t.Errorf("errors.As(UnsupportedFormatError) = %+v", ufe)
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/repo/testplan.json", []byte(jsonDefinition), 0o644); err != nil {
		t.Fatal(err)
	}

	def, err := ParseFile(fsys, "/repo/testplan.json")
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if def.Path != "/repo/testplan.json" {
		t.Errorf("Path = %q", def.Path)
	}
	if len(def.Projects) != 2 || def.Projects[0].DisplayName != "server" || def.Projects[1].DisplayName != "client" {
		t.Errorf("Projects = %+v, want server then client", def.Projects)
	}

	_, err = ParseFile(fsys, "/repo/missing.cue")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if _, err := Find(fsys, "/repo"); !errors.Is(err, ErrDefinitionNotFound) {
		t.Errorf("Find(empty) error = %v, want ErrDefinitionNotFound", err)
	}

	for _, name := range []string{"/repo/testplan.toml", "/repo/testplan.yaml"} {
		if err := afero.WriteFile(fsys, name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := Find(fsys, "/repo")
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if got != "/repo/testplan.yaml" {
		t.Errorf("Find() = %q, want the yaml file (earlier in DefaultFileNames)", got)
	}
}
