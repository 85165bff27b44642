// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

const (
	DefinitionNotFoundId Id = iota + 1
	DefinitionParseErrorId
	DuplicateProjectNameId
	InvalidThresholdId
	MissingSetupFileId
	UnknownEnvironmentId
	InvalidPatternId
	InvalidMappingId
	UnknownProjectId
	ConfigLoadFailedId
	WatchFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		name     string      // stable kebab-case name shown to users
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // documentation for this issue kind, if any
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Name() string {
	return i.name
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guide with the given glamour style ("dark", "light",
// "notty", or a style file path).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	definitionNotFoundIssue = &Issue{
		id:   DefinitionNotFoundId,
		name: "definition-not-found",
		mdMsg: `
# No test plan definition found!

testplan looked for a definition in the current directory and found none.

## Files looked for (in order):
1. testplan.cue
2. testplan.json
3. testplan.yaml / testplan.yml
4. testplan.toml

## Things you can try:
- Point at a definition explicitly:
~~~
$ testplan --definition path/to/testplan.yaml validate
~~~

- Set a default in your config file:
~~~cue
definition: "config/testplan.cue"
~~~

- Start from a minimal definition:
~~~cue
projects: [{
	displayName: "server"
	testEnvironment: "node"
	testMatch: ["<rootDir>/server/tests/**/*.test.js"]
}]
~~~`,
	}

	definitionParseErrorIssue = &Issue{
		id:   DefinitionParseErrorId,
		name: "definition-parse-error",
		mdMsg: `
# Failed to parse the test plan definition!

The definition file is not valid for its format or does not match the schema.

## Common causes:
- A misspelled field name (unknown fields are rejected)
- A list where a single value is expected, or the other way round
- A project without ` + "`displayName`" + `
- An empty ` + "`projects`" + ` list

## Things you can try:
- Check the reported path (e.g. ` + "`projects[1].testMatch`" + `)
- Compare against the schema:
~~~
$ testplan schema
~~~`,
	}

	duplicateProjectNameIssue = &Issue{
		id:   DuplicateProjectNameId,
		name: "duplicate-project-name",
		mdMsg: `
# Duplicate project name!

Two projects share the same ` + "`displayName`" + `. Names select projects on the command
line, so each must be unique.

## Things you can try:
- Rename one of the projects (e.g. ` + "`client`" + ` and ` + "`client-e2e`" + `)
- Merge the two projects' ` + "`testMatch`" + ` patterns into one project`,
	}

	invalidThresholdIssue = &Issue{
		id:   InvalidThresholdId,
		name: "invalid-threshold",
		mdMsg: `
# Invalid coverage threshold!

Coverage thresholds are percentages and must lie between 0 and 100.

## Things you can try:
- Check the metric named in the error (statements, branches, functions, lines)
- Use 100 for "fully covered", not 1.0 or 1000:
~~~cue
coverageThreshold: global: {statements: 70, branches: 60, functions: 70, lines: 70}
~~~`,
	}

	missingSetupFileIssue = &Issue{
		id:   MissingSetupFileId,
		name: "missing-setup-file",
		mdMsg: `
# Setup file not found!

A path listed in ` + "`setupFilesAfterEnv`" + ` does not point to an existing file.

## Things you can try:
- Check the resolved path shown in the error
- Remember that ` + "`<rootDir>`" + ` expands to the root directory, not the current directory
- Create the file, even if empty, before running the tests
- Check that referenced environment variables (` + "`$VAR`" + `) are set`,
	}

	unknownEnvironmentIssue = &Issue{
		id:   UnknownEnvironmentId,
		name: "unknown-environment",
		mdMsg: `
# Unknown test environment!

## Supported environments:
- ` + "`node`" + `: plain server-side runtime (the default)
- ` + "`browser-dom`" + `: simulated browser DOM (` + "`jsdom`" + ` is accepted as an alias)

## Things you can try:
- Fix the spelling of ` + "`testEnvironment`" + `
- Remove the field to use ` + "`node`",
	}

	invalidPatternIssue = &Issue{
		id:   InvalidPatternId,
		name: "invalid-pattern",
		mdMsg: `
# Invalid glob pattern!

A ` + "`testMatch`" + `, ` + "`collectCoverageFrom`" + ` or path-keyed ` + "`coverageThreshold`" + ` entry is not a
valid glob.

## Things you can try:
- Close every ` + "`[`" + ` and ` + "`{`" + `
- Use ` + "`**`" + ` for any number of directories: ` + "`src/**/*.test.js`" + `
- Use braces for alternatives: ` + "`*.{js,jsx}`",
	}

	invalidMappingIssue = &Issue{
		id:   InvalidMappingId,
		name: "invalid-mapping",
		mdMsg: `
# Invalid mapping pattern!

Keys of ` + "`moduleNameMapper`" + ` and ` + "`transform`" + ` are regular expressions.

## Things you can try:
- Escape literal dots: ` + "`\\\\.css$`" + ` in JSON, ` + "`\\.css$`" + ` in YAML/TOML literal strings
- Balance every parenthesis and bracket
- Refer to captured groups in replacements with ` + "`$1`" + `, ` + "`$2`" + `, ...`,
	}

	unknownProjectIssue = &Issue{
		id:   UnknownProjectId,
		name: "unknown-project",
		mdMsg: `
# Unknown project!

A name passed to ` + "`--select`" + ` does not match any declared project.

## Things you can try:
- List the declared projects:
~~~
$ testplan projects
~~~

- Names are case sensitive`,
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		name: "config-load-failed",
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the config file for CUE syntax errors
- Show where testplan looks for the file:
~~~
$ testplan config path
~~~

- Recreate a default config file:
~~~
$ testplan config init
~~~`,
	}

	watchFailedIssue = &Issue{
		id:   WatchFailedId,
		name: "watch-failed",
		mdMsg: `
# Watch mode stopped!

The file watcher could not continue.

## Common causes:
- The inotify watch limit was reached on a large tree

## Things you can try:
- Raise the limit:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~

- Add more ` + "`watch.ignore`" + ` patterns to your config`,
	}

	issues = map[Id]*Issue{
		definitionNotFoundIssue.Id():   definitionNotFoundIssue,
		definitionParseErrorIssue.Id(): definitionParseErrorIssue,
		duplicateProjectNameIssue.Id(): duplicateProjectNameIssue,
		invalidThresholdIssue.Id():     invalidThresholdIssue,
		missingSetupFileIssue.Id():     missingSetupFileIssue,
		unknownEnvironmentIssue.Id():   unknownEnvironmentIssue,
		invalidPatternIssue.Id():       invalidPatternIssue,
		invalidMappingIssue.Id():       invalidMappingIssue,
		unknownProjectIssue.Id():       unknownProjectIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		watchFailedIssue.Id():          watchFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by its Name.
func Lookup(name string) (*Issue, bool) {
	for _, iss := range issues {
		if iss.name == name {
			return iss, true
		}
	}
	return nil, false
}
