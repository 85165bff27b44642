// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"testplan-cli/pkg/testplan"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dlclark/regexp2"
)

// regexMatchTimeout bounds a single mapper or transform match.
const regexMatchTimeout = 250 * time.Millisecond

type (
	// glob is a root-relative, pre-validated doublestar pattern.
	glob struct {
		declared string
		pattern  string
	}

	// rule is a compiled moduleNameMapper or transform entry.
	rule struct {
		pattern string
		value   string
		re      *regexp2.Regexp
	}
)

// compileGlob resolves the <rootDir> token and validates the pattern.
func compileGlob(root, declared string) (glob, bool) {
	p := relativePattern(root, declared)
	if !doublestar.ValidatePattern(p) {
		return glob{}, false
	}
	return glob{declared: declared, pattern: p}, true
}

func (g glob) match(rel string) bool {
	return doublestar.MatchUnvalidated(g.pattern, rel)
}

// relativePattern rewrites a pattern so that it matches root-relative
// slash paths. Patterns pointing outside root are kept absolute and never
// match a relative path.
func relativePattern(root, declared string) string {
	p := filepath.ToSlash(strings.ReplaceAll(declared, testplan.RootDirToken, root))
	slashRoot := strings.TrimSuffix(filepath.ToSlash(root), "/")
	switch {
	case slashRoot == "":
		// Filesystem root: every absolute pattern is inside it.
		if p = strings.TrimLeft(p, "/"); p == "" {
			return "."
		}
	case p == slashRoot:
		return "."
	case strings.HasPrefix(p, slashRoot+"/"):
		p = p[len(slashRoot)+1:]
	}
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

// relativePath normalizes a query path to a slash-separated path relative
// to root. It reports false for paths outside root.
func relativePath(root, p string) (string, bool) {
	if p == "" {
		return "", false
	}
	p = strings.ReplaceAll(p, testplan.RootDirToken, root)
	if filepath.IsAbs(p) {
		r, err := filepath.Rel(root, p)
		if err != nil {
			return "", false
		}
		p = r
	}
	p = path.Clean(filepath.ToSlash(p))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
		return "", false
	}
	return p, true
}

// compileRule compiles an ECMAScript regex key. <rootDir> in the value is
// resolved here so lookups return final paths.
func compileRule(root string, e testplan.MappingEntry) (rule, error) {
	re, err := regexp2.Compile(e.Pattern, regexp2.ECMAScript)
	if err != nil {
		return rule{}, err
	}
	re.MatchTimeout = regexMatchTimeout
	return rule{
		pattern: e.Pattern,
		value:   strings.ReplaceAll(e.Value, testplan.RootDirToken, root),
		re:      re,
	}, nil
}

// find returns the match of r against s, or nil. A match that times out
// counts as no match.
func (r rule) find(s string) *regexp2.Match {
	m, err := r.re.FindStringMatch(s)
	if err != nil {
		return nil
	}
	return m
}

// expand substitutes $n references in the rule value with capture groups
// of m. References to groups that did not participate become empty.
func (r rule) expand(m *regexp2.Match) string {
	v := r.value
	if !strings.Contains(v, "$") {
		return v
	}

	var sb strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] != '$' {
			sb.WriteByte(v[i])
			continue
		}
		j := i + 1
		for j < len(v) && v[j] >= '0' && v[j] <= '9' {
			j++
		}
		if j == i+1 {
			sb.WriteByte('$')
			continue
		}
		n, err := strconv.Atoi(v[i+1 : j])
		if err == nil {
			if g := m.GroupByNumber(n); g != nil && len(g.Captures) > 0 {
				sb.WriteString(g.String())
			}
		}
		i = j - 1
	}
	return sb.String()
}

func (r rule) entry() testplan.MappingEntry {
	return testplan.MappingEntry{Pattern: r.pattern, Value: r.value}
}

func matchAny(globs []glob, rel string) bool {
	for _, g := range globs {
		if g.match(rel) {
			return true
		}
	}
	return false
}

func declaredPatterns(globs []glob) []string {
	out := make([]string, len(globs))
	for i, g := range globs {
		out[i] = g.declared
	}
	return out
}
