// Package pattern implements the glob matching shared by every filtering
// layer. Paths and patterns are compared in forward-slash form regardless
// of the host separator.
//
// Pattern syntax is doublestar's (`*`, `**`, `?`, `[...]`, `{a,b}`) with
// three gitignore-style conventions on top:
//
//   - a pattern with no `/` also matches the last element of a path, so
//     `*.rs` matches `src/main.rs`;
//   - a leading `/` anchors the pattern to the root and disables the
//     previous rule;
//   - a trailing `/` restricts the pattern to directories.
//
// A path matches when the pattern matches the path itself or any of its
// parent directories, so `node_modules/` matches
// `node_modules/pkg/index.js`.
package pattern

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher matches normalized glob patterns against relative paths.
type Matcher struct {
	foldCase bool
}

var (
	// CaseSensitive is used by the ignore layers.
	CaseSensitive = Matcher{}
	// CaseInsensitive is used for include patterns only.
	CaseInsensitive = Matcher{foldCase: true}
)

// Match reports whether path, a file, matches pattern (case-sensitive).
func Match(pattern, p string) bool {
	return CaseSensitive.Match(pattern, p, false)
}

// MatchFold is Match with case folding.
func MatchFold(pattern, p string) bool {
	return CaseInsensitive.Match(pattern, p, false)
}

// MatchDir reports whether dir, a directory, matches pattern (case-sensitive).
func MatchDir(pattern, dir string) bool {
	return CaseSensitive.Match(pattern, dir, true)
}

// Validate returns an error when pattern cannot be compiled.
func Validate(pattern string) error {
	c := compile(pattern)
	if c.body == "" {
		return fmt.Errorf("empty pattern %q", pattern)
	}
	if !doublestar.ValidatePattern(c.body) {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	return nil
}

// Normalize converts a path to the form used for matching: forward
// slashes, no leading `./` or `/`, no repeated or trailing slashes.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	for {
		trimmed := strings.TrimPrefix(strings.TrimLeft(p, "/"), "./")
		if trimmed == p {
			break
		}
		p = trimmed
	}
	p = strings.TrimRight(p, "/")
	if p == "." {
		return ""
	}
	return p
}

type compiled struct {
	body     string
	dirOnly  bool
	anchored bool
}

func compile(pattern string) compiled {
	p := strings.TrimSpace(pattern)
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}

	var c compiled
	if strings.HasPrefix(p, "/") {
		c.anchored = true
		p = strings.TrimLeft(p, "/")
	}
	if strings.HasSuffix(p, "/") {
		c.dirOnly = true
		p = strings.TrimRight(p, "/")
	}
	c.body = p
	return c
}

// Match reports whether p matches pattern. isDir tells whether p itself
// names a directory; its parents always do.
func (m Matcher) Match(pattern, p string, isDir bool) bool {
	c := compile(pattern)
	if c.body == "" {
		return false
	}
	p = Normalize(p)
	if p == "" {
		return false
	}
	if m.foldCase {
		c.body = strings.ToLower(c.body)
		p = strings.ToLower(p)
	}

	// Walk the path prefixes from the shallowest parent to the path itself.
	for i := 0; i <= len(p); i++ {
		if i < len(p) && p[i] != '/' {
			continue
		}
		prefix := p[:i]
		prefixIsDir := i < len(p) || isDir
		if c.dirOnly && !prefixIsDir {
			continue
		}
		if c.matchOne(prefix) {
			return true
		}
	}
	return false
}

func (c compiled) matchOne(p string) bool {
	if ok, _ := doublestar.Match(c.body, p); ok {
		return true
	}
	if !c.anchored && !strings.Contains(c.body, "/") {
		if ok, _ := doublestar.Match(c.body, path.Base(p)); ok {
			return true
		}
	}
	if trimmed, found := strings.CutSuffix(c.body, "/**"); found && trimmed != "" {
		if ok, _ := doublestar.Match(trimmed, p); ok {
			return true
		}
	}
	return false
}
