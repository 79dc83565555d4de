package transform

import (
	"fmt"
	"sort"
	"strings"
)

// Family is a comment syntax shared by a group of languages.
type Family int

const (
	FamilyNone Family = iota
	FamilyC
	FamilyPython
	FamilyRuby
	FamilyShell
	FamilyYAML
	FamilyPHP
	FamilyHTML
	FamilyCSS
)

var familyNames = map[Family]string{
	FamilyNone:   "none",
	FamilyC:      "c",
	FamilyPython: "python",
	FamilyRuby:   "ruby",
	FamilyShell:  "shell",
	FamilyYAML:   "yaml",
	FamilyPHP:    "php",
	FamilyHTML:   "html",
	FamilyCSS:    "css",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// ParseFamily resolves a family by name, case-insensitively.
func ParseFamily(name string) (Family, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range familyNames {
		if n == name {
			return f, nil
		}
	}
	return FamilyNone, fmt.Errorf("unknown comment family %q", name)
}

var defaultExtensions = map[string]Family{
	"rs": FamilyC, "js": FamilyC, "ts": FamilyC, "jsx": FamilyC, "tsx": FamilyC,
	"mjs": FamilyC, "cjs": FamilyC, "c": FamilyC, "cpp": FamilyC, "cc": FamilyC,
	"h": FamilyC, "hpp": FamilyC, "cs": FamilyC, "java": FamilyC, "go": FamilyC,
	"swift": FamilyC, "kt": FamilyC, "kts": FamilyC, "scala": FamilyC, "dart": FamilyC,

	"py": FamilyPython,
	"rb": FamilyRuby,

	"sh": FamilyShell, "bash": FamilyShell, "zsh": FamilyShell,

	"yaml": FamilyYAML, "yml": FamilyYAML, "toml": FamilyYAML,

	"php": FamilyPHP,

	"html": FamilyHTML, "htm": FamilyHTML, "xml": FamilyHTML, "svg": FamilyHTML,

	"css": FamilyCSS, "scss": FamilyCSS, "sass": FamilyCSS, "less": FamilyCSS,
}

// Registry maps file extensions (lowercase, no dot) to comment families.
// A Registry is immutable once built.
type Registry struct {
	families map[string]Family
}

// DefaultRegistry knows the built-in extensions only.
var DefaultRegistry = NewRegistry(nil)

// NewRegistry returns the built-in mapping extended with overrides.
// Overrides win over built-in entries; FamilyNone disables an extension.
func NewRegistry(overrides map[string]Family) *Registry {
	families := make(map[string]Family, len(defaultExtensions)+len(overrides))
	for ext, f := range defaultExtensions {
		families[ext] = f
	}
	for ext, f := range overrides {
		families[normalizeTag(ext)] = f
	}
	return &Registry{families: families}
}

// Lookup returns the family for tag, which may be given with or without
// the leading dot and in any case.
func (r *Registry) Lookup(tag string) (Family, bool) {
	f, ok := r.families[normalizeTag(tag)]
	if !ok || f == FamilyNone {
		return FamilyNone, false
	}
	return f, true
}

// Extensions lists the extensions with a comment family, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.families))
	for ext, f := range r.families {
		if f != FamilyNone {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "."))
}
