package ignore

import (
	"path"
	"strings"

	"github.com/jadenpxrk/remix/internal/pattern"
)

// BuiltinDirs are directory names excluded at any depth. No option turns
// them off.
var BuiltinDirs = []string{
	".git",
	"target",
	"node_modules",
	"dist",
	"build",
}

// BuiltinExtensions are file extensions excluded at any depth.
var BuiltinExtensions = []string{
	".exe", ".o", ".obj", ".dll", ".so", ".dylib",
	".class", ".jar", ".war",
	".zip", ".tar", ".gz", ".rar", ".7z",
	".pyc",
}

// DefaultPatterns is the broader pattern set applied when
// ignore.use_default_patterns is on.
var DefaultPatterns = []string{
	"node_modules/",
	".git/",
	".gitignore",
	".gitattributes",
	".github/",
	".gitmodules",
	".gitkeep",
	"target/",
	"dist/",
	"build/",
	"**/*.log",
	"**/Cargo.lock",
	"**/.env",
	"**/*.exe",
	"**/*.o",
	"**/*.so",
	"**/*.dll",
	"**/*.dylib",
	"**/*.zip",
	"**/*.tar",
	"**/*.gz",
	"**/*.rar",
	"**/*.7z",
	"**/*.jar",
	"**/*.class",
	"**/*.pyc",
	"**/__pycache__/",
	"**/.idea/",
	"**/.vscode/",
	"**/node_modules/",
	"**/vendor/",
	"**/bin/",
	"**/obj/",
	"**/build/",
}

// IsBuiltinExcluded reports whether rel falls under a built-in exclude:
// any of its directories is one of BuiltinDirs, or it is a file with one
// of BuiltinExtensions.
func IsBuiltinExcluded(rel string, isDir bool) bool {
	rel = pattern.Normalize(rel)
	if rel == "" {
		return false
	}

	segments := strings.Split(rel, "/")
	dirs := segments[:len(segments)-1]
	if isDir {
		dirs = segments
	}
	for _, seg := range dirs {
		for _, name := range BuiltinDirs {
			if seg == name {
				return true
			}
		}
	}

	if isDir {
		return false
	}
	ext := path.Ext(rel)
	for _, e := range BuiltinExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

type builtinLayer struct{}

func (builtinLayer) name() string { return LayerBuiltin }

func (builtinLayer) decide(rel string, isDir bool) Verdict {
	if IsBuiltinExcluded(rel, isDir) {
		return Ignore
	}
	return NoOpinion
}
