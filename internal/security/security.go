// Package security flags files that may hold credentials. Matching is plain
// substring search over lowercased names and content; it is a heuristic
// and produces false positives by design of the keyword list.
package security

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jadenpxrk/remix/internal/ignore"
	"github.com/jadenpxrk/remix/internal/logging"
)

// SensitiveKeywords are searched for in lowercased file content.
var SensitiveKeywords = []string{
	// API keys and tokens
	"api_key",
	"api_token",
	"app_key",
	"app_token",
	"secret_key",

	// AWS
	"aws_access_key",
	"aws_secret_key",

	// private keys
	"private key",
	"begin private key",

	// passwords
	"password=",
	"passwd=",
	"pwd=",

	"firebase_key",

	"auth_token",
	"bearer token",

	// connection strings
	"connection_string",
	"mongodb://",
	"postgres://",
	"mysql://",
	"redis://",
}

// SuspiciousNameParts are searched for in lowercased file names.
var SuspiciousNameParts = []string{
	"secret",
	"password",
	"credential",
	"token",
	"key",
	"auth",
	".env",
	"config",
}

var binaryExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true, "tiff": true,
	"exe": true, "dll": true, "so": true, "dylib": true,
	"zip": true, "tar": true, "gz": true, "rar": true,
	"mp3": true, "mp4": true, "avi": true, "mov": true,
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true, "ppt": true, "pptx": true,
}

// CheckSensitiveContent reports whether text contains any of
// SensitiveKeywords, ignoring case.
func CheckSensitiveContent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range SensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SuspiciousFilename reports whether the base name of name contains any of
// SuspiciousNameParts, ignoring case.
func SuspiciousFilename(name string) bool {
	base := strings.ToLower(path.Base(filepath.ToSlash(name)))
	for _, part := range SuspiciousNameParts {
		if strings.Contains(base, part) {
			return true
		}
	}
	return false
}

// LikelyBinary guesses from the extension alone whether p is binary.
func LikelyBinary(p string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(p)), ".")
	return binaryExtensions[ext]
}

// Scan walks root and returns the sorted relative paths of files with a
// suspicious name or sensitive content. Only the built-in excludes apply,
// there is no size limit and symlinks are not followed. An error is
// returned only when root itself cannot be walked.
func Scan(root string) ([]string, error) {
	logger := logging.GetLogger("security")

	var suspicious []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if p == root {
			return err
		}
		if err != nil {
			logger.Debug().Err(err).Str("path", p).Msg("Skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		relOS, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel := filepath.ToSlash(relOS)

		if d.IsDir() {
			if ignore.IsBuiltinExcluded(rel, true) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignore.IsBuiltinExcluded(rel, false) || LikelyBinary(rel) {
			return nil
		}

		if SuspiciousFilename(rel) {
			suspicious = append(suspicious, rel)
			return nil
		}

		content, readErr := os.ReadFile(p)
		if readErr != nil {
			logger.Debug().Err(readErr).Str("path", rel).Msg("Skipping unreadable file")
			return nil
		}
		if CheckSensitiveContent(string(content)) {
			suspicious = append(suspicious, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("security scan of %s failed: %w", root, err)
	}

	sort.Strings(suspicious)
	logger.Debug().Int("count", len(suspicious)).Msg("Security scan finished")
	return suspicious, nil
}
