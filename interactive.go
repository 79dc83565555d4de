package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/jadenpxrk/remix/internal/ignore"
)

// errSelectionAborted is returned when the user leaves the picker without
// choosing a directory.
var errSelectionAborted = errors.New("interactive selection aborted")

// directoryCandidates lists base and the directories below it, relative to
// base, skipping the built-in excluded directories.
func directoryCandidates(base string) ([]string, error) {
	candidates := []string{"."}

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries just don't show up in the picker.
			if d != nil && d.IsDir() && path != base {
				return fs.SkipDir
			}
			return nil
		}
		if path == base || !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ignore.IsBuiltinExcluded(rel, true) {
			return fs.SkipDir
		}
		candidates = append(candidates, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning for directories: %w", err)
	}
	return candidates, nil
}

// runInteractiveFinder lets the user pick the directory to pack with a fuzzy
// finder rooted at the working directory.
func runInteractiveFinder() (string, error) {
	candidates, err := directoryCandidates(".")
	if err != nil {
		return "", err
	}

	idx, err := fuzzyfinder.Find(
		candidates,
		func(i int) string {
			return candidates[i]
		},
		fuzzyfinder.WithPromptString("Directory to pack> "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select the directory to pack and press Enter."
			}
			return previewDirectory(candidates[i], h)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errSelectionAborted
		}
		return "", fmt.Errorf("fuzzy finder error: %w", err)
	}
	return candidates[idx], nil
}

// previewDirectory lists the entries of dir, at most limit lines.
func previewDirectory(dir string, limit int) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Sprintf("Path: %s\nError reading directory: %v", dir, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Path: %s\nEntries: %d\n\n", dir, len(entries))
	for i, e := range entries {
		if limit > 0 && i >= limit-3 {
			b.WriteString("...\n")
			break
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		b.WriteString(name + "\n")
	}
	return b.String()
}
