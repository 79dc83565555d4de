package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/jadenpxrk/remix/internal/logging"
	"github.com/jadenpxrk/remix/internal/types"
)

// Resolver is the part of the ignore resolver the walk needs.
type Resolver interface {
	ShouldDescend(rel string) bool
	EnterDir(rel string)
	ShouldInclude(c types.Candidate) bool
}

// Walk lists the regular files under root that the resolver includes, in
// lexical order. Ignored directories are not entered and symlinks are never
// followed. An error reading root itself is returned; errors on entries
// below it are logged and the entry skipped.
func Walk(root string, resolver Resolver) ([]types.Candidate, error) {
	logger := logging.GetLogger("scanner")

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("error resolving root %s: %w", root, err)
	}

	var candidates []types.Candidate
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if path == absRoot {
			if err != nil {
				return err
			}
			resolver.EnterDir("")
			return nil
		}

		relOS, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			logger.Warn().Err(relErr).Str("path", path).Msg("Skipping entry outside root")
			return nil
		}
		rel := filepath.ToSlash(relOS)

		if err != nil {
			logger.Warn().Err(err).Str("path", rel).Msg("Error accessing path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		switch mode := d.Type(); {
		case mode&fs.ModeSymlink != 0:
			logger.Trace().Str("path", rel).Msg("Skipping symlink")
			return nil
		case d.IsDir():
			if !resolver.ShouldDescend(rel) {
				return fs.SkipDir
			}
			resolver.EnterDir(rel)
			return nil
		case !mode.IsRegular():
			logger.Trace().Str("path", rel).Msg("Skipping non-regular file")
			return nil
		}

		c := types.Candidate{AbsPath: path, RelPath: rel}
		if resolver.ShouldInclude(c) {
			candidates = append(candidates, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}

	return candidates, nil
}
