package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/rs/zerolog"
)

const (
	gitignoreFile   = ".gitignore"
	infoExcludeFile = ".git/info/exclude"
)

// vcsLayer applies git ignore semantics. Patterns are kept in ascending
// priority: global excludes, .git/info/exclude, then each .gitignore in the
// order the walk enters its directory. Deeper files therefore override
// shallower ones, as in git.
type vcsLayer struct {
	root   string
	logger zerolog.Logger

	mu       sync.Mutex
	patterns []gitignore.Pattern
	loaded   map[string]bool
}

func newVCSLayer(root string, useGlobal bool, logger zerolog.Logger) *vcsLayer {
	l := &vcsLayer{
		root:   root,
		logger: logger,
		loaded: make(map[string]bool),
	}

	if useGlobal {
		global, err := gitignore.LoadGlobalPatterns(osfs.New("/"))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to load global git excludes")
		}
		l.patterns = append(l.patterns, global...)
	}

	l.patterns = append(l.patterns, l.readFile(filepath.Join(root, filepath.FromSlash(infoExcludeFile)), nil)...)
	l.enterDir("")
	return l
}

func (l *vcsLayer) name() string { return LayerVCS }

// enterDir loads the .gitignore of the directory rel, once.
func (l *vcsLayer) enterDir(rel string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadLocked(rel)
}

func (l *vcsLayer) loadLocked(rel string) {
	if l.loaded[rel] {
		return
	}
	l.loaded[rel] = true

	var domain []string
	if rel != "" {
		domain = strings.Split(rel, "/")
	}
	file := filepath.Join(l.root, filepath.FromSlash(rel), gitignoreFile)
	l.patterns = append(l.patterns, l.readFile(file, domain)...)
}

func (l *vcsLayer) readFile(file string, domain []string) []gitignore.Pattern {
	f, err := os.Open(file)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn().Err(err).Str("path", file).Msg("Failed to read ignore file")
		}
		return nil
	}
	defer f.Close()

	var ps []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, domain))
	}
	if err := scanner.Err(); err != nil {
		l.logger.Warn().Err(err).Str("path", file).Msg("Failed to read ignore file")
	}
	return ps
}

func (l *vcsLayer) decide(rel string, isDir bool) Verdict {
	segments := strings.Split(rel, "/")

	l.mu.Lock()
	defer l.mu.Unlock()

	// Ignore files of every parent apply even when the caller never
	// entered them explicitly.
	for i := 1; i < len(segments); i++ {
		l.loadLocked(strings.Join(segments[:i], "/"))
	}

	for i := len(l.patterns) - 1; i >= 0; i-- {
		switch l.patterns[i].Match(segments, isDir) {
		case gitignore.Exclude:
			return Ignore
		case gitignore.Include:
			return Keep
		}
	}
	return NoOpinion
}
