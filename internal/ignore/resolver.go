// Package ignore decides which paths of a scan root take part in packing.
//
// Layers are consulted highest priority first and the first definite
// opinion wins:
//
//  1. built-in excludes (always on)
//  2. user custom patterns, where `!pattern` keeps a path
//  3. the project-local .remixignore file
//  4. the default pattern set
//  5. git ignore rules (.gitignore at every level, .git/info/exclude and
//     the global excludes file)
//
// Include patterns are checked after every layer and only ever narrow the
// file set.
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/rs/zerolog"

	"github.com/jadenpxrk/remix/internal/logging"
	"github.com/jadenpxrk/remix/internal/pattern"
	"github.com/jadenpxrk/remix/internal/types"
)

// LocalIgnoreFile is the project-local ignore file read from the scan root.
const LocalIgnoreFile = ".remixignore"

// Layer names reported in a Decision.
const (
	LayerBuiltin  = "builtin"
	LayerCustom   = "custom"
	LayerLocal    = "local"
	LayerDefaults = "defaults"
	LayerVCS      = "vcs"
)

// Verdict is the opinion of one layer about one path.
type Verdict int

const (
	NoOpinion Verdict = iota
	Ignore
	Keep
)

func (v Verdict) String() string {
	switch v {
	case Ignore:
		return "ignore"
	case Keep:
		return "keep"
	default:
		return "no-opinion"
	}
}

// Decision is the combined verdict for a path and the layer that gave it.
// Layer is empty when no layer had an opinion.
type Decision struct {
	Verdict Verdict
	Layer   string
}

// Options selects the enabled layers.
type Options struct {
	Root               string
	CustomPatterns     []string
	IncludePatterns    []string
	UseLocalIgnore     bool
	UseDefaultPatterns bool
	UseGitignore       bool
	UseGlobalGitignore bool
}

type layer interface {
	name() string
	decide(rel string, isDir bool) Verdict
}

// Resolver evaluates the ignore layers for paths under one root.
type Resolver struct {
	root    string
	layers  []layer
	include []string
	vcs     *vcsLayer
	logger  zerolog.Logger
}

// New builds a resolver for opts.Root. Invalid custom or include patterns
// are logged and skipped.
func New(opts Options) *Resolver {
	logger := logging.GetLogger("ignore")

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		root = opts.Root
	}

	r := &Resolver{
		root:   root,
		logger: logger,
	}

	r.layers = append(r.layers, builtinLayer{})

	if custom := newCustomLayer(opts.CustomPatterns, logger); custom != nil {
		r.layers = append(r.layers, custom)
	}

	if opts.UseLocalIgnore {
		if local := newLocalLayer(root, logger); local != nil {
			r.layers = append(r.layers, local)
		}
	}

	if opts.UseDefaultPatterns {
		r.layers = append(r.layers, patternLayer{layerName: LayerDefaults, patterns: DefaultPatterns})
	}

	if opts.UseGitignore {
		r.vcs = newVCSLayer(root, opts.UseGlobalGitignore, logger)
		r.layers = append(r.layers, r.vcs)
	}

	for _, p := range opts.IncludePatterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := pattern.Validate(p); err != nil {
			logger.Warn().Err(err).Str("pattern", p).Msg("Skipping invalid include pattern")
			continue
		}
		r.include = append(r.include, p)
	}

	return r
}

// Root returns the absolute scan root.
func (r *Resolver) Root() string {
	return r.root
}

// HasIncludes reports whether include patterns narrow the file set.
func (r *Resolver) HasIncludes() bool {
	return len(r.include) > 0
}

// Decide returns the verdict of the first layer with an opinion about rel.
// Parents of rel are not consulted.
func (r *Resolver) Decide(rel string, isDir bool) Decision {
	rel = pattern.Normalize(rel)
	if rel == "" {
		return Decision{}
	}
	for _, l := range r.layers {
		if v := l.decide(rel, isDir); v != NoOpinion {
			return Decision{Verdict: v, Layer: l.name()}
		}
	}
	return Decision{}
}

// ShouldDescend reports whether the walk should enter the directory rel.
func (r *Resolver) ShouldDescend(rel string) bool {
	d := r.Decide(rel, true)
	if d.Verdict == Ignore {
		r.logger.Trace().Str("path", rel).Str("layer", d.Layer).Msg("Pruning directory")
		return false
	}
	return true
}

// EnterDir tells the resolver the walk entered rel so per-directory ignore
// files below the root are loaded before its entries are decided.
func (r *Resolver) EnterDir(rel string) {
	if r.vcs != nil {
		r.vcs.enterDir(pattern.Normalize(rel))
	}
}

// ShouldInclude reports whether c takes part in packing. A path is kept when
// none of its parent directories is ignored, no layer ignores the path, and
// for files, it matches an include pattern if any are configured.
func (r *Resolver) ShouldInclude(c types.Candidate) bool {
	rel := pattern.Normalize(c.RelPath)
	if rel == "" {
		return c.IsDir
	}

	segments := strings.Split(rel, "/")
	for i := 1; i < len(segments); i++ {
		parent := strings.Join(segments[:i], "/")
		if r.Decide(parent, true).Verdict == Ignore {
			return false
		}
	}

	if d := r.Decide(rel, c.IsDir); d.Verdict == Ignore {
		r.logger.Trace().Str("path", rel).Str("layer", d.Layer).Msg("Ignoring path")
		return false
	}

	if c.IsDir || len(r.include) == 0 {
		return true
	}
	for _, p := range r.include {
		if pattern.MatchFold(p, rel) {
			return true
		}
	}
	r.logger.Trace().Str("path", rel).Msg("No include pattern matched")
	return false
}

// patternLayer ignores any path matched by one of its patterns.
type patternLayer struct {
	layerName string
	patterns  []string
}

func (l patternLayer) name() string { return l.layerName }

func (l patternLayer) decide(rel string, isDir bool) Verdict {
	for _, p := range l.patterns {
		if pattern.CaseSensitive.Match(p, rel, isDir) {
			return Ignore
		}
	}
	return NoOpinion
}

type customRule struct {
	pattern string
	keep    bool
}

// customLayer holds the user's patterns. The last matching rule wins.
type customLayer struct {
	rules []customRule
}

func newCustomLayer(patterns []string, logger zerolog.Logger) *customLayer {
	var rules []customRule
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		rule := customRule{pattern: p}
		if strings.HasPrefix(p, "!") {
			rule = customRule{pattern: strings.TrimPrefix(p, "!"), keep: true}
		}
		if err := pattern.Validate(rule.pattern); err != nil {
			logger.Warn().Err(err).Str("pattern", p).Msg("Skipping invalid custom pattern")
			continue
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return nil
	}
	return &customLayer{rules: rules}
}

func (l *customLayer) name() string { return LayerCustom }

func (l *customLayer) decide(rel string, isDir bool) Verdict {
	for i := len(l.rules) - 1; i >= 0; i-- {
		rule := l.rules[i]
		if !pattern.CaseSensitive.Match(rule.pattern, rel, isDir) {
			continue
		}
		if rule.keep {
			return Keep
		}
		return Ignore
	}
	return NoOpinion
}

// localLayer applies the .remixignore file at the scan root.
type localLayer struct {
	root    string
	matcher gitignore.IgnoreMatcher
}

func newLocalLayer(root string, logger zerolog.Logger) *localLayer {
	path := filepath.Join(root, LocalIgnoreFile)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := gitignore.NewGitIgnore(path, root)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Could not parse local ignore file")
		return nil
	}
	logger.Debug().Str("path", path).Msg("Loaded local ignore file")
	return &localLayer{root: root, matcher: matcher}
}

func (l *localLayer) name() string { return LayerLocal }

func (l *localLayer) decide(rel string, isDir bool) Verdict {
	if l.matcher.Match(filepath.Join(l.root, filepath.FromSlash(rel)), isDir) {
		return Ignore
	}
	return NoOpinion
}
