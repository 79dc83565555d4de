// Package remote clones remote Git repositories into temporary directories
// so they can be packed like a local tree.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/jadenpxrk/remix/internal/logging"
)

// DefaultBranch is the branch assumed when none is given. It and "master"
// both mean "whatever the remote HEAD points at".
const DefaultBranch = "main"

var ErrEmptyURL = errors.New("remote URL is empty")

var (
	shorthandRe = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)
	treeRe      = regexp.MustCompile(`^(https?://[^/]+/[^/]+/[^/]+?)(?:\.git)?/tree/(.+?)/?$`)
	commitRe    = regexp.MustCompile(`^(https?://[^/]+/[^/]+/[^/]+?)(?:\.git)?/commit/([0-9a-fA-F]{4,40})/?$`)
	hashRe      = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)
)

// Target is a parsed remote repository reference.
type Target struct {
	URL      string
	Ref      string
	IsCommit bool
}

// UsesDefaultBranch reports whether cloning t needs no explicit checkout.
func (t Target) UsesDefaultBranch() bool {
	return !t.IsCommit && (t.Ref == "" || t.Ref == "main" || t.Ref == "master")
}

// Parse turns a user-supplied repository reference into a Target. It
// accepts GitHub shorthand ("user/repo"), branch URLs (".../tree/<branch>"),
// commit URLs (".../commit/<hash>") and any other URL go-git can clone.
// branch is used when the URL names no ref itself; a branch of 7 to 40 hex
// digits is taken as a commit hash.
func Parse(raw, branch string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, ErrEmptyURL
	}

	if m := treeRe.FindStringSubmatch(raw); m != nil {
		return Target{URL: m[1], Ref: m[2]}, nil
	}
	if m := commitRe.FindStringSubmatch(raw); m != nil {
		return Target{URL: m[1], Ref: strings.ToLower(m[2]), IsCommit: true}, nil
	}

	url := raw
	if shorthandRe.MatchString(raw) {
		url = "https://github.com/" + strings.TrimSuffix(raw, ".git")
	}
	return refTarget(url, branch), nil
}

// refTarget pairs url with the ref given on the command line.
func refTarget(url, branch string) Target {
	switch {
	case branch == "":
		return Target{URL: url, Ref: DefaultBranch}
	case hashRe.MatchString(branch):
		return Target{URL: url, Ref: strings.ToLower(branch), IsCommit: true}
	}
	return Target{URL: url, Ref: branch}
}

// Clone clones t into a new temporary directory and checks out its ref.
// A branch that does not exist on the remote falls back to the default
// branch with a warning. The caller removes the returned directory.
func Clone(ctx context.Context, t Target, progress io.Writer) (string, error) {
	logger := logging.GetLogger("remote")

	opts := &git.CloneOptions{
		URL:      t.URL,
		Progress: progress,
	}
	if !t.UsesDefaultBranch() && !t.IsCommit {
		opts.ReferenceName = plumbing.NewBranchReferenceName(t.Ref)
		opts.SingleBranch = true
	}

	dir, repo, err := cloneInto(ctx, opts)
	if err != nil && opts.ReferenceName != "" && isMissingRef(err) {
		logger.Warn().Str("branch", t.Ref).Msg("Branch not found, using the default branch instead")
		opts.ReferenceName = ""
		opts.SingleBranch = false
		dir, repo, err = cloneInto(ctx, opts)
	}
	if err != nil {
		return "", fmt.Errorf("failed to clone repository '%s': %w", t.URL, err)
	}

	if t.IsCommit {
		if err := checkoutCommit(repo, t.Ref); err != nil {
			_ = os.RemoveAll(dir)
			return "", err
		}
	}

	logger.Info().Str("url", t.URL).Str("ref", t.Ref).Str("dir", dir).Msg("Repository cloned")
	return dir, nil
}

func cloneInto(ctx context.Context, opts *git.CloneOptions) (string, *git.Repository, error) {
	dir, err := os.MkdirTemp("", "remix-remote-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary directory: %w", err)
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	return dir, repo, nil
}

func checkoutCommit(repo *git.Repository, rev string) error {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("failed to find commit %s: %w", rev, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return fmt.Errorf("failed to check out commit %s: %w", rev, err)
	}
	return nil
}

func isMissingRef(err error) bool {
	return errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, git.NoMatchingRefSpecError{})
}
