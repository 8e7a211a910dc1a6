// Package gitadapter implements the Git Adapter: branch
// classification, tag enumeration, tree diffing, commit height and
// reachability, all backed by go-git/go-git/v5 rather than shelling
// out to a git binary.
package gitadapter

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/pkg/errors"

	"github.com/monoverse/monoverse/internal/engerr"
	"github.com/monoverse/monoverse/pkg/slogext"
)

// Repository is a scoped handle on a single on-disk git repository.
// Per spec §5/§9, every resolution owns its own Repository and
// releases it with Close on every exit path; instances are never
// shared across resolutions.
type Repository struct {
	repo *git.Repository
	path string
	log  slogext.Logger
}

// Open opens the repository at path. Bare and non-bare repositories
// are both supported; path is searched upward for a .git directory the
// same way `git` itself does (git.PlainOpenWithOptions with
// DetectDotGit).
func Open(path string, log slogext.Logger) (*Repository, error) {
	if log == nil {
		log = slogext.NewSilent()
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, engerr.Wrap(engerr.RepositoryUnavailable,
			errors.Wrapf(err, "failed to open repository at %s", path))
	}

	return &Repository{repo: repo, path: path, log: log}, nil
}

// Close releases the repository handle. go-git holds no file
// descriptors that outlive the process for a plain filesystem
// repository, but Close exists so call sites have one symmetrical
// acquire/release pair to defer regardless of backing implementation
// (spec §9's "scoped resources" note).
func (r *Repository) Close() error {
	r.repo = nil
	return nil
}

// HeadSHA returns the full hex SHA of HEAD.
func (r *Repository) HeadSHA() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to resolve HEAD"))
	}
	return ref.Hash().String(), nil
}

// HeadHash returns HEAD as a plumbing.Hash.
func (r *Repository) HeadHash() (plumbing.Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to resolve HEAD"))
	}
	return ref.Hash(), nil
}

// IsShallow reports whether the repository is a shallow clone (spec
// §4.B). Shallow repositories store their shallow-grafted commit list
// via the storer.ShallowStorer interface; a repository whose storer
// doesn't implement it (e.g. purely in-memory test fixtures) is never
// shallow.
func (r *Repository) IsShallow() (bool, error) {
	ss, ok := r.repo.Storer.(storer.ShallowStorer)
	if !ok {
		return false, nil
	}
	hashes, err := ss.Shallow()
	if err != nil {
		return false, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to read shallow info"))
	}
	return len(hashes) > 0, nil
}

// CommitInfo is the provenance the orchestrator attaches to a
// VersionResult (spec §4.J "Emission").
type CommitInfo struct {
	Hash      string
	ShortHash string
	Date      string
	Message   string
}

// CommitInfo returns provenance for a single commit.
func (r *Repository) CommitInfo(hash plumbing.Hash) (CommitInfo, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return CommitInfo{}, engerr.Wrap(engerr.GitOperationFailed,
			errors.Wrapf(err, "failed to load commit %s", hash))
	}

	short := hash.String()
	if len(short) > 8 {
		short = short[:8]
	}

	msg := c.Message
	if idx := indexOfNewline(msg); idx >= 0 {
		msg = msg[:idx]
	}

	return CommitInfo{
		Hash:      hash.String(),
		ShortHash: short,
		Date:      c.Committer.When.UTC().Format("2006-01-02T15:04:05Z"),
		Message:   msg,
	}, nil
}

func indexOfNewline(s string) int {
	for i, r := range s {
		if r == '\n' {
			return i
		}
	}
	return -1
}

// IsReachable reports whether commit is an ancestor of (or equal to)
// from.
func (r *Repository) IsReachable(commit, from plumbing.Hash) (bool, error) {
	if commit == from {
		return true, nil
	}

	fromCommit, err := r.repo.CommitObject(from)
	if err != nil {
		return false, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to load commit"))
	}
	target, err := r.repo.CommitObject(commit)
	if err != nil {
		// The target doesn't even exist as a commit; it cannot be
		// reachable, but this isn't a git operation failure worth
		// bubbling up as conservative-true.
		return false, nil
	}

	ok, err := target.IsAncestor(fromCommit)
	if err != nil {
		return false, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "ancestry check failed"))
	}
	return ok, nil
}

// Path returns the filesystem path this Repository was opened from.
func (r *Repository) Path() string { return r.path }
