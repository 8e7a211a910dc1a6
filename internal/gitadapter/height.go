package gitadapter

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"

	"github.com/monoverse/monoverse/internal/engerr"
)

// CommitHeight returns the number of commits reachable from to but
// not from from (spec §4.B commit_height); 0 when from == to.
func (r *Repository) CommitHeight(from, to plumbing.Hash) (int, error) {
	if from == to {
		return 0, nil
	}

	ancestors, err := r.reachableSet(from)
	if err != nil {
		return 0, err
	}

	toCommit, err := r.repo.CommitObject(to)
	if err != nil {
		return 0, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to load HEAD commit"))
	}

	count := 0
	visited := map[plumbing.Hash]bool{}
	queue := []*object.Commit{toCommit}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if visited[c.Hash] {
			continue
		}
		visited[c.Hash] = true

		if ancestors[c.Hash] {
			continue
		}
		count++

		err := c.Parents().ForEach(func(p *object.Commit) error {
			if !visited[p.Hash] {
				queue = append(queue, p)
			}
			return nil
		})
		if err != nil {
			return 0, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to walk commit parents"))
		}
	}

	return count, nil
}

// CommitMessagesBetween returns the full commit messages reachable
// from to but not from from, oldest-exclusions aside (spec §4.J
// "DETERMINE_BUMP" feeds these into the Commit Classifier). Order is
// unspecified beyond "every commit in the range exactly once".
func (r *Repository) CommitMessagesBetween(from, to plumbing.Hash) ([]string, error) {
	if from == to {
		return nil, nil
	}

	ancestors, err := r.reachableSet(from)
	if err != nil {
		return nil, err
	}

	toCommit, err := r.repo.CommitObject(to)
	if err != nil {
		return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to load HEAD commit"))
	}

	var messages []string
	visited := map[plumbing.Hash]bool{}
	queue := []*object.Commit{toCommit}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if visited[c.Hash] {
			continue
		}
		visited[c.Hash] = true

		if ancestors[c.Hash] {
			continue
		}
		messages = append(messages, c.Message)

		err := c.Parents().ForEach(func(p *object.Commit) error {
			if !visited[p.Hash] {
				queue = append(queue, p)
			}
			return nil
		})
		if err != nil {
			return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to walk commit parents"))
		}
	}

	return messages, nil
}

// reachableSet returns the set of commit hashes reachable from (and
// including) from.
func (r *Repository) reachableSet(from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	fromCommit, err := r.repo.CommitObject(from)
	if err != nil {
		return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to load base commit"))
	}

	iter, err := r.repo.Log(&git.LogOptions{From: fromCommit.Hash})
	if err != nil {
		return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to walk base history"))
	}
	defer iter.Close()

	set := map[plumbing.Hash]bool{}
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to walk base history"))
	}

	return set, nil
}
