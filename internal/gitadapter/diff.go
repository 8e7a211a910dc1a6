package gitadapter

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/pkg/errors"

	"github.com/monoverse/monoverse/internal/engerr"
)

// ChangeKind is the action a changed path underwent between two trees
// (spec §4.B diff_paths).
type ChangeKind int

const (
	Added ChangeKind = iota
	Modified
	Renamed
	Deleted
	Copied
	TypeChanged
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "Added"
	case Modified:
		return "Modified"
	case Renamed:
		return "Renamed"
	case Deleted:
		return "Deleted"
	case Copied:
		return "Copied"
	default:
		return "TypeChanged"
	}
}

// PathChange is one entry of a tree diff (spec §4.B diff_paths).
type PathChange struct {
	Path      string
	Kind      ChangeKind
	Submodule bool
}

// DiffPaths diffs the tree at fromCommit against the tree at
// toCommit, returning normalized path changes (spec §4.B diff_paths).
// Renames are detected with a same-content heuristic (a delete and an
// add in the same diff sharing a blob hash): go-git's tree differ
// does not do rename detection itself, and this keeps the engine from
// needing a second, heavier diff pass.
func (r *Repository) DiffPaths(fromCommit, toCommit plumbing.Hash) ([]PathChange, error) {
	fromTree, err := r.treeOf(fromCommit)
	if err != nil {
		return nil, err
	}
	toTree, err := r.treeOf(toCommit)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to diff trees"))
	}

	type pending struct {
		path      string
		submodule bool
		hash      plumbing.Hash
		consumed  bool
	}
	var adds, dels []pending
	var rest []PathChange

	for _, c := range changes {
		action, aerr := c.Action()
		if aerr != nil {
			return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(aerr, "failed to determine diff action"))
		}

		from, to := c.From, c.To

		switch action {
		case merkletrie.Insert:
			adds = append(adds, pending{path: to.Name, submodule: isSubmodule(to.TreeEntry.Mode), hash: to.TreeEntry.Hash})
		case merkletrie.Delete:
			dels = append(dels, pending{path: from.Name, submodule: isSubmodule(from.TreeEntry.Mode), hash: from.TreeEntry.Hash})
		default: // merkletrie.Modify
			kind := Modified
			if from.TreeEntry.Mode != to.TreeEntry.Mode &&
				modeCategory(from.TreeEntry.Mode) != modeCategory(to.TreeEntry.Mode) {
				kind = TypeChanged
			}
			rest = append(rest, PathChange{
				Path:      to.Name,
				Kind:      kind,
				Submodule: isSubmodule(to.TreeEntry.Mode) || isSubmodule(from.TreeEntry.Mode),
			})
		}
	}

	matched := map[int]bool{}
	for i, a := range adds {
		for j, d := range dels {
			if matched[j] {
				continue
			}
			if a.hash == d.hash && a.path != d.path {
				rest = append(rest, PathChange{Path: a.path, Kind: Renamed, Submodule: a.submodule || d.submodule})
				matched[j] = true
				adds[i].consumed = true
				break
			}
		}
	}
	for _, a := range adds {
		if a.consumed {
			continue
		}
		rest = append(rest, PathChange{Path: a.path, Kind: Added, Submodule: a.submodule})
	}
	for j, d := range dels {
		if matched[j] {
			continue
		}
		rest = append(rest, PathChange{Path: d.path, Kind: Deleted, Submodule: d.submodule})
	}

	return rest, nil
}

func isSubmodule(mode filemode.FileMode) bool {
	return mode == filemode.Submodule
}

func modeCategory(mode filemode.FileMode) string {
	switch mode {
	case filemode.Dir:
		return "dir"
	case filemode.Symlink:
		return "symlink"
	case filemode.Submodule:
		return "submodule"
	default:
		return "file"
	}
}

func (r *Repository) treeOf(commit plumbing.Hash) (*object.Tree, error) {
	c, err := r.repo.CommitObject(commit)
	if err != nil {
		return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrapf(err, "failed to load commit %s", commit))
	}
	t, err := c.Tree()
	if err != nil {
		return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrapf(err, "failed to load tree for %s", commit))
	}
	return t, nil
}
