package gitadapter

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"

	"github.com/monoverse/monoverse/internal/engerr"
)

// RawTag is a tag reference as discovered by the Git Adapter, before
// the Tag Resolver (spec §4.C) applies any domain-specific parsing of
// the label into a scoped, versioned VersionTag.
type RawTag struct {
	// Label is the tag name, e.g. "v1.2.0" or "billing/v1.2.0".
	Label string

	// Commit is the commit the tag ultimately points to: annotated
	// tags are peeled to their target commit (spec §4.B "annotated
	// tags are peeled to their target commit").
	Commit plumbing.Hash

	// Annotated is true if this was an annotated tag object rather
	// than a lightweight ref.
	Annotated bool
}

// Tags enumerates all tags whose label begins with labelPrefix (an
// empty prefix matches every tag). Annotated tags are peeled to their
// target commit (spec §4.B tags()).
func (r *Repository) Tags(labelPrefix string) ([]RawTag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to enumerate tags"))
	}
	defer iter.Close()

	var out []RawTag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		label := strings.TrimPrefix(ref.Name().String(), "refs/tags/")
		if labelPrefix != "" && !strings.HasPrefix(label, labelPrefix) {
			return nil
		}

		commit, annotated, peelErr := r.peelTag(ref.Hash())
		if peelErr != nil {
			// A tag we cannot peel is skipped, not fatal (ParseFailure
			// semantics: logged and skipped per spec §7).
			r.log.Warnf("skipping unpeelable tag %s: %v", label, peelErr)
			return nil
		}

		out = append(out, RawTag{Label: label, Commit: commit, Annotated: annotated})
		return nil
	})
	if err != nil {
		return nil, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(err, "failed to walk tag refs"))
	}

	return out, nil
}

// peelTag resolves hash to the commit it ultimately references,
// following a tag object if hash points to one (annotated tag).
func (r *Repository) peelTag(hash plumbing.Hash) (plumbing.Hash, bool, error) {
	if tagObj, err := r.repo.TagObject(hash); err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return plumbing.ZeroHash, true, err
		}
		return commit.Hash, true, nil
	}

	// Not a tag object: either a lightweight tag (points straight at a
	// commit) or a tag of a non-commit object, which we don't support.
	if _, err := r.repo.CommitObject(hash); err != nil {
		return plumbing.ZeroHash, false, err
	}
	return hash, false, nil
}
