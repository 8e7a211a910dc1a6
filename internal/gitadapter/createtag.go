package gitadapter

import (
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"

	"github.com/monoverse/monoverse/internal/engerr"
	"github.com/monoverse/monoverse/pkg/version"
)

// TagOutcome is the result of a CreateTag call (spec §4.B create_tag).
type TagOutcome int

const (
	TagCreated TagOutcome = iota
	TagAlreadyExists
	TagInvalidName
)

func (o TagOutcome) String() string {
	switch o {
	case TagCreated:
		return "Created"
	case TagAlreadyExists:
		return "AlreadyExists"
	default:
		return "InvalidName"
	}
}

// ValidateTagName rejects tag names containing "..", "@{", a
// backslash, a trailing ".", a trailing ".lock", or trailing
// whitespace (spec §4.B "Tag-name validation").
func ValidateTagName(name string) error {
	switch {
	case name == "":
		return errors.New("tag name must not be empty")
	case strings.Contains(name, ".."):
		return errors.New(`tag name must not contain ".."`)
	case strings.Contains(name, "@{"):
		return errors.New(`tag name must not contain "@{"`)
	case strings.Contains(name, `\`):
		return errors.New(`tag name must not contain a backslash`)
	case strings.HasSuffix(name, "."):
		return errors.New("tag name must not end with \".\"")
	case strings.HasSuffix(name, ".lock"):
		return errors.New(`tag name must not end with ".lock"`)
	case name != strings.TrimRight(name, " \t\n\r"):
		return errors.New("tag name must not end with whitespace")
	}
	return nil
}

// CreateTag creates an annotated tag named name pointing at commit,
// with the given message (spec §4.B create_tag). When dryRun is true,
// validation still runs but no ref is written.
func (r *Repository) CreateTag(name, message string, commit plumbing.Hash, dryRun bool) (TagOutcome, error) {
	if err := ValidateTagName(name); err != nil {
		return TagInvalidName, engerr.Wrap(engerr.TagCreateRefused, err)
	}
	versionPart := name[strings.LastIndex(name, "/")+1:]
	if !version.IsStrictSemVer(versionPart) {
		return TagInvalidName, engerr.Wrap(engerr.TagCreateRefused,
			errors.Errorf("tag %q's version component is not strict SemVer 2.0", name))
	}

	refName := plumbing.NewTagReferenceName(name)
	if _, err := r.repo.Reference(refName, false); err == nil {
		return TagAlreadyExists, engerr.Wrap(engerr.TagCreateRefused,
			errors.Errorf("tag %q already exists", name))
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return TagAlreadyExists, engerr.Wrap(engerr.GitOperationFailed,
			errors.Wrapf(err, "failed to check for existing tag %q", name))
	}

	if dryRun {
		return TagCreated, nil
	}

	opts := &git.CreateTagOptions{Message: message}
	if message == "" {
		opts.Message = name
	}
	if sig := r.tagSignature(); sig != nil {
		opts.Tagger = sig
	}

	if _, err := r.repo.CreateTag(name, commit, opts); err != nil {
		return TagAlreadyExists, engerr.Wrap(engerr.TagCreateRefused,
			errors.Wrapf(err, "failed to create tag %q", name))
	}

	return TagCreated, nil
}

// tagSignature builds a best-effort tagger signature from the
// repository's configured user, falling back to nil (go-git then
// tags without a tagger line, which is valid for lightweight-style
// annotated tags used purely for version bookkeeping).
func (r *Repository) tagSignature() *object.Signature {
	cfg, err := r.repo.Config()
	if err != nil || cfg.User.Name == "" {
		return nil
	}
	return &object.Signature{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
		When:  time.Now(),
	}
}
