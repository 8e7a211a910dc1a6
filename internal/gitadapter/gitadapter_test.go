package gitadapter

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"gotest.tools/v3/assert"

	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/pkg/slogext"
)

// testRepo is a thin harness around an in-memory go-git repository, so
// gitadapter tests never touch disk or shell out to a real git binary
// (spec §8's test-tooling expansion). Living in package gitadapter
// (rather than gitadapter_test) lets it build a Repository directly
// around the in-memory *git.Repository, since Open only knows how to
// open a path on disk.
type testRepo struct {
	t    *testing.T
	repo *git.Repository
	wt   *git.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	storer := memory.NewStorage()
	fs := memfs.New()
	repo, err := git.Init(storer, fs)
	assert.NilError(t, err)
	wt, err := repo.Worktree()
	assert.NilError(t, err)
	return &testRepo{t: t, repo: repo, wt: wt}
}

func (tr *testRepo) handle() *Repository {
	return &Repository{repo: tr.repo, path: "memory", log: slogext.NewSilent()}
}

func (tr *testRepo) commit(path, content, message string) plumbing.Hash {
	tr.t.Helper()
	f, err := tr.wt.Filesystem.Create(path)
	assert.NilError(tr.t, err)
	_, err = f.Write([]byte(content))
	assert.NilError(tr.t, err)
	assert.NilError(tr.t, f.Close())

	_, err = tr.wt.Add(path)
	assert.NilError(tr.t, err)

	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Unix(1700000000, 0)}
	hash, err := tr.wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	assert.NilError(tr.t, err)
	return hash
}

func (tr *testRepo) tag(name string, hash plumbing.Hash) {
	tr.t.Helper()
	_, err := tr.repo.CreateTag(name, hash, nil)
	assert.NilError(tr.t, err)
}

func (tr *testRepo) branch(name string, hash plumbing.Hash) {
	tr.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	assert.NilError(tr.t, tr.repo.Storer.SetReference(ref))
}

func TestBranchTypeOfClassification(t *testing.T) {
	cases := map[string]model.BranchKind{
		"main":             model.BranchMain,
		"master":           model.BranchMain,
		"dev":              model.BranchDev,
		"develop":          model.BranchDev,
		"development":      model.BranchDev,
		"release/1.2":      model.BranchRelease,
		"release-1.2.3":    model.BranchRelease,
		"v1.2":             model.BranchRelease,
		"feature/foo":      model.BranchFeature,
		"some-random-name": model.BranchFeature,
	}
	for name, want := range cases {
		got := BranchTypeOf(name)
		assert.Equal(t, got.Kind, want, name)
	}
}

func TestValidateTagName(t *testing.T) {
	good := []string{"v1.0.0", "billing/v1.2.0"}
	bad := []string{"", "v1..0", "ref@{1}", `v1\0`, "v1.0.", "v1.0.lock", "v1.0 "}
	for _, n := range good {
		assert.NilError(t, ValidateTagName(n), n)
	}
	for _, n := range bad {
		assert.Assert(t, ValidateTagName(n) != nil, n)
	}
}

func TestExtractReleaseVersion(t *testing.T) {
	v, err := ExtractReleaseVersion("release/v1.2.3", "v")
	assert.NilError(t, err)
	assert.Equal(t, v.String(), "1.2.3")

	v, err = ExtractReleaseVersion("release-2.1", "v")
	assert.NilError(t, err)
	assert.Equal(t, v.String(), "2.1.0")
}

func TestCurrentBranchAndHeadSHA(t *testing.T) {
	tr := newTestRepo(t)
	c1 := tr.commit("a.txt", "one", "first")
	tr.branch("main", c1)
	assert.NilError(t, tr.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))))

	repo := tr.handle()
	name, detached, err := repo.CurrentBranch()
	assert.NilError(t, err)
	assert.Assert(t, !detached)
	assert.Equal(t, name, "main")

	sha, err := repo.HeadSHA()
	assert.NilError(t, err)
	assert.Equal(t, sha, c1.String())
}

func TestTagsEnumeratesAndPeels(t *testing.T) {
	tr := newTestRepo(t)
	c1 := tr.commit("a.txt", "one", "first")
	c2 := tr.commit("a.txt", "two", "second")
	tr.tag("v1.0.0", c1)
	tr.tag("billing/v1.0.0", c2)

	repo := tr.handle()

	all, err := repo.Tags("")
	assert.NilError(t, err)
	assert.Equal(t, len(all), 2)

	scoped, err := repo.Tags("billing/")
	assert.NilError(t, err)
	assert.Equal(t, len(scoped), 1)
	assert.Equal(t, scoped[0].Label, "billing/v1.0.0")
	assert.Equal(t, scoped[0].Commit, c2)
}

func TestCommitHeightCountsNewCommits(t *testing.T) {
	tr := newTestRepo(t)
	c1 := tr.commit("a.txt", "one", "first")
	c2 := tr.commit("a.txt", "two", "second")
	c3 := tr.commit("a.txt", "three", "third")

	repo := tr.handle()

	height, err := repo.CommitHeight(c1, c3)
	assert.NilError(t, err)
	assert.Equal(t, height, 2)

	same, err := repo.CommitHeight(c2, c2)
	assert.NilError(t, err)
	assert.Equal(t, same, 0)
}

func TestDiffPathsDetectsAddModifyDeleteAndRename(t *testing.T) {
	tr := newTestRepo(t)
	c1 := tr.commit("keep.txt", "unchanged", "base")
	_ = tr.commit("old-name.txt", "renamed-content", "add rename source")

	// Overwrite to force a content change on keep.txt, add a brand new
	// file, delete old-name.txt's path by "renaming" it: go-git has no
	// rename tracking, so a rename appears as a delete at old-name.txt
	// and an add at new-name.txt sharing a blob hash.
	f, err := tr.wt.Filesystem.Create("keep.txt")
	assert.NilError(t, err)
	_, err = f.Write([]byte("changed"))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())
	_, err = tr.wt.Add("keep.txt")
	assert.NilError(t, err)

	assert.NilError(t, tr.wt.Filesystem.Remove("old-name.txt"))
	_, err = tr.wt.Remove("old-name.txt")
	assert.NilError(t, err)

	f, err = tr.wt.Filesystem.Create("new-name.txt")
	assert.NilError(t, err)
	_, err = f.Write([]byte("renamed-content"))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())
	_, err = tr.wt.Add("new-name.txt")
	assert.NilError(t, err)

	f, err = tr.wt.Filesystem.Create("brand-new.txt")
	assert.NilError(t, err)
	_, err = f.Write([]byte("new"))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())
	_, err = tr.wt.Add("brand-new.txt")
	assert.NilError(t, err)

	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Unix(1700000001, 0)}
	c2, err := tr.wt.Commit("rework", &git.CommitOptions{Author: sig, Committer: sig})
	assert.NilError(t, err)

	repo := tr.handle()
	changes, err := repo.DiffPaths(c1, c2)
	assert.NilError(t, err)

	byPath := map[string]ChangeKind{}
	for _, c := range changes {
		byPath[c.Path] = c.Kind
	}

	assert.Equal(t, byPath["keep.txt"], Modified)
	assert.Equal(t, byPath["brand-new.txt"], Added)
	assert.Equal(t, byPath["new-name.txt"], Renamed)
	_, stillDeleted := byPath["old-name.txt"]
	assert.Assert(t, !stillDeleted)
}

func TestCreateTagValidatesAndRefusesDuplicate(t *testing.T) {
	tr := newTestRepo(t)
	c1 := tr.commit("a.txt", "one", "first")
	repo := tr.handle()

	outcome, err := repo.CreateTag("v1..0", "bad name", c1, false)
	assert.Assert(t, err != nil)
	assert.Equal(t, outcome, TagInvalidName)

	outcome, err = repo.CreateTag("v1.0.0", "release", c1, false)
	assert.NilError(t, err)
	assert.Equal(t, outcome, TagCreated)

	outcome, err = repo.CreateTag("v1.0.0", "release again", c1, false)
	assert.Assert(t, err != nil)
	assert.Equal(t, outcome, TagAlreadyExists)
}

func TestCreateTagDryRunWritesNothing(t *testing.T) {
	tr := newTestRepo(t)
	c1 := tr.commit("a.txt", "one", "first")
	repo := tr.handle()

	outcome, err := repo.CreateTag("v2.0.0", "release", c1, true)
	assert.NilError(t, err)
	assert.Equal(t, outcome, TagCreated)

	_, err = repo.repo.Reference(plumbing.NewTagReferenceName("v2.0.0"), false)
	assert.Assert(t, err != nil)
}

func TestIsReachable(t *testing.T) {
	tr := newTestRepo(t)
	c1 := tr.commit("a.txt", "one", "first")
	c2 := tr.commit("a.txt", "two", "second")
	repo := tr.handle()

	ok, err := repo.IsReachable(c1, c2)
	assert.NilError(t, err)
	assert.Assert(t, ok)

	ok, err = repo.IsReachable(c2, c1)
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}
