package patterns_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/internal/patterns"
)

func TestMatchStar(t *testing.T) {
	assert.Assert(t, patterns.Match("src/*.go", "src/main.go"))
	assert.Assert(t, !patterns.Match("src/*.go", "src/pkg/main.go"))
}

func TestMatchQuestion(t *testing.T) {
	assert.Assert(t, patterns.Match("a?c", "abc"))
	assert.Assert(t, !patterns.Match("a?c", "ac"))
	assert.Assert(t, !patterns.Match("a?c", "a/c"))
}

func TestMatchDoubleStarSlashZeroOrMoreDirs(t *testing.T) {
	assert.Assert(t, patterns.Match("**/README.md", "README.md"))
	assert.Assert(t, patterns.Match("**/README.md", "docs/README.md"))
	assert.Assert(t, patterns.Match("**/README.md", "docs/sub/README.md"))
	assert.Assert(t, !patterns.Match("**/README.md", "docs/README.md.bak"))
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	assert.Assert(t, patterns.Match("SRC/*.GO", "src/main.go"))
}

func TestMatchNormalizesBackslashes(t *testing.T) {
	assert.Assert(t, patterns.Match(`src\*.go`, "src/main.go"))
}

func TestClassifyOrderIgnoreWins(t *testing.T) {
	rules := patterns.Rules{
		Ignore: []string{"**/*.md"},
		Major:  []string{"**/*.md"}, // same path would also hit major
	}
	c := patterns.Classify(rules, []string{"README.md"})
	assert.Equal(t, len(c.Ignored), 1)
	assert.Equal(t, len(c.Major), 0)
}

func TestClassifyPicksHighestNonEmptyBucket(t *testing.T) {
	rules := patterns.Rules{
		Major: []string{"src/api/**/*.go"},
		Minor: []string{"src/**/*.go"},
		Patch: []string{"**/*.go"},
	}
	c := patterns.Classify(rules, []string{"src/api/handler.go", "src/util/helper.go"})
	assert.Equal(t, c.RequiredBump, model.BumpMajor)
}

func TestClassifyAllIgnoredYieldsNoneAndShouldIgnore(t *testing.T) {
	rules := patterns.Rules{Ignore: []string{"**/*.md"}}
	c := patterns.Classify(rules, []string{"README.md", "docs/CHANGELOG.md"})
	assert.Equal(t, c.RequiredBump, model.BumpNone)
	assert.Assert(t, c.ShouldIgnore)
}

func TestClassifyUnclassifiedFallsBackToMinimumBump(t *testing.T) {
	rules := patterns.Rules{MinimumBump: model.BumpMinor}
	c := patterns.Classify(rules, []string{"random.txt"})
	assert.Equal(t, len(c.Unclassified), 1)
	assert.Equal(t, c.RequiredBump, model.BumpMinor)
}

func TestClassifyUnclassifiedDefaultsToPatch(t *testing.T) {
	rules := patterns.Rules{}
	c := patterns.Classify(rules, []string{"random.txt"})
	assert.Equal(t, c.RequiredBump, model.BumpPatch)
}

func TestClassifyMinimumBumpFloorsAHigherHit(t *testing.T) {
	rules := patterns.Rules{Patch: []string{"**/*.go"}, MinimumBump: model.BumpMinor}
	c := patterns.Classify(rules, []string{"main.go"})
	assert.Equal(t, c.RequiredBump, model.BumpMinor)
}

func TestClassifyNeverCountsPathInMoreThanOneBucket(t *testing.T) {
	rules := patterns.Rules{
		Major: []string{"**/*.go"},
		Minor: []string{"**/*.go"},
	}
	c := patterns.Classify(rules, []string{"main.go"})
	assert.Equal(t, len(c.Major), 1)
	assert.Equal(t, len(c.Minor), 0)
}
