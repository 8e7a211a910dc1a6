package commitclass_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/monoverse/monoverse/internal/commitclass"
	"github.com/monoverse/monoverse/internal/model"
)

func TestClassifyBangMeansBreaking(t *testing.T) {
	bump := commitclass.Classify(commitclass.Rules{}, "feat(api)!: drop v1 endpoints")
	assert.Equal(t, bump, model.BumpMajor)
}

func TestClassifyBreakingChangeBodyMarker(t *testing.T) {
	msg := "fix: patch something\n\nBREAKING CHANGE: removes the old config key"
	bump := commitclass.Classify(commitclass.Rules{}, msg)
	assert.Equal(t, bump, model.BumpMajor)
}

func TestClassifyIgnoredType(t *testing.T) {
	bump := commitclass.Classify(commitclass.Rules{}, "chore: bump deps")
	assert.Equal(t, bump, model.BumpNone)
}

func TestClassifyDefaultPatch(t *testing.T) {
	bump := commitclass.Classify(commitclass.Rules{}, "feat: add new widget")
	assert.Equal(t, bump, model.BumpPatch)
}

func TestClassifyConfiguredMinorPattern(t *testing.T) {
	rules := commitclass.Rules{MinorPatterns: []string{"[minor]"}}
	bump := commitclass.Classify(rules, "fix: small thing [MINOR]")
	assert.Equal(t, bump, model.BumpMinor)
}

func TestClassifyConfiguredMajorPatternBeatsType(t *testing.T) {
	rules := commitclass.Rules{MajorPatterns: []string{"rewrite"}}
	bump := commitclass.Classify(rules, "chore: full rewrite of the module")
	assert.Equal(t, bump, model.BumpMajor)
}

func TestAggregateRangeTakesMaximum(t *testing.T) {
	rules := commitclass.Rules{ConventionalCommits: true}
	bump := commitclass.AggregateRange(rules, []commitclass.Commit{
		{Message: "chore: cleanup"},
		{Message: "feat: widget"},
		{Message: "fix!: urgent"},
	})
	assert.Equal(t, bump, model.BumpMajor)
}

func TestAggregateRangeDisabledConventionalCommitsYieldsPatch(t *testing.T) {
	rules := commitclass.Rules{ConventionalCommits: false}
	bump := commitclass.AggregateRange(rules, []commitclass.Commit{{Message: "anything at all"}})
	assert.Equal(t, bump, model.BumpPatch)
}

func TestAggregateRangeEmptyIsNone(t *testing.T) {
	bump := commitclass.AggregateRange(commitclass.Rules{ConventionalCommits: true}, nil)
	assert.Equal(t, bump, model.BumpNone)
}
