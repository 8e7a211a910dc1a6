package calver_test

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/monoverse/monoverse/internal/calver"
	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/pkg/version"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFormatRecognizesAllHeads(t *testing.T) {
	for _, s := range []string{"YYYY.MM", "YYYY.0M", "YY.0M", "YYYY.WW"} {
		_, err := calver.ParseFormat(s)
		assert.NilError(t, err, s)
	}
	_, err := calver.ParseFormat("nonsense")
	assert.Assert(t, err != nil)
}

func TestHeadYYYYMM(t *testing.T) {
	major, minor := calver.Head(calver.FormatYYYYMM, date(2026, time.March, 15))
	assert.Equal(t, major, 2026)
	assert.Equal(t, minor, 3)
}

func TestHeadYY0M(t *testing.T) {
	major, minor := calver.Head(calver.FormatYY0M, date(2026, time.March, 15))
	assert.Equal(t, major, 26)
	assert.Equal(t, minor, 3)
}

func TestHeadYYYYWWUsesISOWeek(t *testing.T) {
	// 2026-01-01 is a Thursday, so ISO week 1 of 2026 contains it.
	major, minor := calver.Head(calver.FormatYYYYWW, date(2026, time.January, 1))
	assert.Equal(t, major, 2026)
	assert.Equal(t, minor, 1)
}

func TestDerivePatchNoPriorIsZero(t *testing.T) {
	p := calver.DerivePatch(calver.Config{}, nil, 2026, 3, model.BumpPatch)
	assert.Equal(t, p, 0)
}

func TestDerivePatchSamePeriodKeepsPriorWhenNoBump(t *testing.T) {
	prior := version.Version{Major: 2026, Minor: 3, Patch: 4}
	p := calver.DerivePatch(calver.Config{}, &prior, 2026, 3, model.BumpNone)
	assert.Equal(t, p, 4)
}

func TestDerivePatchSamePeriodAppliesBump(t *testing.T) {
	prior := version.Version{Major: 2026, Minor: 3, Patch: 4}
	p := calver.DerivePatch(calver.Config{}, &prior, 2026, 3, model.BumpPatch)
	assert.Equal(t, p, 5)
}

func TestDerivePatchNewPeriodResetsWhenConfigured(t *testing.T) {
	prior := version.Version{Major: 2026, Minor: 2, Patch: 9}
	p := calver.DerivePatch(calver.Config{ResetPatchPeriodically: true}, &prior, 2026, 3, model.BumpPatch)
	assert.Equal(t, p, 0)
}

func TestDerivePatchNewPeriodIncrementsWhenNotResetting(t *testing.T) {
	prior := version.Version{Major: 2026, Minor: 2, Patch: 9}
	p := calver.DerivePatch(calver.Config{}, &prior, 2026, 3, model.BumpPatch)
	assert.Equal(t, p, 10)
}

func TestFormatVersionZeroPadsMinor(t *testing.T) {
	cfg := calver.Config{}
	assert.Equal(t, cfg.FormatVersion(2026, 3, 0), "2026.03.0")
}

func TestFormatVersionCustomSeparator(t *testing.T) {
	cfg := calver.Config{Separator: "-"}
	assert.Equal(t, cfg.FormatVersion(2026, 12, 5), "2026-12-5")
}

func TestComputeEndToEnd(t *testing.T) {
	cfg := calver.Config{Format: calver.FormatYYYYMM}
	v := calver.Compute(cfg, date(2026, time.July, 30), nil, model.BumpPatch)
	assert.Equal(t, v.Major, 2026)
	assert.Equal(t, v.Minor, 7)
	assert.Equal(t, v.Patch, 0)
}
