package validator_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/internal/validator"
	"github.com/monoverse/monoverse/pkg/version"
)

func TestCheckPassesWithNoRules(t *testing.T) {
	result := validator.Check(validator.Config{}, version.MustParse("1.0.0"), nil, model.BumpPatch)
	assert.Assert(t, result.IsValid)
	assert.Equal(t, len(result.Errors), 0)
}

func TestCheckRejectsBlockedVersion(t *testing.T) {
	cfg := validator.Config{Blocked: []version.Version{version.MustParse("1.2.3")}}
	result := validator.Check(cfg, version.MustParse("1.2.3"), nil, model.BumpPatch)
	assert.Assert(t, !result.IsValid)
	assert.Equal(t, len(result.Errors), 1)
}

func TestCheckRejectsBelowMinimum(t *testing.T) {
	min := version.MustParse("2.0.0")
	cfg := validator.Config{MinimumVersion: &min}
	result := validator.Check(cfg, version.MustParse("1.9.0"), nil, model.BumpPatch)
	assert.Assert(t, !result.IsValid)
}

func TestCheckRejectsAboveMaximum(t *testing.T) {
	max := version.MustParse("2.0.0")
	cfg := validator.Config{MaximumVersion: &max}
	result := validator.Check(cfg, version.MustParse("2.1.0"), nil, model.BumpPatch)
	assert.Assert(t, !result.IsValid)
}

func TestCheckAllowedRangeWildcard(t *testing.T) {
	cfg := validator.Config{AllowedRange: "3.x.x"}
	bad := validator.Check(cfg, version.MustParse("2.9.9"), nil, model.BumpPatch)
	assert.Assert(t, !bad.IsValid)

	good := validator.Check(cfg, version.MustParse("3.4.1"), nil, model.BumpPatch)
	assert.Assert(t, good.IsValid)
}

func TestCheckMonotonicIncreaseAgainstSameScopePrevious(t *testing.T) {
	prev := version.MustParse("1.5.0")
	cfg := validator.Config{RequireMonotonicIncrease: true}

	regressed := validator.Check(cfg, version.MustParse("1.4.0"), &prev, model.BumpPatch)
	assert.Assert(t, !regressed.IsValid)

	advanced := validator.Check(cfg, version.MustParse("1.6.0"), &prev, model.BumpPatch)
	assert.Assert(t, advanced.IsValid)
}

func TestCheckRequiresMajorApproval(t *testing.T) {
	cfg := validator.Config{RequireMajorApproval: true}
	blocked := validator.Check(cfg, version.MustParse("2.0.0"), nil, model.BumpMajor)
	assert.Assert(t, !blocked.IsValid)

	cfg.MajorApproved = true
	approved := validator.Check(cfg, version.MustParse("2.0.0"), nil, model.BumpMajor)
	assert.Assert(t, approved.IsValid)
}

func TestCheckAggregatesMultipleFailures(t *testing.T) {
	min := version.MustParse("5.0.0")
	cfg := validator.Config{
		MinimumVersion:           &min,
		RequireMajorApproval:     true,
		RequireMonotonicIncrease: true,
	}
	prev := version.MustParse("2.0.0")
	result := validator.Check(cfg, version.MustParse("1.0.0"), &prev, model.BumpMajor)
	assert.Assert(t, !result.IsValid)
	assert.Assert(t, len(result.Errors) >= 3)
}

func TestCheckCustomRuleWarningDoesNotFailValidation(t *testing.T) {
	cfg := validator.Config{CustomRules: []validator.CustomRule{
		{Name: "prefer-even-minor", Kind: validator.RuleRange, Pattern: "1.2.x", Severity: validator.SeverityWarning},
	}}
	result := validator.Check(cfg, version.MustParse("1.9.0"), nil, model.BumpPatch)
	assert.Assert(t, result.IsValid)
	assert.Equal(t, len(result.Warnings), 1)
}

func TestCheckCustomRuleErrorFailsValidation(t *testing.T) {
	cfg := validator.Config{CustomRules: []validator.CustomRule{
		{Name: "must-be-1.2.x", Kind: validator.RuleRange, Pattern: "1.2.x", Severity: validator.SeverityError},
	}}
	result := validator.Check(cfg, version.MustParse("1.9.0"), nil, model.BumpPatch)
	assert.Assert(t, !result.IsValid)
}
