package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/monoverse/monoverse/internal/engerr"
	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/internal/policy"
	"github.com/monoverse/monoverse/pkg/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "monoverse.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaultsAndParsesValues(t *testing.T) {
	path := writeConfig(t, `
tagPrefix: v
baseVersion: "0.2.0"
prereleaseType: beta
defaultIncrement: minor
commitConventions:
  enabled: true
  major: ["BREAKING CHANGE"]
  minor: ["feat"]
  patch: ["fix"]
changeDetection:
  enabled: true
  ignore: ["**/*.md"]
  minimumBumpType: patch
constraints:
  requireMajorApproval: true
  allowedRange: "3.x.x"
projects:
  billing:
    prereleaseType: rc
`)

	cfg, err := config.Load(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.TagPrefix, "v")
	assert.Equal(t, cfg.BaseVersion.String(), "0.2.0")
	assert.Equal(t, cfg.DefaultIncrement, model.BumpMinor)
	assert.Equal(t, cfg.ChangeDetection.MinimumBumpType, model.BumpPatch)
	assert.Equal(t, cfg.Constraints.RequireMajorApproval, true)

	eng := cfg.EngineConfig("billing")
	assert.Equal(t, eng.PrereleaseType, "rc")
	assert.Equal(t, eng.TagPrefix, "v")
	assert.Equal(t, eng.Validator.RequireMajorApproval, true)

	other := cfg.EngineConfig("other-project")
	assert.Equal(t, other.PrereleaseType, "beta")
}

func TestLoadDefaultsTagPrefixWhenUnset(t *testing.T) {
	path := writeConfig(t, `prereleaseType: alpha`)

	cfg, err := config.Load(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.TagPrefix, "v")
}

func TestLoadRejectsUnknownTopLevelKey(t *testing.T) {
	path := writeConfig(t, "notARealOption: true\n")

	_, err := config.Load(path)
	assert.Assert(t, err != nil)
	assert.Equal(t, engerr.KindOf(err), engerr.ConfigurationInvalid)
}

func TestLoadRejectsInvalidEnumValue(t *testing.T) {
	path := writeConfig(t, "prereleaseType: nightly\n")

	_, err := config.Load(path)
	assert.Assert(t, err != nil)
	assert.Equal(t, engerr.KindOf(err), engerr.ConfigurationInvalid)
}

func TestLoadRejectsMalformedConstraintVersion(t *testing.T) {
	path := writeConfig(t, "constraints:\n  minimumVersion: \"not-a-version\"\n")

	_, err := config.Load(path)
	assert.Assert(t, err != nil)
}

func TestLoadRejectsGroupWithNoPatterns(t *testing.T) {
	path := writeConfig(t, `
versionPolicy:
  groups:
    - name: empty-group
      patterns: []
`)

	_, err := config.Load(path)
	assert.Assert(t, err != nil)
}

func TestToPolicyConfigConvertsGroupsAndStrategies(t *testing.T) {
	path := writeConfig(t, `
versionPolicy:
  lockStepAll: false
  groups:
    - name: billing-suite
      patterns: ["billing-*"]
      strategy: lockstep
      baseVersion: "1.0.0"
`)

	cfg, err := config.Load(path)
	assert.NilError(t, err)

	pc := cfg.ToPolicyConfig([]string{"billing-api", "billing-worker", "unrelated"})
	assert.Equal(t, len(pc.Groups), 1)
	assert.Equal(t, pc.Groups[0].Strategy, policy.LockStep)
	assert.Equal(t, pc.Groups[0].BaseVersion.String(), "1.0.0")

	linked := policy.LinkedProjects("billing-api", pc)
	assert.Equal(t, len(linked), 2)
}

func TestValidateProjectGroupsCatchesOverlap(t *testing.T) {
	path := writeConfig(t, `
versionPolicy:
  groups:
    - name: a
      patterns: ["shared-*"]
    - name: b
      patterns: ["shared-*"]
`)

	cfg, err := config.Load(path)
	assert.NilError(t, err)

	err = cfg.ValidateProjectGroups([]string{"shared-lib"})
	assert.ErrorContains(t, err, "multiple version policy groups")
}

func TestForceVersionReturnsPerProjectOverride(t *testing.T) {
	path := writeConfig(t, `
projects:
  billing:
    forceVersion: "9.9.9"
`)

	cfg, err := config.Load(path)
	assert.NilError(t, err)

	fv := cfg.ForceVersion("billing")
	assert.Assert(t, fv != nil)
	assert.Equal(t, fv.String(), "9.9.9")
	assert.Assert(t, cfg.ForceVersion("other") == nil)
}
