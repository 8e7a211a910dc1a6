// Package config implements the Configuration surface (spec §6
// "Configuration surface (summarized)"): it loads a YAML document,
// validates its shape against a JSON Schema, and converts it into the
// Go-native knobs internal/engine, internal/policy and internal/calver
// consume. It is the one place a resolution touches the filesystem for
// anything other than the git repository itself, following the
// teacher's pkg/configuration.NewManifest split between "read a YAML
// file" and "here is the typed shape of it".
package config

import (
	"fmt"
	"os"

	stdyaml "gopkg.in/yaml.v3"

	"github.com/monoverse/monoverse/internal/calver"
	"github.com/monoverse/monoverse/internal/commitclass"
	"github.com/monoverse/monoverse/internal/engerr"
	"github.com/monoverse/monoverse/internal/engine"
	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/internal/patterns"
	"github.com/monoverse/monoverse/internal/policy"
	"github.com/monoverse/monoverse/internal/validator"
	"github.com/monoverse/monoverse/internal/yaml"
	"github.com/monoverse/monoverse/pkg/version"
)

// Config is the fully-typed, validated configuration surface (spec §6
// table). Load is the only constructor; the zero value is not a valid
// configuration (TagPrefix defaults only get applied by Load).
type Config struct {
	TagPrefix               string
	BaseVersion             *version.Version
	PrereleaseType          string
	SkipTestProjects        bool
	SkipNonPackableProjects bool
	DefaultIncrement        model.BumpType
	Scheme                  model.Scheme

	CommitConventions CommitConventions
	ChangeDetection   ChangeDetection
	GitIntegration    GitIntegration
	VersionPolicy     VersionPolicy
	Constraints       Constraints
	CalVer            calver.Config

	// Projects holds per-project overrides keyed by project name (spec
	// §6 "projects.<name>.prereleaseType", "projects.<name>.forceVersion").
	Projects map[string]ProjectOverride
}

// ProjectOverride is one project's entry under the "projects" map.
type ProjectOverride struct {
	PrereleaseType string
	ForceVersion   *version.Version
}

// CommitConventions mirrors spec §6's "commitConventions.*".
type CommitConventions struct {
	Enabled       bool
	MajorPatterns []string
	MinorPatterns []string
	PatchPatterns []string
}

// ChangeDetection mirrors spec §6's "changeDetection.*".
type ChangeDetection struct {
	Enabled         bool
	IgnorePatterns  []string
	MajorPatterns   []string
	MinorPatterns   []string
	PatchPatterns   []string
	SourceOnlyMode  bool
	MinimumBumpType model.BumpType
}

// GitIntegration mirrors spec §6's "gitIntegration.*". ShallowCloneFallback
// and ValidateTagAncestry are both wired into internal/engine.Config by
// EngineConfig: the former substitutes for a shallow clone's missing
// history, the latter filters tags whose target commit isn't an
// ancestor of HEAD (spec §4.B).
type GitIntegration struct {
	ShallowCloneFallback    *version.Version
	SubmoduleSupport        bool
	CustomTagPatterns       []string
	ValidateTagAncestry     bool
	IncludeBranchInMetadata bool
}

// VersionPolicy mirrors spec §6's "versionPolicy.*", convertible to
// internal/policy.Config via ToPolicyConfig.
type VersionPolicy struct {
	LockStepAll bool
	Groups      []PolicyGroup
}

// PolicyGroup is one versionPolicy group entry.
type PolicyGroup struct {
	Name        string
	Patterns    []string
	Strategy    string // "independent" | "lockstep" | "grouped"
	BaseVersion *version.Version
}

// Constraints mirrors spec §6's "constraints.*", convertible to
// internal/validator.Config via ToValidatorConfig.
type Constraints struct {
	Blocked                  []version.Version
	MinimumVersion           *version.Version
	MaximumVersion           *version.Version
	AllowedRange             string
	RequireMonotonicIncrease bool
	RequireMajorApproval     bool
	CustomRules              []CustomRule
}

// CustomRule is one constraints.customRules entry.
type CustomRule struct {
	Name     string
	Kind     string // "pattern" | "range"
	Pattern  string
	Severity string // "error" | "warning"
}

// Load reads path as YAML, validates it against schemaJSON, and
// converts it into a Config. A schema violation is returned as an
// engerr ConfigurationInvalid error carrying the offending JSON
// pointer (spec §7 "ConfigurationInvalid").
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, engerr.Wrap(engerr.ConfigurationInvalid, fmt.Errorf("reading config %s: %w", path, err))
	}
	return parse(raw)
}

func parse(raw []byte) (*Config, error) {
	doc, err := yaml.Unmarshal(raw)
	if err != nil {
		return nil, engerr.Wrap(engerr.ConfigurationInvalid, fmt.Errorf("decoding config: %w", err))
	}

	if doc != nil {
		if err := validateSchema(doc); err != nil {
			return nil, engerr.Wrap(engerr.ConfigurationInvalid, err)
		}
	}

	var rc rawConfig
	if err := stdyaml.Unmarshal(raw, &rc); err != nil {
		return nil, engerr.Wrap(engerr.ConfigurationInvalid, fmt.Errorf("parsing config YAML: %w", err))
	}

	return rc.toConfig()
}

// EngineConfig builds the engine.Config for one project, applying its
// per-project prereleaseType override if one is configured.
func (c *Config) EngineConfig(projectName string) engine.Config {
	prerelease := c.PrereleaseType
	if ov, ok := c.Projects[projectName]; ok && ov.PrereleaseType != "" {
		prerelease = ov.PrereleaseType
	}

	return engine.Config{
		TagPrefix:              c.TagPrefix,
		ConfiguredBaseVersion:  c.BaseVersion,
		PatternRules:           c.patternRules(),
		PatternMatchingEnabled: c.ChangeDetection.Enabled,
		CommitRules:            c.commitRules(),
		DefaultIncrement:       c.DefaultIncrement,
		DependencyPaths:        nil,
		SubmoduleSupport:       c.GitIntegration.SubmoduleSupport,
		PrereleaseType:         prerelease,
		Validator:              c.ToValidatorConfig(),
		SkipTests:              c.SkipTestProjects,
		SkipNonPackable:        c.SkipNonPackableProjects,
		Scheme:                 c.Scheme,
		CalVer:                 c.CalVer,
		ValidateTagAncestry:    c.GitIntegration.ValidateTagAncestry,
		ShallowCloneFallback:   c.GitIntegration.ShallowCloneFallback,
	}
}

// ForceVersion returns the configured projects.<name>.forceVersion
// override, or nil.
func (c *Config) ForceVersion(projectName string) *version.Version {
	if ov, ok := c.Projects[projectName]; ok {
		return ov.ForceVersion
	}
	return nil
}

func (c *Config) patternRules() patterns.Rules {
	cd := c.ChangeDetection
	return patterns.Rules{
		Ignore:         cd.IgnorePatterns,
		Major:          cd.MajorPatterns,
		Minor:          cd.MinorPatterns,
		Patch:          cd.PatchPatterns,
		SourceOnlyMode: cd.SourceOnlyMode,
		MinimumBump:    cd.MinimumBumpType,
	}
}

func (c *Config) commitRules() commitclass.Rules {
	cc := c.CommitConventions
	return commitclass.Rules{
		MajorPatterns:       cc.MajorPatterns,
		MinorPatterns:       cc.MinorPatterns,
		PatchPatterns:       cc.PatchPatterns,
		ConventionalCommits: cc.Enabled,
	}
}

// ToValidatorConfig converts Constraints into internal/validator.Config.
func (c *Config) ToValidatorConfig() validator.Config {
	cons := c.Constraints
	out := validator.Config{
		Blocked:                  cons.Blocked,
		MinimumVersion:           cons.MinimumVersion,
		MaximumVersion:           cons.MaximumVersion,
		AllowedRange:             cons.AllowedRange,
		RequireMonotonicIncrease: cons.RequireMonotonicIncrease,
		RequireMajorApproval:     cons.RequireMajorApproval,
	}
	for _, r := range cons.CustomRules {
		rule := validator.CustomRule{Name: r.Name, Pattern: r.Pattern}
		if r.Kind == "range" {
			rule.Kind = validator.RuleRange
		}
		if r.Severity == "warning" {
			rule.Severity = validator.SeverityWarning
		}
		out.CustomRules = append(out.CustomRules, rule)
	}
	return out
}

// ValidateProjectGroups reports an error if any project in
// allProjectNames is matched by more than one versionPolicy group's
// patterns (spec §4.G "a project matched by patterns of two groups is
// a configuration error"). Intended to run once per resolution batch,
// after the full project list is known, rather than at Load time when
// only pattern text (not real project names) is available.
func (c *Config) ValidateProjectGroups(allProjectNames []string) error {
	for _, name := range allProjectNames {
		var matched []string
		for _, g := range c.VersionPolicy.Groups {
			for _, p := range g.Patterns {
				if p == "*" || patterns.Match(p, name) {
					matched = append(matched, g.Name)
					break
				}
			}
		}
		if len(matched) > 1 {
			return fmt.Errorf("project %q is matched by multiple version policy groups: %v", name, matched)
		}
	}
	return nil
}

// ToPolicyConfig converts VersionPolicy into internal/policy.Config,
// given every project name known to this resolution (spec §4.G
// "all projects (LockStep)").
func (c *Config) ToPolicyConfig(allProjectNames []string) policy.Config {
	out := policy.Config{
		LockStepAll:     c.VersionPolicy.LockStepAll,
		AllProjectNames: allProjectNames,
	}
	for _, g := range c.VersionPolicy.Groups {
		group := policy.Group{Name: g.Name, Patterns: g.Patterns, BaseVersion: g.BaseVersion}
		switch g.Strategy {
		case "lockstep":
			group.Strategy = policy.LockStep
		case "grouped":
			group.Strategy = policy.Grouped
		default:
			group.Strategy = policy.Independent
		}
		out.Groups = append(out.Groups, group)
	}
	return out
}
