package config

import (
	"fmt"

	"github.com/monoverse/monoverse/internal/calver"
	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/pkg/version"
)

// rawConfig is the literal YAML shape (spec §6's configuration
// surface table), kept separate from Config so yaml.v3 unmarshals
// directly into plain strings/slices and toConfig does all of the
// parsing (version strings, enum strings) with a real error path
// instead of leaning on yaml tags to coerce domain types.
type rawConfig struct {
	TagPrefix               string `yaml:"tagPrefix"`
	BaseVersion             string `yaml:"baseVersion"`
	PrereleaseType          string `yaml:"prereleaseType"`
	SkipTestProjects        bool   `yaml:"skipTestProjects"`
	SkipNonPackableProjects bool   `yaml:"skipNonPackableProjects"`
	DefaultIncrement        string `yaml:"defaultIncrement"`
	Scheme                  string `yaml:"scheme"`

	CommitConventions struct {
		Enabled bool     `yaml:"enabled"`
		Major   []string `yaml:"major"`
		Minor   []string `yaml:"minor"`
		Patch   []string `yaml:"patch"`
	} `yaml:"commitConventions"`

	ChangeDetection struct {
		Enabled         bool     `yaml:"enabled"`
		Ignore          []string `yaml:"ignore"`
		Major           []string `yaml:"major"`
		Minor           []string `yaml:"minor"`
		Patch           []string `yaml:"patch"`
		SourceOnlyMode  bool     `yaml:"sourceOnlyMode"`
		MinimumBumpType string   `yaml:"minimumBumpType"`
	} `yaml:"changeDetection"`

	GitIntegration struct {
		ShallowCloneFallback    string   `yaml:"shallowCloneFallback"`
		SubmoduleSupport        bool     `yaml:"submoduleSupport"`
		CustomTagPatterns       []string `yaml:"customTagPatterns"`
		ValidateTagAncestry     bool     `yaml:"validateTagAncestry"`
		IncludeBranchInMetadata bool     `yaml:"includeBranchInMetadata"`
	} `yaml:"gitIntegration"`

	VersionPolicy struct {
		LockStepAll bool `yaml:"lockStepAll"`
		Groups      []struct {
			Name        string   `yaml:"name"`
			Patterns    []string `yaml:"patterns"`
			Strategy    string   `yaml:"strategy"`
			BaseVersion string   `yaml:"baseVersion"`
		} `yaml:"groups"`
	} `yaml:"versionPolicy"`

	Constraints struct {
		Blocked                  []string `yaml:"blocked"`
		MinimumVersion           string   `yaml:"minimumVersion"`
		MaximumVersion           string   `yaml:"maximumVersion"`
		AllowedRange             string   `yaml:"allowedRange"`
		RequireMonotonicIncrease bool     `yaml:"requireMonotonicIncrease"`
		RequireMajorApproval     bool     `yaml:"requireMajorApproval"`
		CustomRules              []struct {
			Name     string `yaml:"name"`
			Kind     string `yaml:"kind"`
			Pattern  string `yaml:"pattern"`
			Severity string `yaml:"severity"`
		} `yaml:"customRules"`
	} `yaml:"constraints"`

	CalVer struct {
		Format                 string `yaml:"format"`
		Separator              string `yaml:"separator"`
		ResetPatchPeriodically bool   `yaml:"resetPatchPeriodically"`
	} `yaml:"calVer"`

	Projects map[string]struct {
		PrereleaseType string `yaml:"prereleaseType"`
		ForceVersion   string `yaml:"forceVersion"`
	} `yaml:"projects"`
}

// toConfig converts the raw YAML shape into Config, applying spec §6's
// documented defaults (tagPrefix "v"). A non-empty baseVersion that does
// not parse is replaced by 0.1.0; no error is returned and no warning is
// logged for it. An absent baseVersion leaves BaseVersion nil.
func (rc rawConfig) toConfig() (*Config, error) {
	c := &Config{
		TagPrefix:               rc.TagPrefix,
		PrereleaseType:          rc.PrereleaseType,
		SkipTestProjects:        rc.SkipTestProjects,
		SkipNonPackableProjects: rc.SkipNonPackableProjects,
	}
	if c.TagPrefix == "" {
		c.TagPrefix = "v"
	}

	if rc.BaseVersion != "" {
		if v, err := version.Parse(rc.BaseVersion); err == nil {
			c.BaseVersion = &v
		} else {
			def := version.MustParse("0.1.0")
			c.BaseVersion = &def
		}
	}

	bump, err := parseBump(rc.DefaultIncrement)
	if err != nil {
		return nil, fmt.Errorf("defaultIncrement: %w", err)
	}
	c.DefaultIncrement = bump

	if rc.Scheme == "CalVer" {
		c.Scheme = model.SchemeCalVer
	}

	c.CommitConventions = CommitConventions{
		Enabled:       rc.CommitConventions.Enabled,
		MajorPatterns: rc.CommitConventions.Major,
		MinorPatterns: rc.CommitConventions.Minor,
		PatchPatterns: rc.CommitConventions.Patch,
	}

	minBump, err := parseBump(rc.ChangeDetection.MinimumBumpType)
	if err != nil {
		return nil, fmt.Errorf("changeDetection.minimumBumpType: %w", err)
	}
	c.ChangeDetection = ChangeDetection{
		Enabled:         rc.ChangeDetection.Enabled,
		IgnorePatterns:  rc.ChangeDetection.Ignore,
		MajorPatterns:   rc.ChangeDetection.Major,
		MinorPatterns:   rc.ChangeDetection.Minor,
		PatchPatterns:   rc.ChangeDetection.Patch,
		SourceOnlyMode:  rc.ChangeDetection.SourceOnlyMode,
		MinimumBumpType: minBump,
	}

	c.GitIntegration = GitIntegration{
		SubmoduleSupport:        rc.GitIntegration.SubmoduleSupport,
		CustomTagPatterns:       rc.GitIntegration.CustomTagPatterns,
		ValidateTagAncestry:     rc.GitIntegration.ValidateTagAncestry,
		IncludeBranchInMetadata: rc.GitIntegration.IncludeBranchInMetadata,
	}
	if rc.GitIntegration.ShallowCloneFallback != "" {
		v, err := version.Parse(rc.GitIntegration.ShallowCloneFallback)
		if err != nil {
			return nil, fmt.Errorf("gitIntegration.shallowCloneFallback: %w", err)
		}
		c.GitIntegration.ShallowCloneFallback = &v
	}

	c.VersionPolicy.LockStepAll = rc.VersionPolicy.LockStepAll
	for _, g := range rc.VersionPolicy.Groups {
		if len(g.Patterns) == 0 {
			return nil, fmt.Errorf("versionPolicy: group %q has no project patterns", g.Name)
		}
		group := PolicyGroup{Name: g.Name, Patterns: g.Patterns, Strategy: g.Strategy}
		if g.BaseVersion != "" {
			v, err := version.Parse(g.BaseVersion)
			if err != nil {
				return nil, fmt.Errorf("versionPolicy: group %q baseVersion: %w", g.Name, err)
			}
			group.BaseVersion = &v
		}
		c.VersionPolicy.Groups = append(c.VersionPolicy.Groups, group)
	}

	cons := Constraints{
		AllowedRange:             rc.Constraints.AllowedRange,
		RequireMonotonicIncrease: rc.Constraints.RequireMonotonicIncrease,
		RequireMajorApproval:     rc.Constraints.RequireMajorApproval,
	}
	for _, s := range rc.Constraints.Blocked {
		v, err := version.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("constraints.blocked: %w", err)
		}
		cons.Blocked = append(cons.Blocked, v)
	}
	if rc.Constraints.MinimumVersion != "" {
		v, err := version.Parse(rc.Constraints.MinimumVersion)
		if err != nil {
			return nil, fmt.Errorf("constraints.minimumVersion: %w", err)
		}
		cons.MinimumVersion = &v
	}
	if rc.Constraints.MaximumVersion != "" {
		v, err := version.Parse(rc.Constraints.MaximumVersion)
		if err != nil {
			return nil, fmt.Errorf("constraints.maximumVersion: %w", err)
		}
		cons.MaximumVersion = &v
	}
	for _, r := range rc.Constraints.CustomRules {
		cons.CustomRules = append(cons.CustomRules, CustomRule{
			Name: r.Name, Kind: r.Kind, Pattern: r.Pattern, Severity: r.Severity,
		})
	}
	c.Constraints = cons

	c.CalVer = calver.Config{Separator: rc.CalVer.Separator, ResetPatchPeriodically: rc.CalVer.ResetPatchPeriodically}
	if rc.CalVer.Format != "" {
		f, err := calver.ParseFormat(rc.CalVer.Format)
		if err != nil {
			return nil, fmt.Errorf("calVer.format: %w", err)
		}
		c.CalVer.Format = f
	}

	if len(rc.Projects) > 0 {
		c.Projects = map[string]ProjectOverride{}
		for name, p := range rc.Projects {
			ov := ProjectOverride{PrereleaseType: p.PrereleaseType}
			if p.ForceVersion != "" {
				v, err := version.Parse(p.ForceVersion)
				if err != nil {
					return nil, fmt.Errorf("projects.%s.forceVersion: %w", name, err)
				}
				ov.ForceVersion = &v
			}
			c.Projects[name] = ov
		}
	}

	return c, nil
}

func parseBump(s string) (model.BumpType, error) {
	switch s {
	case "", "none":
		return model.BumpNone, nil
	case "patch":
		return model.BumpPatch, nil
	case "minor":
		return model.BumpMinor, nil
	case "major":
		return model.BumpMajor, nil
	default:
		return model.BumpNone, fmt.Errorf("unrecognized bump type %q", s)
	}
}
