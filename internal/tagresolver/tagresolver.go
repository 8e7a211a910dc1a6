// Package tagresolver implements the Tag Resolver (spec §4.C): it
// turns the Git Adapter's raw tag labels into classified, ordered
// VersionTag candidates and picks the base tag a resolution starts
// from. It is pure value logic over []model.VersionTag; it never
// touches a repository itself.
package tagresolver

import (
	"sort"
	"strings"

	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/pkg/version"
)

// Input is everything the Tag Resolver needs to classify and rank
// candidates for one resolution (spec §4.C "Inputs").
type Input struct {
	// Raw is every tag label discovered in the repository, paired with
	// its peeled commit (empty for none found here; tagresolver doesn't
	// synthesize virtual tags itself except via ConfiguredBase below).
	Raw []RawLabel

	// ProjectName is the project this resolution is for, used to build
	// the project-tag candidate patterns. An empty ProjectName
	// means this resolution only considers global tags.
	ProjectName string

	// Prefix is the configured tag prefix, e.g. "v".
	Prefix string

	// Branch is the branch-type gate: on a Release branch only tags
	// sharing its (major, minor) are considered.
	Branch model.BranchType

	// ExtraProjectPatterns are caller-contributed patterns using
	// "{name}" and "{prefix}" placeholders, in addition to the four
	// built-in forms.
	ExtraProjectPatterns []string

	// ConfiguredBase is the fallback base version from configuration,
	// used only when neither a global nor a project tag exists.
	ConfiguredBase *version.Version
}

// RawLabel is the Git Adapter's raw tag label plus its peeled commit
// SHA, decoupled from gitadapter.RawTag so this package has no import
// cycle with it.
type RawLabel struct {
	Label  string
	Commit string
}

// globalCandidates returns every raw label that is a global tag: it
// starts with prefix and the remainder parses as a Version (spec §4.C
// "Global tags").
func globalCandidates(raw []RawLabel, prefix string) []model.VersionTag {
	var out []model.VersionTag
	for _, r := range raw {
		if !strings.HasPrefix(r.Label, prefix) {
			continue
		}
		v, err := version.Parse(strings.TrimPrefix(r.Label, prefix))
		if err != nil {
			continue
		}
		out = append(out, model.VersionTag{
			Label:   r.Label,
			Version: v,
			Commit:  r.Commit,
			Scope:   model.Global(),
		})
	}
	return out
}

// projectPatternPrefixes builds the candidate literal prefixes for a
// named project (spec §4.C "Project tags"): {lower(name)-prefix,
// name-prefix, name/prefix, lower(name)/prefix}, plus any
// caller-contributed patterns with "{name}"/"{prefix}" substituted.
func projectPatternPrefixes(name, prefix string, extra []string) []string {
	lower := strings.ToLower(name)
	out := []string{
		lower + "-" + prefix,
		name + "-" + prefix,
		name + "/" + prefix,
		lower + "/" + prefix,
	}
	for _, p := range extra {
		p = strings.ReplaceAll(p, "{name}", name)
		p = strings.ReplaceAll(p, "{prefix}", prefix)
		out = append(out, p)
	}
	return out
}

// projectCandidates returns every raw label matching one of the
// project's candidate prefixes, with that prefix stripped before
// parsing (spec §4.C "Project tags"; suffix form is explicitly not
// accepted).
func projectCandidates(raw []RawLabel, name, prefix string, extra []string) []model.VersionTag {
	if name == "" {
		return nil
	}
	prefixes := projectPatternPrefixes(name, prefix, extra)

	var out []model.VersionTag
	for _, r := range raw {
		for _, p := range prefixes {
			if !strings.HasPrefix(r.Label, p) {
				continue
			}
			v, err := version.Parse(strings.TrimPrefix(r.Label, p))
			if err != nil {
				continue
			}
			out = append(out, model.VersionTag{
				Label:   r.Label,
				Version: v,
				Commit:  r.Commit,
				Scope:   model.ForProject(name),
			})
			break
		}
	}
	return out
}

// gateByBranch filters candidates to those matching the branch's
// locked (major, minor) when on a Release branch (spec §4.C
// "Ordering").
func gateByBranch(tags []model.VersionTag, branch model.BranchType) []model.VersionTag {
	if branch.Kind != model.BranchRelease {
		return tags
	}
	var out []model.VersionTag
	for _, t := range tags {
		if t.Version.Major == branch.Major && t.Version.Minor == branch.Minor {
			out = append(out, t)
		}
	}
	return out
}

// sortDescending orders tags by (major, minor, patch, prerelease-class,
// prerelease-number) descending, using version.CompareClass (spec
// §4.C "Ordering").
func sortDescending(tags []model.VersionTag) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Version.CompareClass(tags[j].Version) > 0
	})
}

// Resolve classifies and ranks every candidate, then selects the base
// tag per spec §4.C "Base selection". It never returns an error: a
// repository with no matching tags at all simply falls through to the
// default 0.1.0 virtual tag.
func Resolve(in Input) (base model.VersionTag, globals, projects []model.VersionTag) {
	globals = gateByBranch(globalCandidates(in.Raw, in.Prefix), in.Branch)
	projects = gateByBranch(projectCandidates(in.Raw, in.ProjectName, in.Prefix, in.ExtraProjectPatterns), in.Branch)

	sortDescending(globals)
	sortDescending(projects)

	var topGlobal, topProject *model.VersionTag
	if len(globals) > 0 {
		topGlobal = &globals[0]
	}
	if len(projects) > 0 {
		topProject = &projects[0]
	}

	switch {
	case topGlobal != nil && topProject != nil:
		if globalOutranks(*topGlobal, *topProject) {
			return *topGlobal, globals, projects
		}
		return *topProject, globals, projects
	case topProject != nil:
		return *topProject, globals, projects
	case topGlobal != nil:
		return *topGlobal, globals, projects
	case in.ConfiguredBase != nil:
		return virtualTag(in.ProjectName, *in.ConfiguredBase), globals, projects
	default:
		return virtualTag(in.ProjectName, version.MustParse("0.1.0")), globals, projects
	}
}

// globalOutranks reports whether global starts a strictly newer
// release cycle than project — i.e. its (major, minor) ranks strictly
// above project's (spec §4.C "new release cycle").
func globalOutranks(global, project model.VersionTag) bool {
	if global.Version.Major != project.Version.Major {
		return global.Version.Major > project.Version.Major
	}
	return global.Version.Minor > project.Version.Minor
}

func virtualTag(project string, v version.Version) model.VersionTag {
	scope := model.Global()
	if project != "" {
		scope = model.ForProject(project)
	}
	return model.VersionTag{Version: v, Scope: scope}
}
