// Package policy implements the Policy Engine (spec §4.G): grouping
// projects into {Independent, LockStep, Grouped} coordination
// strategies and computing a group's coordinated version.
package policy

import (
	"strings"

	"github.com/monoverse/monoverse/internal/patterns"
	"github.com/monoverse/monoverse/pkg/version"
)

// Strategy is a group's version-coordination strategy (spec §4.G
// "Policies").
type Strategy int

const (
	Independent Strategy = iota
	LockStep
	Grouped
)

// Group is a named set of projects sharing a version policy (spec
// §4.G "A group has (projects[] with wildcard patterns, strategy,
// optional base version)").
type Group struct {
	Name        string
	Patterns    []string
	Strategy    Strategy
	BaseVersion *version.Version
}

// Config holds every group known to a resolution, in priority order.
type Config struct {
	Groups []Group

	// LockStepAll, when true, means every project in the repository is
	// under one implicit LockStep group regardless of Groups (spec
	// §4.G linked_projects "all projects (LockStep)").
	LockStepAll    bool
	AllProjectNames []string
}

// ProjectGroup returns the first group whose patterns match name; "*"
// is the wildcard (spec §4.G "project_group(name, cfg)").
func ProjectGroup(name string, cfg Config) (Group, bool) {
	for _, g := range cfg.Groups {
		for _, p := range g.Patterns {
			if p == "*" || patterns.Match(p, name) || strings.EqualFold(p, name) {
				return g, true
			}
		}
	}
	return Group{}, false
}

// LinkedProjects returns the set of project names that must share a
// version with name (spec §4.G "linked_projects(name)"): just {name}
// under Independent, every known project under a repo-wide LockStep,
// or the group's members under Grouped/LockStep group membership.
func LinkedProjects(name string, cfg Config) []string {
	if cfg.LockStepAll {
		return cfg.AllProjectNames
	}

	g, ok := ProjectGroup(name, cfg)
	if !ok {
		return []string{name}
	}

	switch g.Strategy {
	case LockStep, Grouped:
		return membersMatching(g, cfg.AllProjectNames)
	default:
		return []string{name}
	}
}

func membersMatching(g Group, all []string) []string {
	var out []string
	for _, name := range all {
		for _, p := range g.Patterns {
			if p == "*" || patterns.Match(p, name) || strings.EqualFold(p, name) {
				out = append(out, name)
				break
			}
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

// CoordinateGroupVersion returns a group's coordinated version (spec
// §4.G "coordinate_group_version(versions, group)"): the group's
// configured base version if set, else the maximum of all members'
// computed versions, else the default 0.1.0.
func CoordinateGroupVersion(versions []version.Version, group Group) version.Version {
	if group.BaseVersion != nil {
		return *group.BaseVersion
	}
	if len(versions) == 0 {
		return version.MustParse("0.1.0")
	}

	max := versions[0]
	for _, v := range versions[1:] {
		if v.GreaterThan(max) {
			max = v
		}
	}
	return max
}
