// Package patterns implements the File Pattern Matcher: a small
// hand-rolled glob engine plus the bump-classification and
// determine_bump logic layered on top of it. The matching rules here
// (forced case-insensitivity, `**/` meaning "zero or more directory
// components") don't line up with path/filepath.Match, so this is a
// one-file, table-driven-tested package rather than a wrapper around
// stdlib glob.
package patterns

import (
	"strings"

	"github.com/monoverse/monoverse/internal/model"
)

// Match reports whether path matches glob under spec §4.D's rules:
// `*` matches any run of non-`/` characters, `?` matches exactly one
// non-`/` character, `**/ ` matches zero or more whole directory
// components, every other character matches literally, and the whole
// comparison is case-insensitive after normalizing both operands to
// forward slashes.
func Match(glob, path string) bool {
	g := normalize(glob)
	p := normalize(path)
	return matchSegments(g, p)
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, `\`, "/"))
}

// matchSegments is a classic backtracking glob matcher extended with a
// `**/` token that consumes zero or more complete path segments
// (including their trailing slash) rather than an arbitrary run of
// characters the way a bare `*` would.
func matchSegments(glob, path string) bool {
	return matchFrom(glob, path)
}

func matchFrom(glob, path string) bool {
	for {
		if glob == "" {
			return path == ""
		}

		if strings.HasPrefix(glob, "**/") {
			rest := glob[len("**/"):]
			// Zero directories: try matching rest directly against path.
			if matchFrom(rest, path) {
				return true
			}
			// Consume one path segment and recurse.
			idx := strings.IndexByte(path, '/')
			if idx < 0 {
				return false
			}
			path = path[idx+1:]
			continue
		}

		if glob == "" {
			return path == ""
		}

		gc := glob[0]
		switch gc {
		case '*':
			// Try every possible split of the run this `*` can consume,
			// from shortest to longest, stopping at a `/` boundary.
			rest := glob[1:]
			for i := 0; i <= len(path); i++ {
				if i > 0 && path[i-1] == '/' {
					break
				}
				if matchFrom(rest, path[i:]) {
					return true
				}
			}
			return false
		case '?':
			if path == "" || path[0] == '/' {
				return false
			}
			glob = glob[1:]
			path = path[1:]
		default:
			if path == "" || path[0] != gc {
				return false
			}
			glob = glob[1:]
			path = path[1:]
		}
	}
}

// MatchAny reports whether path matches any of globs.
func MatchAny(globs []string, path string) bool {
	for _, g := range globs {
		if Match(g, path) {
			return true
		}
	}
	return false
}

// Rules is the ordered set of glob buckets a changed path is
// classified into, evaluated in Ignore, Major, Minor, Patch order.
type Rules struct {
	Ignore []string
	Major  []string
	Minor  []string
	Patch  []string

	// SourceOnlyMode and MinimumBump feed determine_bump directly.
	SourceOnlyMode bool
	MinimumBump    model.BumpType
}

// Classify buckets every path in changed into exactly one of
// {Ignored, Major, Minor, Patch, Unclassified}, first hit wins in that
// order (spec §4.D "Classification order").
func Classify(rules Rules, changed []string) model.ChangeClassification {
	out := model.ChangeClassification{Total: len(changed)}

	for _, p := range changed {
		switch {
		case MatchAny(rules.Ignore, p):
			out.Ignored = append(out.Ignored, p)
		case MatchAny(rules.Major, p):
			out.Major = append(out.Major, p)
		case MatchAny(rules.Minor, p):
			out.Minor = append(out.Minor, p)
		case MatchAny(rules.Patch, p):
			out.Patch = append(out.Patch, p)
		default:
			out.Unclassified = append(out.Unclassified, p)
		}
	}

	return DetermineBump(rules, out)
}

// DetermineBump applies spec §4.D's determine_bump rules to an
// already-bucketed classification, filling in RequiredBump,
// ShouldIgnore and Reason.
func DetermineBump(rules Rules, c model.ChangeClassification) model.ChangeClassification {
	allIgnored := c.Total > 0 && len(c.Ignored) == c.Total

	if rules.SourceOnlyMode && allIgnored {
		c.RequiredBump = model.BumpNone
		c.ShouldIgnore = true
		c.Reason = "source-only mode: all changed files are ignored"
		return c
	}
	if allIgnored {
		c.RequiredBump = model.BumpNone
		c.ShouldIgnore = true
		c.Reason = "all changed files are ignored"
		return c
	}

	bump := model.BumpNone
	switch {
	case len(c.Major) > 0:
		bump = model.BumpMajor
		c.Reason = "changed files matched a major pattern"
	case len(c.Minor) > 0:
		bump = model.BumpMinor
		c.Reason = "changed files matched a minor pattern"
	case len(c.Patch) > 0:
		bump = model.BumpPatch
		c.Reason = "changed files matched a patch pattern"
	case len(c.Unclassified) > 0:
		bump = minimumBump(rules)
		c.Reason = "changed files were unclassified; falling back to minimum_bump"
	}

	floor := minimumBump(rules)
	c.RequiredBump = bump.Max(floor)
	return c
}

func minimumBump(rules Rules) model.BumpType {
	if rules.MinimumBump == model.BumpNone {
		return model.BumpPatch
	}
	return rules.MinimumBump
}
