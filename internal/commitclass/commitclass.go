// Package commitclass implements the Commit Classifier (spec §4.E): a
// conventional-commit grammar over regexp, mapping a commit message
// (and an optional body) to a BumpType, plus aggregation across a
// commit range.
package commitclass

import (
	"regexp"
	"strings"

	"github.com/monoverse/monoverse/internal/model"
)

// headerPattern matches the first line of a conventional commit:
// "<type>(<scope>)?!?: <description>" (spec §4.E "Grammar").
var headerPattern = regexp.MustCompile(`^([A-Za-z]+)(\([^)]*\))?(!)?:\s*(.*)$`)

var breakingBodyPattern = regexp.MustCompile(`(?m)^BREAKING CHANGE:`)

// ignoredTypes are conventional-commit types with no release impact
// (spec §4.E "Types in {...} → ignored").
var ignoredTypes = map[string]bool{
	"chore": true, "docs": true, "style": true,
	"test": true, "ci": true, "build": true,
}

// Rules holds the caller-configured pattern lists that override the
// type-based default classification (spec §4.E "Mapping to bump").
type Rules struct {
	MajorPatterns []string
	MinorPatterns []string
	PatchPatterns []string

	// ConventionalCommits disables conventional-commit parsing when
	// false: every non-empty range then aggregates to Patch (spec §4.E
	// "If conventional-commit analysis is disabled").
	ConventionalCommits bool
}

// Commit is the minimal shape the classifier needs from one commit.
type Commit struct {
	Message string
}

// Classify maps a single commit message to a BumpType per spec §4.E.
func Classify(rules Rules, message string) model.BumpType {
	lines := strings.SplitN(message, "\n", 2)
	header := lines[0]
	body := ""
	if len(lines) > 1 {
		body = lines[1]
	}

	breaking := breakingBodyPattern.MatchString(body)

	m := headerPattern.FindStringSubmatch(header)
	if m == nil {
		// Not a conventional-commit header at all: still subject to
		// pattern matching and the backwards-compatible Patch default.
		return classifyByPatterns(rules, message, breaking)
	}

	bang := m[3] == "!"
	typ := strings.ToLower(m[1])

	if breaking || bang {
		return model.BumpMajor
	}
	if bump, matched := patternBump(rules, message); matched {
		return bump
	}
	if ignoredTypes[typ] {
		return model.BumpNone
	}
	return model.BumpPatch
}

func classifyByPatterns(rules Rules, message string, breaking bool) model.BumpType {
	if breaking {
		return model.BumpMajor
	}
	if bump, matched := patternBump(rules, message); matched {
		return bump
	}
	return model.BumpPatch
}

// patternBump checks the caller-configured pattern lists in
// major/minor/patch priority order, case-insensitive substring match
// (spec §4.E "Matches of any configured ... patterns").
func patternBump(rules Rules, message string) (model.BumpType, bool) {
	lower := strings.ToLower(message)
	if containsAny(lower, rules.MajorPatterns) {
		return model.BumpMajor, true
	}
	if containsAny(lower, rules.MinorPatterns) {
		return model.BumpMinor, true
	}
	if containsAny(lower, rules.PatchPatterns) {
		return model.BumpPatch, true
	}
	return model.BumpNone, false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// AggregateRange returns the maximum bump encountered across commits
// (spec §4.E "Aggregation"). If rules.ConventionalCommits is false,
// any non-empty range aggregates to Patch.
func AggregateRange(rules Rules, commits []Commit) model.BumpType {
	if len(commits) == 0 {
		return model.BumpNone
	}
	if !rules.ConventionalCommits {
		return model.BumpPatch
	}

	max := model.BumpNone
	for _, c := range commits {
		max = max.Max(Classify(rules, c.Message))
	}
	return max
}
