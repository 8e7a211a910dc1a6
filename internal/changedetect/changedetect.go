// Package changedetect implements the Change Detector (spec §4.F): it
// orchestrates the Git Adapter's tree diff (B) and the File Pattern
// Matcher (D) to decide whether — and how much — a project changed
// between its base tag and HEAD.
package changedetect

import (
	"strings"

	"github.com/monoverse/monoverse/internal/gitadapter"
	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/internal/patterns"
)

// Input is everything the Change Detector needs for one project (spec
// §4.F "Given base_tag, project_path, dependencies[]").
type Input struct {
	// BaseIsVirtual is true when the base tag has no commit (spec
	// §4.F.1 "treat repository as initial").
	BaseIsVirtual bool

	// Changes is the already-computed tree diff between the base
	// commit and HEAD (spec §4.B diff_paths); empty/ignored when
	// BaseIsVirtual.
	Changes []gitadapter.PathChange

	ProjectPath        string
	DependencyPaths    []string
	DependencyLockFile string
	SubmoduleSupportOn bool

	// PatternMatchingEnabled gates step 5: when false, the mere
	// existence of any relevant path sets bump = Patch without
	// consulting Rules at all (spec §4.F.5).
	PatternMatchingEnabled bool
	Rules                  patterns.Rules
}

// Result is the Change Detector's output: whether the project changed,
// the paths that were relevant, and the resulting classification.
type Result struct {
	Changed        bool
	RelevantPaths  []string
	Classification model.ChangeClassification
	InitialRelease bool
}

// Detect runs spec §4.F's steps 1 through 5.
func Detect(in Input) Result {
	if in.BaseIsVirtual {
		// Step 1: initial repository state; the base version is used
		// as-is for its first release (spec §4.J "First-use-of-
		// configured-base rule" handles the actual version arithmetic).
		return Result{Changed: true, InitialRelease: true}
	}

	relevant := collectRelevantPaths(in)
	if len(relevant) == 0 {
		return Result{Changed: false}
	}

	if !in.PatternMatchingEnabled {
		// Step 5: pattern matching disabled, mere existence of any path
		// sets bump = Patch.
		return Result{
			Changed:       true,
			RelevantPaths: relevant,
			Classification: model.ChangeClassification{
				Total:        len(relevant),
				Patch:        relevant,
				RequiredBump: model.BumpPatch,
				Reason:       "pattern matching disabled; changed paths default to patch",
			},
		}
	}

	classification := patterns.Classify(in.Rules, relevant)
	return Result{
		Changed:        !classification.ShouldIgnore,
		RelevantPaths:  relevant,
		Classification: classification,
	}
}

// collectRelevantPaths implements spec §4.F steps 2-4: diff paths
// under the project, under any dependency directory, equal to the
// dependency lockfile, or (if submodules are on) a changed submodule
// path or the .gitmodules file itself.
func collectRelevantPaths(in Input) []string {
	var out []string
	for _, c := range in.Changes {
		switch {
		case underDir(c.Path, in.ProjectPath):
			out = append(out, c.Path)
		case underAnyDir(c.Path, in.DependencyPaths):
			out = append(out, c.Path)
		case in.DependencyLockFile != "" && c.Path == in.DependencyLockFile:
			out = append(out, c.Path)
		case in.SubmoduleSupportOn && (c.Submodule || c.Path == ".gitmodules"):
			out = append(out, c.Path)
		}
	}
	return out
}

func underDir(path, dir string) bool {
	if dir == "" || dir == "." {
		return true
	}
	dir = strings.TrimSuffix(dir, "/")
	return path == dir || strings.HasPrefix(path, dir+"/")
}

func underAnyDir(path string, dirs []string) bool {
	for _, d := range dirs {
		if underDir(path, d) {
			return true
		}
	}
	return false
}
