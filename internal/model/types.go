// Package model holds the value types shared across the resolution
// engine's subsystems (spec §3's Data Model): tags, branch
// classification, project identity, change classification and the
// final result. Keeping them in one leaf package lets the Git
// Adapter, Tag Resolver, Change Detector, Policy Engine, Validator and
// orchestrator all depend on the same vocabulary without importing
// each other.
package model

import "github.com/monoverse/monoverse/pkg/version"

// BumpType is totally ordered: None < Patch < Minor < Major.
type BumpType int

const (
	BumpNone BumpType = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

func (b BumpType) String() string {
	switch b {
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	default:
		return "none"
	}
}

// Max returns the greater of two bump types.
func (b BumpType) Max(other BumpType) BumpType {
	if other > b {
		return other
	}
	return b
}

// Scheme selects between semantic and calendar versioning for a
// resolution (spec §3 VersionResult.scheme).
type Scheme int

const (
	SchemeSemVer Scheme = iota
	SchemeCalVer
)

func (s Scheme) String() string {
	if s == SchemeCalVer {
		return "calver"
	}
	return "semver"
}

// TagScope distinguishes a tag that applies to the whole repository
// from one scoped to a single project.
type TagScope struct {
	Project string `yaml:"project,omitempty" json:"project,omitempty"` // empty means Global
}

// IsGlobal reports whether the scope is the whole-repository scope.
func (s TagScope) IsGlobal() bool { return s.Project == "" }

// Global is the whole-repository tag scope.
func Global() TagScope { return TagScope{} }

// ForProject returns the scope for a named project.
func ForProject(name string) TagScope { return TagScope{Project: name} }

// VersionTag pairs a tag label with its parsed Version, optional
// commit, and scope (spec §3 VersionTag). A tag with no Commit is a
// virtual tag synthesized from configuration.
type VersionTag struct {
	Label   string          `yaml:"label" json:"label"`
	Version version.Version `yaml:"version" json:"version"`
	Commit  string          `yaml:"commit,omitempty" json:"commit,omitempty"` // empty => virtual
	Scope   TagScope        `yaml:"scope" json:"scope"`
}

// IsVirtual reports whether t was synthesized rather than discovered
// in the repository's ref list.
func (t VersionTag) IsVirtual() bool { return t.Commit == "" }

// BranchKind is the sum type discriminant for BranchType (spec §3).
type BranchKind int

const (
	BranchMain BranchKind = iota
	BranchDev
	BranchRelease
	BranchFeature
)

// BranchType classifies the current branch (spec §3). Release carries
// the locked (major, minor) and an optional patch parsed from the
// branch name; Feature carries the raw (pre-sanitization) name.
type BranchType struct {
	Kind  BranchKind `yaml:"kind" json:"kind"`
	Major int        `yaml:"major,omitempty" json:"major,omitempty"`
	Minor int        `yaml:"minor,omitempty" json:"minor,omitempty"`
	Patch *int       `yaml:"patch,omitempty" json:"patch,omitempty"` // nil when the branch name didn't specify a patch
	Name  string     `yaml:"name,omitempty" json:"name,omitempty"`
}

func (b BranchType) String() string {
	switch b.Kind {
	case BranchMain:
		return "main"
	case BranchDev:
		return "dev"
	case BranchRelease:
		if b.Patch != nil {
			return "release"
		}
		return "release"
	default:
		return "feature"
	}
}

// ProjectIdentity is supplied by the caller (spec §3): the engine
// never reads project files itself.
type ProjectIdentity struct {
	Name                  string   `yaml:"name" json:"name"`
	Path                  string   `yaml:"path" json:"path"`
	IsTest                bool     `yaml:"isTest,omitempty" json:"isTest,omitempty"`
	IsPackable            bool     `yaml:"isPackable,omitempty" json:"isPackable,omitempty"`
	DirectDependencyPaths []string `yaml:"directDependencyPaths,omitempty" json:"directDependencyPaths,omitempty"`
}

// ChangeClassification is the output of the File Pattern Matcher +
// Change Detector (spec §3/§4.D/§4.F).
type ChangeClassification struct {
	Total        int      `yaml:"total" json:"total"`
	Ignored      []string `yaml:"ignored,omitempty" json:"ignored,omitempty"`
	Major        []string `yaml:"major,omitempty" json:"major,omitempty"`
	Minor        []string `yaml:"minor,omitempty" json:"minor,omitempty"`
	Patch        []string `yaml:"patch,omitempty" json:"patch,omitempty"`
	Unclassified []string `yaml:"unclassified,omitempty" json:"unclassified,omitempty"`
	RequiredBump BumpType `yaml:"requiredBump" json:"requiredBump"`
	ShouldIgnore bool     `yaml:"shouldIgnore,omitempty" json:"shouldIgnore,omitempty"`
	Reason       string   `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// ValidationResult is the Validator's output (spec §4.H), embedded
// into VersionResult.
type ValidationResult struct {
	IsValid  bool     `yaml:"isValid" json:"isValid"`
	Errors   []string `yaml:"errors,omitempty" json:"errors,omitempty"`
	Warnings []string `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Summary  string   `yaml:"summary,omitempty" json:"summary,omitempty"`
}

// VersionResult is the sole externally surfaced product of a
// resolution (spec §3).
type VersionResult struct {
	VersionString   string           `yaml:"version" json:"version"`
	Version         version.Version  `yaml:"parsedVersion" json:"parsedVersion"`
	PreviousVersion *version.Version `yaml:"previousVersion,omitempty" json:"previousVersion,omitempty"`
	PreviousCommit  string           `yaml:"previousCommit,omitempty" json:"previousCommit,omitempty"`
	Commit          string           `yaml:"commit" json:"commit"`
	CommitDate      string           `yaml:"commitDate" json:"commitDate"`
	CommitMessage   string           `yaml:"commitMessage" json:"commitMessage"`
	BranchType      BranchType       `yaml:"branchType" json:"branchType"`
	BranchName      string           `yaml:"branchName" json:"branchName"`
	CommitHeight    int              `yaml:"commitHeight" json:"commitHeight"`
	BumpType        BumpType         `yaml:"bumpType" json:"bumpType"`
	ChangeReason    string           `yaml:"changeReason" json:"changeReason"`
	Scheme          Scheme           `yaml:"scheme" json:"scheme"`
	VersionChanged  bool             `yaml:"versionChanged" json:"versionChanged"`
	Validation      ValidationResult `yaml:"validation" json:"validation"`

	// RepositoryHost/RepositoryPath are provenance from the "origin"
	// remote, empty when the repository has none configured (spec
	// §4.B "Repository URL introspection").
	RepositoryHost string `yaml:"repositoryHost,omitempty" json:"repositoryHost,omitempty"`
	RepositoryPath string `yaml:"repositoryPath,omitempty" json:"repositoryPath,omitempty"`
}
