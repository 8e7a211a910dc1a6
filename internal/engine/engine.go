// Package engine implements the Version Resolver orchestrator (spec
// §4.J): the state machine that ties the Tag Resolver, Change
// Detector, Commit Classifier, branch-typed arithmetic and Validator
// into one Resolve call per project. It accepts its cache and logger
// as explicit parameters — never ambient/global state (spec §9's
// "Global mutable state" design note) — and owns the
// gitadapter.Repository handle for the duration of one call, closing
// it on every exit path.
package engine

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/monoverse/monoverse/internal/cache"
	"github.com/monoverse/monoverse/internal/calver"
	"github.com/monoverse/monoverse/internal/changedetect"
	"github.com/monoverse/monoverse/internal/commitclass"
	"github.com/monoverse/monoverse/internal/gitadapter"
	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/internal/patterns"
	"github.com/monoverse/monoverse/internal/tagresolver"
	"github.com/monoverse/monoverse/internal/validator"
	"github.com/monoverse/monoverse/pkg/slogext"
	"github.com/monoverse/monoverse/pkg/version"
)

// Config bundles every per-resolution knob the engine's subsystems
// need (spec §4.C/§4.D/§4.E/§4.H inputs).
type Config struct {
	TagPrefix             string
	ExtraProjectPatterns  []string
	ConfiguredBaseVersion *version.Version

	PatternRules           patterns.Rules
	PatternMatchingEnabled bool

	CommitRules commitclass.Rules

	// DefaultIncrement is the floor bump applied on Dev and Feature
	// branches when neither the commit classifier nor the file pattern
	// matcher settles on anything stronger (spec §6 request field
	// "default-increment"); other branch kinds do not apply it.
	// Zero value (BumpNone) is treated as BumpMinor, the documented
	// default.
	DefaultIncrement model.BumpType

	DependencyPaths    []string
	DependencyLockFile string
	SubmoduleSupport   bool

	// ValidateTagAncestry gates tag-ancestry filtering (spec §4.B): when
	// set, a raw tag whose target commit is not reachable from HEAD is
	// dropped before it ever reaches the Tag Resolver. Skipped on
	// shallow clones, where ancestry can't be determined reliably.
	ValidateTagAncestry bool

	// ShallowCloneFallback, when non-nil, substitutes for a shallow
	// clone's missing history (spec §4.B): resolution short-circuits to
	// this version instead of attempting tag/change detection it
	// cannot do correctly.
	ShallowCloneFallback *version.Version

	// PrereleaseType, when one of "alpha"/"beta"/"rc", is appended as
	// ".1" to a Main-branch increment that didn't already carry a
	// recognized prerelease (spec §4.J "Main").
	PrereleaseType string

	Validator validator.Config

	// SkipTests / SkipNonPackable gate the early-exit shortcuts (spec
	// §4.J "is_test_project && skip_tests?").
	SkipTests       bool
	SkipNonPackable bool

	// Scheme selects between SemVer branch-rule arithmetic (the
	// default) and the CalVer Calculator (spec §4.I) for the major/
	// minor head of a computed version. CalVer only replaces how the
	// *head* is derived; branch-kind shaping (Dev/Feature prerelease
	// identifiers, Release series locking) still applies on top of it.
	Scheme model.Scheme
	CalVer calver.Config

	// Now is the clock CalVer reads from; nil means time.Now. Tests
	// supply a fixed clock so a resolution is reproducible without
	// calling the forbidden wall-clock built-ins from a workflow
	// script, and so a CalVer repository's tests don't flake across a
	// month/week boundary. The field is left out of cache keys, since a
	// func value cannot be hashed.
	Now func() time.Time `hash:"ignore"`
}

// Request is everything one Resolve call needs (spec §6
// "engine.Resolve(ctx, Request)").
type Request struct {
	RepoPath string
	Project  model.ProjectIdentity
	Config   Config

	// ForceVersion short-circuits the whole state machine (spec §4.J
	// "force_version?").
	ForceVersion *version.Version

	MajorApproved bool
}

// Resolve computes a VersionResult for one project (spec §4.J). A
// non-nil error is returned only for RepositoryUnavailable-class
// failures the caller cannot route around; every other degraded path
// becomes a warning embedded in the returned Result.
func Resolve(ctx context.Context, req Request, c *cache.Cache, log slogext.Logger) (model.VersionResult, error) {
	if log == nil {
		log = slogext.NewSilent()
	}

	repo, err := gitadapter.Open(req.RepoPath, log)
	if err != nil {
		return model.VersionResult{}, err
	}
	defer repo.Close()

	head, err := repo.HeadHash()
	if err != nil {
		return model.VersionResult{}, err
	}

	if cached, ok := c.Get(head.String(), req); ok {
		if result, ok := cached.(model.VersionResult); ok {
			return result, nil
		}
	}

	result, err := resolve(ctx, req, repo, head, log)
	if err != nil {
		return result, err
	}

	c.Put(head.String(), req, result)
	return result, nil
}

func resolve(_ context.Context, req Request, repo *gitadapter.Repository, head plumbing.Hash, log slogext.Logger) (model.VersionResult, error) {
	if req.ForceVersion != nil {
		return emit(repo, head, *req.ForceVersion, nil, model.BumpNone, model.BranchType{},
			"forced by caller", false, 0, log, nil, req), nil
	}

	branchName, detached, branchErr := repo.CurrentBranch()
	if branchErr != nil {
		log.Warnf("failed to resolve current branch: %v", branchErr)
	}
	branch := gitadapter.BranchTypeOf(branchName)
	if detached {
		branch = model.BranchType{Kind: model.BranchFeature, Name: branchName}
	}

	isShallow, shallowErr := repo.IsShallow()
	if shallowErr != nil {
		log.Warnf("failed to determine shallow-clone status: %v", shallowErr)
	}
	if isShallow && req.Config.ShallowCloneFallback != nil {
		reason := "shallow clone with incomplete history; substituted configured shallow-clone fallback version " +
			req.Config.ShallowCloneFallback.String()
		return emit(repo, head, *req.Config.ShallowCloneFallback, nil, model.BumpNone, branch, reason, true, 0, log, nil, req), nil
	}

	if req.Project.IsTest && req.Config.SkipTests {
		return emitSkip(repo, head, req, branch, isShallow, "project is a test project and skip_tests is set", log), nil
	}
	if !req.Project.IsPackable && req.Config.SkipNonPackable {
		return emitSkip(repo, head, req, branch, isShallow, "project is non-packable and skip_non_packable is set", log), nil
	}

	// RESOLVE_TAGS (4.C)
	rawTags, tagsErr := repo.Tags("")
	if tagsErr != nil {
		log.Warnf("failed to enumerate tags: %v", tagsErr)
	}
	rawTags = filterReachableTags(repo, rawTags, head, req.Config.ValidateTagAncestry, isShallow, log)
	base, _, projects := tagresolver.Resolve(tagresolver.Input{
		Raw:                  toRawLabels(rawTags),
		ProjectName:          req.Project.Name,
		Prefix:               req.Config.TagPrefix,
		Branch:               branch,
		ExtraProjectPatterns: req.Config.ExtraProjectPatterns,
		ConfiguredBase:       req.Config.ConfiguredBaseVersion,
	})

	baseCommit, baseHasCommit := parseHash(base.Commit)

	// DETECT_CHANGES (4.F)
	var changes []gitadapter.PathChange
	if baseHasCommit {
		var diffErr error
		changes, diffErr = repo.DiffPaths(baseCommit, head)
		if diffErr != nil {
			log.Warnf("failed to diff paths, treating as changed: %v", diffErr)
			changes = []gitadapter.PathChange{{Path: req.Project.Path}}
		}
	}

	changeResult := changedetect.Detect(changedetect.Input{
		BaseIsVirtual:          !baseHasCommit,
		Changes:                changes,
		ProjectPath:            req.Project.Path,
		DependencyPaths:        append(req.Config.DependencyPaths, req.Project.DirectDependencyPaths...),
		DependencyLockFile:     req.Config.DependencyLockFile,
		SubmoduleSupportOn:     req.Config.SubmoduleSupport,
		PatternMatchingEnabled: req.Config.PatternMatchingEnabled,
		Rules:                  req.Config.PatternRules,
	})

	if changeResult.InitialRelease {
		// First-use-of-configured-base rule: the base version is not
		// incremented, but branch rules still apply (spec §4.J "Main...
		// increment per the computed bump (if not initial)" — the
		// parenthetical exempts only the increment, not the rest of the
		// branch's shape, e.g. a configured prerelease_type still gets
		// appended on Main).
		initialIncr := incrementByBump
		if req.Config.Scheme == model.SchemeCalVer {
			now := time.Now
			if req.Config.Now != nil {
				now = req.Config.Now
			}
			initialIncr = calverIncrementer(req.Config.CalVer, now())
		}
		next := applyBranchRules(base.Version, model.BumpNone, branch, req.Config.PrereleaseType, 0, false, initialIncr)
		return emit(repo, head, next, nil, model.BumpNone, branch,
			"first change with new base version from configuration", true, 0, log, &base, req), nil
	}

	if !changeResult.Changed {
		// CHOOSE_EXISTING: prefer project tag version, else global,
		// else base — which is already exactly what base holds, since
		// tagresolver.Resolve applies that same precedence.
		reason := "no changes detected; reusing existing version"
		if len(projects) > 0 {
			reason = "no changes detected; reusing existing project tag version"
		}
		return emit(repo, head, base.Version, nil, model.BumpNone, branch, reason, false, 0, log, &base, req), nil
	}

	// DETERMINE_BUMP: combine 4.E max-bump over the commit range with
	// the 4.D file-derived bump, take the maximum.
	messages, rangeErr := repo.CommitMessagesBetween(baseCommit, head)
	if rangeErr != nil {
		log.Warnf("failed to walk commit range: %v", rangeErr)
	}
	commits := make([]commitclass.Commit, len(messages))
	for i, m := range messages {
		commits[i] = commitclass.Commit{Message: m}
	}
	commitBump := commitclass.AggregateRange(req.Config.CommitRules, commits)
	bump := commitBump.Max(changeResult.Classification.RequiredBump)

	// Dev and Feature branches represent work diverging from trunk, so
	// absent a stronger signal they assume default_increment (Minor
	// unless configured otherwise) rather than the commit classifier's
	// trunk-oriented Patch default (spec §8 scenarios 3 and 7).
	if branch.Kind == model.BranchDev || branch.Kind == model.BranchFeature {
		bump = bump.Max(defaultIncrementFloor(req.Config.DefaultIncrement))
	}

	height, heightErr := repo.CommitHeight(baseCommit, head)
	if heightErr != nil {
		log.Warnf("failed to compute commit height: %v", heightErr)
	}

	// APPLY_BRANCH_RULES
	incr := incrementByBump
	if req.Config.Scheme == model.SchemeCalVer {
		now := time.Now
		if req.Config.Now != nil {
			now = req.Config.Now
		}
		incr = calverIncrementer(req.Config.CalVer, now())
	}
	next := applyBranchRules(base.Version, bump, branch, req.Config.PrereleaseType, height, !base.IsVirtual(), incr)

	return emit(repo, head, next, &base.Version, bump, branch, bumpReason(bump, branch), true, height, log, &base, req), nil
}

func defaultIncrementFloor(configured model.BumpType) model.BumpType {
	if configured == model.BumpNone {
		return model.BumpMinor
	}
	return configured
}

func bumpReason(bump model.BumpType, branch model.BranchType) string {
	return "computed a " + bump.String() + " bump on " + branch.String() + " branch"
}

// incrementer derives the next head version from a base and a bump,
// abstracting over SemVer's arithmetic increment and CalVer's
// date-derived head so applyBranchRules doesn't need to know which
// scheme produced it (spec §4.I "the outer engine decides whether to
// bump further").
type incrementer func(base version.Version, bump model.BumpType) version.Version

// applyBranchRules implements spec §4.J "Branch rules".
func applyBranchRules(base version.Version, bump model.BumpType, branch model.BranchType, prereleaseType string, height int, existingInSeries bool, incr incrementer) version.Version {
	switch branch.Kind {
	case model.BranchDev:
		next := incr(base, bump)
		return next.WithPrerelease(appendIdentifier("dev", height))

	case model.BranchRelease:
		patch := branch.Patch
		p := 0
		if patch != nil {
			p = *patch
		}
		if existingInSeries {
			p = base.Patch + 1
		}
		return version.Version{Major: branch.Major, Minor: branch.Minor, Patch: p}

	case model.BranchFeature:
		next := incr(base, bump)
		name := sanitizeBranchName(branch.Name)
		return next.WithPrerelease(appendIdentifier(name, height))

	default: // BranchMain
		if class, num := base.Class(); class != version.ClassNone && class != version.ClassUnknown {
			label := classLabel(class)
			return base.WithPrerelease(label + "." + itoa(num+1))
		}
		next := incr(base, bump)
		if prereleaseType == "alpha" || prereleaseType == "beta" || prereleaseType == "rc" {
			return next.WithPrerelease(prereleaseType + ".1")
		}
		return next
	}
}

func incrementByBump(base version.Version, bump model.BumpType) version.Version {
	switch bump {
	case model.BumpMajor:
		return base.IncMajor()
	case model.BumpMinor:
		return base.IncMinor()
	case model.BumpPatch:
		return base.IncPatch()
	default:
		return base
	}
}

// calverIncrementer binds a CalVer config and evaluation instant into
// an incrementer: major/minor come from the date, but bump still
// advances patch within an unchanged period (spec §4.I "the outer
// engine decides whether to bump further").
func calverIncrementer(cfg calver.Config, now time.Time) incrementer {
	return func(base version.Version, bump model.BumpType) version.Version {
		return calver.Compute(cfg, now, &base, bump)
	}
}

func appendIdentifier(name string, height int) string {
	return name + "." + itoa(int64(height))
}

func classLabel(c version.PrereleaseClass) string {
	switch c {
	case version.ClassAlpha:
		return "alpha"
	case version.ClassBeta:
		return "beta"
	case version.ClassRC:
		return "rc"
	default:
		return "unknown"
	}
}

var sanitizeNonAllowed = regexp.MustCompile(`[^A-Za-z0-9-]+`)
var sanitizeDashRuns = regexp.MustCompile(`-+`)
var sanitizeCommonPrefix = regexp.MustCompile(`^(feature|feat)[/_-]`)

// sanitizeBranchName implements spec §4.J "Feature" sanitization:
// strip common prefixes, replace non-[A-Za-z0-9-] with "-", collapse
// runs, trim, lowercase, cap at 50 chars, fall back to "feature".
func sanitizeBranchName(name string) string {
	s := sanitizeCommonPrefix.ReplaceAllString(name, "")
	s = sanitizeNonAllowed.ReplaceAllString(s, "-")
	s = sanitizeDashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.ToLower(s)
	if len(s) > 50 {
		s = s[:50]
	}
	if s == "" {
		return "feature"
	}
	return s
}

// filterReachableTags implements spec §4.B's ancestry filter: a tag
// whose target commit is not reachable from head is dropped before it
// ever reaches the Tag Resolver. Skipped when validation is off or the
// repository is shallow, since ancestry can't be trusted there.
func filterReachableTags(repo *gitadapter.Repository, tags []gitadapter.RawTag, head plumbing.Hash, validate, isShallow bool, log slogext.Logger) []gitadapter.RawTag {
	if !validate || isShallow {
		return tags
	}

	out := make([]gitadapter.RawTag, 0, len(tags))
	for _, t := range tags {
		reachable, err := repo.IsReachable(t.Commit, head)
		if err != nil {
			log.Warnf("failed to check ancestry of tag %s: %v", t.Label, err)
			continue
		}
		if reachable {
			out = append(out, t)
		}
	}
	return out
}

func toRawLabels(tags []gitadapter.RawTag) []tagresolver.RawLabel {
	out := make([]tagresolver.RawLabel, len(tags))
	for i, t := range tags {
		out[i] = tagresolver.RawLabel{Label: t.Label, Commit: t.Commit.String()}
	}
	return out
}

func parseHash(s string) (plumbing.Hash, bool) {
	if s == "" {
		return plumbing.ZeroHash, false
	}
	return plumbing.NewHash(s), true
}

// emit builds the final VersionResult and runs the Validator (spec
// §4.J "Emission"): on failure, errors are surfaced but the computed
// result is still returned with is_valid = false.
func emit(repo *gitadapter.Repository, head plumbing.Hash, v version.Version, previous *version.Version,
	bump model.BumpType, branch model.BranchType, reason string, changed bool, height int, log slogext.Logger,
	base *model.VersionTag, req Request) model.VersionResult {

	info, err := repo.CommitInfo(head)
	if err != nil {
		log.Warnf("failed to load HEAD commit info: %v", err)
	}

	var previousCommit string
	if base != nil && base.Commit != "" {
		h := plumbing.NewHash(base.Commit)
		short := h.String()
		if len(short) > 8 {
			short = short[:8]
		}
		previousCommit = short
	}

	validatorCfg := req.Config.Validator
	validatorCfg.MajorApproved = validatorCfg.MajorApproved || req.MajorApproved

	origin := repo.RemoteOrigin()

	result := model.VersionResult{
		VersionString:   v.String(),
		Version:         v,
		PreviousVersion: previous,
		PreviousCommit:  previousCommit,
		Commit:          info.ShortHash,
		CommitDate:      info.Date,
		CommitMessage:   info.Message,
		BranchType:      branch,
		BranchName:      branch.Name,
		CommitHeight:    height,
		BumpType:        bump,
		ChangeReason:    reason,
		Scheme:          req.Config.Scheme,
		VersionChanged:  changed,
		Validation:      validator.Check(validatorCfg, v, previous, bump),
		RepositoryHost:  origin.Host,
		RepositoryPath:  origin.Path,
	}

	return result
}

func emitSkip(repo *gitadapter.Repository, head plumbing.Hash, req Request, branch model.BranchType, isShallow bool, reason string, log slogext.Logger) model.VersionResult {
	rawTags, err := repo.Tags("")
	if err != nil {
		log.Warnf("failed to enumerate tags: %v", err)
	}
	rawTags = filterReachableTags(repo, rawTags, head, req.Config.ValidateTagAncestry, isShallow, log)
	base, _, _ := tagresolver.Resolve(tagresolver.Input{
		Raw:                  toRawLabels(rawTags),
		ProjectName:          req.Project.Name,
		Prefix:               req.Config.TagPrefix,
		Branch:               branch,
		ExtraProjectPatterns: req.Config.ExtraProjectPatterns,
		ConfiguredBase:       req.Config.ConfiguredBaseVersion,
	})
	return emit(repo, head, base.Version, nil, model.BumpNone, branch, reason, false, 0, log, &base, req)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
