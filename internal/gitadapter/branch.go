package gitadapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/monoverse/monoverse/internal/engerr"
	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/pkg/version"
)

// CurrentBranch returns the short branch name HEAD points to, and
// whether HEAD is detached (spec §4.B current_branch).
func (r *Repository) CurrentBranch() (name string, detached bool, err error) {
	ref, headErr := r.repo.Head()
	if headErr != nil {
		return "", false, engerr.Wrap(engerr.GitOperationFailed, errors.Wrap(headErr, "failed to resolve HEAD"))
	}
	if !ref.Name().IsBranch() {
		return "", true, nil
	}
	return ref.Name().Short(), false, nil
}

var (
	releaseSlashOrDash = regexp.MustCompile(`^release[/-](.+)$`)
	bareVersionBranch  = regexp.MustCompile(`^[vV](\d+)(?:\.(\d+))?(?:\.(\d+))?$`)
)

// BranchTypeOf classifies a branch name per spec §4.B / §3: "main" and
// "master" are Main; "dev", "develop" and "development" are Dev;
// "release/<v>", "release-<v>" and "v<M.N[.P]>" are Release; anything
// else is Feature.
func BranchTypeOf(name string) model.BranchType {
	lower := strings.ToLower(name)

	switch lower {
	case "main", "master":
		return model.BranchType{Kind: model.BranchMain, Name: name}
	case "dev", "develop", "development":
		return model.BranchType{Kind: model.BranchDev, Name: name}
	}

	if m := releaseSlashOrDash.FindStringSubmatch(name); m != nil {
		if bt, ok := parseReleaseVersion(m[1]); ok {
			bt.Name = name
			return bt
		}
	}

	if m := bareVersionBranch.FindStringSubmatch(name); m != nil {
		major, _ := strconv.Atoi(m[1])
		bt := model.BranchType{Kind: model.BranchRelease, Major: major, Name: name}
		if m[2] != "" {
			minor, _ := strconv.Atoi(m[2])
			bt.Minor = minor
		}
		if m[3] != "" {
			patch, _ := strconv.Atoi(m[3])
			bt.Patch = &patch
		}
		return bt
	}

	return model.BranchType{Kind: model.BranchFeature, Name: name}
}

// parseReleaseVersion parses the "<v>" portion of release/<v> or
// release-<v> into a Release BranchType. It tolerates a leading v/V
// and a partial major[.minor[.patch]] the same way ExtractReleaseVersion
// does, since this is the same grammar called from two angles.
func parseReleaseVersion(raw string) (model.BranchType, bool) {
	m := bareVersionBranch.FindStringSubmatch(normalizeReleaseSuffix(raw))
	if m == nil {
		return model.BranchType{}, false
	}
	major, _ := strconv.Atoi(m[1])
	bt := model.BranchType{Kind: model.BranchRelease, Major: major}
	if m[2] != "" {
		minor, _ := strconv.Atoi(m[2])
		bt.Minor = minor
	}
	if m[3] != "" {
		patch, _ := strconv.Atoi(m[3])
		bt.Patch = &patch
	}
	return bt, true
}

func normalizeReleaseSuffix(raw string) string {
	if len(raw) > 0 && (raw[0] == 'v' || raw[0] == 'V') {
		return raw
	}
	return "v" + raw
}

// ExtractReleaseVersion strips a "release/" or "release-" prefix and
// the given tag prefix from name, then parses the remainder as a
// Version (spec §4.B extract_release_version).
func ExtractReleaseVersion(name, prefix string) (version.Version, error) {
	rest := name
	if m := releaseSlashOrDash.FindStringSubmatch(name); m != nil {
		rest = m[1]
	}
	rest = strings.TrimPrefix(rest, prefix)

	v, err := version.Parse(rest)
	if err != nil {
		return version.Version{}, engerr.Wrap(engerr.ParseFailure, err)
	}
	return v, nil
}
