package gitadapter

import (
	"strings"

	giturls "github.com/whilp/git-urls"
)

// RemoteOrigin is the parsed shape of a repository's "origin" remote,
// used for provenance on VersionResult and for the CLI's
// human-readable banner.
type RemoteOrigin struct {
	Host string
	Path string
}

// RemoteOrigin parses the "origin" remote's URL with
// github.com/whilp/git-urls. A repository with no configured origin (a
// fresh local-only init) returns the zero value, not an error:
// provenance is best-effort.
func (r *Repository) RemoteOrigin() RemoteOrigin {
	remote, err := r.repo.Remote("origin")
	if err != nil || len(remote.Config().URLs) == 0 {
		return RemoteOrigin{}
	}

	u, err := giturls.Parse(remote.Config().URLs[0])
	if err != nil {
		r.log.Warnf("failed to parse origin remote URL: %v", err)
		return RemoteOrigin{}
	}

	return RemoteOrigin{Host: u.Host, Path: strings.TrimSuffix(strings.TrimPrefix(u.Path, "/"), ".git")}
}
