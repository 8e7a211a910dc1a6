package version

import (
	"fmt"

	mastersemver "github.com/Masterminds/semver/v3"
	blangsemver "github.com/blang/semver/v4"
)

// ToConstraintTarget converts v to a *semver.Version from
// Masterminds/semver/v3, so callers that need range/wildcard
// constraint matching (`3.x.x`, `>=1.0.0 <2.0.0`, the Validator's
// allowed_range and range/pattern custom rules in spec §4.H) can
// reuse that library's constraint engine instead of a second
// hand-rolled wildcard matcher.
func (v Version) ToConstraintTarget() (*mastersemver.Version, error) {
	sv, err := mastersemver.NewVersion(v.String())
	if err != nil {
		return nil, fmt.Errorf("version: %s is not representable as a constraint target: %w", v, err)
	}
	return sv, nil
}

// MatchesConstraint reports whether v satisfies the given
// Masterminds/semver/v3 constraint expression (e.g. "3.x.x",
// ">=1.2.0 <2.0.0").
func (v Version) MatchesConstraint(expr string) (bool, error) {
	c, err := mastersemver.NewConstraint(expr)
	if err != nil {
		return false, fmt.Errorf("version: invalid constraint %q: %w", expr, err)
	}
	sv, err := v.ToConstraintTarget()
	if err != nil {
		return false, err
	}
	return c.Check(sv), nil
}

// IsStrictSemVer reports whether s parses as a fully SemVer
// 2.0-compliant string under blang/semver/v4's stricter grammar. The
// engine's own Parse is deliberately lenient (missing minor/patch
// default to zero); tag creation (spec §4.B create_tag / §6) runs this
// stricter check first so a caller cannot publish a tag label this
// engine could parse back but other SemVer-strict tooling downstream
// would reject.
func IsStrictSemVer(s string) bool {
	_, err := blangsemver.Parse(TrimPrefix(s))
	return err == nil
}

// TrimPrefix strips a single leading "v" or "V" from s, the one place
// prefix-stripping is case-insensitive per spec §4.A.
func TrimPrefix(s string) string {
	if len(s) > 0 && (s[0] == 'v' || s[0] == 'V') {
		return s[1:]
	}
	return s
}
