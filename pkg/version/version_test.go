package version_test

import (
	"testing"

	"github.com/monoverse/monoverse/pkg/version"
	"gotest.tools/v3/assert"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"0.1.0",
		"1.0.0",
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-0.3.7",
		"1.0.0-x.7.z.92",
		"1.0.0+build.123",
		"1.0.0-beta+exp.sha.5114f85",
	}
	for _, tc := range cases {
		v, err := version.Parse(tc)
		assert.NilError(t, err, tc)
		assert.Equal(t, v.String(), tc)
	}
}

func TestParseAcceptsVPrefixAndShortForms(t *testing.T) {
	v, err := version.Parse("v1.2")
	assert.NilError(t, err)
	assert.Equal(t, v.String(), "1.2.0")

	v, err = version.Parse("V2")
	assert.NilError(t, err)
	assert.Equal(t, v.String(), "2.0.0")
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, tc := range []string{"", "a.b.c", "1.2.3.4", "1.2.3-", "01.2.3"} {
		_, err := version.Parse(tc)
		assert.Assert(t, err != nil, tc)
		var perr *version.ParseError
		assert.Assert(t, errorsAs(err, &perr), tc)
	}
}

func errorsAs(err error, target **version.ParseError) bool {
	pe, ok := err.(*version.ParseError)
	if ok {
		*target = pe
	}
	return ok
}

func TestOrdering(t *testing.T) {
	// Ascending order, per SemVer 2.0's example precedence chain plus
	// the engine's own no-prerelease > any-prerelease rule.
	ordered := []string{
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-alpha.beta",
		"1.0.0-beta",
		"1.0.0-beta.2",
		"1.0.0-beta.11",
		"1.0.0-rc.1",
		"1.0.0",
	}
	for i := 1; i < len(ordered); i++ {
		a := version.MustParse(ordered[i-1])
		b := version.MustParse(ordered[i])
		assert.Assert(t, a.Less(b), "%s should be < %s", a, b)
		assert.Assert(t, b.GreaterThan(a), "%s should be > %s", b, a)
	}
}

func TestOrderingTotality(t *testing.T) {
	samples := []string{"1.0.0", "1.0.1", "2.0.0-alpha.1", "2.0.0-rc.1", "2.0.0"}
	for _, x := range samples {
		for _, y := range samples {
			a, b := version.MustParse(x), version.MustParse(y)
			lt, eq, gt := a.Less(b), a.Equal(b), a.GreaterThan(b)
			count := 0
			for _, v := range []bool{lt, eq, gt} {
				if v {
					count++
				}
			}
			assert.Equal(t, count, 1, "exactly one of <,=,> must hold for %s vs %s", x, y)
		}
	}
}

func TestBuildMetadataIgnoredInOrdering(t *testing.T) {
	a := version.MustParse("1.0.0+build.1")
	b := version.MustParse("1.0.0+build.2")
	assert.Assert(t, a.Equal(b))
}

func TestClassOrdering(t *testing.T) {
	rc := version.MustParse("1.0.0-rc.1")
	beta := version.MustParse("1.0.0-beta.1")
	alpha := version.MustParse("1.0.0-alpha.1")
	none := version.MustParse("1.0.0")
	unknown := version.MustParse("1.0.0-custom.1")

	assert.Assert(t, alpha.CompareClass(beta) < 0)
	assert.Assert(t, beta.CompareClass(rc) < 0)
	assert.Assert(t, rc.CompareClass(none) < 0)
	assert.Assert(t, unknown.CompareClass(alpha) < 0)
}

func TestIncrementsResetLowerComponents(t *testing.T) {
	v := version.MustParse("1.2.3-alpha.1+build")
	assert.Equal(t, v.IncMajor().String(), "2.0.0")
	assert.Equal(t, v.IncMinor().String(), "1.3.0")
	assert.Equal(t, v.IncPatch().String(), "1.2.4")
}

func TestMatchesConstraint(t *testing.T) {
	v := version.MustParse("3.2.1")
	ok, err := v.MatchesConstraint("3.x.x")
	assert.NilError(t, err)
	assert.Assert(t, ok)

	ok, err = v.MatchesConstraint("2.x.x")
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestIsStrictSemVer(t *testing.T) {
	assert.Assert(t, version.IsStrictSemVer("1.2.3"))
	assert.Assert(t, version.IsStrictSemVer("v1.2.3-rc.1"))
	assert.Assert(t, !version.IsStrictSemVer("1.2"))
}
