package version

import "strings"

// Compare returns -1, 0, or 1 if v is less than, equal to, or greater
// than other, following SemVer 2.0 precedence. Build metadata never
// participates.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	return comparePrerelease(v.Prerelease, other.Prerelease)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePrerelease implements SemVer 2.0's prerelease precedence: a
// version with no prerelease outranks one with a prerelease at equal
// core; numeric identifiers compare numerically; alphanumeric compare
// lexically; numeric identifiers always rank below alphanumeric ones;
// a shorter identifier sequence ranks lower when all shared
// identifiers are equal.
func comparePrerelease(a, b []Identifier) int {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(a) == 0 {
		return 1 // no-prerelease > any-prerelease
	}
	if len(b) == 0 {
		return -1
	}

	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareIdentifier(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(a), len(b))
}

func compareIdentifier(a, b Identifier) int {
	switch {
	case a.IsNumeric && b.IsNumeric:
		return compareInt64(a.Num, b.Num)
	case a.IsNumeric && !b.IsNumeric:
		return -1 // numeric < alphanumeric
	case !a.IsNumeric && b.IsNumeric:
		return 1
	default:
		return strings.Compare(a.Text, b.Text)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether v sorts strictly before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// Equal reports whether v and other are equal for ordering purposes
// (build metadata excluded).
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// GreaterThan reports whether v sorts strictly after other.
func (v Version) GreaterThan(other Version) bool { return v.Compare(other) > 0 }

// PrereleaseClass is the lexical family a prerelease label belongs to,
// used to order tags across releases (spec §4.A / GLOSSARY).
type PrereleaseClass int

const (
	// ClassUnknown ranks below ClassAlpha: an unrecognized label is
	// treated as "earlier" than any named track.
	ClassUnknown PrereleaseClass = iota
	ClassAlpha
	ClassBeta
	ClassRC
	// ClassNone ranks above every prerelease class: no prerelease at
	// all outranks any prerelease.
	ClassNone
)

// Class returns v's prerelease class and, when present, the number in
// its second identifier, or in its first when that one is numeric
// (e.g. "alpha.3" -> (ClassAlpha, 3)).
func (v Version) Class() (PrereleaseClass, int64) {
	if len(v.Prerelease) == 0 {
		return ClassNone, 0
	}

	head := strings.ToLower(v.Prerelease[0].Text)
	class := classifyLabel(head)

	var num int64
	if len(v.Prerelease) > 1 && v.Prerelease[1].IsNumeric {
		num = v.Prerelease[1].Num
	} else if v.Prerelease[0].IsNumeric {
		num = v.Prerelease[0].Num
	}

	return class, num
}

func classifyLabel(label string) PrereleaseClass {
	switch label {
	case "alpha":
		return ClassAlpha
	case "beta":
		return ClassBeta
	case "rc":
		return ClassRC
	default:
		return ClassUnknown
	}
}

// CompareClass orders two versions by (major, minor, patch,
// prerelease-class, prerelease-number) rather than strict SemVer
// identifier-by-identifier precedence. The Tag Resolver (spec §4.C)
// uses this ordering, not Compare, when picking among candidate tags,
// since it must rank "alpha.2" above "unknown-label.999" even though
// plain SemVer precedence would compare the labels lexically.
func (v Version) CompareClass(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	vc, vn := v.Class()
	oc, on := other.Class()
	if vc != oc {
		return compareInt(int(vc), int(oc))
	}
	return compareInt64(vn, on)
}
