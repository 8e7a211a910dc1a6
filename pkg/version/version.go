// Package version implements the Version Model: parsing, comparison,
// and formatting of the semantic/calendar version values the
// resolution engine operates on.
//
// The precedence rules follow SemVer 2.0 with one addition the wider
// engine relies on: prerelease identifiers are grouped into the
// lexical classes {alpha, beta, rc, none}, ordered alpha < beta < rc <
// none, with any other label ranking below alpha. That class ordering
// lives here, next to the values it orders, rather than in the tag
// resolver that consumes it.
package version

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseError is returned when a version string does not match the
// grammar `M.N[.P][-pre][+build]`.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("version: cannot parse %q: %s", e.Input, e.Reason)
}

// versionPattern matches `[vV]M.N[.P][-pre][+build]`. Each of pre's
// dot-separated identifiers is validated individually in Parse so that
// a malformed identifier produces a clear error instead of a generic
// regexp mismatch.
var versionPattern = regexp.MustCompile(
	`^[vV]?(0|[1-9]\d*)(?:\.(0|[1-9]\d*))?(?:\.(0|[1-9]\d*))?(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`,
)

var identPattern = regexp.MustCompile(`^[0-9A-Za-z-]+$`)

// Identifier is a single dot-separated component of a prerelease
// string, e.g. "alpha" or "1" in "alpha.1".
type Identifier struct {
	// Text is the identifier as written.
	Text string

	// IsNumeric is true when Text is composed entirely of ASCII
	// digits (and therefore compares numerically, not lexically).
	IsNumeric bool

	// Num is the parsed numeric value when IsNumeric is true.
	Num int64
}

func newIdentifier(text string) (Identifier, error) {
	if !identPattern.MatchString(text) {
		return Identifier{}, fmt.Errorf("invalid prerelease identifier %q", text)
	}
	if isDigits(text) {
		// A digits-only identifier with a leading zero (other than the
		// literal "0") is kept as a non-numeric identifier.
		if len(text) > 1 && text[0] == '0' {
			return Identifier{Text: text}, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return Identifier{Text: text, IsNumeric: true, Num: n}, nil
		}
	}
	return Identifier{Text: text}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Version is the ordered quintuple (major, minor, patch, prerelease,
// build) from spec's Data Model. Build metadata is carried for
// round-tripping but never participates in comparison.
type Version struct {
	Major, Minor, Patch int
	Prerelease          []Identifier
	Build                string

	// hadVPrefix records whether the original string used a v/V
	// prefix. String does not reproduce it.
	hadVPrefix bool
}

// Parse parses s into a Version. Missing minor/patch default to zero,
// consistent with the engine treating "1" and "1.0.0" as the same
// value during comparisons but preserving how many components callers
// wrote is not required by this spec, so both normalize immediately.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	m := versionPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Version{}, &ParseError{Input: s, Reason: "does not match M.N[.P][-pre][+build]"}
	}

	v := Version{hadVPrefix: len(trimmed) > 0 && (trimmed[0] == 'v' || trimmed[0] == 'V')}

	var err error
	if v.Major, err = atoi(m[1]); err != nil {
		return Version{}, &ParseError{Input: s, Reason: "invalid major component"}
	}
	if m[2] != "" {
		if v.Minor, err = atoi(m[2]); err != nil {
			return Version{}, &ParseError{Input: s, Reason: "invalid minor component"}
		}
	}
	if m[3] != "" {
		if v.Patch, err = atoi(m[3]); err != nil {
			return Version{}, &ParseError{Input: s, Reason: "invalid patch component"}
		}
	}
	if m[4] != "" {
		for _, part := range strings.Split(m[4], ".") {
			id, err := newIdentifier(part)
			if err != nil {
				return Version{}, &ParseError{Input: s, Reason: err.Error()}
			}
			v.Prerelease = append(v.Prerelease, id)
		}
	}
	v.Build = m[5]

	return v, nil
}

// MustParse is like Parse but panics on error. Intended for literal
// versions embedded in tests and defaults, never for untrusted input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Core formats just major.minor.patch, with no prefix, prerelease or
// build metadata.
func (v Version) Core() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// String formats the canonical representation of v: its core version,
// optional `-prerelease`, and optional `+build`. It never reproduces a
// leading v/V prefix; callers that need one (tag labels) add it
// explicitly, since the prefix is a tag-label concern (spec §4.B/§6),
// not a property of the Version value itself.
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(v.Core())
	if len(v.Prerelease) > 0 {
		b.WriteByte('-')
		b.WriteString(v.PrereleaseString())
	}
	if v.Build != "" {
		b.WriteByte('+')
		b.WriteString(v.Build)
	}
	return b.String()
}

// PrereleaseString joins the prerelease identifiers with dots.
func (v Version) PrereleaseString() string {
	parts := make([]string, len(v.Prerelease))
	for i, id := range v.Prerelease {
		parts[i] = id.Text
	}
	return strings.Join(parts, ".")
}

// IsPrerelease reports whether v carries a prerelease component.
func (v Version) IsPrerelease() bool {
	return len(v.Prerelease) > 0
}

// WithPrefix formats v with a leading prefix (typically "v"), used
// when rendering tag labels (spec §6's tag label grammar).
func (v Version) WithPrefix(prefix string) string {
	return prefix + v.String()
}

// IncMajor returns a new Version with major incremented and
// minor/patch/prerelease/build reset.
func (v Version) IncMajor() Version {
	return Version{Major: v.Major + 1}
}

// IncMinor returns a new Version with minor incremented and
// patch/prerelease/build reset.
func (v Version) IncMinor() Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// IncPatch returns a new Version with patch incremented and
// prerelease/build reset.
func (v Version) IncPatch() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// WithPrerelease returns a copy of v with its prerelease replaced by
// the dot-separated identifiers in s ("" clears it).
func (v Version) WithPrerelease(s string) Version {
	out := v
	out.Prerelease = nil
	if s != "" {
		for _, part := range strings.Split(s, ".") {
			id, err := newIdentifier(part)
			if err != nil {
				// Defensive: callers are expected to pass already-validated
				// text (e.g. from PrereleaseClass-derived labels); fall back
				// to a literal, non-numeric identifier rather than panic.
				id = Identifier{Text: part}
			}
			out.Prerelease = append(out.Prerelease, id)
		}
	}
	return out
}

// WithBuild returns a copy of v with build metadata replaced by s.
func (v Version) WithBuild(s string) Version {
	out := v
	out.Build = s
	return out
}

// MarshalJSON renders v as its canonical version string, so a
// VersionResult serializes the same way over the CLI's JSON output as
// it does in a tag label.
func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON parses v from its canonical version string.
func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML renders v as its canonical version string (spec §3 "All
// public structs carry yaml and json tags").
func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// UnmarshalYAML parses v from its canonical version string.
func (v *Version) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
