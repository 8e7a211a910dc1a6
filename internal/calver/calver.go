// Package calver implements the CalVer Calculator (spec §4.I):
// calendar-based version heads (YYYY.MM, YYYY.0M, YY.0M, YYYY.WW) and
// the patch-derivation rules layered on top of them. ISO-8601 week
// numbers come from the standard library's time.ISOWeek — no library
// in the example pack does that arithmetic any better.
package calver

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/monoverse/monoverse/internal/model"
	"github.com/monoverse/monoverse/pkg/version"
)

// Format is a recognized CalVer format head (spec §4.I "Recognized
// format heads").
type Format int

const (
	FormatYYYYMM Format = iota
	FormatYYYY0M
	FormatYY0M
	FormatYYYYWW
)

// ParseFormat maps a configured format-head string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "YYYY.MM":
		return FormatYYYYMM, nil
	case "YYYY.0M":
		return FormatYYYY0M, nil
	case "YY.0M":
		return FormatYY0M, nil
	case "YYYY.WW":
		return FormatYYYYWW, nil
	default:
		return 0, fmt.Errorf("calver: unrecognized format head %q", s)
	}
}

// Head returns the (major, minor) pair a CalVer format derives from
// date (spec §4.I "Given a date, set major/minor from the date").
func Head(format Format, date time.Time) (major, minor int) {
	switch format {
	case FormatYYYY0M, FormatYYYYMM:
		return date.Year(), int(date.Month())
	case FormatYY0M:
		return date.Year() % 100, int(date.Month())
	case FormatYYYYWW:
		year, week := date.ISOWeek()
		return year, week
	default:
		return date.Year(), int(date.Month())
	}
}

// Config is the caller-supplied CalVer behavior knobs (spec §4.I
// "Patch derivation", "Formatting").
type Config struct {
	Format                 Format
	ResetPatchPeriodically bool
	Separator              string // default "."
}

// DerivePatch implements spec §4.I "Patch derivation": resets to 0 on
// a new (major, minor) period when reset_patch_periodically is set,
// applies bump on top of the prior patch when the period hasn't
// changed (major/minor are locked to the calendar, so patch is the
// only counter a within-period change can advance), or increments when
// the period changed but resets are off.
func DerivePatch(cfg Config, prior *version.Version, major, minor int, bump model.BumpType) int {
	if prior == nil {
		return 0
	}

	samePeriod := prior.Major == major && prior.Minor == minor
	switch {
	case !samePeriod && cfg.ResetPatchPeriodically:
		return 0
	case samePeriod && bump == model.BumpNone:
		return prior.Patch
	case samePeriod:
		return prior.Patch + 1
	default:
		return prior.Patch + 1
	}
}

// FormatVersion formats (major, minor, patch) using cfg's separator (default
// "."), zero-padding minor to two digits always, per spec §4.I
// "Formatting".
func (cfg Config) FormatVersion(major, minor, patch int) string {
	sep := cfg.Separator
	if sep == "" {
		sep = "."
	}
	parts := []string{strconv.Itoa(major), fmt.Sprintf("%02d", minor), strconv.Itoa(patch)}
	return strings.Join(parts, sep)
}

// Compute derives a full CalVer version for date given the prior
// version (nil if none) and the bump the rest of the engine computed
// for this resolution.
func Compute(cfg Config, date time.Time, prior *version.Version, bump model.BumpType) version.Version {
	major, minor := Head(cfg.Format, date)
	patch := DerivePatch(cfg, prior, major, minor, bump)
	return version.Version{Major: major, Minor: minor, Patch: patch}
}
