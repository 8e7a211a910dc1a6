// Package validator implements the Validator: a set of rejection
// rules over a candidate version plus caller-defined custom rules,
// aggregated into a (is-valid, errors[], warnings[], summary) result.
// Multiple simultaneous failures are collected with
// hashicorp/go-multierror rather than short-circuiting on the first
// one.
package validator

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-multierror"

	"github.com/monoverse/monoverse/internal/model"
	pversion "github.com/monoverse/monoverse/pkg/version"
)

// RuleKind is the kind of a custom validation rule (spec §4.H "custom
// rules of kinds {pattern, range}").
type RuleKind int

const (
	RulePattern RuleKind = iota
	RuleRange
)

// Severity is how a custom rule's failure is reported.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// CustomRule is a caller-defined constraint evaluated against the
// candidate version (spec §4.H "Apply custom rules").
type CustomRule struct {
	Name     string
	Kind     RuleKind
	Pattern  string // for RulePattern, a semver constraint or else a literal M.N.P matched exactly against the core version; a semver range for RuleRange
	Severity Severity
}

// Config is every constraint a resolution's Validator.Check enforces
// (spec §4.H "Given a candidate version, previous version,
// constraints, and a bump type").
type Config struct {
	Blocked                []pversion.Version
	MinimumVersion         *pversion.Version
	MaximumVersion         *pversion.Version
	AllowedRange           string // e.g. "3.x.x", "2.1.x"
	RequireMonotonicIncrease bool
	RequireMajorApproval   bool
	MajorApproved          bool
	CustomRules            []CustomRule
}

// Check runs every rule in Config against candidate (and, where
// relevant, previous and bump), returning the aggregated
// ValidationResult (spec §4.H "Output").
//
// require_monotonic_increase compares candidate only against the
// *same-scope* previous version the caller passes in — never against
// another branch's prerelease tip; a release branch's final patch can
// be numerically lower than main's in-flight prerelease because they
// are different version lineages, and cross-branch comparison is
// intentionally not performed here.
func Check(cfg Config, candidate pversion.Version, previous *pversion.Version, bump model.BumpType) model.ValidationResult {
	var errs *multierror.Error
	var warnings []string

	if isBlocked(cfg.Blocked, candidate) {
		errs = multierror.Append(errs, fmt.Errorf("version %s is in the blocked list", candidate))
	}

	if cfg.MinimumVersion != nil && candidate.Compare(*cfg.MinimumVersion) < 0 {
		errs = multierror.Append(errs, fmt.Errorf("version %s is below minimum_version %s", candidate, *cfg.MinimumVersion))
	}
	if cfg.MaximumVersion != nil && candidate.Compare(*cfg.MaximumVersion) > 0 {
		errs = multierror.Append(errs, fmt.Errorf("version %s is above maximum_version %s", candidate, *cfg.MaximumVersion))
	}

	if cfg.AllowedRange != "" {
		ok, rangeErr := candidate.MatchesConstraint(cfg.AllowedRange)
		if rangeErr != nil {
			errs = multierror.Append(errs, fmt.Errorf("allowed_range %q is invalid: %w", cfg.AllowedRange, rangeErr))
		} else if !ok {
			errs = multierror.Append(errs, fmt.Errorf("version %s does not satisfy allowed_range %q", candidate, cfg.AllowedRange))
		}
	}

	if cfg.RequireMonotonicIncrease && previous != nil && candidate.Compare(*previous) <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("version %s does not increase over previous version %s", candidate, *previous))
	}

	if cfg.RequireMajorApproval && bump == model.BumpMajor && !cfg.MajorApproved {
		errs = multierror.Append(errs, fmt.Errorf("major version bump to %s requires explicit approval", candidate))
	}

	for _, rule := range cfg.CustomRules {
		if ok, err := evaluateCustomRule(rule, candidate); !ok {
			msg := fmt.Sprintf("custom rule %q failed: %v", rule.Name, err)
			if rule.Severity == SeverityWarning {
				warnings = append(warnings, msg)
			} else {
				errs = multierror.Append(errs, fmt.Errorf("%s", msg))
			}
		}
	}

	result := model.ValidationResult{Warnings: warnings}
	if errs == nil || len(errs.Errors) == 0 {
		result.IsValid = true
		result.Summary = "all validation rules passed"
		return result
	}

	result.IsValid = false
	for _, e := range errs.Errors {
		result.Errors = append(result.Errors, e.Error())
	}
	result.Summary = fmt.Sprintf("%d validation rule(s) failed", len(errs.Errors))
	return result
}

func isBlocked(blocked []pversion.Version, candidate pversion.Version) bool {
	for _, b := range blocked {
		if b.Equal(candidate) {
			return true
		}
	}
	return false
}

func evaluateCustomRule(rule CustomRule, candidate pversion.Version) (bool, error) {
	switch rule.Kind {
	case RuleRange:
		ok, err := candidate.MatchesConstraint(rule.Pattern)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("%s does not satisfy range %q", candidate, rule.Pattern)
		}
		return true, nil
	default: // RulePattern
		c, err := semver.NewConstraint(rule.Pattern)
		if err != nil {
			// Not a semver-range pattern; fall back to an exact
			// comparison against the core version string.
			if candidate.Core() == rule.Pattern {
				return true, nil
			}
			return false, fmt.Errorf("%s does not match pattern %q", candidate, rule.Pattern)
		}
		sv, err := semver.NewVersion(candidate.Core())
		if err != nil {
			return false, err
		}
		if !c.Check(sv) {
			return false, fmt.Errorf("%s does not match pattern %q", candidate, rule.Pattern)
		}
		return true, nil
	}
}
