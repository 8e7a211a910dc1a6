package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON is the Draft-7 JSON Schema for the configuration surface
// (spec §6's table), compiled once and reused across Load calls. It
// only constrains shape and enum membership; cross-field rules
// (baseVersion parses as a Version, a group's patterns don't collide
// with another project's) are checked in toConfig/ValidateProjectGroups
// where a precise Go error is easier to produce than in Schema terms.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "tagPrefix": {"type": "string"},
    "baseVersion": {"type": "string"},
    "prereleaseType": {"type": "string", "enum": ["", "none", "alpha", "beta", "rc"]},
    "skipTestProjects": {"type": "boolean"},
    "skipNonPackableProjects": {"type": "boolean"},
    "defaultIncrement": {"type": "string", "enum": ["", "none", "patch", "minor", "major"]},
    "scheme": {"type": "string", "enum": ["", "SemVer", "CalVer"]},
    "commitConventions": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "major": {"type": "array", "items": {"type": "string"}},
        "minor": {"type": "array", "items": {"type": "string"}},
        "patch": {"type": "array", "items": {"type": "string"}}
      }
    },
    "changeDetection": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "ignore": {"type": "array", "items": {"type": "string"}},
        "major": {"type": "array", "items": {"type": "string"}},
        "minor": {"type": "array", "items": {"type": "string"}},
        "patch": {"type": "array", "items": {"type": "string"}},
        "sourceOnlyMode": {"type": "boolean"},
        "minimumBumpType": {"type": "string", "enum": ["", "none", "patch", "minor", "major"]}
      }
    },
    "gitIntegration": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "shallowCloneFallback": {"type": "string"},
        "submoduleSupport": {"type": "boolean"},
        "customTagPatterns": {"type": "array", "items": {"type": "string"}},
        "validateTagAncestry": {"type": "boolean"},
        "includeBranchInMetadata": {"type": "boolean"}
      }
    },
    "versionPolicy": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "lockStepAll": {"type": "boolean"},
        "groups": {
          "type": "array",
          "items": {
            "type": "object",
            "additionalProperties": false,
            "required": ["name", "patterns"],
            "properties": {
              "name": {"type": "string"},
              "patterns": {"type": "array", "items": {"type": "string"}, "minItems": 1},
              "strategy": {"type": "string", "enum": ["independent", "lockstep", "grouped"]},
              "baseVersion": {"type": "string"}
            }
          }
        }
      }
    },
    "constraints": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "blocked": {"type": "array", "items": {"type": "string"}},
        "minimumVersion": {"type": "string"},
        "maximumVersion": {"type": "string"},
        "allowedRange": {"type": "string"},
        "requireMonotonicIncrease": {"type": "boolean"},
        "requireMajorApproval": {"type": "boolean"},
        "customRules": {
          "type": "array",
          "items": {
            "type": "object",
            "additionalProperties": false,
            "required": ["name", "kind", "pattern"],
            "properties": {
              "name": {"type": "string"},
              "kind": {"type": "string", "enum": ["pattern", "range"]},
              "pattern": {"type": "string"},
              "severity": {"type": "string", "enum": ["", "error", "warning"]}
            }
          }
        }
      }
    },
    "calVer": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "format": {"type": "string", "enum": ["", "YYYY.MM", "YYYY.0M", "YY.0M", "YYYY.WW"]},
        "separator": {"type": "string"},
        "resetPatchPeriodically": {"type": "boolean"}
      }
    },
    "projects": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "prereleaseType": {"type": "string"},
          "forceVersion": {"type": "string"}
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource("config.json", strings.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("compiling configuration schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("config.json")
	})
	return compiled, compileErr
}

// validateSchema checks doc (already decoded JSON: map[string]any /
// []any / scalars) against the compiled configuration schema,
// returning a ConfigurationInvalid-worthy error naming the offending
// JSON pointer on failure.
func validateSchema(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	if err := schema.Validate(doc); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			leaf := deepestCause(verr)
			pointer := leaf.InstanceLocation
			if pointer == "" {
				pointer = "/"
			}
			return fmt.Errorf("config: %s: %s", pointer, leaf.Message)
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// deepestCause descends to the most specific validation failure, so
// the reported message is e.g. "value must be one of..." rather than
// the generic top-level "doesn't validate with config.json#".
func deepestCause(verr *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	return verr
}
