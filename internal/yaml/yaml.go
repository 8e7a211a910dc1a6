// Package yaml implements a thin wrapper around YAML parsing that
// guarantees the decoded value is JSON-schema-safe: every document is
// bridged through sigs.k8s.io/yaml's YAMLToJSON before being handed to
// the caller, so map keys, numbers and nulls come out the way
// encoding/json (and therefore santhosh-tekuri/jsonschema) expects
// rather than yaml.v3's native node types.
package yaml

import (
	"encoding/json"
	"fmt"

	stdyaml "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"
)

// Marshal is an alias to [stdyaml.Marshal].
var Marshal = stdyaml.Marshal

// Unmarshal decodes b into a generic any (map[string]any / []any /
// scalars), suitable for passing straight to a compiled JSON Schema's
// Validate method. A document consisting only of comments/whitespace
// decodes to a nil any, not an error.
func Unmarshal(b []byte) (any, error) {
	asJSON, err := yaml.YAMLToJSON(b)
	if err != nil {
		return nil, fmt.Errorf("converting YAML to JSON: %w", err)
	}

	if len(asJSON) == 0 {
		return nil, nil
	}

	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	return doc, nil
}
