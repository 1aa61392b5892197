package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// JSONSchema renders parameter specs as a JSON Schema object. Properties
// appear in sorted name order so output is deterministic.
func JSONSchema(specs map[string]ParamSpec) *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	for _, name := range ParamNames(specs) {
		spec := specs[name]
		typ := strings.TrimSpace(spec.Type)
		if typ == "" {
			typ = TypeString
		}
		props.Set(name, &jsonschema.Schema{
			Type:        typ,
			Description: spec.Description,
		})
	}

	required := RequiredParams(specs)
	if len(required) == 0 {
		required = nil
	}
	return &jsonschema.Schema{
		Type:                 TypeObject,
		Properties:           props,
		Required:             required,
		AdditionalProperties: jsonschema.TrueSchema,
	}
}

// SchemaJSON returns the tool's parameter schema encoded as indented JSON.
func SchemaJSON(t Tool) ([]byte, error) {
	data, err := json.MarshalIndent(JSONSchema(t.Parameters()), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tool: encode %s schema: %w", t.Name(), err)
	}
	return data, nil
}
