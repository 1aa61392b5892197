package irisadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petal-labs/iris/tools"

	"github.com/petal-labs/cursortools/tool"
)

// IrisTool adapts an iris tools.Tool to tool.Tool so it can be registered
// and run like any discovered tool.
type IrisTool struct {
	tool   tools.Tool
	params map[string]tool.ParamSpec
}

// FromIris wraps t. Parameters are read from the tool's JSON Schema once.
func FromIris(t tools.Tool) *IrisTool {
	return &IrisTool{tool: t, params: paramsFromSchema(t.Schema().JSONSchema)}
}

// Name returns the tool's name.
func (a *IrisTool) Name() string {
	return a.tool.Name()
}

// Description returns the tool's description.
func (a *IrisTool) Description() string {
	return a.tool.Description()
}

// Parameters returns the specs derived from the iris schema.
func (a *IrisTool) Parameters() map[string]tool.ParamSpec {
	out := make(map[string]tool.ParamSpec, len(a.params))
	for name, spec := range a.params {
		out[name] = spec
	}
	return out
}

// Execute executes the iris tool with the given arguments.
func (a *IrisTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	result, err := a.tool.Call(ctx, argsJSON)
	if err != nil {
		return nil, fmt.Errorf("tool call failed: %w", err)
	}
	return toResultMap(result)
}

// toResultMap converts various result types to map[string]any.
func toResultMap(result any) (map[string]any, error) {
	if result == nil {
		return map[string]any{}, nil
	}

	if m, ok := result.(map[string]any); ok {
		return m, nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return map[string]any{"result": result}, nil
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"result": result}, nil
	}
	return m, nil
}

type schemaDoc struct {
	Properties map[string]struct {
		Type        any    `json:"type"`
		Description string `json:"description"`
	} `json:"properties"`
	Required []string `json:"required"`
}

func paramsFromSchema(raw json.RawMessage) map[string]tool.ParamSpec {
	var doc schemaDoc
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return map[string]tool.ParamSpec{}
	}

	params := make(map[string]tool.ParamSpec, len(doc.Properties))
	for name, prop := range doc.Properties {
		params[name] = tool.ParamSpec{
			Type:        schemaType(prop.Type),
			Description: prop.Description,
		}
	}
	for _, name := range doc.Required {
		spec := params[name]
		if spec.Type == "" {
			spec.Type = tool.TypeString
		}
		spec.Required = true
		params[name] = spec
	}
	return params
}

// schemaType picks the first non-null type of a "type" keyword.
func schemaType(v any) string {
	switch typ := v.(type) {
	case string:
		return typ
	case []any:
		for _, item := range typ {
			if s, ok := item.(string); ok && s != "null" {
				return s
			}
		}
	}
	return tool.TypeString
}

var _ tool.Tool = (*IrisTool)(nil)
