// Package irisadapter bridges registry tools and iris LLM tool calling.
package irisadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petal-labs/iris/tools"

	"github.com/petal-labs/cursortools/registry"
	"github.com/petal-labs/cursortools/tool"
)

// ToolAdapter exposes a tool.Tool as an iris tools.Tool so an LLM provider
// can call it.
type ToolAdapter struct {
	tool tool.Tool
	opts tool.InvokeOptions
}

// NewToolAdapter creates a new adapter for the given tool.
func NewToolAdapter(t tool.Tool, opts tool.InvokeOptions) *ToolAdapter {
	return &ToolAdapter{tool: t, opts: opts}
}

// Name returns the tool's name.
func (a *ToolAdapter) Name() string {
	return a.tool.Name()
}

// Description returns the tool's description.
func (a *ToolAdapter) Description() string {
	return a.tool.Description()
}

// Schema returns the tool's parameters as JSON Schema.
func (a *ToolAdapter) Schema() tools.ToolSchema {
	data, err := json.Marshal(tool.JSONSchema(a.tool.Parameters()))
	if err != nil {
		data = []byte(`{"type":"object"}`)
	}
	return tools.ToolSchema{JSONSchema: data}
}

// Call decodes the model's JSON arguments and invokes the tool.
func (a *ToolAdapter) Call(ctx context.Context, args json.RawMessage) (any, error) {
	params, err := decodeArgs(args)
	if err != nil {
		return nil, tool.NewError(tool.ErrorCodeInvalidParams, fmt.Sprintf("invalid arguments for %s: %v", a.tool.Name(), err), err)
	}
	return tool.Invoke(ctx, a.tool, params, a.opts)
}

// Tools adapts every tool in r, in registration order.
func Tools(r *registry.Registry, opts tool.InvokeOptions) []tools.Tool {
	all := r.All()
	out := make([]tools.Tool, 0, len(all))
	for _, t := range all {
		out = append(out, NewToolAdapter(t, opts))
	}
	return out
}

func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	params := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return params, nil
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

// Ensure interface compliance at compile time.
var _ tools.Tool = (*ToolAdapter)(nil)
