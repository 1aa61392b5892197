package irisadapter

import (
	"context"
	"errors"

	iriscore "github.com/petal-labs/iris/core"

	"github.com/petal-labs/cursortools/registry"
	"github.com/petal-labs/cursortools/tool"
)

// Dispatch runs a model tool call against r and returns the result message
// content. Lookup, argument and execution failures come back as error
// results rather than Go errors so the conversation can continue.
func Dispatch(ctx context.Context, r *registry.Registry, call iriscore.ToolCall, opts tool.InvokeOptions) iriscore.ToolResult {
	result := iriscore.ToolResult{CallID: call.ID}

	t, err := r.Get(call.Name)
	if err != nil {
		result.Content = errorContent(err)
		if errors.Is(err, registry.ErrToolNotFound) {
			result.Content = map[string]any{"error": registry.NotFoundMessage(call.Name)}
		}
		result.IsError = true
		return result
	}

	out, err := NewToolAdapter(t, opts).Call(ctx, call.Arguments)
	if err != nil {
		result.Content = errorContent(err)
		result.IsError = true
		return result
	}

	content, err := toResultMap(out)
	if err != nil {
		result.Content = errorContent(err)
		result.IsError = true
		return result
	}
	result.Content = content
	return result
}

func errorContent(err error) map[string]any {
	content := map[string]any{"error": err.Error()}
	if code := tool.CodeOf(err); code != "" {
		content["code"] = code
	}
	return content
}
