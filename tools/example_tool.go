package tools

import (
	"context"
	"fmt"

	"github.com/petal-labs/cursortools/registry"
	"github.com/petal-labs/cursortools/tool"
)

// ExampleToolName is the registry name of the echo tool.
const ExampleToolName = "example_tool"

func init() {
	registry.Provide(registry.DefaultSource, registry.Unit{
		Name:    "example_tool",
		Symbols: []registry.Symbol{registry.Declare(NewExampleTool)},
	})
}

// ExampleTool echoes its message input.
type ExampleTool struct {
	tool.Base
}

var _ tool.Tool = (*ExampleTool)(nil)

// NewExampleTool returns the echo tool.
func NewExampleTool() *ExampleTool {
	return &ExampleTool{
		Base: tool.NewBase(ExampleToolName, "An example tool that echoes input"),
	}
}

// Parameters declares the single required message input.
func (*ExampleTool) Parameters() map[string]tool.ParamSpec {
	return map[string]tool.ParamSpec{
		"message": {
			Type:        tool.TypeString,
			Description: "Message to echo",
			Required:    true,
		},
	}
}

// Execute returns "Echo: <message>". A missing message echoes the empty string.
func (*ExampleTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	message, ok := args["message"]
	if !ok || message == nil {
		message = ""
	}
	return fmt.Sprintf("Echo: %v", message), nil
}
