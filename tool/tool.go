package tool

import "context"

// Parameter type names used in ParamSpec.Type.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// ParamSpec describes one named tool parameter.
type ParamSpec struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	// Sensitive values are masked in logs and invocation history.
	Sensitive bool `json:"sensitive,omitempty" yaml:"sensitive,omitempty"`
}

// Tool is a named, described unit of work.
//
// Name and Description must be stable for the lifetime of the instance and
// Parameters must be free of side effects. Execute may block on I/O; tools
// own their timeout policy and must return failures rather than swallow them.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]ParamSpec
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// Configurable is implemented by tools that accept settings after
// construction, typically from the config file.
type Configurable interface {
	Configure(settings map[string]string) error
}

// Base carries the immutable identity fields of a tool. Concrete tools embed
// it and implement Parameters and Execute.
type Base struct {
	name        string
	description string
}

// NewBase returns a Base with the given identity.
func NewBase(name, description string) Base {
	return Base{name: name, description: description}
}

// Name returns the tool name.
func (b Base) Name() string {
	return b.name
}

// Description returns the human readable tool description.
func (b Base) Description() string {
	return b.description
}
