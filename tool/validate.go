package tool

import (
	"slices"
	"strings"
)

// ValidationError reports required parameters absent from an argument map.
type ValidationError struct {
	Missing []string `json:"missing"`
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return "Missing required parameters: " + strings.Join(e.Missing, ", ")
}

// ValidateParams checks that every required parameter in specs has a key in
// params. Only presence is checked, never type or value. Missing names are
// reported in sorted order.
func ValidateParams(specs map[string]ParamSpec, params map[string]any) error {
	var missing []string
	for name, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return &ValidationError{Missing: missing}
}

// Validate runs ValidateParams against the tool's declared parameters.
func Validate(t Tool, params map[string]any) error {
	return ValidateParams(t.Parameters(), params)
}

// RequiredParams returns the sorted names of required parameters.
func RequiredParams(specs map[string]ParamSpec) []string {
	names := make([]string, 0, len(specs))
	for name, spec := range specs {
		if spec.Required {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// ParamNames returns all parameter names in deterministic order.
func ParamNames(specs map[string]ParamSpec) []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
