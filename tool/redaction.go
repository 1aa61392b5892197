package tool

import (
	"fmt"
	"strings"
)

// MaskedSecretValue is used in user-facing output for sensitive values.
const MaskedSecretValue = "**********"

// MaskArgs returns a copy of args with values of sensitive parameters masked.
func MaskArgs(specs map[string]ParamSpec, args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}

	masked := make(map[string]any, len(args))
	for key, value := range args {
		spec, ok := specs[key]
		if ok && spec.Sensitive && strings.TrimSpace(fmt.Sprint(value)) != "" {
			masked[key] = MaskedSecretValue
			continue
		}
		masked[key] = value
	}
	return masked
}

// MaskSecret replaces every occurrence of secret in s with asterisks of the
// same length. An empty secret leaves s unchanged.
func MaskSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, strings.Repeat("*", len(secret)))
}
