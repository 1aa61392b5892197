// Package tool defines the contract every cursortools tool implements.
//
// The package is intentionally small and split by concern:
//   - tool: the Tool interface, parameter specs and the embeddable Base
//   - validate: required-parameter checking shared by all tools
//   - invoke: validated, observed execution used by the CLI
//   - error: structured errors tools use to surface one descriptive failure
//   - schema: JSON Schema rendering of parameter specs
//
// Concrete tools live in other packages and reach a registry through
// registry.Provide.
package tool
