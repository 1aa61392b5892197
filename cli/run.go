package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petal-labs/cursortools/registry"
	"github.com/petal-labs/cursortools/tool"
)

// newListToolsCmd creates the "list-tools" subcommand.
func newListToolsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list-tools",
		Short: "List all available tools",
		Args:  cobra.NoArgs,
		RunE:  s.wrap(s.runListTools),
	}
}

func (s *session) runListTools(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Available Tools:")
	fmt.Fprintln(w)
	for _, t := range s.registry.All() {
		fmt.Fprintf(w, "%s: %s\n", t.Name(), t.Description())
	}
	return nil
}

// newRunCmd creates the "run" subcommand.
func newRunCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "run <tool_name> [key=value ...]",
		Short: "Run a specific tool with arguments",
		Long: "Run a registered tool. Arguments are key=value tokens passed to the tool as strings; " +
			"tokens without '=' are ignored.",
		Args: cobra.MinimumNArgs(1),
		RunE: s.wrap(s.runRun),
	}
}

func (s *session) runRun(cmd *cobra.Command, args []string) error {
	name := args[0]
	t, err := s.lookup(name)
	if err != nil {
		return err
	}

	result, err := s.invoke(cmd.Context(), t, parseKeyValues(args[1:]))
	if err != nil {
		return invocationError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Result: %s\n", renderResult(result))
	return nil
}

// lookup resolves a tool, mapping a miss to the not-found exit code.
func (s *session) lookup(name string) (tool.Tool, error) {
	t, err := s.registry.Get(name)
	if err != nil {
		if errors.Is(err, registry.ErrToolNotFound) {
			return nil, exitError(exitNotFound, "%s", registry.NotFoundMessage(name))
		}
		return nil, exitError(exitRuntime, "%v", err)
	}
	return t, nil
}

// parseKeyValues maps key=value tokens into tool arguments. Values stay
// strings; tokens without '=' are dropped and later keys win.
func parseKeyValues(tokens []string) map[string]any {
	params := make(map[string]any, len(tokens))
	for _, token := range tokens {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		params[key] = value
	}
	return params
}

// invocationError maps a tool failure to an exit error carrying its message.
func invocationError(err error) error {
	var validationErr *tool.ValidationError
	if errors.As(err, &validationErr) {
		return exitError(exitValidation, "%s", err)
	}
	return exitError(exitRuntime, "%s", err)
}

// renderResult prints strings and Stringers as-is and everything else as
// indented JSON.
func renderResult(result any) string {
	switch v := result.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(data)
}
