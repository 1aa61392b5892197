package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petal-labs/cursortools/tool"
)

// newInspectCmd creates the "inspect" subcommand.
func newInspectCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <tool_name>",
		Short: "Show a tool's parameters and JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE:  s.wrap(s.runInspect),
	}
	cmd.Flags().Bool("schema", false, "Print only the JSON Schema")
	return cmd
}

func (s *session) runInspect(cmd *cobra.Command, args []string) error {
	t, err := s.lookup(args[0])
	if err != nil {
		return err
	}

	schema, err := tool.SchemaJSON(t)
	if err != nil {
		return exitError(exitRuntime, "%v", err)
	}

	out := cmd.OutOrStdout()
	if only, _ := cmd.Flags().GetBool("schema"); only {
		fmt.Fprintln(out, string(schema))
		return nil
	}

	fmt.Fprintf(out, "Name:        %s\n", t.Name())
	fmt.Fprintf(out, "Description: %s\n", t.Description())

	specs := t.Parameters()
	if len(specs) > 0 {
		fmt.Fprintln(out)
		writer := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(writer, "PARAMETER\tTYPE\tREQUIRED\tDESCRIPTION")
		for _, name := range tool.ParamNames(specs) {
			spec := specs[name]
			typ := spec.Type
			if typ == "" {
				typ = tool.TypeString
			}
			required := "no"
			if spec.Required {
				required = "yes"
			}
			description := spec.Description
			if description == "" {
				description = "-"
			}
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", name, typ, required, description)
		}
		if err := writer.Flush(); err != nil {
			return exitError(exitRuntime, "writing parameters: %v", err)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Schema:")
	fmt.Fprintln(out, string(schema))
	return nil
}
