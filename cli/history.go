package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const historyResultWidth = 48

// newHistoryCmd creates the "history" subcommand.
func newHistoryCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded tool invocations",
		Args:  cobra.NoArgs,
		RunE:  s.wrap(s.runHistory),
	}
	cmd.Flags().Int("limit", 0, "Maximum number of records (default: history.limit from config)")
	return cmd
}

func (s *session) runHistory(cmd *cobra.Command, _ []string) error {
	if s.history == nil {
		return exitError(exitValidation, "history is disabled: set --history, history.path or CURSORTOOLS_HISTORY_PATH")
	}

	limit := s.cfg.History.Limit
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
		if limit < 0 {
			return exitError(exitInputParse, "--limit must be >= 0")
		}
	}

	records, err := s.history.List(cmd.Context(), limit)
	if err != nil {
		return exitError(exitRuntime, "listing history: %v", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No invocations recorded.")
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "STARTED\tTOOL\tSTATUS\tDURATION_MS\tOUTPUT")
	for _, rec := range records {
		status, output := "ok", rec.Result
		if !rec.Succeeded() {
			status, output = "error", rec.Error
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%s\n",
			rec.StartedAt.Local().Format(time.DateTime),
			rec.Tool,
			status,
			rec.DurationMS,
			truncate(output, historyResultWidth),
		)
	}
	if err := writer.Flush(); err != nil {
		return exitError(exitRuntime, "writing history: %v", err)
	}
	return nil
}

// truncate flattens s to one line of at most n runes.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
