package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var standardCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// newScheduleCmd creates the "schedule" subcommand.
func newScheduleCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule <cron> <tool_name> [key=value ...]",
		Short: "Run a tool on a UTC cron schedule until interrupted",
		Example: `  cursortools schedule "*/15 * * * *" weather city=Boston
  cursortools schedule "0 9 * * 1-5" example_tool message=standup --max-runs 1`,
		Args: cobra.MinimumNArgs(2),
		RunE: s.wrap(s.runSchedule),
	}
	cmd.Flags().Int("max-runs", 0, "Stop after this many runs (0 = unlimited)")
	return cmd
}

func (s *session) runSchedule(cmd *cobra.Command, args []string) error {
	schedule, err := parseCronExpressionUTC(args[0])
	if err != nil {
		return exitError(exitInputParse, "%v", err)
	}
	if schedule.Next(s.now().UTC()).IsZero() {
		return exitError(exitInputParse, "cron expression %q never fires", args[0])
	}
	maxRuns, _ := cmd.Flags().GetInt("max-runs")
	if maxRuns < 0 {
		return exitError(exitInputParse, "--max-runs must be >= 0")
	}

	t, err := s.lookup(args[1])
	if err != nil {
		return err
	}
	params := parseKeyValues(args[2:])

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	logger := s.log().With("tool", t.Name(), "cron", args[0])

	for runs := 0; maxRuns == 0 || runs < maxRuns; runs++ {
		next := schedule.Next(s.now().UTC())
		if next.IsZero() {
			logger.Debug("schedule exhausted", "runs", runs)
			return nil
		}
		logger.Debug("next scheduled run", "at", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			logger.Debug("schedule stopped", "runs", runs)
			return nil
		case <-s.after(next.Sub(s.now())):
		}

		stamp := s.now().UTC().Format(time.RFC3339)
		result, err := s.invoke(ctx, t, params)
		if err != nil {
			fmt.Fprintf(errOut, "[%s] Error: %s\n", stamp, err)
			continue
		}
		fmt.Fprintf(out, "[%s] Result: %s\n", stamp, renderResult(result))
	}
	return nil
}

func parseCronExpressionUTC(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("cron expression is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("cron expression must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := standardCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule, nil
}
