package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/cursortools/tools"
)

// newWeatherCmd creates the "weather" subcommand.
func newWeatherCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather <city>",
		Short: "Get current weather for a US city",
		Args:  cobra.ExactArgs(1),
		RunE:  s.wrap(s.runWeather),
	}
	// Shadows the global --verbose so -v works here too.
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	return cmd
}

func (s *session) runWeather(cmd *cobra.Command, args []string) error {
	t, err := s.lookup(tools.WeatherToolName)
	if err != nil {
		return err
	}
	result, err := s.invoke(cmd.Context(), t, map[string]any{"city": args[0]})
	if err != nil {
		return exitError(exitRuntime, "Weather API error: %s", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderResult(result))
	return nil
}
