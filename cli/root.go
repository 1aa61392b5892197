// Package cli implements the cursortools command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/cursortools/config"
	"github.com/petal-labs/cursortools/history"
	cursorotel "github.com/petal-labs/cursortools/otel"
	"github.com/petal-labs/cursortools/registry"
	"github.com/petal-labs/cursortools/tool"
)

// Options configures NewRootCmd.
type Options struct {
	Version string

	// Registry receives discovered tools. Defaults to a fresh registry.
	Registry *registry.Registry
	// SkipDiscovery uses Registry as given.
	SkipDiscovery bool
	// Catalog defaults to registry.DefaultCatalog().
	Catalog *registry.Catalog
	// History overrides the ledger opened from config.
	History history.Store
}

// session is the state shared by one command invocation.
type session struct {
	opts Options

	cfg       *config.Config
	logger    *slog.Logger
	registry  *registry.Registry
	history   history.Store
	telemetry *cursorotel.Telemetry
	validate  bool

	// after waits between scheduled runs.
	after func(time.Duration) <-chan time.Time
	now   func() time.Time
}

// NewRootCmd builds the cursortools command tree.
func NewRootCmd(opts Options) *cobra.Command {
	root, _ := newRootCmd(opts)
	return root
}

func newRootCmd(opts Options) (*cobra.Command, *session) {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &session{
		opts:  opts,
		after: time.After,
		now:   time.Now,
	}

	root := &cobra.Command{
		Use:   "cursortools",
		Short: "Discover and run cursor tools",
		Long:  "cursortools: run the tools registered from a discovery source.",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage:      true,
		PersistentPreRunE: s.bootstrap,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to config file (default: ./cursortools.yaml or ~/.cursortools/config.yaml)")
	flags.Bool("verbose", false, "Enable verbose/debug logging")
	flags.String("log-format", "", "Log format: text | json")
	flags.String("source", "", "Discovery source (default: tools)")
	flags.Bool("skip-broken", false, "Skip tool units that fail to load instead of aborting")
	flags.Bool("no-validate", false, "Do not check required parameters before running a tool")
	flags.String("history", "", "Path to SQLite invocation ledger")

	root.Version = opts.Version
	root.SetVersionTemplate(fmt.Sprintf("cursortools version %s\n", opts.Version))

	root.AddCommand(newListToolsCmd(s))
	root.AddCommand(newRunCmd(s))
	root.AddCommand(newInspectCmd(s))
	root.AddCommand(newWeatherCmd(s))
	root.AddCommand(newScheduleCmd(s))
	root.AddCommand(newHistoryCmd(s))

	return root, s
}

// bootstrap loads config, sets up logging and telemetry, and populates the
// registry before any subcommand runs.
func (s *session) bootstrap(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return exitError(exitValidation, "loading config: %v", err)
	}
	s.cfg = cfg

	if err := s.applyFlags(cmd); err != nil {
		return err
	}

	s.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel(), cfg.Log.Format)
	slog.SetDefault(s.logger)
	if cfg.Path() != "" {
		s.logger.Debug("loaded config", "path", cfg.Path())
	}

	telemetry, err := cursorotel.Setup(cmd.Context(), cursorotel.TelemetryOptions{
		ServiceName:    "cursortools",
		ServiceVersion: s.opts.Version,
	})
	if err != nil {
		s.logger.Warn("telemetry disabled", "error", err)
	} else {
		s.telemetry = telemetry
	}

	s.registry = s.opts.Registry
	if s.registry == nil {
		s.registry = registry.New()
	}
	if !s.opts.SkipDiscovery {
		report, err := s.registry.DiscoverWith(registry.DiscoverOptions{
			Catalog:    s.opts.Catalog,
			Source:     cfg.Discovery.Source,
			SkipBroken: cfg.Discovery.SkipBroken,
			Logger:     s.logger,
		})
		if err != nil {
			s.close()
			return exitError(exitRuntime, "discovering tools: %v", err)
		}
		s.logger.Debug("discovery finished",
			"source", report.Source,
			"registered", len(report.Registered),
			"skipped", len(report.Skipped),
		)
	}

	if err := s.configureTools(); err != nil {
		s.close()
		return err
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		path, err := history.DefaultSQLitePath()
		if err != nil {
			s.close()
			return exitError(exitRuntime, "opening history: %v", err)
		}
		cfg.History.Path = path
	}

	s.history = s.opts.History
	if s.history == nil && cfg.History.Path != "" {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			s.close()
			return exitError(exitRuntime, "opening history: %v", err)
		}
		s.history = store
	}

	s.validate = cfg.ShouldValidate()
	return nil
}

// applyFlags lets explicitly set global flags override the loaded config.
func (s *session) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg := s.cfg

	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	if flags.Changed("log-format") {
		format, _ := flags.GetString("log-format")
		format = strings.ToLower(strings.TrimSpace(format))
		if format != "text" && format != "json" {
			return exitError(exitInputParse, "invalid --log-format %q: must be text or json", format)
		}
		cfg.Log.Format = format
	}
	if flags.Changed("source") {
		source, _ := flags.GetString("source")
		if strings.TrimSpace(source) != "" {
			cfg.Discovery.Source = strings.TrimSpace(source)
		}
	}
	if skip, _ := flags.GetBool("skip-broken"); skip {
		cfg.Discovery.SkipBroken = true
	}
	if noValidate, _ := flags.GetBool("no-validate"); noValidate {
		disabled := false
		cfg.ValidateParams = &disabled
	}
	if flags.Changed("history") {
		path, _ := flags.GetString("history")
		cfg.History.Path = strings.TrimSpace(path)
	}
	return nil
}

// configureTools hands per-tool settings to configurable tools and removes
// disabled ones.
func (s *session) configureTools() error {
	for _, t := range s.registry.All() {
		settings := s.cfg.ToolSettings(t.Name())
		if len(settings) == 0 {
			continue
		}
		configurable, ok := t.(tool.Configurable)
		if !ok {
			s.logger.Warn("tool does not accept settings", "tool", t.Name())
			continue
		}
		if err := configurable.Configure(settings); err != nil {
			return exitError(exitValidation, "configuring tool %s: %v", t.Name(), err)
		}
	}
	for _, name := range s.cfg.Disabled {
		if s.registry.Unregister(name) {
			s.logger.Debug("disabled tool", "tool", name)
		}
	}
	return nil
}

// wrap releases session resources once the command returns.
func (s *session) wrap(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer s.close()
		return fn(cmd, args)
	}
}

func (s *session) close() {
	if s.history != nil && s.opts.History == nil {
		if err := s.history.Close(); err != nil {
			s.log().Warn("closing history", "error", err)
		}
	}
	s.history = nil
	if s.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.telemetry.Shutdown(ctx); err != nil {
			s.log().Warn("telemetry shutdown", "error", err)
		}
		s.telemetry = nil
	}
}

func (s *session) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// invoke runs t through tool.Invoke and records the outcome in the ledger.
func (s *session) invoke(ctx context.Context, t tool.Tool, args map[string]any) (any, error) {
	start := s.now()
	result, err := tool.Invoke(ctx, t, args, tool.InvokeOptions{SkipValidation: !s.validate})
	s.log().Debug("tool invoked",
		"tool", t.Name(),
		"args", tool.MaskArgs(t.Parameters(), args),
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err,
	)
	if s.history != nil {
		rec := history.NewRecord(t, args, result, err, start)
		if appendErr := s.history.Append(ctx, rec); appendErr != nil {
			s.log().Warn("recording history", "tool", t.Name(), "error", appendErr)
		}
	}
	return result, err
}

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
