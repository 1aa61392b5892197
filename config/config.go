// Package config loads cursortools settings from YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "cursortools.yaml"
	homeConfigDir     = ".cursortools"
	homeConfigName    = "config.yaml"

	// EnvConfigPath names an explicit config file.
	EnvConfigPath = "CURSORTOOLS_CONFIG"
	// EnvLogLevel overrides log.level.
	EnvLogLevel = "CURSORTOOLS_LOG_LEVEL"
	// EnvHistoryPath overrides history.path.
	EnvHistoryPath = "CURSORTOOLS_HISTORY_PATH"

	// DefaultSource is the discovery source used when none is configured.
	DefaultSource = "tools"
	// DefaultHistoryLimit caps `history` output when no limit is given.
	DefaultHistoryLimit = 20
)

// Config is the decoded cursortools.yaml file.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	History   HistoryConfig   `yaml:"history"`

	// ValidateParams toggles required-parameter checks before execution.
	// Nil means enabled.
	ValidateParams *bool `yaml:"validate_params"`

	// Tools holds per-tool settings handed to tools that accept configuration.
	Tools map[string]map[string]string `yaml:"tools" validate:"dive,keys,required,endkeys"`

	// Disabled lists tools removed from the registry after discovery.
	Disabled []string `yaml:"disabled" validate:"dive,required"`

	path string
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// DiscoveryConfig controls registry discovery.
type DiscoveryConfig struct {
	Source     string `yaml:"source"`
	SkipBroken bool   `yaml:"skip_broken"`
}

// HistoryConfig enables the invocation ledger when Path is set. Enabled with
// no Path uses the ledger under the user's home directory.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Limit   int    `yaml:"limit" validate:"gte=0"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "warn", Format: "text"},
		Discovery: DiscoveryConfig{Source: DefaultSource},
		History:   HistoryConfig{Limit: DefaultHistoryLimit},
	}
}

// Path is the file the config was read from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// ShouldValidate reports whether required parameters are checked before a
// tool runs.
func (c *Config) ShouldValidate() bool {
	return c.ValidateParams == nil || *c.ValidateParams
}

// LogLevel maps Log.Level to a slog level, defaulting to warn.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// ToolSettings returns the settings block for name, or nil.
func (c *Config) ToolSettings(name string) map[string]string {
	if c.Tools == nil {
		return nil
	}
	return c.Tools[name]
}

// DiscoverPath resolves the config path for the current process. An explicit
// path, or CURSORTOOLS_CONFIG when explicit is empty, must exist.
func DiscoverPath(explicitPath string) (string, bool, error) {
	if strings.TrimSpace(explicitPath) == "" {
		explicitPath = os.Getenv(EnvConfigPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverPathFrom is a testable variant of DiscoverPath. The first existing
// candidate wins: the explicit path, then ./cursortools.yaml, then
// ~/.cursortools/config.yaml.
func DiscoverPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	explicit := strings.TrimSpace(explicitPath)
	candidates := make([]string, 0, 2)
	if explicit != "" {
		candidates = append(candidates, filepath.Clean(explicit))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		if homeDir != "" {
			candidates = append(candidates, filepath.Join(homeDir, homeConfigDir, homeConfigName))
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if explicit != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// Load reads the config at path on top of Default, applies environment
// overrides and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if clean := strings.TrimSpace(path); clean != "" {
		data, err := os.ReadFile(clean)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", clean, err)
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", clean, err)
		}
		expandEnvRefs(&doc)
		if len(doc.Content) > 0 {
			if err := doc.Decode(cfg); err != nil {
				return nil, fmt.Errorf("parse config %q: %w", clean, err)
			}
		}
		cfg.path = clean
		if cfg.History.Path != "" {
			cfg.History.Path = resolveRelative(filepath.Dir(clean), cfg.History.Path)
		}
	}

	cfg.applyEnv()
	if strings.TrimSpace(cfg.Discovery.Source) == "" {
		cfg.Discovery.Source = DefaultSource
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = DefaultHistoryLimit
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve discovers and loads the config for the current process.
func Resolve(explicitPath string) (*Config, error) {
	path, _, err := DiscoverPath(explicitPath)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

func (c *Config) applyEnv() {
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
	if path := strings.TrimSpace(os.Getenv(EnvHistoryPath)); path != "" {
		c.History.Path = path
	}
}

func resolveRelative(baseDir, p string) string {
	clean := filepath.Clean(p)
	if filepath.IsAbs(clean) {
		return clean
	}
	return filepath.Join(baseDir, clean)
}

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvRefs replaces ${NAME} in scalar values. Any other '$' is kept.
func expandEnvRefs(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode {
		expanded := envRefPattern.ReplaceAllStringFunc(node.Value, func(ref string) string {
			return os.Getenv(ref[2 : len(ref)-1])
		})
		if expanded != node.Value {
			node.Value = expanded
			// Plain scalars re-resolve so ${VAR} can yield bools and ints.
			if node.Style == 0 {
				node.Tag = ""
			}
		}
		return
	}
	for _, child := range node.Content {
		expandEnvRefs(child)
	}
}
