package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%q) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

func TestDiscoverPathFrom_FirstMatchWins(t *testing.T) {
	cwd := t.TempDir()
	home := t.TempDir()

	projectConfig := filepath.Join(cwd, "cursortools.yaml")
	writeFile(t, projectConfig, "tools: {}")
	writeFile(t, filepath.Join(home, ".cursortools", "config.yaml"), "tools: {}")

	got, found, err := DiscoverPathFrom("", cwd, home)
	if err != nil {
		t.Fatalf("DiscoverPathFrom() error = %v", err)
	}
	if !found {
		t.Fatal("found = false, want true")
	}
	if got != projectConfig {
		t.Fatalf("path = %q, want %q", got, projectConfig)
	}
}

func TestDiscoverPathFrom_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	homeConfig := filepath.Join(home, ".cursortools", "config.yaml")
	writeFile(t, homeConfig, "tools: {}")

	got, found, err := DiscoverPathFrom("", t.TempDir(), home)
	if err != nil {
		t.Fatalf("DiscoverPathFrom() error = %v", err)
	}
	if !found || got != homeConfig {
		t.Fatalf("DiscoverPathFrom() = %q, %v, want %q, true", got, found, homeConfig)
	}
}

func TestDiscoverPathFrom_NothingFound(t *testing.T) {
	got, found, err := DiscoverPathFrom("", t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("DiscoverPathFrom() error = %v", err)
	}
	if found || got != "" {
		t.Fatalf("DiscoverPathFrom() = %q, %v, want empty", got, found)
	}
}

func TestDiscoverPathFrom_ExplicitNotFound(t *testing.T) {
	_, found, err := DiscoverPathFrom("/tmp/does-not-exist.yaml", t.TempDir(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
	if found {
		t.Fatal("found = true, want false")
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvHistoryPath, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Discovery.Source != DefaultSource {
		t.Fatalf("Discovery.Source = %q, want %q", cfg.Discovery.Source, DefaultSource)
	}
	if !cfg.ShouldValidate() {
		t.Fatal("ShouldValidate() = false, want true by default")
	}
	if cfg.LogLevel() != slog.LevelWarn {
		t.Fatalf("LogLevel() = %v, want warn", cfg.LogLevel())
	}
	if cfg.History.Limit != DefaultHistoryLimit {
		t.Fatalf("History.Limit = %d, want %d", cfg.History.Limit, DefaultHistoryLimit)
	}
	if cfg.Path() != "" {
		t.Fatalf("Path() = %q, want empty", cfg.Path())
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvHistoryPath, "")
	t.Setenv("TEST_WEATHER_KEY", "0123456789abcdef")

	dir := t.TempDir()
	path := filepath.Join(dir, "cursortools.yaml")
	writeFile(t, path, `
log:
  level: debug
  format: json
discovery:
  source: extra
  skip_broken: true
validate_params: false
history:
  path: runs.db
  limit: 5
tools:
  weather:
    api_key: ${TEST_WEATHER_KEY}
    timeout: 3s
disabled:
  - example_tool
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel() != slog.LevelDebug || cfg.Log.Format != "json" {
		t.Fatalf("Log = %+v", cfg.Log)
	}
	if cfg.Discovery.Source != "extra" || !cfg.Discovery.SkipBroken {
		t.Fatalf("Discovery = %+v", cfg.Discovery)
	}
	if cfg.ShouldValidate() {
		t.Fatal("ShouldValidate() = true, want false")
	}
	if want := filepath.Join(dir, "runs.db"); cfg.History.Path != want {
		t.Fatalf("History.Path = %q, want %q", cfg.History.Path, want)
	}
	if cfg.History.Limit != 5 {
		t.Fatalf("History.Limit = %d, want 5", cfg.History.Limit)
	}
	if got := cfg.ToolSettings("weather")["api_key"]; got != "0123456789abcdef" {
		t.Fatalf("weather api_key = %q, want expanded env value", got)
	}
	if cfg.ToolSettings("missing") != nil {
		t.Fatal("ToolSettings(missing) should be nil")
	}
	if len(cfg.Disabled) != 1 || cfg.Disabled[0] != "example_tool" {
		t.Fatalf("Disabled = %v", cfg.Disabled)
	}
	if cfg.Path() != path {
		t.Fatalf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "INFO")
	t.Setenv(EnvHistoryPath, "/var/tmp/history.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel() != slog.LevelInfo {
		t.Fatalf("LogLevel() = %v, want info", cfg.LogLevel())
	}
	if cfg.History.Path != "/var/tmp/history.db" {
		t.Fatalf("History.Path = %q", cfg.History.Path)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvHistoryPath, "")

	path := filepath.Join(t.TempDir(), "cursortools.yaml")
	writeFile(t, path, "log:\n  level: loud\n  format: xml\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() error = nil, want validation failure")
	}
	for _, want := range []string{"Log.Level must be one of", "Log.Format must be one of"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error = %q, want it to mention %q", err.Error(), want)
		}
	}
}

func TestLoad_ExpandsOnlyBracedEnvRefs(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvHistoryPath, "")
	t.Setenv("TEST_VALIDATE", "false")
	t.Setenv("HOME_REGION", "ignored")

	path := filepath.Join(t.TempDir(), "cursortools.yaml")
	writeFile(t, path, `
validate_params: ${TEST_VALIDATE}
tools:
  weather:
    api_key: "pa$$w0rd$HOME_REGION"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ShouldValidate() {
		t.Fatal("ShouldValidate() = true, want false from ${TEST_VALIDATE}")
	}
	if got := cfg.ToolSettings("weather")["api_key"]; got != "pa$$w0rd$HOME_REGION" {
		t.Fatalf("api_key = %q, want literal dollars kept", got)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursortools.yaml")
	writeFile(t, path, "log: [unterminated")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load() error = %v, want parse failure", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("Validate(nil) error = nil")
	}
}
