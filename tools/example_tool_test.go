package tools

import (
	"context"
	"testing"

	"github.com/petal-labs/cursortools/registry"
	"github.com/petal-labs/cursortools/tool"
)

func TestExampleToolEchoes(t *testing.T) {
	echo := NewExampleTool()
	got, err := echo.Execute(context.Background(), map[string]any{"message": "hello"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "Echo: hello" {
		t.Fatalf("Execute() = %v, want Echo: hello", got)
	}
}

func TestExampleToolMissingMessage(t *testing.T) {
	got, err := NewExampleTool().Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "Echo: " {
		t.Fatalf("Execute() = %q, want %q", got, "Echo: ")
	}
}

func TestExampleToolRequiresMessage(t *testing.T) {
	err := tool.Validate(NewExampleTool(), map[string]any{})
	if err == nil || err.Error() != "Missing required parameters: message" {
		t.Fatalf("Validate() error = %v, want missing message", err)
	}
}

func TestBuiltinSourceDiscovery(t *testing.T) {
	r := registry.New()
	report, err := r.DiscoverWith(registry.DiscoverOptions{Source: registry.DefaultSource})
	if err != nil {
		t.Fatalf("DiscoverWith() error = %v", err)
	}
	if got := r.Names(); len(got) != 2 || got[0] != ExampleToolName || got[1] != WeatherToolName {
		t.Fatalf("Names() = %v, want [%s %s]", got, ExampleToolName, WeatherToolName)
	}
	if len(report.Skipped) != 0 {
		t.Fatalf("Skipped = %v, want none", report.Skipped)
	}

	echo, err := r.Get(ExampleToolName)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if echo.Description() != "An example tool that echoes input" {
		t.Fatalf("Description() = %q", echo.Description())
	}
}
