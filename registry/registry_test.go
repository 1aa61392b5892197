package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/petal-labs/cursortools/tool"
)

type namedTool struct {
	tool.Base
}

func newNamedTool(name string) *namedTool {
	return &namedTool{Base: tool.NewBase(name, "tool "+name)}
}

func (*namedTool) Parameters() map[string]tool.ParamSpec {
	return nil
}

func (t *namedTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	return t.Name(), nil
}

func TestGlobal_ReturnsSameInstance(t *testing.T) {
	r1 := Global()
	r2 := Global()
	if r1 != r2 {
		t.Error("Global() should return the same instance on every call")
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New()
	want := newNamedTool("example_tool")
	r.Register(want)

	got, err := r.Get("example_tool")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Fatalf("Get() = %p, want the registered instance %p", got, want)
	}
	if !r.Has("example_tool") {
		t.Fatal("Has() = false, want true")
	}
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := New()
	_, err := r.Get("nonexistent")
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("Get() error = %v, want ErrToolNotFound", err)
	}
	if got := NotFoundMessage("nonexistent"); got != "Tool 'nonexistent' not found" {
		t.Fatalf("NotFoundMessage() = %q", got)
	}
}

func TestRegistry_GetIsExact(t *testing.T) {
	r := New()
	r.Register(newNamedTool("weather"))
	if _, err := r.Get("Weather"); !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("Get(Weather) error = %v, want ErrToolNotFound", err)
	}
}

func TestRegistry_All_PreservesOrder(t *testing.T) {
	r := New()
	for _, name := range []string{"gamma", "alpha", "beta"} {
		r.Register(newNamedTool(name))
	}

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("All() len = %d, want 3", len(all))
	}
	for i, want := range []string{"gamma", "alpha", "beta"} {
		if all[i].Name() != want {
			t.Errorf("All()[%d] = %q, want %q", i, all[i].Name(), want)
		}
	}
}

func TestRegistry_RegisterOverwrite(t *testing.T) {
	r := New()
	r.Register(newNamedTool("alpha"))
	r.Register(newNamedTool("beta"))
	replacement := newNamedTool("alpha")
	r.Register(replacement)

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	got, _ := r.Get("alpha")
	if got != replacement {
		t.Fatal("last registration should win")
	}
	if names := r.Names(); names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("Names() = %v, want overwrite to keep position", names)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := New()
	r.Register(newNamedTool("alpha"))
	if !r.Unregister("alpha") {
		t.Fatal("Unregister() = false, want true")
	}
	if r.Unregister("alpha") {
		t.Fatal("second Unregister() = true, want false")
	}
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r.Register(newNamedTool(fmt.Sprintf("tool_%d", n)))
		}(i)
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.All()
			_ = r.Len()
			_, _ = r.Get("tool_1")
		}()
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Errorf("Len() = %d, want 50", r.Len())
	}
}
