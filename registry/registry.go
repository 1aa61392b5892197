// Package registry holds tool instances by name and discovers tool
// implementations from catalog sources.
package registry

import (
	"errors"
	"fmt"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/petal-labs/cursortools/tool"
)

// ErrToolNotFound is returned by Get when no tool has the requested name.
var ErrToolNotFound = errors.New("registry: tool not found")

// NotFoundMessage is the user-facing text for a lookup miss.
func NotFoundMessage(name string) string {
	return fmt.Sprintf("Tool '%s' not found", name)
}

var (
	global     *Registry
	globalOnce sync.Once
)

// Global returns the process-wide registry. It starts empty; callers
// populate it with Discover or Register.
func Global() *Registry {
	globalOnce.Do(func() {
		global = New()
	})
	return global
}

// Registry holds tool instances keyed by name in registration order.
type Registry struct {
	mu    sync.RWMutex
	tools *orderedmap.OrderedMap[string, tool.Tool]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		tools: orderedmap.New[string, tool.Tool](),
	}
}

// Register adds a tool. A tool with the same name is replaced and keeps its
// original position in All.
func (r *Registry) Register(t tool.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools.Set(t.Name(), t)
}

// Unregister removes a tool by name. It reports whether a tool was removed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, present := r.tools.Delete(name)
	return present
}

// Get returns the tool registered under name. Lookup is exact.
func (r *Registry) Get(name string) (tool.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return t, nil
}

// Has returns true if a tool is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools.Get(name)
	return ok
}

// All returns all registered tools in registration order.
func (r *Registry) All() []tool.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]tool.Tool, 0, r.tools.Len())
	for pair := r.tools.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, pair.Value)
	}
	return result
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, r.tools.Len())
	for pair := r.tools.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools.Len()
}
