package registry

import (
	"reflect"
	"slices"
	"strings"
	"sync"
)

// DefaultSource is the catalog source holding the built-in tools package.
const DefaultSource = "tools"

// Symbol is one top-level type exported by a unit. New is the zero-argument
// constructor; when nil, discovery instantiates the zero value of Type.
type Symbol struct {
	Name string
	Type reflect.Type
	New  func() any
}

// Unit is a leaf source file or module contributing symbols to a source.
// Load runs before the symbols are scanned; a Load error or panic marks the
// unit as broken. Units flagged as Package are nested packages and are not
// scanned.
type Unit struct {
	Name    string
	Package bool
	Load    func() error
	Symbols []Symbol
}

// Declare returns a Symbol for T. A nil newFn leaves instantiation to the
// zero value of T.
func Declare[T any](newFn func() T) Symbol {
	typ := reflect.TypeFor[T]()
	sym := Symbol{
		Name: typeName(typ),
		Type: typ,
	}
	if newFn != nil {
		sym.New = func() any { return newFn() }
	}
	return sym
}

func typeName(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if name := typ.Name(); name != "" {
		return name
	}
	return typ.String()
}

// Catalog maps source names to the units they contain.
type Catalog struct {
	mu      sync.RWMutex
	sources map[string]map[string]Unit
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		sources: make(map[string]map[string]Unit),
	}
}

var defaultCatalog = NewCatalog()

// DefaultCatalog returns the process-wide catalog populated by Provide.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Provide adds units to a source of the default catalog. Tool packages call
// it from init so that importing the package is all the registration needed.
func Provide(source string, units ...Unit) {
	defaultCatalog.Provide(source, units...)
}

// Provide adds units to source. A unit with an existing name replaces the
// previous one.
func (c *Catalog) Provide(source string, units ...Unit) {
	source = strings.TrimSpace(source)
	c.mu.Lock()
	defer c.mu.Unlock()
	byName, ok := c.sources[source]
	if !ok {
		byName = make(map[string]Unit)
		c.sources[source] = byName
	}
	for _, unit := range units {
		byName[unit.Name] = unit
	}
}

// Units returns the units of source sorted by unit name. The boolean is false
// when the source is unknown.
func (c *Catalog) Units(source string) ([]Unit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	byName, ok := c.sources[strings.TrimSpace(source)]
	if !ok {
		return nil, false
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	units := make([]Unit, 0, len(names))
	for _, name := range names {
		units = append(units, byName[name])
	}
	return units, true
}

// Sources returns the known source names in sorted order.
func (c *Catalog) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.sources))
	for name := range c.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
