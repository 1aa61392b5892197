package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/petal-labs/cursortools/tool"
)

// ErrSourceNotFound is returned when a discovery source is not in the catalog.
var ErrSourceNotFound = errors.New("registry: source not found")

var toolType = reflect.TypeFor[tool.Tool]()

// UnitError reports a unit that failed to load during discovery.
type UnitError struct {
	Source string
	Unit   string
	Err    error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("registry: load %s.%s: %v", e.Source, e.Unit, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// DiscoverOptions controls a discovery pass.
type DiscoverOptions struct {
	// Catalog defaults to DefaultCatalog().
	Catalog *Catalog
	// Source defaults to DefaultSource.
	Source string
	// SkipBroken logs and skips units that fail to load instead of aborting
	// the pass on the first failure.
	SkipBroken bool
	Logger     *slog.Logger
}

// DiscoveryReport summarizes one discovery pass.
type DiscoveryReport struct {
	Source     string
	Registered []string
	Skipped    []*UnitError
}

// Discover registers every tool found in source of the default catalog. It
// stops at the first unit that fails to load.
func (r *Registry) Discover(source string) error {
	_, err := r.DiscoverWith(DiscoverOptions{Source: source})
	return err
}

// DiscoverWith scans the units of a catalog source and registers a fresh
// instance of every concrete tool type it finds. Interface types, including
// the tool contract itself, and types that do not implement tool.Tool are
// never instantiated. Running it again replaces same-named tools with new
// instances.
func (r *Registry) DiscoverWith(opts DiscoverOptions) (DiscoveryReport, error) {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = DefaultSource
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	report := DiscoveryReport{Source: source}
	observe := func(success bool) {
		tool.EmitDiscoveryObservation(tool.DiscoveryObservation{
			Source:     source,
			Registered: len(report.Registered),
			Skipped:    len(report.Skipped),
			DurationMS: time.Since(start).Milliseconds(),
			Success:    success,
		})
	}

	units, ok := catalog.Units(source)
	if !ok {
		observe(false)
		return report, fmt.Errorf("%w: %q", ErrSourceNotFound, source)
	}

	for _, unit := range units {
		if unit.Package {
			continue
		}

		tools, err := loadUnit(unit)
		if err != nil {
			unitErr := &UnitError{Source: source, Unit: unit.Name, Err: err}
			if !opts.SkipBroken {
				observe(false)
				return report, unitErr
			}
			logger.Warn("skipping broken tool unit", "source", source, "unit", unit.Name, "error", err)
			report.Skipped = append(report.Skipped, unitErr)
			continue
		}

		for _, t := range tools {
			r.Register(t)
			report.Registered = append(report.Registered, t.Name())
			logger.Debug("registered tool", "source", source, "unit", unit.Name, "tool", t.Name())
		}
	}

	observe(true)
	return report, nil
}

// loadUnit runs the unit's Load hook and instantiates its tool symbols. A
// unit is all-or-nothing: any failure returns no tools.
func loadUnit(unit Unit) (tools []tool.Tool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			tools = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	if unit.Load != nil {
		if err := unit.Load(); err != nil {
			return nil, err
		}
	}

	for _, sym := range unit.Symbols {
		if !IsToolType(sym.Type) {
			continue
		}
		t, err := instantiate(sym)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(t.Name()) == "" {
			return nil, fmt.Errorf("symbol %s: tool name is empty", sym.Name)
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// IsToolType reports whether typ is a concrete type whose value or pointer
// implements tool.Tool.
func IsToolType(typ reflect.Type) bool {
	if typ == nil || typ.Kind() == reflect.Interface {
		return false
	}
	if typ.Implements(toolType) {
		return true
	}
	return typ.Kind() != reflect.Pointer && reflect.PointerTo(typ).Implements(toolType)
}

func instantiate(sym Symbol) (tool.Tool, error) {
	if sym.New != nil {
		t, ok := sym.New().(tool.Tool)
		if !ok || t == nil {
			return nil, fmt.Errorf("symbol %s: constructor did not return a tool", sym.Name)
		}
		return t, nil
	}

	elem := sym.Type
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	ptr := reflect.New(elem)
	if t, ok := ptr.Interface().(tool.Tool); ok {
		return t, nil
	}
	if t, ok := ptr.Elem().Interface().(tool.Tool); ok {
		return t, nil
	}
	return nil, fmt.Errorf("symbol %s: zero value does not implement tool.Tool", sym.Name)
}
