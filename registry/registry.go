// Package registry holds the tool registry: a name-keyed, registration-order
// preserving collection of tool adapters populated once at startup and
// read-only during task runs. Registration order matters: List reports tools
// in that order, which defines deterministic planner tie-breaking
// (first-registered wins).
package registry

import (
	"errors"
	"fmt"

	"github.com/hupe1980/taskmesh/tool"
)

// Registry errors.
var (
	// ErrDuplicateTool is returned when registering a name twice.
	ErrDuplicateTool = errors.New("duplicate tool")
	// ErrNotFound is returned when looking up an unregistered name.
	ErrNotFound = errors.New("tool not found")
)

// Registry is the startup-populated tool collection. It is not synchronized:
// register everything before the first run, then treat it as immutable. An
// immutable Registry is safe for concurrent reads across task runs.
type Registry struct {
	order  []tool.Tool
	byName map[string]tool.Tool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]tool.Tool)}
}

// Register adds an adapter. Names must be unique.
func (r *Registry) Register(t tool.Tool) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("register: tool has no name")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.byName[name] = t
	r.order = append(r.order, t)
	return nil
}

// RegisterAll registers adapters in order, stopping at the first failure.
func (r *Registry) RegisterAll(tools ...tool.Tool) error {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (tool.Tool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// List returns the adapters admitted by the given task mode, in registration
// order. Hybrid admits the union of api and web tools.
func (r *Registry) List(mode tool.TaskMode) []tool.Tool {
	var out []tool.Tool
	for _, t := range r.order {
		if mode.Admits(t.Mode()) {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int { return len(r.order) }
