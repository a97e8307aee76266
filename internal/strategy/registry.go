// Package strategy ships the built-in trading strategies and a registry for
// looking them up by name. User strategies only need to satisfy
// ports.Strategy; nothing here is special-cased by the engine.
package strategy

import (
	"sort"

	"github.com/yannickvh/ctrade/internal/ports"
)

// Registry holds a named collection of strategies.
type Registry struct {
	strategies map[string]ports.Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]ports.Strategy)}
}

// Register adds a strategy keyed by its Name().
func (r *Registry) Register(s ports.Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name.
func (r *Registry) Get(name string) (ports.Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns the sorted names of all registered strategies.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
