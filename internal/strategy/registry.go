package strategy

import (
	"fmt"
	"sync"

	"github.com/dshills/codechunk/pkg/types"
)

// Registry holds every concrete segmentation strategy, keyed by name. All
// strategies are registered at startup; afterward the registry is read-only
// shared state, safe for concurrent lookups from the worker pool.
//
// Registration order is preserved because the selector uses it as the final
// deterministic tie-break.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Strategy)}
}

// NewDefaultRegistry creates a registry with the full built-in strategy set.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []Strategy{
		NewASTStrategy(),
		NewFunctionStrategy(),
		NewMarkdownStrategy(),
		NewXMLStrategy(),
		NewSemanticStrategy(),
		NewBracketStrategy(),
		NewLineStrategy(),
	} {
		// Built-in names never collide.
		_ = r.Register(s)
	}
	return r
}

// Register adds a strategy. Duplicate names are rejected.
func (r *Registry) Register(s Strategy) error {
	name := s.Descriptor().Name
	if name == "" {
		return fmt.Errorf("strategy has empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("strategy %q already registered", name)
	}
	r.byName[name] = s
	r.order = append(r.order, name)
	return nil
}

// Get returns the strategy with the given name.
func (r *Registry) Get(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// Descriptor returns the capability descriptor for a registered strategy.
func (r *Registry) Descriptor(name string) (types.StrategyDescriptor, bool) {
	s, ok := r.Get(name)
	if !ok {
		return types.StrategyDescriptor{}, false
	}
	return s.Descriptor(), true
}

// All returns every strategy in registration order.
func (r *Registry) All() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Strategy, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// ForLanguage returns the strategies supporting the given language, in
// registration order. Language-agnostic strategies always qualify.
func (r *Registry) ForLanguage(language string) []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Strategy, 0, len(r.order))
	for _, name := range r.order {
		s := r.byName[name]
		if s.Descriptor().SupportsLanguage(language) {
			out = append(out, s)
		}
	}
	return out
}

// Index returns the registration position of a strategy, used for
// deterministic tie-breaking. Unknown names sort last.
func (r *Registry) Index(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, n := range r.order {
		if n == name {
			return i
		}
	}
	return len(r.order)
}

// Len returns the number of registered strategies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
