package store

import (
	"sort"
	"sync"
)

// Registry holds the set of initialized object store types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]struct{}
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]struct{}),
	}
}

// Register marks a type as initialized. Registering twice is a no-op.
func (r *Registry) Register(typ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[typ] = struct{}{}
}

// Has returns true if the type has been registered.
func (r *Registry) Has(typ string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[typ]
	return ok
}

// Types returns all registered types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
