package gallery

import (
	"slices"
	"sync"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
)

// Registry holds the set of available adapters keyed by source type.
// Registration normally happens once at start-up, but the registry is
// safe for concurrent registration and lookup.
type Registry struct {
	mu       sync.RWMutex
	adapters map[SourceType]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[SourceType]Adapter)}
}

// Register adds an adapter, replacing any previous adapter for the same
// source type.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Source()] = a
}

// Unregister removes the adapter for a source type and reports whether
// one was registered.
func (r *Registry) Unregister(source SourceType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.adapters[source]
	delete(r.adapters, source)
	return ok
}

// Get returns the adapter for a source type.
func (r *Registry) Get(source SourceType) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[source]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.ErrCodeNoAdapter,
			"%s", "no adapter registered for source "+string(source))
	}
	return a, nil
}

// Has reports whether a source type has a registered adapter.
func (r *Registry) Has(source SourceType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.adapters[source]
	return ok
}

// Sources returns the registered source types in stable order.
func (r *Registry) Sources() []SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SourceType, 0, len(r.adapters))
	for s := range r.adapters {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// All returns every registered adapter in stable source order.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]SourceType, 0, len(r.adapters))
	for s := range r.adapters {
		types = append(types, s)
	}
	slices.Sort(types)
	out := make([]Adapter, 0, len(types))
	for _, s := range types {
		out = append(out, r.adapters[s])
	}
	return out
}

// Clear removes all registered adapters.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = make(map[SourceType]Adapter)
}

// AdaptersFor resolves an ordered source list to its registered
// adapters, preserving order and skipping unregistered sources.
func (r *Registry) AdaptersFor(sources []SourceType) []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(sources))
	for _, s := range sources {
		if a, ok := r.adapters[s]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Filter returns the subset of sources that have a registered adapter,
// preserving input order. Unregistered sources are skipped silently so a
// configured chain degrades to whatever adapters are actually present.
func (r *Registry) Filter(sources []SourceType) []SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SourceType, 0, len(sources))
	for _, s := range sources {
		if _, ok := r.adapters[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
