package provider

import (
	"fmt"
	"sync"
)

// Entry pairs a descriptor with its implementation.
type Entry struct {
	Descriptor Descriptor
	Impl       Provider
}

// Registry holds the ordered set of configured providers and their
// enabled flags. The enabled set is external state (persisted settings)
// that the registry reflects; it does not own persistence.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds a provider. Registration order is preserved by
// ListEnabled. Re-registering an existing value replaces the
// implementation but keeps the original position.
func (r *Registry) Register(d Descriptor, impl Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[d.Value]; !ok {
		r.order = append(r.order, d.Value)
	}
	r.entries[d.Value] = &Entry{Descriptor: d, Impl: impl}
}

// Get returns the entry for a provider value.
func (r *Registry) Get(value string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[value]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", value, ErrNotFound)
	}
	return e, nil
}

// ListEnabled returns the enabled providers in registration order.
func (r *Registry) ListEnabled() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.order))
	for _, v := range r.order {
		if e := r.entries[v]; e.Descriptor.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// SetEnabled toggles a provider's enabled flag. Unknown values are
// ignored; the settings layer may reference providers that are not
// compiled in.
func (r *Registry) SetEnabled(value string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[value]; ok {
		e.Descriptor.Enabled = enabled
	}
}
