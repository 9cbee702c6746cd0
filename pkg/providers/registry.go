package providers

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the price tables of every known LLM provider, keyed by
// provider name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("price table for %q already registered", name)
	}
	r.providers[name] = p
	return nil
}

// Put adds or replaces a provider.
func (r *Registry) Put(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("no price table for provider %q", name)
	}
	return p, nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered providers sorted by name.
func (r *Registry) All() []Provider {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		providers = append(providers, r.providers[name])
	}
	return providers
}

// Lookup returns the pricing of model from the named provider.
func (r *Registry) Lookup(providerName, model string) (ModelPricing, error) {
	p, err := r.Get(providerName)
	if err != nil {
		return ModelPricing{}, err
	}
	return p.Lookup(model)
}
