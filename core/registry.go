package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderRegistry is the static catalog of providers. Registration happens
// at process start; lookups are pure and side-effect-free.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]Provider)}
}

func (r *ProviderRegistry) Register(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("core: provider is nil")
	}
	id := strings.TrimSpace(provider.ID())
	if id == "" {
		return fmt.Errorf("core: provider id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("core: provider already registered: %s", id)
	}
	r.providers[id] = provider
	return nil
}

func (r *ProviderRegistry) Get(providerID string) (Provider, bool) {
	id := strings.TrimSpace(providerID)
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	provider, ok := r.providers[id]
	r.mu.RUnlock()
	return provider, ok
}

func (r *ProviderRegistry) Resolve(providerID string) (Provider, error) {
	provider, ok := r.Get(providerID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, strings.TrimSpace(providerID))
	}
	return provider, nil
}

func (r *ProviderRegistry) List() []Provider {
	r.mu.RLock()
	keys := make([]string, 0, len(r.providers))
	for id := range r.providers {
		keys = append(keys, id)
	}
	r.mu.RUnlock()
	sort.Strings(keys)

	providers := make([]Provider, 0, len(keys))
	r.mu.RLock()
	for _, id := range keys {
		providers = append(providers, r.providers[id])
	}
	r.mu.RUnlock()
	return providers
}

var _ Registry = (*ProviderRegistry)(nil)
