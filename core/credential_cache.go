package core

import (
	"context"
	"strings"
	"sync"
)

type cachedCredential struct {
	value  string
	exists bool
}

// CredentialCache fronts a durable CredentialStore with a session-local
// overlay. Persistence failures never propagate to callers: the overlay keeps
// serving the session state and the failure is logged, so a broken store
// degrades the cache to in-memory-only instead of failing a switch.
type CredentialCache struct {
	mu     sync.Mutex
	store  CredentialStore
	logger Logger
	local  map[string]cachedCredential
}

func NewCredentialCache(store CredentialStore, logger Logger) *CredentialCache {
	return &CredentialCache{
		store:  store,
		logger: logger,
		local:  make(map[string]cachedCredential),
	}
}

// Get returns the cached credential for a provider. The session overlay is
// authoritative once a provider has been touched; otherwise the durable store
// is consulted and a read failure is treated as "no cached credential".
func (c *CredentialCache) Get(ctx context.Context, providerID string) (string, bool) {
	if c == nil {
		return "", false
	}
	id := normalizeProviderID(providerID)
	if id == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.local[id]; ok {
		return entry.value, entry.exists
	}
	if c.store == nil {
		return "", false
	}

	value, found, err := c.store.Get(ctx, id)
	if err != nil {
		logWithLevel(ctx, c.logger, "error", "credential store read failed, treating as absent", map[string]any{
			"provider_id": id,
			"error":       err.Error(),
		})
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		found = false
	}
	c.local[id] = cachedCredential{value: value, exists: found}
	return value, found
}

// Put records a validated credential. Only credentials that passed validation
// may be stored here; the coordinator is the sole writer.
func (c *CredentialCache) Put(ctx context.Context, providerID string, credential string) {
	if c == nil {
		return
	}
	id := normalizeProviderID(providerID)
	credential = strings.TrimSpace(credential)
	if id == "" || credential == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.local[id] = cachedCredential{value: credential, exists: true}
	if c.store == nil {
		return
	}
	if err := c.store.Put(ctx, id, credential); err != nil {
		logWithLevel(ctx, c.logger, "error", "credential store write failed, keeping in-memory copy", map[string]any{
			"provider_id": id,
			"error":       err.Error(),
		})
	}
}

// Clear removes any trace of a provider credential, including a tombstone in
// the overlay so a failed durable delete cannot resurrect a rejected key.
func (c *CredentialCache) Clear(ctx context.Context, providerID string) {
	if c == nil {
		return
	}
	id := normalizeProviderID(providerID)
	if id == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.local[id] = cachedCredential{}
	if c.store == nil {
		return
	}
	if err := c.store.Clear(ctx, id); err != nil {
		logWithLevel(ctx, c.logger, "error", "credential store delete failed, entry cleared in-memory only", map[string]any{
			"provider_id": id,
			"error":       err.Error(),
		})
	}
}
