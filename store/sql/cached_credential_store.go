package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-chat/core"
)

const credentialCacheKeyPrefix = "go-chat::credential::v1"

type cachedCredentialEntry struct {
	Credential string
	Found      bool
}

// CachedCredentialStore is a read-through decorator over a CredentialStore.
// Writes invalidate the cache entry so reads always reflect the durable row.
type CachedCredentialStore struct {
	base  core.CredentialStore
	cache repositorycache.CacheService
}

func NewCachedCredentialStore(
	base core.CredentialStore,
	cacheService repositorycache.CacheService,
) (*CachedCredentialStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base credential store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: credential cache service is required")
	}
	return &CachedCredentialStore{base: base, cache: cacheService}, nil
}

// CredentialCacheKey returns the deterministic cache key for a provider's
// credential read: go-chat::credential::v1::<provider_id>, provider segment
// URL-path escaped.
func CredentialCacheKey(providerID string) (string, error) {
	trimmedProviderID := strings.TrimSpace(providerID)
	if trimmedProviderID == "" {
		return "", fmt.Errorf("sqlstore: provider id is required")
	}
	return credentialCacheKeyPrefix + "::" + url.PathEscape(trimmedProviderID), nil
}

func (s *CachedCredentialStore) Get(ctx context.Context, providerID string) (string, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return "", false, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	cacheKey, err := CredentialCacheKey(providerID)
	if err != nil {
		return "", false, err
	}
	entry, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedCredentialEntry, error) {
		credential, found, fetchErr := s.base.Get(ctx, providerID)
		if fetchErr != nil {
			return cachedCredentialEntry{}, fetchErr
		}
		return cachedCredentialEntry{Credential: credential, Found: found}, nil
	})
	if err != nil {
		return "", false, err
	}
	return entry.Credential, entry.Found, nil
}

func (s *CachedCredentialStore) Put(ctx context.Context, providerID string, credential string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	if err := s.base.Put(ctx, providerID, credential); err != nil {
		return err
	}
	return s.invalidate(ctx, providerID)
}

func (s *CachedCredentialStore) Clear(ctx context.Context, providerID string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	if err := s.base.Clear(ctx, providerID); err != nil {
		return err
	}
	return s.invalidate(ctx, providerID)
}

func (s *CachedCredentialStore) invalidate(ctx context.Context, providerID string) error {
	cacheKey, err := CredentialCacheKey(providerID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.CredentialStore = (*CachedCredentialStore)(nil)
