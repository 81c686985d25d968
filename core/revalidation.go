package core

import (
	"context"
	"fmt"
	"time"
)

// RevalidationResult summarizes one credential sweep.
type RevalidationResult struct {
	Checked  int
	Cleared  int
	Aborted  bool
	Failures []string
}

// RevalidateCredentials re-probes every cached credential against its
// provider and clears entries the remote service now rejects. Transport
// failures leave the entry untouched; they say nothing about the key. The
// sweep aborts as soon as a switch supersedes the epoch it started under, so
// it can never clobber state a newer attempt owns.
func (c *SwitchCoordinator) RevalidateCredentials(ctx context.Context) (RevalidationResult, error) {
	if c == nil {
		return RevalidationResult{}, fmt.Errorf("core: switch coordinator is nil")
	}

	c.mu.Lock()
	startEpoch := c.epoch
	providers := c.registry.List()
	c.mu.Unlock()

	result := RevalidationResult{}
	for _, provider := range providers {
		if provider == nil || !provider.RequiresCredential() {
			continue
		}
		id := normalizeProviderID(provider.ID())
		key, found := c.credentials.Get(ctx, id)
		if !found {
			continue
		}

		result.Checked++
		accepted, err := c.validateKey(ctx, provider, key)

		c.mu.Lock()
		if c.epoch != startEpoch {
			c.mu.Unlock()
			result.Aborted = true
			logWithLevel(ctx, c.logger, "info", "credential sweep superseded by a switch, aborting", map[string]any{
				"provider_id": id,
				"epoch":       startEpoch,
			})
			return result, nil
		}
		switch {
		case err != nil:
			result.Failures = append(result.Failures, id)
			logWithLevel(ctx, c.logger, "error", "credential sweep probe failed, keeping entry", map[string]any{
				"provider_id": id,
				"error":       err.Error(),
			})
		case !accepted:
			c.credentials.Clear(ctx, id)
			result.Cleared++
			logWithLevel(ctx, c.logger, "info", "cached credential no longer accepted, cleared", map[string]any{
				"provider_id": id,
			})
		}
		c.mu.Unlock()
	}
	return result, nil
}

// RevalidateCredentials runs a cached-credential sweep; see the coordinator
// method for semantics. Exposed on the service so the job surface can invoke
// it without reaching into the coordinator.
func (s *Service) RevalidateCredentials(ctx context.Context) (RevalidationResult, error) {
	if s == nil || s.coordinator == nil {
		return RevalidationResult{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := time.Now()
	result, err := s.coordinator.RevalidateCredentials(ctx)
	s.observeOperation(ctx, startedAt, "credential_revalidation", err, map[string]any{
		"checked": result.Checked,
		"cleared": result.Cleared,
		"aborted": result.Aborted,
	})
	return result, err
}
