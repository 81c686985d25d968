package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	defaultValidationTimeout = 10 * time.Second
	// One initial validation plus exactly one retry on explicit rejection.
	defaultMaxKeyAttempts = 2
)

// SwitchCoordinator owns the provider-switch workflow: it is the only writer
// of the active-provider state and of the credential cache. Every switch
// request is tagged with a monotonically increasing epoch; an attempt whose
// epoch has been superseded while its validation was in flight discards its
// result without mutating state or notifying the UI.
type SwitchCoordinator struct {
	registry    Registry
	credentials *CredentialCache
	ui          UserInterface
	logger      Logger
	metrics     MetricsRecorder
	validation  ValidationConfig

	// mu serializes the non-suspending portion of a switch. It is released
	// only around the validation call, which is the single suspension point.
	mu    sync.Mutex
	epoch uint64
	phase SwitchPhase

	activeMu sync.RWMutex
	active   string
}

type SwitchCoordinatorDeps struct {
	Registry        Registry
	Credentials     *CredentialCache
	UserInterface   UserInterface
	Logger          Logger
	MetricsRecorder MetricsRecorder
	Validation      ValidationConfig
	InitialProvider string
}

func NewSwitchCoordinator(deps SwitchCoordinatorDeps) (*SwitchCoordinator, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("core: switch coordinator requires a registry")
	}
	credentials := deps.Credentials
	if credentials == nil {
		credentials = NewCredentialCache(nil, deps.Logger)
	}
	metrics := deps.MetricsRecorder
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}
	initial := normalizeProviderID(deps.InitialProvider)
	if initial != "" {
		if _, err := deps.Registry.Resolve(initial); err != nil {
			return nil, chatErrorMapper(err)
		}
	}
	return &SwitchCoordinator{
		registry:    deps.Registry,
		credentials: credentials,
		ui:          deps.UserInterface,
		logger:      deps.Logger,
		metrics:     metrics,
		validation:  deps.Validation,
		phase:       SwitchPhaseIdle,
		active:      initial,
	}, nil
}

// ActiveProvider returns the current active provider id. During a pending
// validation this is the optimistically activated target.
func (c *SwitchCoordinator) ActiveProvider() string {
	if c == nil {
		return ""
	}
	c.activeMu.RLock()
	defer c.activeMu.RUnlock()
	return c.active
}

func (c *SwitchCoordinator) setActive(providerID string) {
	c.activeMu.Lock()
	c.active = providerID
	c.activeMu.Unlock()
}

// RequestSwitch runs one provider-switch attempt end to end. Exactly one
// terminal notification (confirmed or reverted) is emitted for every attempt
// that still owns the outcome; a superseded attempt returns
// OutcomeSuperseded silently.
func (c *SwitchCoordinator) RequestSwitch(ctx context.Context, targetID string) (SwitchResult, error) {
	if c == nil {
		return SwitchResult{}, fmt.Errorf("core: switch coordinator is nil")
	}
	target := normalizeProviderID(targetID)
	startedAt := time.Now()

	c.mu.Lock()

	provider, err := c.registry.Resolve(target)
	if err != nil {
		current := c.ActiveProvider()
		c.mu.Unlock()
		result := SwitchResult{
			Outcome:        OutcomeReverted,
			ActiveProvider: current,
			Reason:         ReasonUnknownProvider,
		}
		c.notify(ProviderStateEvent{
			Kind:       ProviderStateReverted,
			ProviderID: current,
			Reason:     ReasonUnknownProvider,
			Message:    fmt.Sprintf("unknown provider %q, staying on %q", target, current),
		})
		c.observeSwitch(ctx, startedAt, target, result, err)
		return result, chatErrorMapper(err)
	}

	// Switching to the provider that is already confirmed active needs no
	// credential prompt and no network call.
	if target == c.ActiveProvider() && c.resting() {
		c.phase = SwitchPhaseConfirmed
		c.mu.Unlock()
		result := SwitchResult{Outcome: OutcomeConfirmed, ActiveProvider: target}
		c.notify(ProviderStateEvent{
			Kind:       ProviderStateConfirmed,
			ProviderID: target,
			Message:    fmt.Sprintf("provider %q is active", target),
		})
		c.observeSwitch(ctx, startedAt, target, result, nil)
		return result, nil
	}

	// Any activation invalidates whatever attempt may still be in flight.
	c.epoch++
	attempt := &switchAttempt{
		epoch:    c.epoch,
		target:   target,
		previous: c.ActiveProvider(),
	}

	if !provider.RequiresCredential() {
		c.setActive(target)
		c.phase = SwitchPhaseConfirmed
		c.mu.Unlock()
		result := SwitchResult{Outcome: OutcomeConfirmed, ActiveProvider: target, Epoch: attempt.epoch}
		c.notify(ProviderStateEvent{
			Kind:       ProviderStateConfirmed,
			ProviderID: target,
			Message:    fmt.Sprintf("switched to %q", target),
		})
		c.observeSwitch(ctx, startedAt, target, result, nil)
		return result, nil
	}

	c.phase = SwitchPhaseAwaitingCredential
	if key, ok := c.credentials.Get(ctx, target); ok {
		attempt.candidateKey = key
	} else {
		supplied, promptErr := c.promptCredential(ctx, fmt.Sprintf("Enter the API key for %q", target))
		if promptErr != nil || supplied == "" {
			c.phase = SwitchPhaseReverted
			c.mu.Unlock()
			result := SwitchResult{
				Outcome:        OutcomeReverted,
				ActiveProvider: attempt.previous,
				Reason:         ReasonMissingCredential,
				Epoch:          attempt.epoch,
			}
			// No-op transition: previous is still the active provider. The
			// UI is informed regardless so every attempt ends audibly.
			c.notify(ProviderStateEvent{
				Kind:       ProviderStateReverted,
				ProviderID: attempt.previous,
				Reason:     ReasonMissingCredential,
				Message:    fmt.Sprintf("no credential supplied for %q, staying on %q", target, attempt.previous),
			})
			missErr := fmt.Errorf("%w: provider %q", ErrCredentialMissing, target)
			c.observeSwitch(ctx, startedAt, target, result, missErr)
			return result, chatErrorMapper(missErr)
		}
		attempt.candidateKey = supplied
	}

	// Optimistic activation: the UI reflects the switch before validation
	// finishes; validation resolves it to confirmed or reverted.
	c.setActive(target)
	c.phase = SwitchPhaseValidating
	c.mu.Unlock()
	c.notify(ProviderStateEvent{
		Kind:       ProviderStateTentative,
		ProviderID: target,
		Message:    fmt.Sprintf("switched to %q, validating credential", target),
	})

	for {
		accepted, validateErr := c.validateKey(ctx, provider, attempt.candidateKey)

		c.mu.Lock()
		if c.epoch != attempt.epoch {
			// A newer attempt owns the outcome; discard silently.
			current := c.ActiveProvider()
			c.mu.Unlock()
			result := SwitchResult{Outcome: OutcomeSuperseded, ActiveProvider: current, Epoch: attempt.epoch}
			logWithLevel(ctx, c.logger, "info", "stale validation result discarded", map[string]any{
				"provider_id": target,
				"epoch":       attempt.epoch,
			})
			return result, nil
		}

		if validateErr != nil {
			c.credentials.Clear(ctx, target)
			c.setActive(attempt.previous)
			c.phase = SwitchPhaseReverted
			c.mu.Unlock()
			result := SwitchResult{
				Outcome:        OutcomeReverted,
				ActiveProvider: attempt.previous,
				Reason:         ReasonTransportFailure,
				Epoch:          attempt.epoch,
			}
			c.notify(ProviderStateEvent{
				Kind:       ProviderStateReverted,
				ProviderID: attempt.previous,
				Reason:     ReasonTransportFailure,
				Message: fmt.Sprintf(
					"could not reach %q to validate the credential, reverted to %q; if direct calls are blocked you may need a relay",
					target, attempt.previous,
				),
			})
			transportErr := fmt.Errorf("%w: %v", ErrTransportFailure, validateErr)
			c.observeSwitch(ctx, startedAt, target, result, transportErr)
			return result, chatErrorMapper(transportErr)
		}

		if accepted {
			c.credentials.Put(ctx, target, attempt.candidateKey)
			if carrier, ok := provider.(CredentialCarrier); ok {
				carrier.SetCredential(attempt.candidateKey)
			}
			c.phase = SwitchPhaseConfirmed
			c.mu.Unlock()
			result := SwitchResult{Outcome: OutcomeConfirmed, ActiveProvider: target, Epoch: attempt.epoch}
			c.notify(ProviderStateEvent{
				Kind:       ProviderStateConfirmed,
				ProviderID: target,
				Message:    fmt.Sprintf("credential for %q accepted", target),
			})
			c.observeSwitch(ctx, startedAt, target, result, nil)
			return result, nil
		}

		// Explicit rejection: the key is bad, not the network.
		c.credentials.Clear(ctx, target)

		if attempt.retriesUsed >= c.maxKeyRetries() {
			return c.revertRejected(ctx, startedAt, attempt)
		}

		c.phase = SwitchPhaseRetrying
		replacement, promptErr := c.promptCredential(ctx, fmt.Sprintf("The key for %q was rejected, enter a replacement", target))
		if promptErr != nil || replacement == "" {
			return c.revertRejected(ctx, startedAt, attempt)
		}
		attempt.retriesUsed++
		attempt.candidateKey = replacement
		// Still tentatively active on the target; no second tentative event.
		c.phase = SwitchPhaseValidating
		c.mu.Unlock()
	}
}

// revertRejected finishes a rejection terminal transition. Caller holds mu.
func (c *SwitchCoordinator) revertRejected(ctx context.Context, startedAt time.Time, attempt *switchAttempt) (SwitchResult, error) {
	c.setActive(attempt.previous)
	c.phase = SwitchPhaseReverted
	c.mu.Unlock()
	result := SwitchResult{
		Outcome:        OutcomeReverted,
		ActiveProvider: attempt.previous,
		Reason:         ReasonCredentialRejected,
		Epoch:          attempt.epoch,
	}
	c.notify(ProviderStateEvent{
		Kind:       ProviderStateReverted,
		ProviderID: attempt.previous,
		Reason:     ReasonCredentialRejected,
		Message:    fmt.Sprintf("%q rejected the credential, reverted to %q", attempt.target, attempt.previous),
	})
	rejectErr := fmt.Errorf("%w: provider %q", ErrCredentialRejected, attempt.target)
	c.observeSwitch(ctx, startedAt, attempt.target, result, rejectErr)
	return result, chatErrorMapper(rejectErr)
}

func (c *SwitchCoordinator) resting() bool {
	switch c.phase {
	case SwitchPhaseIdle, SwitchPhaseConfirmed, SwitchPhaseReverted:
		return true
	default:
		return false
	}
}

func (c *SwitchCoordinator) maxKeyRetries() int {
	attempts := c.validation.MaxKeyAttempts
	if attempts < 1 {
		attempts = defaultMaxKeyAttempts
	}
	return attempts - 1
}

// validateKey is the single suspension point of the workflow. Providers
// without the validation capability are treated as always-valid. A bounded
// timeout keeps a hung call from leaving the UI in tentative limbo; timeouts
// surface as transport failures.
func (c *SwitchCoordinator) validateKey(ctx context.Context, provider Provider, key string) (bool, error) {
	validator, ok := provider.(CredentialValidator)
	if !ok {
		return true, nil
	}
	timeout := c.validation.Timeout
	if timeout <= 0 {
		timeout = defaultValidationTimeout
	}
	validateCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return validator.ValidateCredential(validateCtx, key)
}

func (c *SwitchCoordinator) promptCredential(ctx context.Context, prompt string) (string, error) {
	if c.ui == nil {
		return "", nil
	}
	supplied, err := c.ui.PromptCredential(ctx, prompt)
	if err != nil {
		logWithLevel(ctx, c.logger, "error", "credential prompt failed, treating as cancelled", map[string]any{
			"error": err.Error(),
		})
		return "", err
	}
	return strings.TrimSpace(supplied), nil
}

func (c *SwitchCoordinator) notify(event ProviderStateEvent) {
	if c == nil || c.ui == nil {
		return
	}
	c.ui.NotifyProviderState(event)
}

func (c *SwitchCoordinator) observeSwitch(ctx context.Context, startedAt time.Time, target string, result SwitchResult, err error) {
	fields := map[string]any{
		"provider_id":        target,
		"active_provider_id": result.ActiveProvider,
		"outcome":            string(result.Outcome),
		"epoch":              result.Epoch,
		"duration_ms":        time.Since(startedAt).Milliseconds(),
	}
	if result.Reason != ReasonNone {
		fields["reason"] = string(result.Reason)
	}
	tags := map[string]string{
		"provider_id": target,
		"outcome":     string(result.Outcome),
	}
	if result.Reason != ReasonNone {
		tags["reason"] = string(result.Reason)
	}
	c.metrics.IncCounter(ctx, "chat.provider_switch.total", 1, cloneTags(tags))
	c.metrics.ObserveHistogram(ctx, "chat.provider_switch.duration_ms", float64(time.Since(startedAt).Milliseconds()), cloneTags(tags))

	if err != nil {
		fields["error"] = err.Error()
		logWithLevel(ctx, c.logger, "error", "provider switch failed", fields)
		return
	}
	logWithLevel(ctx, c.logger, "info", "provider switch resolved", fields)
}
