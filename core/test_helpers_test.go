package core

import (
	"context"
	"fmt"
	"sync"
)

type testProvider struct {
	id            string
	needsKey      bool
	replyFn       func(ctx context.Context, text string) (string, error)
	validateFn    func(ctx context.Context, key string) (bool, error)
	mu            sync.Mutex
	credential    string
	validateCalls int
}

func (p *testProvider) ID() string { return p.id }

func (p *testProvider) RequiresCredential() bool { return p.needsKey }

func (p *testProvider) Reply(ctx context.Context, text string) (string, error) {
	if p.replyFn != nil {
		return p.replyFn(ctx, text)
	}
	return "echo: " + text, nil
}

func (p *testProvider) SetCredential(key string) {
	p.mu.Lock()
	p.credential = key
	p.mu.Unlock()
}

func (p *testProvider) Credential() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.credential
}

func (p *testProvider) ValidateCredential(ctx context.Context, key string) (bool, error) {
	p.mu.Lock()
	p.validateCalls++
	p.mu.Unlock()
	if p.validateFn == nil {
		return true, nil
	}
	return p.validateFn(ctx, key)
}

func (p *testProvider) ValidateCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validateCalls
}

// localProvider never carries the validation capability.
type localProvider struct {
	id string
}

func (p localProvider) ID() string { return p.id }

func (p localProvider) RequiresCredential() bool { return false }

func (p localProvider) Reply(_ context.Context, text string) (string, error) {
	return "local: " + text, nil
}

type testUI struct {
	mu      sync.Mutex
	prompts []string
	answers []string
	events  []ProviderStateEvent
}

func (u *testUI) PromptCredential(_ context.Context, prompt string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.prompts = append(u.prompts, prompt)
	if len(u.answers) == 0 {
		return "", nil
	}
	answer := u.answers[0]
	u.answers = u.answers[1:]
	return answer, nil
}

func (u *testUI) NotifyProviderState(event ProviderStateEvent) {
	u.mu.Lock()
	u.events = append(u.events, event)
	u.mu.Unlock()
}

func (u *testUI) ConfirmAction(context.Context, string) (bool, error) {
	return true, nil
}

func (u *testUI) Events() []ProviderStateEvent {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]ProviderStateEvent, len(u.events))
	copy(out, u.events)
	return out
}

func (u *testUI) PromptCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.prompts)
}

func (u *testUI) eventsOfKind(kind ProviderStateKind) []ProviderStateEvent {
	matched := []ProviderStateEvent{}
	for _, event := range u.Events() {
		if event.Kind == kind {
			matched = append(matched, event)
		}
	}
	return matched
}

type memoryCredentialStore struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	putErr  error
	clearEr error
}

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{values: map[string]string{}}
}

func (s *memoryCredentialStore) Get(_ context.Context, providerID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	value, ok := s.values[providerID]
	return value, ok, nil
}

func (s *memoryCredentialStore) Put(_ context.Context, providerID string, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.values[providerID] = credential
	return nil
}

func (s *memoryCredentialStore) Clear(_ context.Context, providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearEr != nil {
		return s.clearEr
	}
	delete(s.values, providerID)
	return nil
}

func (s *memoryCredentialStore) value(providerID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[providerID]
	return value, ok
}

type memoryMessageStore struct {
	mu       sync.Mutex
	messages []Message
}

func (s *memoryMessageStore) Append(_ context.Context, msg Message) (Message, error) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return msg, nil
}

func (s *memoryMessageStore) ListRecent(_ context.Context, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.messages) {
		limit = len(s.messages)
	}
	out := make([]Message, limit)
	copy(out, s.messages[len(s.messages)-limit:])
	return out, nil
}

func (s *memoryMessageStore) Clear(context.Context) error {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
	return nil
}

func newTestCoordinator(ui *testUI, store CredentialStore, providers ...Provider) (*SwitchCoordinator, error) {
	registry := NewProviderRegistry()
	for _, provider := range providers {
		if err := registry.Register(provider); err != nil {
			return nil, fmt.Errorf("register %q: %w", provider.ID(), err)
		}
	}
	initial := ""
	if len(providers) > 0 {
		initial = providers[0].ID()
	}
	return NewSwitchCoordinator(SwitchCoordinatorDeps{
		Registry:        registry,
		Credentials:     NewCredentialCache(store, nil),
		UserInterface:   ui,
		InitialProvider: initial,
	})
}
