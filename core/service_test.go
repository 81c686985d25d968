package core

import (
	"context"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func newTestService(t *testing.T, ui *testUI, providers ...Provider) (*Service, *memoryCredentialStore, *memoryMessageStore) {
	t.Helper()
	registry := NewProviderRegistry()
	for _, provider := range providers {
		if err := registry.Register(provider); err != nil {
			t.Fatalf("register %q: %v", provider.ID(), err)
		}
	}
	credStore := newMemoryCredentialStore()
	msgStore := &memoryMessageStore{}
	svc, err := NewService(Config{},
		WithRegistry(registry),
		WithCredentialStore(credStore),
		WithMessageStore(msgStore),
		WithUserInterface(ui),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, credStore, msgStore
}

func TestNewService_DefaultProviderSeedsActiveState(t *testing.T) {
	svc, _, _ := newTestService(t, &testUI{}, localProvider{id: "eliza"})
	if got := svc.ActiveProvider(); got != "eliza" {
		t.Fatalf("active provider = %q, want eliza", got)
	}
}

func TestNewService_UnregisteredDefaultLeavesActiveEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, &testUI{}, localProvider{id: "gemini"})
	if got := svc.ActiveProvider(); got != "" {
		t.Fatalf("active provider = %q, want empty", got)
	}
}

func TestService_SendRecordsBothSides(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, &testUI{}, localProvider{id: "eliza"})

	reply, err := svc.Send(ctx, "  hello there  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Body != "local: hello there" {
		t.Fatalf("reply body = %q", reply.Body)
	}
	if reply.Role != MessageRoleAssistant {
		t.Fatalf("reply role = %q", reply.Role)
	}
	if reply.ID == "" || reply.CreatedAt.IsZero() {
		t.Fatalf("reply missing id or timestamp: %+v", reply)
	}

	history, err := svc.History(ctx, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != MessageRoleUser || history[0].Body != "hello there" {
		t.Fatalf("unexpected user entry: %+v", history[0])
	}
	if history[1].Role != MessageRoleAssistant {
		t.Fatalf("unexpected assistant entry: %+v", history[1])
	}
}

func TestService_SendBlankTextRejected(t *testing.T) {
	svc, _, msgStore := newTestService(t, &testUI{}, localProvider{id: "eliza"})

	_, err := svc.Send(context.Background(), "   ")
	if err == nil {
		t.Fatalf("expected error for blank text")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != ChatErrorBadInput {
		t.Fatalf("expected %s, got %v", ChatErrorBadInput, err)
	}
	if len(msgStore.messages) != 0 {
		t.Fatalf("blank message reached the store")
	}
}

func TestService_SendInjectsCachedCredential(t *testing.T) {
	ctx := context.Background()
	ui := &testUI{answers: []string{"SECRET"}}
	gemini := &testProvider{id: "gemini", needsKey: true}
	svc, _, _ := newTestService(t, ui, localProvider{id: "eliza"}, gemini)

	result, err := svc.RequestSwitch(ctx, "gemini")
	if err != nil {
		t.Fatalf("RequestSwitch: %v", err)
	}
	if result.Outcome != OutcomeConfirmed {
		t.Fatalf("switch outcome = %s", result.Outcome)
	}

	gemini.SetCredential("")
	if _, err := svc.Send(ctx, "ping"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gemini.Credential() != "SECRET" {
		t.Fatalf("credential not handed to provider, got %q", gemini.Credential())
	}
}

func TestService_SendProviderErrorMapped(t *testing.T) {
	provider := &testProvider{
		id: "eliza",
		replyFn: func(context.Context, string) (string, error) {
			return "", fmt.Errorf("core: eliza unreachable: %w", ErrTransportFailure)
		},
	}
	svc, _, msgStore := newTestService(t, &testUI{}, provider)

	_, err := svc.Send(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected reply error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != ChatErrorTransportFailure {
		t.Fatalf("expected %s, got %v", ChatErrorTransportFailure, err)
	}
	// The user turn is still recorded even when the reply fails.
	if len(msgStore.messages) != 1 {
		t.Fatalf("message count = %d, want 1", len(msgStore.messages))
	}
}

func TestService_ClearHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, msgStore := newTestService(t, &testUI{}, localProvider{id: "eliza"})

	if _, err := svc.Send(ctx, "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := svc.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if len(msgStore.messages) != 0 {
		t.Fatalf("history not cleared")
	}
}

func TestService_ClearCredentialForcesReprompt(t *testing.T) {
	ctx := context.Background()
	ui := &testUI{answers: []string{"FIRST", "SECOND"}}
	gemini := &testProvider{id: "gemini", needsKey: true}
	svc, credStore, _ := newTestService(t, ui, localProvider{id: "eliza"}, gemini)

	if _, err := svc.RequestSwitch(ctx, "gemini"); err != nil {
		t.Fatalf("first switch: %v", err)
	}
	if err := svc.ClearCredential(ctx, "gemini"); err != nil {
		t.Fatalf("ClearCredential: %v", err)
	}
	if _, ok := credStore.value("gemini"); ok {
		t.Fatalf("durable credential survived clear")
	}

	if _, err := svc.RequestSwitch(ctx, "eliza"); err != nil {
		t.Fatalf("switch back: %v", err)
	}
	if _, err := svc.RequestSwitch(ctx, "gemini"); err != nil {
		t.Fatalf("second switch: %v", err)
	}
	if ui.PromptCount() != 2 {
		t.Fatalf("prompt count = %d, want 2", ui.PromptCount())
	}
	if stored, _ := credStore.value("gemini"); stored != "SECOND" {
		t.Fatalf("stored credential = %q, want SECOND", stored)
	}
}

func TestService_ClearCredentialUnknownProvider(t *testing.T) {
	svc, _, _ := newTestService(t, &testUI{}, localProvider{id: "eliza"})

	err := svc.ClearCredential(context.Background(), "nope")
	if err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != ChatErrorProviderNotFound {
		t.Fatalf("expected %s, got %v", ChatErrorProviderNotFound, err)
	}
}
