package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-chat/core"
)

type stubMutatingService struct {
	requestSwitchFn         func(ctx context.Context, targetID string) (core.SwitchResult, error)
	sendFn                  func(ctx context.Context, text string) (core.Message, error)
	clearCredentialFn       func(ctx context.Context, providerID string) error
	clearHistoryFn          func(ctx context.Context) error
	revalidateCredentialsFn func(ctx context.Context) (core.RevalidationResult, error)
}

func (s stubMutatingService) RequestSwitch(ctx context.Context, targetID string) (core.SwitchResult, error) {
	if s.requestSwitchFn == nil {
		return core.SwitchResult{}, fmt.Errorf("unexpected RequestSwitch call")
	}
	return s.requestSwitchFn(ctx, targetID)
}

func (s stubMutatingService) Send(ctx context.Context, text string) (core.Message, error) {
	if s.sendFn == nil {
		return core.Message{}, fmt.Errorf("unexpected Send call")
	}
	return s.sendFn(ctx, text)
}

func (s stubMutatingService) ClearCredential(ctx context.Context, providerID string) error {
	if s.clearCredentialFn == nil {
		return fmt.Errorf("unexpected ClearCredential call")
	}
	return s.clearCredentialFn(ctx, providerID)
}

func (s stubMutatingService) ClearHistory(ctx context.Context) error {
	if s.clearHistoryFn == nil {
		return fmt.Errorf("unexpected ClearHistory call")
	}
	return s.clearHistoryFn(ctx)
}

func (s stubMutatingService) RevalidateCredentials(ctx context.Context) (core.RevalidationResult, error) {
	if s.revalidateCredentialsFn == nil {
		return core.RevalidationResult{}, fmt.Errorf("unexpected RevalidateCredentials call")
	}
	return s.revalidateCredentialsFn(ctx)
}

func TestSwitchProviderCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.SwitchResult{
		Outcome:        core.OutcomeConfirmed,
		ActiveProvider: "gemini",
	}
	called := false
	svc := stubMutatingService{
		requestSwitchFn: func(_ context.Context, targetID string) (core.SwitchResult, error) {
			called = true
			if targetID != "gemini" {
				t.Fatalf("expected target gemini, got %q", targetID)
			}
			return expected, nil
		},
	}

	cmd := NewSwitchProviderCommand(svc)
	collector := gocmd.NewResult[core.SwitchResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, SwitchProviderMessage{ProviderID: "gemini"}); err != nil {
		t.Fatalf("execute switch: %v", err)
	}
	if !called {
		t.Fatalf("expected switch service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Outcome != expected.Outcome || result.ActiveProvider != expected.ActiveProvider {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestSendMessageCommand_StoresReply(t *testing.T) {
	expected := core.Message{ID: "msg_1", Role: core.MessageRoleAssistant, Body: "hi"}
	svc := stubMutatingService{
		sendFn: func(_ context.Context, text string) (core.Message, error) {
			if text != "hello" {
				t.Fatalf("expected text hello, got %q", text)
			}
			return expected, nil
		},
	}

	cmd := NewSendMessageCommand(svc)
	collector := gocmd.NewResult[core.Message]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, SendMessageMessage{Text: "hello"}); err != nil {
		t.Fatalf("execute send: %v", err)
	}
	result, ok := collector.Load()
	if !ok || result.ID != "msg_1" {
		t.Fatalf("unexpected stored reply: %#v (ok=%v)", result, ok)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("clear credential", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			clearCredentialFn: func(_ context.Context, providerID string) error {
				called = true
				if providerID != "gemini" {
					t.Fatalf("unexpected provider id %q", providerID)
				}
				return nil
			},
		}
		cmd := NewClearCredentialCommand(svc)
		if err := cmd.Execute(context.Background(), ClearCredentialMessage{ProviderID: "gemini"}); err != nil {
			t.Fatalf("execute clear credential: %v", err)
		}
		if !called {
			t.Fatalf("expected clear credential invocation")
		}
	})

	t.Run("clear history", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			clearHistoryFn: func(context.Context) error {
				called = true
				return nil
			},
		}
		cmd := NewClearHistoryCommand(svc)
		if err := cmd.Execute(context.Background(), ClearHistoryMessage{}); err != nil {
			t.Fatalf("execute clear history: %v", err)
		}
		if !called {
			t.Fatalf("expected clear history invocation")
		}
	})

	t.Run("revalidate credentials", func(t *testing.T) {
		expected := core.RevalidationResult{Checked: 2, Cleared: 1}
		svc := stubMutatingService{
			revalidateCredentialsFn: func(context.Context) (core.RevalidationResult, error) {
				return expected, nil
			},
		}
		cmd := NewRevalidateCredentialsCommand(svc)
		collector := gocmd.NewResult[core.RevalidationResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, RevalidateCredentialsMessage{}); err != nil {
			t.Fatalf("execute revalidate: %v", err)
		}
		result, ok := collector.Load()
		if !ok || result.Checked != 2 || result.Cleared != 1 {
			t.Fatalf("unexpected stored result: %#v (ok=%v)", result, ok)
		}
	})
}

func TestMessages_Validate(t *testing.T) {
	if err := (SwitchProviderMessage{}).Validate(); err == nil {
		t.Fatalf("expected provider id validation error")
	}
	if err := (SendMessageMessage{Text: "  "}).Validate(); err == nil {
		t.Fatalf("expected text validation error")
	}
	if err := (ClearCredentialMessage{ProviderID: "gemini"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (ClearHistoryMessage{}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCommands_NilServiceReturnsRichError(t *testing.T) {
	var cmd *SwitchProviderCommand
	err := cmd.Execute(context.Background(), SwitchProviderMessage{ProviderID: "gemini"})
	if err == nil {
		t.Fatalf("expected dependency error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}
