package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-chat/core"
)

func newTestProvider(t *testing.T, cfg Config, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg.BaseURL = server.URL
	cfg.HTTPClient = server.Client()
	provider, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return provider
}

func TestReply(t *testing.T) {
	var gotPath, gotAuth, gotExtra string
	var gotPayload completionRequest
	provider := newTestProvider(t, Config{
		Model:        "test-model",
		ExtraHeaders: map[string]string{"X-Vendor": "acme"},
	}, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotExtra = r.Header.Get("X-Vendor")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"howdy"}}]}`))
	})
	provider.SetCredential("sk-test")

	reply, err := provider.Reply(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if reply != "howdy" {
		t.Fatalf("reply = %q", reply)
	}
	if gotPath != DefaultCompletionPath {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" || gotExtra != "acme" {
		t.Fatalf("headers: auth=%q extra=%q", gotAuth, gotExtra)
	}
	if gotPayload.Model != "test-model" || len(gotPayload.Messages) != 1 || gotPayload.Messages[0].Content != "hello" {
		t.Fatalf("payload = %+v", gotPayload)
	}
}

func TestReplyWithoutCredential(t *testing.T) {
	provider := newTestProvider(t, Config{}, func(http.ResponseWriter, *http.Request) {
		t.Errorf("unexpected network call")
	})

	_, err := provider.Reply(context.Background(), "hello")
	if !errors.Is(err, core.ErrCredentialMissing) {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}

func TestReplyUpstreamError(t *testing.T) {
	provider := newTestProvider(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	})
	provider.SetCredential("sk-test")

	_, err := provider.Reply(context.Background(), "hello")
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected envelope, got %v", err)
	}
	if richErr.Category != goerrors.CategoryRateLimit || richErr.Code != http.StatusTooManyRequests {
		t.Fatalf("category=%s code=%d", richErr.Category, richErr.Code)
	}
}

func TestValidateCredential(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		valid    bool
		hasError bool
	}{
		{name: "accepted", status: http.StatusOK, valid: true},
		{name: "unauthorized", status: http.StatusUnauthorized},
		{name: "forbidden", status: http.StatusForbidden},
		{name: "bad gateway", status: http.StatusBadGateway, hasError: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath string
			provider := newTestProvider(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tc.status)
			})
			valid, err := provider.ValidateCredential(context.Background(), "sk-test")
			if valid != tc.valid {
				t.Fatalf("valid = %v, want %v", valid, tc.valid)
			}
			if (err != nil) != tc.hasError {
				t.Fatalf("err = %v, want error=%v", err, tc.hasError)
			}
			if gotPath != DefaultModelsPath {
				t.Fatalf("probe path = %q", gotPath)
			}
		})
	}
}

func TestCustomProviderID(t *testing.T) {
	provider, err := New(Config{ProviderID: "  Groq "})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if provider.ID() != "groq" {
		t.Fatalf("id = %q", provider.ID())
	}
}
