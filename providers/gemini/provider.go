// Package gemini adapts the Google Generative Language API as a chat
// provider. The API key travels in the x-goog-api-key header; validation is a
// minimal generation probe so a key verdict reflects the same endpoint Reply
// uses.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-chat/core"
	"github.com/goliatone/go-chat/transport"
)

const (
	ProviderID     = "gemini"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"
)

const defaultRequestTimeout = 30 * time.Second

type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient transport.HTTPDoer
}

type Provider struct {
	rest    *transport.RESTAdapter
	baseURL string
	model   string
	timeout time.Duration

	mu         sync.RWMutex
	credential string
}

func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		Timeout: defaultRequestTimeout,
	}
}

func New(cfg Config) (*Provider, error) {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return &Provider{
		rest:    transport.NewRESTAdapter(cfg.HTTPClient),
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:   strings.TrimSpace(cfg.Model),
		timeout: cfg.Timeout,
	}, nil
}

func (*Provider) ID() string {
	return ProviderID
}

func (*Provider) RequiresCredential() bool {
	return true
}

func (p *Provider) SetCredential(key string) {
	p.mu.Lock()
	p.credential = strings.TrimSpace(key)
	p.mu.Unlock()
}

func (p *Provider) Reply(ctx context.Context, text string) (string, error) {
	if p == nil {
		return "", fmt.Errorf("providers/gemini: provider is nil")
	}
	p.mu.RLock()
	key := p.credential
	p.mu.RUnlock()
	if key == "" {
		return "", fmt.Errorf("providers/gemini: no api key set: %w", core.ErrCredentialMissing)
	}

	res, err := p.generate(ctx, key, text, 0)
	if err != nil {
		return "", err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", transport.StatusError(res, ProviderID)
	}
	return decodeReply(res.Body)
}

// ValidateCredential probes the generation endpoint with the candidate key.
// An explicit 401/403 means the key is bad; any other failure is reported as
// a transport error so the caller does not discard a possibly good key.
func (p *Provider) ValidateCredential(ctx context.Context, key string) (bool, error) {
	if p == nil {
		return false, fmt.Errorf("providers/gemini: provider is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false, nil
	}
	res, err := p.generate(ctx, key, "ping", 1)
	if err != nil {
		return false, err
	}
	return transport.CredentialStatus(res, ProviderID)
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (p *Provider) generate(ctx context.Context, key, text string, maxTokens int) (transport.Response, error) {
	payload := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: text}}}},
	}
	if maxTokens > 0 {
		payload.GenerationConfig = &generationConfig{MaxOutputTokens: maxTokens}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return transport.Response{}, fmt.Errorf("providers/gemini: encode request: %w", err)
	}
	return p.rest.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, p.model),
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"x-goog-api-key": key,
		},
		Body:    body,
		Timeout: p.timeout,
	})
}

func decodeReply(body []byte) (string, error) {
	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryExternal, "providers/gemini: decode response").
			WithTextCode(core.ChatErrorTransportFailure)
	}
	if len(decoded.Candidates) == 0 {
		return "", goerrors.New("providers/gemini: response carried no candidates", goerrors.CategoryExternal).
			WithTextCode(core.ChatErrorTransportFailure)
	}
	parts := decoded.Candidates[0].Content.Parts
	texts := make([]string, 0, len(parts))
	for _, segment := range parts {
		if strings.TrimSpace(segment.Text) != "" {
			texts = append(texts, segment.Text)
		}
	}
	if len(texts) == 0 {
		return "", goerrors.New("providers/gemini: response carried no text parts", goerrors.CategoryExternal).
			WithTextCode(core.ChatErrorTransportFailure)
	}
	return strings.Join(texts, ""), nil
}
