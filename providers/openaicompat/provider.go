// Package openaicompat adapts any OpenAI-compatible chat completions endpoint
// as a chat provider. The provider id is configurable so several compatible
// vendors can be registered side by side.
package openaicompat

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
	DefaultProviderID     = "openai"
	DefaultBaseURL        = "https://api.openai.com"
	DefaultModel          = "gpt-4o-mini"
	DefaultCompletionPath = "/v1/chat/completions"
	DefaultModelsPath     = "/v1/models"
)

const defaultRequestTimeout = 30 * time.Second

type Config struct {
	ProviderID     string
	BaseURL        string
	Model          string
	CompletionPath string
	ModelsPath     string
	Timeout        time.Duration
	ExtraHeaders   map[string]string
	HTTPClient     transport.HTTPDoer
}

type Provider struct {
	rest           *transport.RESTAdapter
	id             string
	baseURL        string
	model          string
	completionPath string
	modelsPath     string
	timeout        time.Duration
	extraHeaders   map[string]string

	mu         sync.RWMutex
	credential string
}

func DefaultConfig() Config {
	return Config{
		ProviderID:     DefaultProviderID,
		BaseURL:        DefaultBaseURL,
		Model:          DefaultModel,
		CompletionPath: DefaultCompletionPath,
		ModelsPath:     DefaultModelsPath,
		Timeout:        defaultRequestTimeout,
	}
}

func New(cfg Config) (*Provider, error) {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.ProviderID) == "" {
		cfg.ProviderID = defaults.ProviderID
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaults.Model
	}
	if strings.TrimSpace(cfg.CompletionPath) == "" {
		cfg.CompletionPath = defaults.CompletionPath
	}
	if strings.TrimSpace(cfg.ModelsPath) == "" {
		cfg.ModelsPath = defaults.ModelsPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	headers := map[string]string{}
	for key, value := range cfg.ExtraHeaders {
		if strings.TrimSpace(key) == "" {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return &Provider{
		rest:           transport.NewRESTAdapter(cfg.HTTPClient),
		id:             strings.ToLower(strings.TrimSpace(cfg.ProviderID)),
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:          strings.TrimSpace(cfg.Model),
		completionPath: ensureLeadingSlash(cfg.CompletionPath),
		modelsPath:     ensureLeadingSlash(cfg.ModelsPath),
		timeout:        cfg.Timeout,
		extraHeaders:   headers,
	}, nil
}

func (p *Provider) ID() string {
	if p == nil {
		return ""
	}
	return p.id
}

func (*Provider) RequiresCredential() bool {
	return true
}

func (p *Provider) SetCredential(key string) {
	p.mu.Lock()
	p.credential = strings.TrimSpace(key)
	p.mu.Unlock()
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *Provider) Reply(ctx context.Context, text string) (string, error) {
	if p == nil {
		return "", fmt.Errorf("providers/openaicompat: provider is nil")
	}
	p.mu.RLock()
	key := p.credential
	p.mu.RUnlock()
	if key == "" {
		return "", fmt.Errorf("providers/openaicompat: no api key set: %w", core.ErrCredentialMissing)
	}

	body, err := json.Marshal(completionRequest{
		Model:    p.model,
		Messages: []chatMessage{{Role: "user", Content: text}},
	})
	if err != nil {
		return "", fmt.Errorf("providers/openaicompat: encode request: %w", err)
	}

	res, err := p.rest.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     p.baseURL + p.completionPath,
		Headers: p.headers(key, true),
		Body:    body,
		Timeout: p.timeout,
	})
	if err != nil {
		return "", err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", transport.StatusError(res, p.id)
	}

	var decoded completionResponse
	if err := json.Unmarshal(res.Body, &decoded); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryExternal, "providers/openaicompat: decode response").
			WithTextCode(core.ChatErrorTransportFailure)
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", goerrors.New("providers/openaicompat: response carried no choices", goerrors.CategoryExternal).
			WithTextCode(core.ChatErrorTransportFailure)
	}
	return decoded.Choices[0].Message.Content, nil
}

// ValidateCredential lists models with the candidate key. The endpoint is
// cheap and authenticated on every compatible vendor.
func (p *Provider) ValidateCredential(ctx context.Context, key string) (bool, error) {
	if p == nil {
		return false, fmt.Errorf("providers/openaicompat: provider is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false, nil
	}
	res, err := p.rest.Do(ctx, transport.Request{
		Method:  http.MethodGet,
		URL:     p.baseURL + p.modelsPath,
		Headers: p.headers(key, false),
		Timeout: p.timeout,
	})
	if err != nil {
		return false, err
	}
	return transport.CredentialStatus(res, p.id)
}

func (p *Provider) headers(key string, withBody bool) map[string]string {
	headers := make(map[string]string, len(p.extraHeaders)+2)
	for name, value := range p.extraHeaders {
		headers[name] = value
	}
	headers["Authorization"] = "Bearer " + key
	if withBody {
		headers["Content-Type"] = "application/json"
	}
	return headers
}

func ensureLeadingSlash(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
