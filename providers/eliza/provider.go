// Package eliza implements the built-in local responder. It needs no
// credential and answers from a deterministic rule table, so it is the safe
// landing spot when a cloud provider switch fails.
package eliza

import (
	"context"
	"fmt"
	"strings"
)

const ProviderID = "eliza"

// Rule maps a lowercase keyword to the canned response selected when the
// keyword appears anywhere in the user text.
type Rule struct {
	Keyword  string
	Response string
}

type Config struct {
	Rules    []Rule
	Fallback string
}

type Provider struct {
	rules    []Rule
	fallback string
}

func DefaultConfig() Config {
	return Config{
		Rules: []Rule{
			{Keyword: "hello", Response: "Hello. How are you feeling today?"},
			{Keyword: "hi", Response: "Hello. How are you feeling today?"},
			{Keyword: "because", Response: "Is that the real reason?"},
			{Keyword: "sorry", Response: "Please don't apologize."},
			{Keyword: "mother", Response: "Tell me more about your family."},
			{Keyword: "father", Response: "Tell me more about your family."},
			{Keyword: "always", Response: "Can you think of a specific example?"},
			{Keyword: "why", Response: "Why do you ask?"},
			{Keyword: "yes", Response: "You seem quite sure."},
			{Keyword: "no", Response: "Why not?"},
		},
		Fallback: "Please, go on.",
	}
}

func New(cfg Config) (*Provider, error) {
	defaults := DefaultConfig()
	if len(cfg.Rules) == 0 {
		cfg.Rules = defaults.Rules
	}
	if strings.TrimSpace(cfg.Fallback) == "" {
		cfg.Fallback = defaults.Fallback
	}

	rules := make([]Rule, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		keyword := strings.ToLower(strings.TrimSpace(rule.Keyword))
		response := strings.TrimSpace(rule.Response)
		if keyword == "" || response == "" {
			return nil, fmt.Errorf("providers/eliza: rules require a keyword and a response")
		}
		rules = append(rules, Rule{Keyword: keyword, Response: response})
	}

	return &Provider{
		rules:    rules,
		fallback: strings.TrimSpace(cfg.Fallback),
	}, nil
}

func (*Provider) ID() string {
	return ProviderID
}

func (*Provider) RequiresCredential() bool {
	return false
}

// Reply matches rules in declaration order; the first keyword found in the
// text wins.
func (p *Provider) Reply(_ context.Context, text string) (string, error) {
	if p == nil {
		return "", fmt.Errorf("providers/eliza: provider is nil")
	}
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return p.fallback, nil
	}
	for _, rule := range p.rules {
		if containsWord(lowered, rule.Keyword) {
			return rule.Response, nil
		}
	}
	return p.fallback, nil
}

func containsWord(text, keyword string) bool {
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '\'')
	}) {
		if field == keyword {
			return true
		}
	}
	return false
}
