package chat

import (
	"github.com/goliatone/go-chat/core"
	"github.com/goliatone/go-chat/providers/eliza"
	"github.com/goliatone/go-chat/providers/gemini"
	"github.com/goliatone/go-chat/providers/openaicompat"
)

func ElizaProvider(cfg eliza.Config) (core.Provider, error) {
	return eliza.New(cfg)
}

func GeminiProvider(cfg gemini.Config) (core.Provider, error) {
	return gemini.New(cfg)
}

func OpenAICompatProvider(cfg openaicompat.Config) (core.Provider, error) {
	return openaicompat.New(cfg)
}
