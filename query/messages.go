// Package query exposes read-only chat lookups as go-command messages and
// query handlers.
package query

import (
	"fmt"
)

const (
	TypeGetActiveProvider = "chat.query.provider.active"
	TypeListProviders     = "chat.query.provider.list"
	TypeListMessages      = "chat.query.message.list"
)

type GetActiveProviderMessage struct{}

func (GetActiveProviderMessage) Type() string { return TypeGetActiveProvider }

func (GetActiveProviderMessage) Validate() error { return nil }

type ListProvidersMessage struct{}

func (ListProvidersMessage) Type() string { return TypeListProviders }

func (ListProvidersMessage) Validate() error { return nil }

type ListMessagesMessage struct {
	Limit int
}

func (ListMessagesMessage) Type() string { return TypeListMessages }

func (m ListMessagesMessage) Validate() error {
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}
