// Package command exposes the mutating chat operations as go-command
// messages and handlers.
package command

import (
	"fmt"
	"strings"
)

const (
	TypeSwitchProvider        = "chat.command.provider.switch"
	TypeSendMessage           = "chat.command.message.send"
	TypeClearCredential       = "chat.command.credential.clear"
	TypeClearHistory          = "chat.command.history.clear"
	TypeRevalidateCredentials = "chat.command.credentials.revalidate"
)

type SwitchProviderMessage struct {
	ProviderID string
}

func (SwitchProviderMessage) Type() string { return TypeSwitchProvider }

func (m SwitchProviderMessage) Validate() error {
	if strings.TrimSpace(m.ProviderID) == "" {
		return fmt.Errorf("command: provider id is required")
	}
	return nil
}

type SendMessageMessage struct {
	Text string
}

func (SendMessageMessage) Type() string { return TypeSendMessage }

func (m SendMessageMessage) Validate() error {
	if strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("command: message text is required")
	}
	return nil
}

type ClearCredentialMessage struct {
	ProviderID string
}

func (ClearCredentialMessage) Type() string { return TypeClearCredential }

func (m ClearCredentialMessage) Validate() error {
	if strings.TrimSpace(m.ProviderID) == "" {
		return fmt.Errorf("command: provider id is required")
	}
	return nil
}

type ClearHistoryMessage struct{}

func (ClearHistoryMessage) Type() string { return TypeClearHistory }

func (ClearHistoryMessage) Validate() error { return nil }

type RevalidateCredentialsMessage struct{}

func (RevalidateCredentialsMessage) Type() string { return TypeRevalidateCredentials }

func (RevalidateCredentialsMessage) Validate() error { return nil }
