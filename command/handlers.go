package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-chat/core"
)

// MutatingService is the slice of the chat service commands mutate through.
type MutatingService interface {
	RequestSwitch(ctx context.Context, targetID string) (core.SwitchResult, error)
	Send(ctx context.Context, text string) (core.Message, error)
	ClearCredential(ctx context.Context, providerID string) error
	ClearHistory(ctx context.Context) error
	RevalidateCredentials(ctx context.Context) (core.RevalidationResult, error)
}

type SwitchProviderCommand struct {
	service MutatingService
}

func NewSwitchProviderCommand(service MutatingService) *SwitchProviderCommand {
	return &SwitchProviderCommand{service: service}
}

func (c *SwitchProviderCommand) Execute(ctx context.Context, msg SwitchProviderMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: switch service is required")
	}
	out, err := c.service.RequestSwitch(ctx, msg.ProviderID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SendMessageCommand struct {
	service MutatingService
}

func NewSendMessageCommand(service MutatingService) *SendMessageCommand {
	return &SendMessageCommand{service: service}
}

func (c *SendMessageCommand) Execute(ctx context.Context, msg SendMessageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: send service is required")
	}
	out, err := c.service.Send(ctx, msg.Text)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ClearCredentialCommand struct {
	service MutatingService
}

func NewClearCredentialCommand(service MutatingService) *ClearCredentialCommand {
	return &ClearCredentialCommand{service: service}
}

func (c *ClearCredentialCommand) Execute(ctx context.Context, msg ClearCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credential service is required")
	}
	return c.service.ClearCredential(ctx, msg.ProviderID)
}

type ClearHistoryCommand struct {
	service MutatingService
}

func NewClearHistoryCommand(service MutatingService) *ClearHistoryCommand {
	return &ClearHistoryCommand{service: service}
}

func (c *ClearHistoryCommand) Execute(ctx context.Context, _ ClearHistoryMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: history service is required")
	}
	return c.service.ClearHistory(ctx)
}

type RevalidateCredentialsCommand struct {
	service MutatingService
}

func NewRevalidateCredentialsCommand(service MutatingService) *RevalidateCredentialsCommand {
	return &RevalidateCredentialsCommand{service: service}
}

func (c *RevalidateCredentialsCommand) Execute(ctx context.Context, _ RevalidateCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: revalidation service is required")
	}
	out, err := c.service.RevalidateCredentials(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
