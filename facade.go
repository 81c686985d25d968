package chat

import (
	"fmt"

	chatcommand "github.com/goliatone/go-chat/command"
	chatquery "github.com/goliatone/go-chat/query"
)

// CommandQueryService is the service surface the facade handlers run against.
// *core.Service satisfies it.
type CommandQueryService interface {
	chatcommand.MutatingService
	chatquery.ProviderReader
	chatquery.HistoryReader
}

type Commands struct {
	SwitchProvider        *chatcommand.SwitchProviderCommand
	SendMessage           *chatcommand.SendMessageCommand
	ClearCredential       *chatcommand.ClearCredentialCommand
	ClearHistory          *chatcommand.ClearHistoryCommand
	RevalidateCredentials *chatcommand.RevalidateCredentialsCommand
}

type Queries struct {
	GetActiveProvider *chatquery.GetActiveProviderQuery
	ListProviders     *chatquery.ListProvidersQuery
	ListMessages      *chatquery.ListMessagesQuery
}

// Facade bundles the ready-to-register command and query handlers for a
// single service instance.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	historyReader chatquery.HistoryReader
}

// WithHistoryReader overrides the history source for the list-messages query,
// for hosts that serve history from a replica or a cache.
func WithHistoryReader(reader chatquery.HistoryReader) FacadeOption {
	return func(options *facadeOptions) {
		options.historyReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("chat: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	historyReader := cfg.historyReader
	if historyReader == nil {
		historyReader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SwitchProvider:        chatcommand.NewSwitchProviderCommand(service),
		SendMessage:           chatcommand.NewSendMessageCommand(service),
		ClearCredential:       chatcommand.NewClearCredentialCommand(service),
		ClearHistory:          chatcommand.NewClearHistoryCommand(service),
		RevalidateCredentials: chatcommand.NewRevalidateCredentialsCommand(service),
	}
	facade.queries = Queries{
		GetActiveProvider: chatquery.NewGetActiveProviderQuery(service),
		ListProviders:     chatquery.NewListProvidersQuery(service),
		ListMessages:      chatquery.NewListMessagesQuery(historyReader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
