// Package gocommand bridges the chat command and query handlers into the
// go-command registry and dispatcher so callers can drive the service
// through typed messages instead of direct method calls.
package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-chat/command"
	"github.com/goliatone/go-chat/query"
	gocmd "github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := gocmd.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(gocmd.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *gocmd.Registry
}

func NewRegistryAdapter(registry *gocmd.Registry) *RegistryAdapter {
	if registry == nil {
		registry = gocmd.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *gocmd.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver gocmd.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into a go-job queue registry
// so chat commands can also run as queued jobs.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd gocmd.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry gocmd.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd gocmd.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry gocmd.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// ChatBackend is everything the chat handlers need from the service layer.
type ChatBackend interface {
	command.MutatingService
	query.ProviderReader
	query.HistoryReader
}

// ChatSubscriptions tracks the dispatcher subscriptions created by
// RegisterChatHandlers so callers can tear them down.
type ChatSubscriptions struct {
	subscriptions []commanddispatcher.Subscription
}

// Unsubscribe releases every chat handler subscription.
func (s *ChatSubscriptions) Unsubscribe() {
	if s == nil {
		return
	}
	for _, sub := range s.subscriptions {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	s.subscriptions = nil
}

// RegisterChatHandlers registers and subscribes the full chat command and
// query surface against the adapter's registry. On any failure the
// subscriptions created so far are rolled back.
func RegisterChatHandlers(adapter *RegistryAdapter, backend ChatBackend, runnerOpts ...runner.Option) (*ChatSubscriptions, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if backend == nil {
		return nil, fmt.Errorf("gocommand: chat backend is required")
	}

	subs := &ChatSubscriptions{}
	fail := func(err error) (*ChatSubscriptions, error) {
		subs.Unsubscribe()
		return nil, err
	}
	track := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			return err
		}
		subs.subscriptions = append(subs.subscriptions, sub)
		return nil
	}

	if err := track(RegisterAndSubscribe(adapter, command.NewSwitchProviderCommand(backend), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := track(RegisterAndSubscribe(adapter, command.NewSendMessageCommand(backend), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := track(RegisterAndSubscribe(adapter, command.NewClearCredentialCommand(backend), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := track(RegisterAndSubscribe(adapter, command.NewClearHistoryCommand(backend), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := track(RegisterAndSubscribe(adapter, command.NewRevalidateCredentialsCommand(backend), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := track(RegisterAndSubscribeQuery(adapter, query.NewGetActiveProviderQuery(backend), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := track(RegisterAndSubscribeQuery(adapter, query.NewListProvidersQuery(backend), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := track(RegisterAndSubscribeQuery(adapter, query.NewListMessagesQuery(backend), runnerOpts...)); err != nil {
		return fail(err)
	}

	return subs, nil
}
