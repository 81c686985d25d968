// Package chat provides a provider-switching chat backend with credential
// validation, durable history, and a command/query surface over the core
// service.
package chat

import "github.com/goliatone/go-chat/core"

type Config = core.Config

type ValidationConfig = core.ValidationConfig

type Option = core.Option

type Service = core.Service

type Provider = core.Provider
type CredentialValidator = core.CredentialValidator
type Registry = core.Registry
type CredentialStore = core.CredentialStore
type MessageStore = core.MessageStore
type StoreProvider = core.StoreProvider
type UserInterface = core.UserInterface
type MetricsRecorder = core.MetricsRecorder

type Message = core.Message
type MessageRole = core.MessageRole
type SwitchResult = core.SwitchResult
type SwitchOutcome = core.SwitchOutcome
type RevalidationResult = core.RevalidationResult

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithRegistry          = core.WithRegistry
	WithCredentialStore   = core.WithCredentialStore
	WithMessageStore      = core.WithMessageStore
	WithUserInterface     = core.WithUserInterface
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
