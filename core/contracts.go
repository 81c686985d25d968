package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// Provider is a registered responder capability, local or remote. Reply is
// the only mandatory operation; credentialed providers additionally implement
// CredentialValidator and usually CredentialCarrier.
type Provider interface {
	ID() string
	RequiresCredential() bool
	Reply(ctx context.Context, text string) (string, error)
}

// CredentialValidator classifies a candidate credential against the remote
// service. A provider that explicitly rejects the credential (the remote
// unauthorized/forbidden response class) must return (false, nil), never an
// error; every other failure mode must return a transport-category error.
// Providers without this capability are treated as always-valid.
type CredentialValidator interface {
	ValidateCredential(ctx context.Context, key string) (bool, error)
}

// CredentialCarrier receives the confirmed credential so subsequent Reply
// calls can authorize against the remote service.
type CredentialCarrier interface {
	SetCredential(key string)
}

type Registry interface {
	Register(provider Provider) error
	Resolve(providerID string) (Provider, error)
	Get(providerID string) (Provider, bool)
	List() []Provider
}

// CredentialStore persists at most one validated credential per provider.
// Absence of an entry means no cached credential.
type CredentialStore interface {
	Get(ctx context.Context, providerID string) (string, bool, error)
	Put(ctx context.Context, providerID string, credential string) error
	Clear(ctx context.Context, providerID string) error
}

type MessageStore interface {
	Append(ctx context.Context, msg Message) (Message, error)
	ListRecent(ctx context.Context, limit int) ([]Message, error)
	Clear(ctx context.Context) error
}

// UserInterface is the UI capability consumed by the coordinator. The UI is a
// pure observer of provider state; it never mutates the active provider or
// the credential cache directly.
type UserInterface interface {
	// PromptCredential asks the user for a credential. An empty string with a
	// nil error means the user cancelled the prompt.
	PromptCredential(ctx context.Context, prompt string) (string, error)
	NotifyProviderState(event ProviderStateEvent)
	ConfirmAction(ctx context.Context, text string) (bool, error)
}

type StoreProvider interface {
	CredentialStore() CredentialStore
	MessageStore() MessageStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

// SecretProvider encrypts and decrypts credential material before it reaches
// a durable store.
type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
