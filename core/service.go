package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// Service wires the provider registry, credential cache, message history, and
// the switch coordinator into the operations the chat surface consumes.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	registry          Registry
	credentialStore   CredentialStore
	credentials       *CredentialCache
	messageStore      MessageStore
	userInterface     UserInterface
	coordinator       *SwitchCoordinator
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("chat", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("chat"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = NewProviderRegistry()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if (builder.credentialStore == nil || builder.messageStore == nil) && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			storeProvider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if storeProvider != nil {
				if builder.credentialStore == nil {
					builder.credentialStore = storeProvider.CredentialStore()
				}
				if builder.messageStore == nil {
					builder.messageStore = storeProvider.MessageStore()
				}
			}
		} else if storeProvider, ok := builder.repositoryFactory.(StoreProvider); ok {
			if builder.credentialStore == nil {
				builder.credentialStore = storeProvider.CredentialStore()
			}
			if builder.messageStore == nil {
				builder.messageStore = storeProvider.MessageStore()
			}
		}
	}

	// The configured default only seeds the active state when a matching
	// provider is actually registered; hosts can register late and switch.
	initialProvider := normalizeProviderID(finalConfig.DefaultProvider)
	if _, ok := builder.registry.Get(initialProvider); !ok {
		initialProvider = ""
	}

	credentials := NewCredentialCache(builder.credentialStore, logger)
	coordinator, err := NewSwitchCoordinator(SwitchCoordinatorDeps{
		Registry:        builder.registry,
		Credentials:     credentials,
		UserInterface:   builder.userInterface,
		Logger:          logger,
		MetricsRecorder: builder.metricsRecorder,
		Validation:      finalConfig.Validation,
		InitialProvider: initialProvider,
	})
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		registry:          builder.registry,
		credentialStore:   builder.credentialStore,
		credentials:       credentials,
		messageStore:      builder.messageStore,
		userInterface:     builder.userInterface,
		coordinator:       coordinator,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Registry() Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

// ActiveProvider reports the provider id the coordinator currently holds,
// tentative or confirmed. Only the coordinator ever writes it.
func (s *Service) ActiveProvider() string {
	if s == nil || s.coordinator == nil {
		return ""
	}
	return s.coordinator.ActiveProvider()
}

func (s *Service) RequestSwitch(ctx context.Context, targetID string) (SwitchResult, error) {
	if s == nil || s.coordinator == nil {
		return SwitchResult{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := time.Now()
	result, err := s.coordinator.RequestSwitch(ctx, targetID)
	s.observeOperation(ctx, startedAt, "provider_switch", err, map[string]any{
		"provider_id": strings.TrimSpace(targetID),
		"outcome":     string(result.Outcome),
		"reason":      string(result.Reason),
	})
	return result, err
}

// Send routes a chat message to the active provider and records both sides of
// the exchange. History persistence is best effort; a failed append is logged
// and does not fail the reply.
func (s *Service) Send(ctx context.Context, text string) (Message, error) {
	if s == nil {
		return Message{}, fmt.Errorf("core: service is nil")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, s.mapError(fmt.Errorf("core: message text is required"))
	}

	activeID := s.ActiveProvider()
	provider, err := s.registry.Resolve(activeID)
	if err != nil {
		return Message{}, s.mapError(err)
	}

	if carrier, ok := provider.(CredentialCarrier); ok && provider.RequiresCredential() {
		if key, found := s.credentials.Get(ctx, activeID); found {
			carrier.SetCredential(key)
		}
	}

	s.appendMessage(ctx, Message{
		Role:       MessageRoleUser,
		ProviderID: activeID,
		Body:       text,
	})

	startedAt := time.Now()
	replyText, err := provider.Reply(ctx, text)
	s.observeOperation(ctx, startedAt, "message_reply", err, map[string]any{
		"provider_id": activeID,
	})
	if err != nil {
		return Message{}, s.mapError(err)
	}

	reply := s.appendMessage(ctx, Message{
		Role:       MessageRoleAssistant,
		ProviderID: activeID,
		Body:       replyText,
	})
	return reply, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]Message, error) {
	if s == nil {
		return nil, fmt.Errorf("core: service is nil")
	}
	if s.messageStore == nil {
		return nil, nil
	}
	messages, err := s.messageStore.ListRecent(ctx, limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	return messages, nil
}

func (s *Service) ClearHistory(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	if s.messageStore == nil {
		return nil
	}
	if err := s.messageStore.Clear(ctx); err != nil {
		return s.mapError(err)
	}
	return nil
}

// ClearCredential drops the cached credential for a provider. The next switch
// to that provider prompts for a fresh key.
func (s *Service) ClearCredential(ctx context.Context, providerID string) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	id := normalizeProviderID(providerID)
	if id == "" {
		return s.mapError(fmt.Errorf("core: provider id is required"))
	}
	if _, err := s.registry.Resolve(id); err != nil {
		return s.mapError(err)
	}
	s.credentials.Clear(ctx, id)
	return nil
}

func (s *Service) appendMessage(ctx context.Context, msg Message) Message {
	if strings.TrimSpace(msg.ID) == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if s.messageStore == nil {
		return msg
	}
	stored, err := s.messageStore.Append(ctx, msg)
	if err != nil {
		s.logError(ctx, "message append failed", map[string]any{
			"provider_id": msg.ProviderID,
			"role":        string(msg.Role),
			"error":       err.Error(),
		})
		return msg
	}
	return stored
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
