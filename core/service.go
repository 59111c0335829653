package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

var ErrProviderNotFound = errors.New("core: provider not found")

// Service wires the provider registry, the credential stores, and the
// external collaborators (token exchanger, injector) behind one API.
type Service struct {
	config              Config
	logger              Logger
	loggerProvider      LoggerProvider
	metricsRecorder     MetricsRecorder
	errorFactory        ErrorFactory
	errorMapper         ErrorMapper
	persistenceClient   any
	repositoryFactory   any
	configProvider      ConfigProvider
	optionsResolver     OptionsResolver
	registry            Registry
	codec               CredentialCodec
	tokenExchanger      TokenExchanger
	injector            RequestInjector
	rotationLocker      RotationLocker
	rotationBackoff     BackoffScheduler
	brokerStateStore    BrokerStateStore
	resourceServerStore ResourceServerCredentialStore
	userStore           UserCredentialStore
	toolGroupStore      ToolGroupStore
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("credentials", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("credentials"); named != nil {
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
	if builder.codec == nil {
		builder.codec = JSONCredentialCodec{}
	}
	if builder.brokerStateStore == nil {
		builder.brokerStateStore = NewMemoryBrokerStateStore()
	}
	if builder.rotationLocker == nil {
		builder.rotationLocker = NewMemoryRotationLocker()
	}
	if builder.rotationBackoff == nil {
		builder.rotationBackoff = ExponentialBackoffScheduler{
			Initial: defaultRotationInitialBackoff,
			Max:     defaultRotationMaxBackoff,
		}
	}
	if builder.injector == nil {
		builder.injector = BearerTokenInjector{}
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

	needsStores := builder.resourceServerStore == nil ||
		builder.userStore == nil ||
		builder.toolGroupStore == nil
	if needsStores && builder.repositoryFactory != nil {
		var stores StoreProvider
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			built, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			stores = built
		} else if built, ok := builder.repositoryFactory.(StoreProvider); ok {
			stores = built
		}
		if stores != nil {
			if builder.resourceServerStore == nil {
				builder.resourceServerStore = stores.ResourceServerCredentialStore()
			}
			if builder.userStore == nil {
				builder.userStore = stores.UserCredentialStore()
			}
			if builder.toolGroupStore == nil {
				builder.toolGroupStore = stores.ToolGroupStore()
			}
			if store := stores.BrokerStateStore(); store != nil {
				builder.brokerStateStore = store
			}
		}
	}

	return &Service{
		config:              finalConfig,
		logger:              logger,
		loggerProvider:      provider,
		metricsRecorder:     builder.metricsRecorder,
		errorFactory:        builder.errorFactory,
		errorMapper:         builder.errorMapper,
		persistenceClient:   builder.persistenceClient,
		repositoryFactory:   builder.repositoryFactory,
		configProvider:      builder.configProvider,
		optionsResolver:     builder.optionsResolver,
		registry:            builder.registry,
		codec:               builder.codec,
		tokenExchanger:      builder.tokenExchanger,
		injector:            builder.injector,
		rotationLocker:      builder.rotationLocker,
		rotationBackoff:     builder.rotationBackoff,
		brokerStateStore:    builder.brokerStateStore,
		resourceServerStore: builder.resourceServerStore,
		userStore:           builder.userStore,
		toolGroupStore:      builder.toolGroupStore,
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

func (s *Service) RegisterProvider(provider Provider) error {
	if s == nil || s.registry == nil {
		return fmt.Errorf("core: provider registry is not configured")
	}
	return s.registry.Register(provider)
}

func (s *Service) resolveProvider(providerID string) (Provider, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, fmt.Errorf("core: provider id is required")
	}
	if s.registry == nil {
		return nil, fmt.Errorf("core: provider registry is not configured")
	}
	provider, ok := s.registry.Get(providerID)
	if !ok {
		return nil, NewNotFoundError(fmt.Sprintf("core: provider not found: %s", providerID))
	}
	return provider, nil
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
