package credentials

import (
	"github.com/goliatone/go-credentials/core"
	"github.com/goliatone/go-credentials/providers"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type Provider = core.Provider
type Registry = core.Registry
type RequestInjector = core.RequestInjector
type TokenExchanger = core.TokenExchanger
type MetricsRecorder = core.MetricsRecorder

type CredentialType = core.CredentialType
type SerializedCredential = core.SerializedCredential
type StaticCredentialConfig = core.StaticCredentialConfig
type UpdateCredentialInput = core.UpdateCredentialInput
type Pagination = core.Pagination

type ToolGroup = core.ToolGroup
type ToolGroupStatus = core.ToolGroupStatus
type BrokerState = core.BrokerState
type BrokerResult = core.BrokerResult
type BrokerInput = core.BrokerInput

type ResourceServerCredentialStore = core.ResourceServerCredentialStore
type UserCredentialStore = core.UserCredentialStore
type BrokerStateStore = core.BrokerStateStore
type ToolGroupStore = core.ToolGroupStore

type StartBrokeringRequest = core.StartBrokeringRequest
type ResumeBrokeringRequest = core.ResumeBrokeringRequest
type RotateCredentialRequest = core.RotateCredentialRequest
type ListDueForRotationRequest = core.ListDueForRotationRequest
type CreateResourceServerCredentialRequest = core.CreateResourceServerCredentialRequest
type CreateUserCredentialRequest = core.CreateUserCredentialRequest
type CreateToolGroupRequest = core.CreateToolGroupRequest

const (
	CredentialTypeNoAuth                       = core.CredentialTypeNoAuth
	CredentialTypeOAuth2AuthorizationCodeFlow  = core.CredentialTypeOAuth2AuthorizationCodeFlow
	CredentialTypeOAuth2JWTBearerAssertionFlow = core.CredentialTypeOAuth2JWTBearerAssertionFlow
	CredentialTypeCustom                       = core.CredentialTypeCustom
)

var (
	WithLogger                        = core.WithLogger
	WithLoggerProvider                = core.WithLoggerProvider
	WithMetricsRecorder               = core.WithMetricsRecorder
	WithErrorFactory                  = core.WithErrorFactory
	WithErrorMapper                   = core.WithErrorMapper
	WithPersistenceClient             = core.WithPersistenceClient
	WithRepositoryFactory             = core.WithRepositoryFactory
	WithConfigProvider                = core.WithConfigProvider
	WithOptionsResolver               = core.WithOptionsResolver
	WithRegistry                      = core.WithRegistry
	WithCredentialCodec               = core.WithCredentialCodec
	WithTokenExchanger                = core.WithTokenExchanger
	WithInjector                      = core.WithInjector
	WithRotationLocker                = core.WithRotationLocker
	WithRotationBackoffScheduler      = core.WithRotationBackoffScheduler
	WithBrokerStateStore              = core.WithBrokerStateStore
	WithResourceServerCredentialStore = core.WithResourceServerCredentialStore
	WithUserCredentialStore           = core.WithUserCredentialStore
	WithToolGroupStore                = core.WithToolGroupStore
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewService builds a credential service with the builtin provider registry
// unless the caller supplies one.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	registry, err := providers.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	merged := append([]Option{core.WithRegistry(registry)}, opts...)
	return core.NewService(cfg, merged...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}
