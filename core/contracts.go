package core

import (
	"context"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// Provider validates and constructs credentials for one integration. The
// save operations stamp identity and timestamps but never persist; writing
// the envelope through a store is the caller's separate step.
type Provider interface {
	ID() string
	Name() string
	DocumentationURL() string
	SaveResourceServerCredential(credential ResourceServerCredential) (ResourceServerCredentialRecord, error)
	SaveUserCredential(credential UserCredential) (UserCredentialRecord, error)
	StaticCredentials(credentialType CredentialType) (StaticCredentialConfig, error)
}

type Registry interface {
	Register(provider Provider) error
	Get(providerID string) (Provider, bool)
	List() []Provider
}

// RequestInjector stamps a resolved credential onto an outbound request.
// Implementations mutate headers only and perform no I/O.
type RequestInjector interface {
	InjectCredentials(ctx context.Context, req *http.Request, credential UserCredentialRecord) error
}

// ProviderInjector lets a provider supply the injection hook for its
// Custom scheme.
type ProviderInjector interface {
	Injector() RequestInjector
}

type Pagination struct {
	Limit  int
	Offset int
}

// CredentialPage pairs a credential listing with the unpaginated total.
type CredentialPage struct {
	Items []SerializedCredential
	Total int
}

type RotationDuePage struct {
	Items []ToolGroupWithCredentials
	Total int
}

// UpdateCredentialInput is a partial update: nil fields are left untouched.
// An all-nil input is a true no-op and must not issue a write.
type UpdateCredentialInput struct {
	Value            []byte
	Metadata         Metadata
	NextRotationTime *time.Time
	UpdatedAt        *time.Time
}

func (in UpdateCredentialInput) IsZero() bool {
	return in.Value == nil &&
		in.Metadata == nil &&
		in.NextRotationTime == nil &&
		in.UpdatedAt == nil
}

type ResourceServerCredentialStore interface {
	Create(ctx context.Context, credential SerializedCredential) (SerializedCredential, error)
	GetByID(ctx context.Context, id string) (SerializedCredential, error)
	UpdatePartial(ctx context.Context, id string, in UpdateCredentialInput) (SerializedCredential, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page Pagination) ([]SerializedCredential, int, error)
}

type UserCredentialStore interface {
	Create(ctx context.Context, credential SerializedCredential) (SerializedCredential, error)
	GetByID(ctx context.Context, id string) (SerializedCredential, error)
	UpdatePartial(ctx context.Context, id string, in UpdateCredentialInput) (SerializedCredential, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page Pagination) ([]SerializedCredential, int, error)
}

type BrokerStateStore interface {
	Create(ctx context.Context, state BrokerState) (BrokerState, error)
	GetByID(ctx context.Context, id string) (BrokerState, error)
	Delete(ctx context.Context, id string) error
}

// ToolGroupQuery filters the tool-group-with-credentials listing. A nil
// RotationDueBefore skips the rotation-window constraint.
type ToolGroupQuery struct {
	Status            *ToolGroupStatus
	RotationDueBefore *time.Time
	Page              Pagination
}

type ToolGroupWithCredentials struct {
	ToolGroup                ToolGroup
	ResourceServerCredential SerializedCredential
	UserCredential           *SerializedCredential
}

type ToolGroupStore interface {
	Create(ctx context.Context, group ToolGroup) (ToolGroup, error)
	GetByID(ctx context.Context, id string) (ToolGroup, error)
	UpdateCredentialRefs(ctx context.Context, id string, refs CredentialRefs) (ToolGroup, error)
	UpdateStatus(ctx context.Context, id string, status ToolGroupStatus) error
	ListWithCredentials(ctx context.Context, query ToolGroupQuery) ([]ToolGroupWithCredentials, int, error)
}

// CredentialRefs updates a tool group's credential attachments; nil fields
// are left untouched.
type CredentialRefs struct {
	ResourceServerCredentialID *string
	UserCredentialID           *string
}

// TokenGrant is the material returned by an external token endpoint
// exchange.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	Sub          string
	ExpiryTime   *time.Time
}

type ExchangeCodeRequest struct {
	TokenURI     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Code         string
	CodeVerifier string
}

type ExchangeAssertionRequest struct {
	TokenURI  string
	Assertion string
	Scopes    []string
}

type RefreshTokenRequest struct {
	TokenURI     string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// TokenExchanger performs the network leg of a handshake. The core never
// talks to a provider directly; callers plug in an exchanger the same way
// they plug in the storage engine.
type TokenExchanger interface {
	ExchangeAuthorizationCode(ctx context.Context, req ExchangeCodeRequest) (TokenGrant, error)
	ExchangeAssertion(ctx context.Context, req ExchangeAssertionRequest) (TokenGrant, error)
	RefreshAccessToken(ctx context.Context, req RefreshTokenRequest) (TokenGrant, error)
}

// StoreProvider exposes the stores a repository factory wired up.
type StoreProvider interface {
	ResourceServerCredentialStore() ResourceServerCredentialStore
	UserCredentialStore() UserCredentialStore
	BrokerStateStore() BrokerStateStore
	ToolGroupStore() ToolGroupStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}
