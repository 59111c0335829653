package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata is an opaque bag of caller-supplied values. Core logic never
// interprets its contents; it is deep-copied on hand-off so callers cannot
// mutate persisted state through a shared map.
type Metadata map[string]any

func (m Metadata) Clone() Metadata {
	if len(m) == 0 {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

// CredentialType is the closed set of authentication schemes. The string
// values double as the wire discriminator under the "type" key.
type CredentialType string

const (
	CredentialTypeNoAuth                       CredentialType = "NoAuth"
	CredentialTypeOAuth2AuthorizationCodeFlow  CredentialType = "Oauth2AuthorizationCodeFlow"
	CredentialTypeOAuth2JWTBearerAssertionFlow CredentialType = "Oauth2JwtBearerAssertionFlow"
	CredentialTypeCustom                       CredentialType = "Custom"
)

func CredentialTypes() []CredentialType {
	return []CredentialType{
		CredentialTypeNoAuth,
		CredentialTypeOAuth2AuthorizationCodeFlow,
		CredentialTypeOAuth2JWTBearerAssertionFlow,
		CredentialTypeCustom,
	}
}

func (t CredentialType) String() string {
	return string(t)
}

func (t CredentialType) Valid() bool {
	switch t {
	case CredentialTypeNoAuth,
		CredentialTypeOAuth2AuthorizationCodeFlow,
		CredentialTypeOAuth2JWTBearerAssertionFlow,
		CredentialTypeCustom:
		return true
	}
	return false
}

// TypeID returns the snake_case storage discriminator for the scheme.
func (t CredentialType) TypeID() string {
	switch t {
	case CredentialTypeNoAuth:
		return "no_auth"
	case CredentialTypeOAuth2AuthorizationCodeFlow:
		return "oauth2_authorization_code_flow"
	case CredentialTypeOAuth2JWTBearerAssertionFlow:
		return "oauth2_jwt_bearer_assertion_flow"
	case CredentialTypeCustom:
		return "custom"
	}
	return strings.ToLower(strings.TrimSpace(string(t)))
}

func ParseCredentialType(value string) (CredentialType, error) {
	t := CredentialType(strings.TrimSpace(value))
	if !t.Valid() {
		return "", fmt.Errorf("core: unknown credential type %q", value)
	}
	return t, nil
}

// StaticCredentialConfig is a provider-declared, non-secret endpoint/scope
// bundle for one scheme.
type StaticCredentialConfig interface {
	CredentialType() CredentialType
}

type NoAuthStaticConfig struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

func (NoAuthStaticConfig) CredentialType() CredentialType { return CredentialTypeNoAuth }

type OAuth2AuthorizationCodeFlowStaticConfig struct {
	AuthURI     string   `json:"auth_uri"`
	TokenURI    string   `json:"token_uri"`
	UserinfoURI string   `json:"userinfo_uri,omitempty"`
	JWKSURI     string   `json:"jwks_uri,omitempty"`
	Issuer      string   `json:"issuer,omitempty"`
	Scopes      []string `json:"scopes"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

func (OAuth2AuthorizationCodeFlowStaticConfig) CredentialType() CredentialType {
	return CredentialTypeOAuth2AuthorizationCodeFlow
}

type OAuth2JWTBearerAssertionFlowStaticConfig struct {
	AuthURI     string   `json:"auth_uri,omitempty"`
	TokenURI    string   `json:"token_uri"`
	UserinfoURI string   `json:"userinfo_uri,omitempty"`
	JWKSURI     string   `json:"jwks_uri,omitempty"`
	Issuer      string   `json:"issuer,omitempty"`
	Scopes      []string `json:"scopes"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

func (OAuth2JWTBearerAssertionFlowStaticConfig) CredentialType() CredentialType {
	return CredentialTypeOAuth2JWTBearerAssertionFlow
}

type CustomStaticConfig struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

func (CustomStaticConfig) CredentialType() CredentialType { return CredentialTypeCustom }

// ResourceServerCredential is the app/tenant-scoped secret for one scheme.
type ResourceServerCredential interface {
	CredentialType() CredentialType
}

type NoAuthResourceServerCredential struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

func (NoAuthResourceServerCredential) CredentialType() CredentialType { return CredentialTypeNoAuth }

type OAuth2AuthorizationCodeFlowResourceServerCredential struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURI  string   `json:"redirect_uri"`
	Metadata     Metadata `json:"metadata,omitempty"`
}

func (OAuth2AuthorizationCodeFlowResourceServerCredential) CredentialType() CredentialType {
	return CredentialTypeOAuth2AuthorizationCodeFlow
}

type OAuth2JWTBearerAssertionFlowResourceServerCredential struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURI  string   `json:"redirect_uri,omitempty"`
	Metadata     Metadata `json:"metadata,omitempty"`
}

func (OAuth2JWTBearerAssertionFlowResourceServerCredential) CredentialType() CredentialType {
	return CredentialTypeOAuth2JWTBearerAssertionFlow
}

type CustomResourceServerCredential struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

func (CustomResourceServerCredential) CredentialType() CredentialType { return CredentialTypeCustom }

// UserCredential is the end-user-scoped token material produced by a
// completed authorization flow.
type UserCredential interface {
	CredentialType() CredentialType
}

type NoAuthUserCredential struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

func (NoAuthUserCredential) CredentialType() CredentialType { return CredentialTypeNoAuth }

type OAuth2AuthorizationCodeFlowUserCredential struct {
	Code         string     `json:"code"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiryTime   *time.Time `json:"expiry_time,omitempty"`
	Sub          string     `json:"sub,omitempty"`
	Metadata     Metadata   `json:"metadata,omitempty"`
}

func (OAuth2AuthorizationCodeFlowUserCredential) CredentialType() CredentialType {
	return CredentialTypeOAuth2AuthorizationCodeFlow
}

type OAuth2JWTBearerAssertionFlowUserCredential struct {
	Assertion  string     `json:"assertion"`
	Token      string     `json:"token"`
	ExpiryTime *time.Time `json:"expiry_time,omitempty"`
	Sub        string     `json:"sub,omitempty"`
	Metadata   Metadata   `json:"metadata,omitempty"`
}

func (OAuth2JWTBearerAssertionFlowUserCredential) CredentialType() CredentialType {
	return CredentialTypeOAuth2JWTBearerAssertionFlow
}

type CustomUserCredential struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

func (CustomUserCredential) CredentialType() CredentialType { return CredentialTypeCustom }

// Credential wraps a variant payload with identity and timestamps. ID and
// CreatedAt are stamped exactly once; UpdatedAt advances on every mutation.
type Credential[T any] struct {
	ID        string
	Value     T
	Metadata  Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

type (
	ResourceServerCredentialRecord = Credential[ResourceServerCredential]
	UserCredentialRecord           = Credential[UserCredential]
)

// NewCredential stamps a fresh identifier, UTC timestamps, and an empty
// metadata bag around the supplied payload.
func NewCredential[T any](value T) Credential[T] {
	now := time.Now().UTC()
	return Credential[T]{
		ID:        uuid.NewString(),
		Value:     value,
		Metadata:  Metadata{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func cloneTimePointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := value.UTC()
	return &clone
}
