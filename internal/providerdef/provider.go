package providerdef

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-credentials/core"
)

// Definition declares everything a provider implementation needs: identity,
// the credential types it accepts per context, and its static endpoint
// bundles. The provider set is closed; implementations are registered at
// build time from definitions, never discovered at runtime.
type Definition struct {
	ID                  string
	Name                string
	DocumentationURL    string
	ResourceServerTypes []core.CredentialType
	UserTypes           []core.CredentialType
	StaticConfigs       map[core.CredentialType]core.StaticCredentialConfig
	Injector            core.RequestInjector
}

func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("providers: definition id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("providers: definition name is required")
	}
	for _, credentialType := range d.ResourceServerTypes {
		if !credentialType.Valid() {
			return fmt.Errorf("providers: resource server credential type %q is invalid", credentialType)
		}
	}
	for _, credentialType := range d.UserTypes {
		if !credentialType.Valid() {
			return fmt.Errorf("providers: user credential type %q is invalid", credentialType)
		}
	}
	for credentialType, config := range d.StaticConfigs {
		if !credentialType.Valid() {
			return fmt.Errorf("providers: static config credential type %q is invalid", credentialType)
		}
		if config == nil {
			return fmt.Errorf("providers: static config for %q is nil", credentialType)
		}
		if config.CredentialType() != credentialType {
			return fmt.Errorf("providers: static config for %q declares mismatched type %q", credentialType, config.CredentialType())
		}
	}
	return nil
}

type definitionProvider struct {
	def                 Definition
	resourceServerTypes map[core.CredentialType]struct{}
	userTypes           map[core.CredentialType]struct{}
}

// New builds a core.Provider from a definition.
func New(def Definition) (core.Provider, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	def.ID = strings.TrimSpace(def.ID)
	def.Name = strings.TrimSpace(def.Name)
	def.DocumentationURL = strings.TrimSpace(def.DocumentationURL)

	provider := &definitionProvider{
		def:                 def,
		resourceServerTypes: typeSet(def.ResourceServerTypes),
		userTypes:           typeSet(def.UserTypes),
	}
	return provider, nil
}

func typeSet(types []core.CredentialType) map[core.CredentialType]struct{} {
	set := make(map[core.CredentialType]struct{}, len(types))
	for _, credentialType := range types {
		set[credentialType] = struct{}{}
	}
	return set
}

func (p *definitionProvider) ID() string {
	return p.def.ID
}

func (p *definitionProvider) Name() string {
	return p.def.Name
}

func (p *definitionProvider) DocumentationURL() string {
	return p.def.DocumentationURL
}

func (p *definitionProvider) SaveResourceServerCredential(credential core.ResourceServerCredential) (core.ResourceServerCredentialRecord, error) {
	if credential == nil {
		return core.ResourceServerCredentialRecord{}, core.NewInvalidRequestError(
			fmt.Sprintf("providers: Unsupported credential type for %s", p.def.ID))
	}
	if _, ok := p.resourceServerTypes[credential.CredentialType()]; !ok {
		return core.ResourceServerCredentialRecord{}, core.NewInvalidRequestError(
			fmt.Sprintf("providers: Unsupported credential type for %s: %s", p.def.ID, credential.CredentialType()))
	}
	return core.NewCredential(credential), nil
}

func (p *definitionProvider) SaveUserCredential(credential core.UserCredential) (core.UserCredentialRecord, error) {
	if credential == nil {
		return core.UserCredentialRecord{}, core.NewInvalidRequestError(
			fmt.Sprintf("providers: Unsupported credential type for %s", p.def.ID))
	}
	if _, ok := p.userTypes[credential.CredentialType()]; !ok {
		return core.UserCredentialRecord{}, core.NewInvalidRequestError(
			fmt.Sprintf("providers: Unsupported credential type for %s: %s", p.def.ID, credential.CredentialType()))
	}
	return core.NewCredential(credential), nil
}

func (p *definitionProvider) StaticCredentials(credentialType core.CredentialType) (core.StaticCredentialConfig, error) {
	config, ok := p.def.StaticConfigs[credentialType]
	if !ok {
		return nil, core.NewInvalidRequestError(
			fmt.Sprintf("providers: Unsupported credential type for %s: %s", p.def.ID, credentialType))
	}
	return cloneStaticConfig(config), nil
}

func (p *definitionProvider) Injector() core.RequestInjector {
	return p.def.Injector
}

// cloneStaticConfig deep-copies slice and map fields so repeated calls
// return independent, byte-equal bundles.
func cloneStaticConfig(config core.StaticCredentialConfig) core.StaticCredentialConfig {
	switch value := config.(type) {
	case core.NoAuthStaticConfig:
		value.Metadata = value.Metadata.Clone()
		return value
	case core.OAuth2AuthorizationCodeFlowStaticConfig:
		value.Scopes = append([]string(nil), value.Scopes...)
		value.Metadata = value.Metadata.Clone()
		return value
	case core.OAuth2JWTBearerAssertionFlowStaticConfig:
		value.Scopes = append([]string(nil), value.Scopes...)
		value.Metadata = value.Metadata.Clone()
		return value
	case core.CustomStaticConfig:
		value.Metadata = value.Metadata.Clone()
		return value
	}
	return config
}
