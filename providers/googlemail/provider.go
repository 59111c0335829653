package googlemail

import (
	"github.com/goliatone/go-credentials/core"
	"github.com/goliatone/go-credentials/internal/providerdef"
)

const (
	ProviderID       = "google_mail"
	ProviderName     = "Google Mail"
	DocumentationURL = "https://developers.google.com/gmail/api/guides/concepts"

	AuthURI     = "https://accounts.google.com/o/oauth2/auth"
	TokenURI    = "https://oauth2.googleapis.com/token"
	UserinfoURI = "https://www.googleapis.com/oauth2/v3/userinfo"
	JWKSURI     = "https://www.googleapis.com/oauth2/v3/jwks"
	Issuer      = "https://accounts.google.com"
)

type Config struct {
	Scopes []string
}

func DefaultConfig() Config {
	return Config{
		Scopes: []string{
			"https://www.googleapis.com/auth/gmail.readonly",
		},
	}
}

// New builds the Google Mail provider. It accepts both OAuth2 schemes; the
// same endpoint bundle backs the authorization-code and JWT-bearer flows.
func New(cfg Config) (core.Provider, error) {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultConfig().Scopes
	}

	supported := []core.CredentialType{
		core.CredentialTypeOAuth2AuthorizationCodeFlow,
		core.CredentialTypeOAuth2JWTBearerAssertionFlow,
	}
	return providerdef.New(providerdef.Definition{
		ID:                  ProviderID,
		Name:                ProviderName,
		DocumentationURL:    DocumentationURL,
		ResourceServerTypes: supported,
		UserTypes:           supported,
		StaticConfigs: map[core.CredentialType]core.StaticCredentialConfig{
			core.CredentialTypeOAuth2AuthorizationCodeFlow: core.OAuth2AuthorizationCodeFlowStaticConfig{
				AuthURI:     AuthURI,
				TokenURI:    TokenURI,
				UserinfoURI: UserinfoURI,
				JWKSURI:     JWKSURI,
				Issuer:      Issuer,
				Scopes:      scopes,
			},
			core.CredentialTypeOAuth2JWTBearerAssertionFlow: core.OAuth2JWTBearerAssertionFlowStaticConfig{
				AuthURI:     AuthURI,
				TokenURI:    TokenURI,
				UserinfoURI: UserinfoURI,
				JWKSURI:     JWKSURI,
				Issuer:      Issuer,
				Scopes:      scopes,
			},
		},
	})
}
