package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// BearerTokenInjector sets the Authorization header from OAuth2 token
// material.
type BearerTokenInjector struct{}

func (BearerTokenInjector) InjectCredentials(_ context.Context, req *http.Request, credential UserCredentialRecord) error {
	if req == nil {
		return fmt.Errorf("core: http request is required")
	}
	token := bearerToken(credential.Value)
	if token == "" {
		return fmt.Errorf("core: access token is required for bearer injection")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func bearerToken(credential UserCredential) string {
	switch value := credential.(type) {
	case OAuth2AuthorizationCodeFlowUserCredential:
		return strings.TrimSpace(value.AccessToken)
	case OAuth2JWTBearerAssertionFlowUserCredential:
		return strings.TrimSpace(value.Token)
	}
	return ""
}

// InjectCredentials mutates an outbound request so a tool invocation is
// authenticated: bearer header for OAuth2 schemes, nothing for NoAuth, the
// provider's hook for Custom.
func (s *Service) InjectCredentials(ctx context.Context, providerID string, credential UserCredentialRecord, req *http.Request) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now().UTC()
	err := s.injectCredentials(ctx, providerID, credential, req)
	s.observeOperation(ctx, startedAt, "credential_inject", err, map[string]any{
		"provider_id":     strings.TrimSpace(providerID),
		"credential_type": credentialTypeOf(credential.Value),
	})
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) injectCredentials(ctx context.Context, providerID string, credential UserCredentialRecord, req *http.Request) error {
	if req == nil {
		return fmt.Errorf("core: http request is required")
	}
	if credential.Value == nil {
		return fmt.Errorf("core: user credential is required")
	}

	switch credential.Value.CredentialType() {
	case CredentialTypeNoAuth:
		return nil
	case CredentialTypeOAuth2AuthorizationCodeFlow, CredentialTypeOAuth2JWTBearerAssertionFlow:
		injector := s.injector
		if injector == nil {
			injector = BearerTokenInjector{}
		}
		return injector.InjectCredentials(ctx, req, credential)
	case CredentialTypeCustom:
		provider, err := s.resolveProvider(providerID)
		if err != nil {
			return err
		}
		hook, ok := provider.(ProviderInjector)
		if !ok || hook.Injector() == nil {
			return NewInvalidRequestError(fmt.Sprintf("core: provider %q has no custom credential injector", provider.ID()))
		}
		return hook.Injector().InjectCredentials(ctx, req, credential)
	}
	return fmt.Errorf("core: unknown credential type %q", credential.Value.CredentialType())
}

func credentialTypeOf(credential UserCredential) string {
	if credential == nil {
		return ""
	}
	return string(credential.CredentialType())
}
