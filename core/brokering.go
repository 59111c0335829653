package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreateBrokerStateInput struct {
	ToolGroupID    string
	ProviderID     string
	CredentialType CredentialType
	Metadata       Metadata
	Action         BrokerAction
}

// CreateBrokerState persists a new pending-handshake row with a fresh
// identifier and UTC timestamps.
func (s *Service) CreateBrokerState(ctx context.Context, in CreateBrokerStateInput) (BrokerState, error) {
	if s == nil {
		return BrokerState{}, fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now().UTC()
	state, err := s.createBrokerState(ctx, in)
	s.observeOperation(ctx, startedAt, "broker_state_create", err, map[string]any{
		"tool_group_id": strings.TrimSpace(in.ToolGroupID),
		"provider_id":   strings.TrimSpace(in.ProviderID),
	})
	if err != nil {
		return BrokerState{}, s.mapError(err)
	}
	return state, nil
}

func (s *Service) createBrokerState(ctx context.Context, in CreateBrokerStateInput) (BrokerState, error) {
	if s.brokerStateStore == nil {
		return BrokerState{}, fmt.Errorf("core: broker state store is not configured")
	}
	toolGroupID := strings.TrimSpace(in.ToolGroupID)
	if toolGroupID == "" {
		return BrokerState{}, fmt.Errorf("core: tool group id is required")
	}
	providerID := strings.TrimSpace(in.ProviderID)
	if providerID == "" {
		return BrokerState{}, fmt.Errorf("core: provider id is required")
	}
	if !in.CredentialType.Valid() {
		return BrokerState{}, fmt.Errorf("core: credential type %q is invalid", in.CredentialType)
	}
	if err := in.Action.Validate(); err != nil {
		return BrokerState{}, err
	}

	now := time.Now().UTC()
	metadata := in.Metadata.Clone()
	return s.brokerStateStore.Create(ctx, BrokerState{
		ID:             uuid.NewString(),
		ToolGroupID:    toolGroupID,
		ProviderID:     providerID,
		CredentialType: in.CredentialType,
		Metadata:       metadata,
		Action:         in.Action,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// GetBrokerState recovers the flow context for an id; absent rows surface
// as NotFound.
func (s *Service) GetBrokerState(ctx context.Context, id string) (BrokerState, error) {
	if s == nil {
		return BrokerState{}, fmt.Errorf("core: service is nil")
	}
	if s.brokerStateStore == nil {
		return BrokerState{}, s.mapError(fmt.Errorf("core: broker state store is not configured"))
	}
	state, err := s.brokerStateStore.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return BrokerState{}, s.mapError(err)
	}
	return state, nil
}

// DeleteBrokerState removes a handshake row. Deletion is terminal: a
// subsequent lookup reports NotFound.
func (s *Service) DeleteBrokerState(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	if s.brokerStateStore == nil {
		return s.mapError(fmt.Errorf("core: broker state store is not configured"))
	}
	if err := s.brokerStateStore.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return s.mapError(err)
	}
	return nil
}

type StartBrokeringRequest struct {
	ToolGroupID string
	Metadata    Metadata
}

// BrokerResult reports how a started flow proceeds: a redirect the caller
// must follow, a pending state that resolves without user interaction, or
// an immediately usable credential.
type BrokerResult struct {
	State       *BrokerState
	RedirectURL string
	Credential  *UserCredentialRecord
}

// StartBrokering begins an authorization handshake for a tool group. Flows
// that cannot complete within this call persist a broker state row to carry
// the context across requests.
func (s *Service) StartBrokering(ctx context.Context, req StartBrokeringRequest) (BrokerResult, error) {
	if s == nil {
		return BrokerResult{}, fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now().UTC()
	result, err := s.startBrokering(ctx, req)
	s.observeOperation(ctx, startedAt, "brokering_start", err, map[string]any{
		"tool_group_id": strings.TrimSpace(req.ToolGroupID),
	})
	if err != nil {
		return BrokerResult{}, s.mapError(err)
	}
	return result, nil
}

func (s *Service) startBrokering(ctx context.Context, req StartBrokeringRequest) (BrokerResult, error) {
	group, provider, err := s.resolveToolGroup(ctx, req.ToolGroupID)
	if err != nil {
		return BrokerResult{}, err
	}

	switch group.CredentialType {
	case CredentialTypeNoAuth:
		record, saveErr := provider.SaveUserCredential(NoAuthUserCredential{})
		if saveErr != nil {
			return BrokerResult{}, saveErr
		}
		if _, persistErr := s.persistUserCredential(ctx, group, record); persistErr != nil {
			return BrokerResult{}, persistErr
		}
		return BrokerResult{Credential: &record}, nil

	case CredentialTypeOAuth2AuthorizationCodeFlow:
		rsCred, rsErr := s.loadAuthCodeResourceServerCredential(ctx, group)
		if rsErr != nil {
			return BrokerResult{}, rsErr
		}
		staticConfig, cfgErr := s.staticAuthCodeConfig(group.ProviderID)
		if cfgErr != nil {
			return BrokerResult{}, cfgErr
		}

		stateID := uuid.NewString()
		redirectURL, urlErr := buildAuthorizeURL(staticConfig, rsCred, stateID)
		if urlErr != nil {
			return BrokerResult{}, urlErr
		}

		now := time.Now().UTC()
		state, createErr := s.brokerStateStoreRequired()
		if createErr != nil {
			return BrokerResult{}, createErr
		}
		created, storeErr := state.Create(ctx, BrokerState{
			ID:             stateID,
			ToolGroupID:    group.ID,
			ProviderID:     group.ProviderID,
			CredentialType: group.CredentialType,
			Metadata:       req.Metadata.Clone(),
			Action:         RedirectBrokerAction(redirectURL),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if storeErr != nil {
			return BrokerResult{}, storeErr
		}
		return BrokerResult{State: &created, RedirectURL: redirectURL}, nil

	case CredentialTypeOAuth2JWTBearerAssertionFlow:
		created, createErr := s.createBrokerState(ctx, CreateBrokerStateInput{
			ToolGroupID:    group.ID,
			ProviderID:     group.ProviderID,
			CredentialType: group.CredentialType,
			Metadata:       req.Metadata,
			Action:         NoneBrokerAction(),
		})
		if createErr != nil {
			return BrokerResult{}, createErr
		}
		return BrokerResult{State: &created}, nil

	case CredentialTypeCustom:
		return BrokerResult{}, NewInvalidRequestError(fmt.Sprintf("core: credential type Custom cannot be brokered for provider %q", group.ProviderID))
	}
	return BrokerResult{}, fmt.Errorf("core: unknown credential type %q", group.CredentialType)
}

type ResumeBrokeringRequest struct {
	BrokerStateID string
	Input         *BrokerInput
	Sub           string
}

// ResumeBrokering completes a pending handshake: it recovers the flow
// context, exchanges the callback material for tokens, persists the user
// credential, attaches it to the tool group, and deletes the broker state.
func (s *Service) ResumeBrokering(ctx context.Context, req ResumeBrokeringRequest) (UserCredentialRecord, error) {
	if s == nil {
		return UserCredentialRecord{}, fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now().UTC()
	record, err := s.resumeBrokering(ctx, req)
	s.observeOperation(ctx, startedAt, "brokering_resume", err, map[string]any{
		"broker_state_id": strings.TrimSpace(req.BrokerStateID),
	})
	if err != nil {
		return UserCredentialRecord{}, s.mapError(err)
	}
	return record, nil
}

func (s *Service) resumeBrokering(ctx context.Context, req ResumeBrokeringRequest) (UserCredentialRecord, error) {
	store, err := s.brokerStateStoreRequired()
	if err != nil {
		return UserCredentialRecord{}, err
	}
	if s.tokenExchanger == nil {
		return UserCredentialRecord{}, fmt.Errorf("core: token exchanger is not configured")
	}

	state, err := store.GetByID(ctx, strings.TrimSpace(req.BrokerStateID))
	if err != nil {
		return UserCredentialRecord{}, err
	}
	group, provider, err := s.resolveToolGroup(ctx, state.ToolGroupID)
	if err != nil {
		return UserCredentialRecord{}, err
	}

	var credential UserCredential
	switch state.CredentialType {
	case CredentialTypeOAuth2AuthorizationCodeFlow:
		if req.Input == nil || strings.TrimSpace(req.Input.Code) == "" {
			return UserCredentialRecord{}, NewInvalidRequestError("core: an authorization code is required to resume brokering")
		}
		rsCred, rsErr := s.loadAuthCodeResourceServerCredential(ctx, group)
		if rsErr != nil {
			return UserCredentialRecord{}, rsErr
		}
		staticConfig, cfgErr := s.staticAuthCodeConfig(group.ProviderID)
		if cfgErr != nil {
			return UserCredentialRecord{}, cfgErr
		}

		grant, exchangeErr := s.tokenExchanger.ExchangeAuthorizationCode(ctx, ExchangeCodeRequest{
			TokenURI:     staticConfig.TokenURI,
			ClientID:     rsCred.ClientID,
			ClientSecret: rsCred.ClientSecret,
			RedirectURI:  rsCred.RedirectURI,
			Code:         strings.TrimSpace(req.Input.Code),
			CodeVerifier: strings.TrimSpace(req.Input.CodeVerifier),
		})
		if exchangeErr != nil {
			return UserCredentialRecord{}, exchangeErr
		}
		credential = OAuth2AuthorizationCodeFlowUserCredential{
			Code:         strings.TrimSpace(req.Input.Code),
			AccessToken:  grant.AccessToken,
			RefreshToken: grant.RefreshToken,
			ExpiryTime:   cloneTimePointer(grant.ExpiryTime),
			Sub:          grant.Sub,
		}

	case CredentialTypeOAuth2JWTBearerAssertionFlow:
		rsCred, rsErr := s.loadAssertionResourceServerCredential(ctx, group)
		if rsErr != nil {
			return UserCredentialRecord{}, rsErr
		}
		staticConfig, cfgErr := s.staticAssertionConfig(group.ProviderID)
		if cfgErr != nil {
			return UserCredentialRecord{}, cfgErr
		}

		assertion, assertionErr := BuildJWTBearerAssertion(rsCred, strings.TrimSpace(req.Sub), staticConfig.TokenURI, time.Now().UTC())
		if assertionErr != nil {
			return UserCredentialRecord{}, assertionErr
		}
		grant, exchangeErr := s.tokenExchanger.ExchangeAssertion(ctx, ExchangeAssertionRequest{
			TokenURI:  staticConfig.TokenURI,
			Assertion: assertion,
			Scopes:    append([]string(nil), staticConfig.Scopes...),
		})
		if exchangeErr != nil {
			return UserCredentialRecord{}, exchangeErr
		}
		credential = OAuth2JWTBearerAssertionFlowUserCredential{
			Assertion:  assertion,
			Token:      grant.AccessToken,
			ExpiryTime: cloneTimePointer(grant.ExpiryTime),
			Sub:        strings.TrimSpace(req.Sub),
		}

	default:
		return UserCredentialRecord{}, NewInvalidRequestError(fmt.Sprintf("core: broker state %q carries a non-brokerable credential type %q", state.ID, state.CredentialType))
	}

	record, err := provider.SaveUserCredential(credential)
	if err != nil {
		return UserCredentialRecord{}, err
	}
	if _, err := s.persistUserCredential(ctx, group, record); err != nil {
		return UserCredentialRecord{}, err
	}
	if err := store.Delete(ctx, state.ID); err != nil {
		return UserCredentialRecord{}, err
	}
	return record, nil
}

func (s *Service) resolveToolGroup(ctx context.Context, toolGroupID string) (ToolGroup, Provider, error) {
	toolGroupID = strings.TrimSpace(toolGroupID)
	if toolGroupID == "" {
		return ToolGroup{}, nil, fmt.Errorf("core: tool group id is required")
	}
	if s.toolGroupStore == nil {
		return ToolGroup{}, nil, fmt.Errorf("core: tool group store is not configured")
	}
	group, err := s.toolGroupStore.GetByID(ctx, toolGroupID)
	if err != nil {
		return ToolGroup{}, nil, err
	}
	provider, err := s.resolveProvider(group.ProviderID)
	if err != nil {
		return ToolGroup{}, nil, err
	}
	return group, provider, nil
}

func (s *Service) brokerStateStoreRequired() (BrokerStateStore, error) {
	if s.brokerStateStore == nil {
		return nil, fmt.Errorf("core: broker state store is not configured")
	}
	return s.brokerStateStore, nil
}

func (s *Service) loadAuthCodeResourceServerCredential(ctx context.Context, group ToolGroup) (OAuth2AuthorizationCodeFlowResourceServerCredential, error) {
	row, decoded, err := s.loadResourceServerCredential(ctx, group)
	if err != nil {
		return OAuth2AuthorizationCodeFlowResourceServerCredential{}, err
	}
	credential, ok := decoded.(OAuth2AuthorizationCodeFlowResourceServerCredential)
	if !ok {
		return OAuth2AuthorizationCodeFlowResourceServerCredential{}, fmt.Errorf("core: resource server credential %q is not an authorization code flow credential", row.ID)
	}
	return credential, nil
}

func (s *Service) loadAssertionResourceServerCredential(ctx context.Context, group ToolGroup) (OAuth2JWTBearerAssertionFlowResourceServerCredential, error) {
	row, decoded, err := s.loadResourceServerCredential(ctx, group)
	if err != nil {
		return OAuth2JWTBearerAssertionFlowResourceServerCredential{}, err
	}
	credential, ok := decoded.(OAuth2JWTBearerAssertionFlowResourceServerCredential)
	if !ok {
		return OAuth2JWTBearerAssertionFlowResourceServerCredential{}, fmt.Errorf("core: resource server credential %q is not a jwt bearer assertion credential", row.ID)
	}
	return credential, nil
}

func (s *Service) loadResourceServerCredential(ctx context.Context, group ToolGroup) (SerializedCredential, ResourceServerCredential, error) {
	if s.resourceServerStore == nil {
		return SerializedCredential{}, nil, fmt.Errorf("core: resource server credential store is not configured")
	}
	row, err := s.resourceServerStore.GetByID(ctx, group.ResourceServerCredentialID)
	if err != nil {
		return SerializedCredential{}, nil, err
	}
	decoded, err := s.codec.DecodeResourceServer(row.Value)
	if err != nil {
		return SerializedCredential{}, nil, err
	}
	return row, decoded, nil
}

func (s *Service) staticAssertionConfig(providerID string) (OAuth2JWTBearerAssertionFlowStaticConfig, error) {
	provider, err := s.resolveProvider(providerID)
	if err != nil {
		return OAuth2JWTBearerAssertionFlowStaticConfig{}, err
	}
	raw, err := provider.StaticCredentials(CredentialTypeOAuth2JWTBearerAssertionFlow)
	if err != nil {
		return OAuth2JWTBearerAssertionFlowStaticConfig{}, err
	}
	config, ok := raw.(OAuth2JWTBearerAssertionFlowStaticConfig)
	if !ok {
		return OAuth2JWTBearerAssertionFlowStaticConfig{}, fmt.Errorf("core: provider %q returned an unexpected static config shape", providerID)
	}
	return config, nil
}

// persistUserCredential writes the constructed credential through the user
// store, attaches it to the tool group, and activates the group.
func (s *Service) persistUserCredential(ctx context.Context, group ToolGroup, record UserCredentialRecord) (SerializedCredential, error) {
	if s.userStore == nil {
		return SerializedCredential{}, fmt.Errorf("core: user credential store is not configured")
	}
	dekAlias := s.config.DefaultDEKAlias
	if s.resourceServerStore != nil {
		if rsRow, err := s.resourceServerStore.GetByID(ctx, group.ResourceServerCredentialID); err == nil && strings.TrimSpace(rsRow.DEKAlias) != "" {
			dekAlias = rsRow.DEKAlias
		}
	}

	serialized, err := s.serializeUserRecord(record, dekAlias)
	if err != nil {
		return SerializedCredential{}, err
	}
	stored, err := s.userStore.Create(ctx, serialized)
	if err != nil {
		return SerializedCredential{}, err
	}

	if s.toolGroupStore != nil {
		userID := stored.ID
		if _, err := s.toolGroupStore.UpdateCredentialRefs(ctx, group.ID, CredentialRefs{UserCredentialID: &userID}); err != nil {
			return SerializedCredential{}, err
		}
		if group.Status.CanTransitionTo(ToolGroupStatusActive) {
			if err := s.toolGroupStore.UpdateStatus(ctx, group.ID, ToolGroupStatusActive); err != nil {
				return SerializedCredential{}, err
			}
		}
	}
	return stored, nil
}

func buildAuthorizeURL(config OAuth2AuthorizationCodeFlowStaticConfig, credential OAuth2AuthorizationCodeFlowResourceServerCredential, state string) (string, error) {
	authURI := strings.TrimSpace(config.AuthURI)
	if authURI == "" {
		return "", fmt.Errorf("core: static credential config has no auth uri")
	}
	parsed, err := url.Parse(authURI)
	if err != nil {
		return "", fmt.Errorf("core: invalid auth uri %q: %w", authURI, err)
	}

	query := parsed.Query()
	query.Set("client_id", credential.ClientID)
	query.Set("redirect_uri", credential.RedirectURI)
	query.Set("response_type", "code")
	query.Set("scope", strings.Join(config.Scopes, " "))
	query.Set("state", state)
	query.Set("access_type", "offline")
	query.Set("prompt", "consent")
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
