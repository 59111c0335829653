package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NextRotationTime derives the rotation deadline for token material that
// expires at expiry: the deadline leads the expiry by lead so the rotation
// sweep runs while the old token is still usable.
func NextRotationTime(expiry *time.Time, lead time.Duration) *time.Time {
	if expiry == nil {
		return nil
	}
	if lead <= 0 {
		lead = defaultRotationLeadTime
	}
	deadline := expiry.UTC().Add(-lead)
	return &deadline
}

func (s *Service) rotationLeadTime() time.Duration {
	if s == nil || s.config.Rotation.LeadTime <= 0 {
		return defaultRotationLeadTime
	}
	return s.config.Rotation.LeadTime
}

type ListDueForRotationRequest struct {
	Before time.Time
	Status *ToolGroupStatus
	Page   Pagination
}

// ListDueForRotation returns tool groups whose credential rotation deadline
// falls at or before the supplied bound, joined with their credentials.
// Read-only; intended to be polled by an external scheduler.
func (s *Service) ListDueForRotation(ctx context.Context, req ListDueForRotationRequest) ([]ToolGroupWithCredentials, int, error) {
	if s == nil {
		return nil, 0, fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now().UTC()
	if s.toolGroupStore == nil {
		return nil, 0, s.mapError(fmt.Errorf("core: tool group store is not configured"))
	}
	if req.Before.IsZero() {
		return nil, 0, s.mapError(fmt.Errorf("core: rotation window bound is required"))
	}

	bound := req.Before.UTC()
	groups, total, err := s.toolGroupStore.ListWithCredentials(ctx, ToolGroupQuery{
		Status:            req.Status,
		RotationDueBefore: &bound,
		Page:              req.Page,
	})
	s.observeOperation(ctx, startedAt, "rotation_due_query", err, map[string]any{
		"bound": bound,
		"total": total,
	})
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	return groups, total, nil
}

// UpdateResourceServerCredential applies a partial update to a persisted
// resource-server credential. An empty input is a no-op and issues no write.
func (s *Service) UpdateResourceServerCredential(ctx context.Context, id string, in UpdateCredentialInput) (SerializedCredential, error) {
	if s == nil {
		return SerializedCredential{}, fmt.Errorf("core: service is nil")
	}
	return s.updateCredential(ctx, "resource_server_credential_update", s.resourceServerStore, id, in)
}

// UpdateUserCredential applies a partial update to a persisted user
// credential. An empty input is a no-op and issues no write.
func (s *Service) UpdateUserCredential(ctx context.Context, id string, in UpdateCredentialInput) (SerializedCredential, error) {
	if s == nil {
		return SerializedCredential{}, fmt.Errorf("core: service is nil")
	}
	return s.updateCredential(ctx, "user_credential_update", s.userStore, id, in)
}

type credentialUpdater interface {
	GetByID(ctx context.Context, id string) (SerializedCredential, error)
	UpdatePartial(ctx context.Context, id string, in UpdateCredentialInput) (SerializedCredential, error)
}

func (s *Service) updateCredential(ctx context.Context, operation string, store credentialUpdater, id string, in UpdateCredentialInput) (SerializedCredential, error) {
	startedAt := time.Now().UTC()
	id = strings.TrimSpace(id)
	if id == "" {
		return SerializedCredential{}, s.mapError(fmt.Errorf("core: credential id is required"))
	}
	if store == nil {
		return SerializedCredential{}, s.mapError(fmt.Errorf("core: credential store is not configured"))
	}

	if in.IsZero() {
		current, err := store.GetByID(ctx, id)
		s.observeOperation(ctx, startedAt, operation, err, map[string]any{
			"credential_id": id,
			"noop":          true,
		})
		if err != nil {
			return SerializedCredential{}, s.mapError(err)
		}
		return current, nil
	}

	if in.UpdatedAt == nil {
		now := time.Now().UTC()
		in.UpdatedAt = &now
	}
	updated, err := store.UpdatePartial(ctx, id, in)
	s.observeOperation(ctx, startedAt, operation, err, map[string]any{
		"credential_id": id,
	})
	if err != nil {
		return SerializedCredential{}, s.mapError(err)
	}
	return updated, nil
}

type RotateCredentialRequest struct {
	ToolGroupID string
}

// RotateUserCredential refreshes the user credential attached to a tool
// group through the token exchanger and persists the new material with a
// recomputed rotation deadline.
func (s *Service) RotateUserCredential(ctx context.Context, req RotateCredentialRequest) (SerializedCredential, error) {
	if s == nil {
		return SerializedCredential{}, fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now().UTC()
	rotated, err := s.rotateUserCredential(ctx, req)
	s.observeOperation(ctx, startedAt, "user_credential_rotate", err, map[string]any{
		"tool_group_id": strings.TrimSpace(req.ToolGroupID),
	})
	if err != nil {
		return SerializedCredential{}, s.mapError(err)
	}
	return rotated, nil
}

func (s *Service) rotateUserCredential(ctx context.Context, req RotateCredentialRequest) (SerializedCredential, error) {
	toolGroupID := strings.TrimSpace(req.ToolGroupID)
	if toolGroupID == "" {
		return SerializedCredential{}, fmt.Errorf("core: tool group id is required")
	}
	if s.toolGroupStore == nil || s.userStore == nil || s.resourceServerStore == nil {
		return SerializedCredential{}, fmt.Errorf("core: credential stores are not configured")
	}
	if s.tokenExchanger == nil {
		return SerializedCredential{}, fmt.Errorf("core: token exchanger is not configured")
	}

	group, err := s.toolGroupStore.GetByID(ctx, toolGroupID)
	if err != nil {
		return SerializedCredential{}, err
	}
	if group.UserCredentialID == nil || strings.TrimSpace(*group.UserCredentialID) == "" {
		return SerializedCredential{}, fmt.Errorf("core: tool group %q has no user credential to rotate", toolGroupID)
	}

	row, err := s.userStore.GetByID(ctx, strings.TrimSpace(*group.UserCredentialID))
	if err != nil {
		return SerializedCredential{}, err
	}
	decoded, err := s.codec.DecodeUser(row.Value)
	if err != nil {
		return SerializedCredential{}, err
	}
	userCred, ok := decoded.(OAuth2AuthorizationCodeFlowUserCredential)
	if !ok {
		return SerializedCredential{}, fmt.Errorf("core: credential type %q is not rotatable", decoded.CredentialType())
	}
	if strings.TrimSpace(userCred.RefreshToken) == "" {
		return SerializedCredential{}, fmt.Errorf("core: user credential %q has no refresh token", row.ID)
	}

	rsRow, err := s.resourceServerStore.GetByID(ctx, group.ResourceServerCredentialID)
	if err != nil {
		return SerializedCredential{}, err
	}
	decodedRS, err := s.codec.DecodeResourceServer(rsRow.Value)
	if err != nil {
		return SerializedCredential{}, err
	}
	rsCred, ok := decodedRS.(OAuth2AuthorizationCodeFlowResourceServerCredential)
	if !ok {
		return SerializedCredential{}, fmt.Errorf("core: resource server credential type %q cannot refresh tokens", decodedRS.CredentialType())
	}

	staticConfig, err := s.staticAuthCodeConfig(group.ProviderID)
	if err != nil {
		return SerializedCredential{}, err
	}

	grant, err := s.tokenExchanger.RefreshAccessToken(ctx, RefreshTokenRequest{
		TokenURI:     staticConfig.TokenURI,
		ClientID:     rsCred.ClientID,
		ClientSecret: rsCred.ClientSecret,
		RefreshToken: userCred.RefreshToken,
	})
	if err != nil {
		return SerializedCredential{}, err
	}

	userCred.AccessToken = grant.AccessToken
	if strings.TrimSpace(grant.RefreshToken) != "" {
		userCred.RefreshToken = grant.RefreshToken
	}
	userCred.ExpiryTime = cloneTimePointer(grant.ExpiryTime)
	if strings.TrimSpace(grant.Sub) != "" {
		userCred.Sub = grant.Sub
	}

	value, err := s.codec.EncodeUser(userCred)
	if err != nil {
		return SerializedCredential{}, err
	}
	now := time.Now().UTC()
	return s.userStore.UpdatePartial(ctx, row.ID, UpdateCredentialInput{
		Value:            value,
		NextRotationTime: NextRotationTime(userCred.ExpiryTime, s.rotationLeadTime()),
		UpdatedAt:        &now,
	})
}

func (s *Service) staticAuthCodeConfig(providerID string) (OAuth2AuthorizationCodeFlowStaticConfig, error) {
	provider, err := s.resolveProvider(providerID)
	if err != nil {
		return OAuth2AuthorizationCodeFlowStaticConfig{}, err
	}
	raw, err := provider.StaticCredentials(CredentialTypeOAuth2AuthorizationCodeFlow)
	if err != nil {
		return OAuth2AuthorizationCodeFlowStaticConfig{}, err
	}
	config, ok := raw.(OAuth2AuthorizationCodeFlowStaticConfig)
	if !ok {
		return OAuth2AuthorizationCodeFlowStaticConfig{}, fmt.Errorf("core: provider %q returned an unexpected static config shape", providerID)
	}
	return config, nil
}
