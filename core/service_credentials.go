package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const resourceServerTypeIDPrefix = "resource_server_"

type CreateResourceServerCredentialRequest struct {
	ProviderID string
	Credential ResourceServerCredential
	Metadata   Metadata
	DEKAlias   string
}

// CreateResourceServerCredential validates the variant through the
// provider, then persists the constructed envelope. Validation failures
// surface before any persistence attempt.
func (s *Service) CreateResourceServerCredential(ctx context.Context, req CreateResourceServerCredentialRequest) (SerializedCredential, error) {
	if s == nil {
		return SerializedCredential{}, fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now().UTC()
	stored, err := s.createResourceServerCredential(ctx, req)
	s.observeOperation(ctx, startedAt, "resource_server_credential_create", err, map[string]any{
		"provider_id": strings.TrimSpace(req.ProviderID),
	})
	if err != nil {
		return SerializedCredential{}, s.mapError(err)
	}
	return stored, nil
}

func (s *Service) createResourceServerCredential(ctx context.Context, req CreateResourceServerCredentialRequest) (SerializedCredential, error) {
	if s.resourceServerStore == nil {
		return SerializedCredential{}, fmt.Errorf("core: resource server credential store is not configured")
	}
	provider, err := s.resolveProvider(req.ProviderID)
	if err != nil {
		return SerializedCredential{}, err
	}
	record, err := provider.SaveResourceServerCredential(req.Credential)
	if err != nil {
		return SerializedCredential{}, err
	}
	if len(req.Metadata) > 0 {
		record.Metadata = req.Metadata.Clone()
	}

	serialized, err := s.serializeResourceServerRecord(record, req.DEKAlias)
	if err != nil {
		return SerializedCredential{}, err
	}
	return s.resourceServerStore.Create(ctx, serialized)
}

type CreateUserCredentialRequest struct {
	ProviderID string
	Credential UserCredential
	Metadata   Metadata
	DEKAlias   string
}

// CreateUserCredential validates the variant through the provider, then
// persists the constructed envelope with a derived rotation deadline.
func (s *Service) CreateUserCredential(ctx context.Context, req CreateUserCredentialRequest) (SerializedCredential, error) {
	if s == nil {
		return SerializedCredential{}, fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now().UTC()
	stored, err := s.createUserCredential(ctx, req)
	s.observeOperation(ctx, startedAt, "user_credential_create", err, map[string]any{
		"provider_id": strings.TrimSpace(req.ProviderID),
	})
	if err != nil {
		return SerializedCredential{}, s.mapError(err)
	}
	return stored, nil
}

func (s *Service) createUserCredential(ctx context.Context, req CreateUserCredentialRequest) (SerializedCredential, error) {
	if s.userStore == nil {
		return SerializedCredential{}, fmt.Errorf("core: user credential store is not configured")
	}
	provider, err := s.resolveProvider(req.ProviderID)
	if err != nil {
		return SerializedCredential{}, err
	}
	record, err := provider.SaveUserCredential(req.Credential)
	if err != nil {
		return SerializedCredential{}, err
	}
	if len(req.Metadata) > 0 {
		record.Metadata = req.Metadata.Clone()
	}

	serialized, err := s.serializeUserRecord(record, req.DEKAlias)
	if err != nil {
		return SerializedCredential{}, err
	}
	return s.userStore.Create(ctx, serialized)
}

// GetStaticCredentials returns the provider's declared endpoint/scope
// bundle for a scheme. Deterministic: same provider and type always yield
// the same bundle.
func (s *Service) GetStaticCredentials(providerID string, credentialType CredentialType) (StaticCredentialConfig, error) {
	if s == nil {
		return nil, fmt.Errorf("core: service is nil")
	}
	provider, err := s.resolveProvider(providerID)
	if err != nil {
		return nil, s.mapError(err)
	}
	config, err := provider.StaticCredentials(credentialType)
	if err != nil {
		return nil, s.mapError(err)
	}
	return config, nil
}

func (s *Service) GetResourceServerCredential(ctx context.Context, id string) (SerializedCredential, error) {
	if s == nil {
		return SerializedCredential{}, fmt.Errorf("core: service is nil")
	}
	if s.resourceServerStore == nil {
		return SerializedCredential{}, s.mapError(fmt.Errorf("core: resource server credential store is not configured"))
	}
	row, err := s.resourceServerStore.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return SerializedCredential{}, s.mapError(err)
	}
	return row, nil
}

func (s *Service) GetUserCredential(ctx context.Context, id string) (SerializedCredential, error) {
	if s == nil {
		return SerializedCredential{}, fmt.Errorf("core: service is nil")
	}
	if s.userStore == nil {
		return SerializedCredential{}, s.mapError(fmt.Errorf("core: user credential store is not configured"))
	}
	row, err := s.userStore.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return SerializedCredential{}, s.mapError(err)
	}
	return row, nil
}

func (s *Service) DeleteResourceServerCredential(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	if s.resourceServerStore == nil {
		return s.mapError(fmt.Errorf("core: resource server credential store is not configured"))
	}
	if err := s.resourceServerStore.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) DeleteUserCredential(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	if s.userStore == nil {
		return s.mapError(fmt.Errorf("core: user credential store is not configured"))
	}
	if err := s.userStore.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) ListResourceServerCredentials(ctx context.Context, page Pagination) ([]SerializedCredential, int, error) {
	if s == nil {
		return nil, 0, fmt.Errorf("core: service is nil")
	}
	if s.resourceServerStore == nil {
		return nil, 0, s.mapError(fmt.Errorf("core: resource server credential store is not configured"))
	}
	rows, total, err := s.resourceServerStore.List(ctx, page)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	return rows, total, nil
}

func (s *Service) ListUserCredentials(ctx context.Context, page Pagination) ([]SerializedCredential, int, error) {
	if s == nil {
		return nil, 0, fmt.Errorf("core: service is nil")
	}
	if s.userStore == nil {
		return nil, 0, s.mapError(fmt.Errorf("core: user credential store is not configured"))
	}
	rows, total, err := s.userStore.List(ctx, page)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	return rows, total, nil
}

type CreateToolGroupRequest struct {
	DisplayName                string
	ProviderID                 string
	CredentialType             CredentialType
	ResourceServerCredentialID string
	ReturnURL                  string
	Metadata                   Metadata
}

// CreateToolGroup registers a configured integration awaiting brokering.
func (s *Service) CreateToolGroup(ctx context.Context, req CreateToolGroupRequest) (ToolGroup, error) {
	if s == nil {
		return ToolGroup{}, fmt.Errorf("core: service is nil")
	}
	startedAt := time.Now().UTC()
	group, err := s.createToolGroup(ctx, req)
	s.observeOperation(ctx, startedAt, "tool_group_create", err, map[string]any{
		"provider_id": strings.TrimSpace(req.ProviderID),
	})
	if err != nil {
		return ToolGroup{}, s.mapError(err)
	}
	return group, nil
}

func (s *Service) createToolGroup(ctx context.Context, req CreateToolGroupRequest) (ToolGroup, error) {
	if s.toolGroupStore == nil {
		return ToolGroup{}, fmt.Errorf("core: tool group store is not configured")
	}
	if _, err := s.resolveProvider(req.ProviderID); err != nil {
		return ToolGroup{}, err
	}

	now := time.Now().UTC()
	group := ToolGroup{
		ID:                         uuid.NewString(),
		DisplayName:                strings.TrimSpace(req.DisplayName),
		ProviderID:                 strings.TrimSpace(req.ProviderID),
		CredentialType:             req.CredentialType,
		ResourceServerCredentialID: strings.TrimSpace(req.ResourceServerCredentialID),
		Status:                     ToolGroupStatusPending,
		ReturnURL:                  strings.TrimSpace(req.ReturnURL),
		Metadata:                   req.Metadata.Clone(),
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	if err := group.Validate(); err != nil {
		return ToolGroup{}, err
	}
	return s.toolGroupStore.Create(ctx, group)
}

func (s *Service) GetToolGroup(ctx context.Context, id string) (ToolGroup, error) {
	if s == nil {
		return ToolGroup{}, fmt.Errorf("core: service is nil")
	}
	if s.toolGroupStore == nil {
		return ToolGroup{}, s.mapError(fmt.Errorf("core: tool group store is not configured"))
	}
	group, err := s.toolGroupStore.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return ToolGroup{}, s.mapError(err)
	}
	return group, nil
}

func (s *Service) serializeResourceServerRecord(record ResourceServerCredentialRecord, dekAlias string) (SerializedCredential, error) {
	if record.Value == nil {
		return SerializedCredential{}, fmt.Errorf("core: resource server credential is required")
	}
	value, err := s.codec.EncodeResourceServer(record.Value)
	if err != nil {
		return SerializedCredential{}, err
	}
	return SerializedCredential{
		ID:        record.ID,
		TypeID:    resourceServerTypeIDPrefix + record.Value.CredentialType().TypeID(),
		Metadata:  record.Metadata.Clone(),
		Value:     value,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		DEKAlias:  s.resolveDEKAlias(dekAlias),
	}, nil
}

func (s *Service) serializeUserRecord(record UserCredentialRecord, dekAlias string) (SerializedCredential, error) {
	if record.Value == nil {
		return SerializedCredential{}, fmt.Errorf("core: user credential is required")
	}
	value, err := s.codec.EncodeUser(record.Value)
	if err != nil {
		return SerializedCredential{}, err
	}
	return SerializedCredential{
		ID:               record.ID,
		TypeID:           record.Value.CredentialType().TypeID(),
		Metadata:         record.Metadata.Clone(),
		Value:            value,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
		NextRotationTime: NextRotationTime(userCredentialExpiry(record.Value), s.rotationLeadTime()),
		DEKAlias:         s.resolveDEKAlias(dekAlias),
	}, nil
}

func (s *Service) resolveDEKAlias(dekAlias string) string {
	dekAlias = strings.TrimSpace(dekAlias)
	if dekAlias != "" {
		return dekAlias
	}
	if s != nil && strings.TrimSpace(s.config.DefaultDEKAlias) != "" {
		return s.config.DefaultDEKAlias
	}
	return DefaultConfig().DefaultDEKAlias
}

func userCredentialExpiry(credential UserCredential) *time.Time {
	switch value := credential.(type) {
	case OAuth2AuthorizationCodeFlowUserCredential:
		return cloneTimePointer(value.ExpiryTime)
	case OAuth2JWTBearerAssertionFlowUserCredential:
		return cloneTimePointer(value.ExpiryTime)
	}
	return nil
}
