package query

import (
	"strings"
	"time"

	"github.com/goliatone/go-credentials/core"
)

const (
	TypeGetStaticCredentials         = "credentials.query.static_credentials.get"
	TypeGetResourceServerCredential  = "credentials.query.resource_server_credential.get"
	TypeGetUserCredential            = "credentials.query.user_credential.get"
	TypeListResourceServerCredential = "credentials.query.resource_server_credential.list"
	TypeListUserCredential           = "credentials.query.user_credential.list"
	TypeGetToolGroup                 = "credentials.query.tool_group.get"
	TypeGetBrokerState               = "credentials.query.broker_state.get"
	TypeListDueForRotation           = "credentials.query.rotation.list_due"
)

type GetStaticCredentialsMessage struct {
	ProviderID     string
	CredentialType core.CredentialType
}

func (GetStaticCredentialsMessage) Type() string { return TypeGetStaticCredentials }

func (m GetStaticCredentialsMessage) Validate() error {
	if strings.TrimSpace(m.ProviderID) == "" {
		return queryValidationError("provider_id", "provider id is required")
	}
	if !m.CredentialType.Valid() {
		return queryValidationError("credential_type", "credential type is invalid")
	}
	return nil
}

type GetResourceServerCredentialMessage struct {
	CredentialID string
}

func (GetResourceServerCredentialMessage) Type() string { return TypeGetResourceServerCredential }

func (m GetResourceServerCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return queryValidationError("credential_id", "credential id is required")
	}
	return nil
}

type GetUserCredentialMessage struct {
	CredentialID string
}

func (GetUserCredentialMessage) Type() string { return TypeGetUserCredential }

func (m GetUserCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return queryValidationError("credential_id", "credential id is required")
	}
	return nil
}

type ListResourceServerCredentialsMessage struct {
	Page core.Pagination
}

func (ListResourceServerCredentialsMessage) Type() string { return TypeListResourceServerCredential }

func (m ListResourceServerCredentialsMessage) Validate() error {
	return validatePagination(m.Page)
}

type ListUserCredentialsMessage struct {
	Page core.Pagination
}

func (ListUserCredentialsMessage) Type() string { return TypeListUserCredential }

func (m ListUserCredentialsMessage) Validate() error {
	return validatePagination(m.Page)
}

type GetToolGroupMessage struct {
	ToolGroupID string
}

func (GetToolGroupMessage) Type() string { return TypeGetToolGroup }

func (m GetToolGroupMessage) Validate() error {
	if strings.TrimSpace(m.ToolGroupID) == "" {
		return queryValidationError("tool_group_id", "tool group id is required")
	}
	return nil
}

type GetBrokerStateMessage struct {
	BrokerStateID string
}

func (GetBrokerStateMessage) Type() string { return TypeGetBrokerState }

func (m GetBrokerStateMessage) Validate() error {
	if strings.TrimSpace(m.BrokerStateID) == "" {
		return queryValidationError("broker_state_id", "broker state id is required")
	}
	return nil
}

type ListDueForRotationMessage struct {
	Before time.Time
	Status *core.ToolGroupStatus
	Page   core.Pagination
}

func (ListDueForRotationMessage) Type() string { return TypeListDueForRotation }

func (m ListDueForRotationMessage) Validate() error {
	if m.Before.IsZero() {
		return queryValidationError("before", "rotation bound is required")
	}
	if m.Status != nil && !m.Status.Valid() {
		return queryValidationError("status", "tool group status is invalid")
	}
	return validatePagination(m.Page)
}

func validatePagination(page core.Pagination) error {
	if page.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	if page.Offset < 0 {
		return queryValidationError("offset", "offset must be >= 0")
	}
	return nil
}
