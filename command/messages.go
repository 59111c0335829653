package command

import (
	"strings"

	"github.com/goliatone/go-credentials/core"
)

const (
	TypeCreateResourceServerCredential = "credentials.command.resource_server_credential.create"
	TypeCreateUserCredential           = "credentials.command.user_credential.create"
	TypeUpdateResourceServerCredential = "credentials.command.resource_server_credential.update"
	TypeUpdateUserCredential           = "credentials.command.user_credential.update"
	TypeDeleteResourceServerCredential = "credentials.command.resource_server_credential.delete"
	TypeDeleteUserCredential           = "credentials.command.user_credential.delete"
	TypeCreateToolGroup                = "credentials.command.tool_group.create"
	TypeStartBrokering                 = "credentials.command.brokering.start"
	TypeResumeBrokering                = "credentials.command.brokering.resume"
	TypeDeleteBrokerState              = "credentials.command.broker_state.delete"
	TypeRotateUserCredential           = "credentials.command.user_credential.rotate"
)

type CreateResourceServerCredentialMessage struct {
	Request core.CreateResourceServerCredentialRequest
}

func (CreateResourceServerCredentialMessage) Type() string { return TypeCreateResourceServerCredential }

func (m CreateResourceServerCredentialMessage) Validate() error {
	if strings.TrimSpace(m.Request.ProviderID) == "" {
		return commandValidationError("provider_id", "provider id is required")
	}
	if m.Request.Credential == nil {
		return commandValidationError("credential", "credential is required")
	}
	return nil
}

type CreateUserCredentialMessage struct {
	Request core.CreateUserCredentialRequest
}

func (CreateUserCredentialMessage) Type() string { return TypeCreateUserCredential }

func (m CreateUserCredentialMessage) Validate() error {
	if strings.TrimSpace(m.Request.ProviderID) == "" {
		return commandValidationError("provider_id", "provider id is required")
	}
	if m.Request.Credential == nil {
		return commandValidationError("credential", "credential is required")
	}
	return nil
}

type UpdateResourceServerCredentialMessage struct {
	CredentialID string
	Input        core.UpdateCredentialInput
}

func (UpdateResourceServerCredentialMessage) Type() string { return TypeUpdateResourceServerCredential }

func (m UpdateResourceServerCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return commandValidationError("credential_id", "credential id is required")
	}
	return nil
}

type UpdateUserCredentialMessage struct {
	CredentialID string
	Input        core.UpdateCredentialInput
}

func (UpdateUserCredentialMessage) Type() string { return TypeUpdateUserCredential }

func (m UpdateUserCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return commandValidationError("credential_id", "credential id is required")
	}
	return nil
}

type DeleteResourceServerCredentialMessage struct {
	CredentialID string
}

func (DeleteResourceServerCredentialMessage) Type() string { return TypeDeleteResourceServerCredential }

func (m DeleteResourceServerCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return commandValidationError("credential_id", "credential id is required")
	}
	return nil
}

type DeleteUserCredentialMessage struct {
	CredentialID string
}

func (DeleteUserCredentialMessage) Type() string { return TypeDeleteUserCredential }

func (m DeleteUserCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return commandValidationError("credential_id", "credential id is required")
	}
	return nil
}

type CreateToolGroupMessage struct {
	Request core.CreateToolGroupRequest
}

func (CreateToolGroupMessage) Type() string { return TypeCreateToolGroup }

func (m CreateToolGroupMessage) Validate() error {
	if strings.TrimSpace(m.Request.DisplayName) == "" {
		return commandValidationError("display_name", "display name is required")
	}
	if strings.TrimSpace(m.Request.ProviderID) == "" {
		return commandValidationError("provider_id", "provider id is required")
	}
	if !m.Request.CredentialType.Valid() {
		return commandValidationError("credential_type", "credential type is invalid")
	}
	if strings.TrimSpace(m.Request.ResourceServerCredentialID) == "" {
		return commandValidationError("resource_server_credential_id", "resource server credential id is required")
	}
	return nil
}

type StartBrokeringMessage struct {
	Request core.StartBrokeringRequest
}

func (StartBrokeringMessage) Type() string { return TypeStartBrokering }

func (m StartBrokeringMessage) Validate() error {
	if strings.TrimSpace(m.Request.ToolGroupID) == "" {
		return commandValidationError("tool_group_id", "tool group id is required")
	}
	return nil
}

type ResumeBrokeringMessage struct {
	Request core.ResumeBrokeringRequest
}

func (ResumeBrokeringMessage) Type() string { return TypeResumeBrokering }

func (m ResumeBrokeringMessage) Validate() error {
	if strings.TrimSpace(m.Request.BrokerStateID) == "" {
		return commandValidationError("broker_state_id", "broker state id is required")
	}
	return nil
}

type DeleteBrokerStateMessage struct {
	BrokerStateID string
}

func (DeleteBrokerStateMessage) Type() string { return TypeDeleteBrokerState }

func (m DeleteBrokerStateMessage) Validate() error {
	if strings.TrimSpace(m.BrokerStateID) == "" {
		return commandValidationError("broker_state_id", "broker state id is required")
	}
	return nil
}

type RotateUserCredentialMessage struct {
	Request core.RotateCredentialRequest
}

func (RotateUserCredentialMessage) Type() string { return TypeRotateUserCredential }

func (m RotateUserCredentialMessage) Validate() error {
	if strings.TrimSpace(m.Request.ToolGroupID) == "" {
		return commandValidationError("tool_group_id", "tool group id is required")
	}
	return nil
}
