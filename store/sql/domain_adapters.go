package sqlstore

import (
	"encoding/json"
	"time"

	"github.com/goliatone/go-credentials/core"
)

func newResourceServerCredentialRecord(credential core.SerializedCredential, now time.Time) *resourceServerCredentialRecord {
	record := &resourceServerCredentialRecord{
		ID:               credential.ID,
		TypeID:           credential.TypeID,
		Metadata:         copyAnyMap(credential.Metadata),
		Value:            append([]byte(nil), credential.Value...),
		NextRotationTime: copyTimePointer(credential.NextRotationTime),
		DEKAlias:         credential.DEKAlias,
		CreatedAt:        credential.CreatedAt,
		UpdatedAt:        credential.UpdatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record
}

func (r *resourceServerCredentialRecord) toDomain() core.SerializedCredential {
	if r == nil {
		return core.SerializedCredential{}
	}
	return core.SerializedCredential{
		ID:               r.ID,
		TypeID:           r.TypeID,
		Metadata:         core.Metadata(copyAnyMap(r.Metadata)),
		Value:            json.RawMessage(append([]byte(nil), r.Value...)),
		NextRotationTime: copyTimePointer(r.NextRotationTime),
		DEKAlias:         r.DEKAlias,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func newUserCredentialRecord(credential core.SerializedCredential, now time.Time) *userCredentialRecord {
	record := &userCredentialRecord{
		ID:               credential.ID,
		TypeID:           credential.TypeID,
		Metadata:         copyAnyMap(credential.Metadata),
		Value:            append([]byte(nil), credential.Value...),
		NextRotationTime: copyTimePointer(credential.NextRotationTime),
		DEKAlias:         credential.DEKAlias,
		CreatedAt:        credential.CreatedAt,
		UpdatedAt:        credential.UpdatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record
}

func (r *userCredentialRecord) toDomain() core.SerializedCredential {
	if r == nil {
		return core.SerializedCredential{}
	}
	return core.SerializedCredential{
		ID:               r.ID,
		TypeID:           r.TypeID,
		Metadata:         core.Metadata(copyAnyMap(r.Metadata)),
		Value:            json.RawMessage(append([]byte(nil), r.Value...)),
		NextRotationTime: copyTimePointer(r.NextRotationTime),
		DEKAlias:         r.DEKAlias,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func newBrokerStateRecord(state core.BrokerState, now time.Time) *brokerStateRecord {
	record := &brokerStateRecord{
		ID:             state.ID,
		ToolGroupID:    state.ToolGroupID,
		ProviderID:     state.ProviderID,
		CredentialType: string(state.CredentialType),
		Metadata:       copyAnyMap(state.Metadata),
		ActionType:     string(state.Action.Type),
		ActionURL:      state.Action.URL,
		CreatedAt:      state.CreatedAt,
		UpdatedAt:      state.UpdatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record
}

func (r *brokerStateRecord) toDomain() core.BrokerState {
	if r == nil {
		return core.BrokerState{}
	}
	return core.BrokerState{
		ID:             r.ID,
		ToolGroupID:    r.ToolGroupID,
		ProviderID:     r.ProviderID,
		CredentialType: core.CredentialType(r.CredentialType),
		Metadata:       core.Metadata(copyAnyMap(r.Metadata)),
		Action: core.BrokerAction{
			Type: core.BrokerActionType(r.ActionType),
			URL:  r.ActionURL,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newToolGroupRecord(group core.ToolGroup, now time.Time) *toolGroupRecord {
	record := &toolGroupRecord{
		ID:                         group.ID,
		DisplayName:                group.DisplayName,
		ProviderID:                 group.ProviderID,
		CredentialType:             string(group.CredentialType),
		ResourceServerCredentialID: group.ResourceServerCredentialID,
		UserCredentialID:           copyStringPointer(group.UserCredentialID),
		Status:                     string(group.Status),
		ReturnURL:                  group.ReturnURL,
		Metadata:                   copyAnyMap(group.Metadata),
		CreatedAt:                  group.CreatedAt,
		UpdatedAt:                  group.UpdatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record
}

func (r *toolGroupRecord) toDomain() core.ToolGroup {
	if r == nil {
		return core.ToolGroup{}
	}
	return core.ToolGroup{
		ID:                         r.ID,
		DisplayName:                r.DisplayName,
		ProviderID:                 r.ProviderID,
		CredentialType:             core.CredentialType(r.CredentialType),
		ResourceServerCredentialID: r.ResourceServerCredentialID,
		UserCredentialID:           copyStringPointer(r.UserCredentialID),
		Status:                     core.ToolGroupStatus(r.Status),
		ReturnURL:                  r.ReturnURL,
		Metadata:                   core.Metadata(copyAnyMap(r.Metadata)),
		CreatedAt:                  r.CreatedAt,
		UpdatedAt:                  r.UpdatedAt,
	}
}

func copyAnyMap(input map[string]any) map[string]any {
	copied := make(map[string]any, len(input))
	for key, value := range input {
		copied[key] = value
	}
	return copied
}

func copyTimePointer(input *time.Time) *time.Time {
	if input == nil {
		return nil
	}
	value := input.UTC()
	return &value
}

func copyStringPointer(input *string) *string {
	if input == nil {
		return nil
	}
	value := *input
	return &value
}
