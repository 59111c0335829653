package query

import (
	"context"

	"github.com/goliatone/go-credentials/core"
)

// StaticCredentialsReader resolves provider static configuration without
// touching storage.
type StaticCredentialsReader interface {
	GetStaticCredentials(providerID string, credentialType core.CredentialType) (core.StaticCredentialConfig, error)
}

type CredentialReader interface {
	GetResourceServerCredential(ctx context.Context, id string) (core.SerializedCredential, error)
	GetUserCredential(ctx context.Context, id string) (core.SerializedCredential, error)
	ListResourceServerCredentials(ctx context.Context, page core.Pagination) ([]core.SerializedCredential, int, error)
	ListUserCredentials(ctx context.Context, page core.Pagination) ([]core.SerializedCredential, int, error)
}

type ToolGroupReader interface {
	GetToolGroup(ctx context.Context, id string) (core.ToolGroup, error)
}

type BrokerStateReader interface {
	GetBrokerState(ctx context.Context, id string) (core.BrokerState, error)
}

type RotationReader interface {
	ListDueForRotation(ctx context.Context, req core.ListDueForRotationRequest) ([]core.ToolGroupWithCredentials, int, error)
}

type GetStaticCredentialsQuery struct {
	reader StaticCredentialsReader
}

func NewGetStaticCredentialsQuery(reader StaticCredentialsReader) *GetStaticCredentialsQuery {
	return &GetStaticCredentialsQuery{reader: reader}
}

func (q *GetStaticCredentialsQuery) Query(_ context.Context, msg GetStaticCredentialsMessage) (core.StaticCredentialConfig, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: static credentials reader is required")
	}
	return q.reader.GetStaticCredentials(msg.ProviderID, msg.CredentialType)
}

type GetResourceServerCredentialQuery struct {
	reader CredentialReader
}

func NewGetResourceServerCredentialQuery(reader CredentialReader) *GetResourceServerCredentialQuery {
	return &GetResourceServerCredentialQuery{reader: reader}
}

func (q *GetResourceServerCredentialQuery) Query(ctx context.Context, msg GetResourceServerCredentialMessage) (core.SerializedCredential, error) {
	if q == nil || q.reader == nil {
		return core.SerializedCredential{}, queryDependencyError("query: credential reader is required")
	}
	return q.reader.GetResourceServerCredential(ctx, msg.CredentialID)
}

type GetUserCredentialQuery struct {
	reader CredentialReader
}

func NewGetUserCredentialQuery(reader CredentialReader) *GetUserCredentialQuery {
	return &GetUserCredentialQuery{reader: reader}
}

func (q *GetUserCredentialQuery) Query(ctx context.Context, msg GetUserCredentialMessage) (core.SerializedCredential, error) {
	if q == nil || q.reader == nil {
		return core.SerializedCredential{}, queryDependencyError("query: credential reader is required")
	}
	return q.reader.GetUserCredential(ctx, msg.CredentialID)
}

type ListResourceServerCredentialsQuery struct {
	reader CredentialReader
}

func NewListResourceServerCredentialsQuery(reader CredentialReader) *ListResourceServerCredentialsQuery {
	return &ListResourceServerCredentialsQuery{reader: reader}
}

func (q *ListResourceServerCredentialsQuery) Query(ctx context.Context, msg ListResourceServerCredentialsMessage) (core.CredentialPage, error) {
	if q == nil || q.reader == nil {
		return core.CredentialPage{}, queryDependencyError("query: credential reader is required")
	}
	items, total, err := q.reader.ListResourceServerCredentials(ctx, msg.Page)
	if err != nil {
		return core.CredentialPage{}, err
	}
	return core.CredentialPage{Items: items, Total: total}, nil
}

type ListUserCredentialsQuery struct {
	reader CredentialReader
}

func NewListUserCredentialsQuery(reader CredentialReader) *ListUserCredentialsQuery {
	return &ListUserCredentialsQuery{reader: reader}
}

func (q *ListUserCredentialsQuery) Query(ctx context.Context, msg ListUserCredentialsMessage) (core.CredentialPage, error) {
	if q == nil || q.reader == nil {
		return core.CredentialPage{}, queryDependencyError("query: credential reader is required")
	}
	items, total, err := q.reader.ListUserCredentials(ctx, msg.Page)
	if err != nil {
		return core.CredentialPage{}, err
	}
	return core.CredentialPage{Items: items, Total: total}, nil
}

type GetToolGroupQuery struct {
	reader ToolGroupReader
}

func NewGetToolGroupQuery(reader ToolGroupReader) *GetToolGroupQuery {
	return &GetToolGroupQuery{reader: reader}
}

func (q *GetToolGroupQuery) Query(ctx context.Context, msg GetToolGroupMessage) (core.ToolGroup, error) {
	if q == nil || q.reader == nil {
		return core.ToolGroup{}, queryDependencyError("query: tool group reader is required")
	}
	return q.reader.GetToolGroup(ctx, msg.ToolGroupID)
}

type GetBrokerStateQuery struct {
	reader BrokerStateReader
}

func NewGetBrokerStateQuery(reader BrokerStateReader) *GetBrokerStateQuery {
	return &GetBrokerStateQuery{reader: reader}
}

func (q *GetBrokerStateQuery) Query(ctx context.Context, msg GetBrokerStateMessage) (core.BrokerState, error) {
	if q == nil || q.reader == nil {
		return core.BrokerState{}, queryDependencyError("query: broker state reader is required")
	}
	return q.reader.GetBrokerState(ctx, msg.BrokerStateID)
}

type ListDueForRotationQuery struct {
	reader RotationReader
}

func NewListDueForRotationQuery(reader RotationReader) *ListDueForRotationQuery {
	return &ListDueForRotationQuery{reader: reader}
}

func (q *ListDueForRotationQuery) Query(ctx context.Context, msg ListDueForRotationMessage) (core.RotationDuePage, error) {
	if q == nil || q.reader == nil {
		return core.RotationDuePage{}, queryDependencyError("query: rotation reader is required")
	}
	items, total, err := q.reader.ListDueForRotation(ctx, core.ListDueForRotationRequest{
		Before: msg.Before,
		Status: msg.Status,
		Page:   msg.Page,
	})
	if err != nil {
		return core.RotationDuePage{}, err
	}
	return core.RotationDuePage{Items: items, Total: total}, nil
}
