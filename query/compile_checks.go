package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/core"
)

var (
	_ gocmd.Querier[GetStaticCredentialsMessage, core.StaticCredentialConfig]       = (*GetStaticCredentialsQuery)(nil)
	_ gocmd.Querier[GetResourceServerCredentialMessage, core.SerializedCredential]  = (*GetResourceServerCredentialQuery)(nil)
	_ gocmd.Querier[GetUserCredentialMessage, core.SerializedCredential]            = (*GetUserCredentialQuery)(nil)
	_ gocmd.Querier[ListResourceServerCredentialsMessage, core.CredentialPage]      = (*ListResourceServerCredentialsQuery)(nil)
	_ gocmd.Querier[ListUserCredentialsMessage, core.CredentialPage]                = (*ListUserCredentialsQuery)(nil)
	_ gocmd.Querier[GetToolGroupMessage, core.ToolGroup]                            = (*GetToolGroupQuery)(nil)
	_ gocmd.Querier[GetBrokerStateMessage, core.BrokerState]                        = (*GetBrokerStateQuery)(nil)
	_ gocmd.Querier[ListDueForRotationMessage, core.RotationDuePage]                = (*ListDueForRotationQuery)(nil)
)
