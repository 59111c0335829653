package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateResourceServerCredentialMessage] = (*CreateResourceServerCredentialCommand)(nil)
	_ gocmd.Commander[CreateUserCredentialMessage]           = (*CreateUserCredentialCommand)(nil)
	_ gocmd.Commander[UpdateResourceServerCredentialMessage] = (*UpdateResourceServerCredentialCommand)(nil)
	_ gocmd.Commander[UpdateUserCredentialMessage]           = (*UpdateUserCredentialCommand)(nil)
	_ gocmd.Commander[DeleteResourceServerCredentialMessage] = (*DeleteResourceServerCredentialCommand)(nil)
	_ gocmd.Commander[DeleteUserCredentialMessage]           = (*DeleteUserCredentialCommand)(nil)
	_ gocmd.Commander[CreateToolGroupMessage]                = (*CreateToolGroupCommand)(nil)
	_ gocmd.Commander[StartBrokeringMessage]                 = (*StartBrokeringCommand)(nil)
	_ gocmd.Commander[ResumeBrokeringMessage]                = (*ResumeBrokeringCommand)(nil)
	_ gocmd.Commander[DeleteBrokerStateMessage]              = (*DeleteBrokerStateCommand)(nil)
	_ gocmd.Commander[RotateUserCredentialMessage]           = (*RotateUserCredentialCommand)(nil)
)
