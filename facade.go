package credentials

import (
	"fmt"

	credentialcommand "github.com/goliatone/go-credentials/command"
	credentialquery "github.com/goliatone/go-credentials/query"
)

// CommandQueryService is the service surface the facade wires commands and
// queries against. *core.Service satisfies it.
type CommandQueryService interface {
	credentialcommand.MutatingService
	credentialquery.StaticCredentialsReader
	credentialquery.CredentialReader
	credentialquery.ToolGroupReader
	credentialquery.BrokerStateReader
	credentialquery.RotationReader
}

type Commands struct {
	CreateResourceServerCredential *credentialcommand.CreateResourceServerCredentialCommand
	CreateUserCredential           *credentialcommand.CreateUserCredentialCommand
	UpdateResourceServerCredential *credentialcommand.UpdateResourceServerCredentialCommand
	UpdateUserCredential           *credentialcommand.UpdateUserCredentialCommand
	DeleteResourceServerCredential *credentialcommand.DeleteResourceServerCredentialCommand
	DeleteUserCredential           *credentialcommand.DeleteUserCredentialCommand
	CreateToolGroup                *credentialcommand.CreateToolGroupCommand
	StartBrokering                 *credentialcommand.StartBrokeringCommand
	ResumeBrokering                *credentialcommand.ResumeBrokeringCommand
	DeleteBrokerState              *credentialcommand.DeleteBrokerStateCommand
	RotateUserCredential           *credentialcommand.RotateUserCredentialCommand
}

type Queries struct {
	GetStaticCredentials          *credentialquery.GetStaticCredentialsQuery
	GetResourceServerCredential   *credentialquery.GetResourceServerCredentialQuery
	GetUserCredential             *credentialquery.GetUserCredentialQuery
	ListResourceServerCredentials *credentialquery.ListResourceServerCredentialsQuery
	ListUserCredentials           *credentialquery.ListUserCredentialsQuery
	GetToolGroup                  *credentialquery.GetToolGroupQuery
	GetBrokerState                *credentialquery.GetBrokerStateQuery
	ListDueForRotation            *credentialquery.ListDueForRotationQuery
}

// Facade bundles the command and query handlers for one service instance so
// host applications register them in a single pass.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("credentials: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateResourceServerCredential: credentialcommand.NewCreateResourceServerCredentialCommand(service),
		CreateUserCredential:           credentialcommand.NewCreateUserCredentialCommand(service),
		UpdateResourceServerCredential: credentialcommand.NewUpdateResourceServerCredentialCommand(service),
		UpdateUserCredential:           credentialcommand.NewUpdateUserCredentialCommand(service),
		DeleteResourceServerCredential: credentialcommand.NewDeleteResourceServerCredentialCommand(service),
		DeleteUserCredential:           credentialcommand.NewDeleteUserCredentialCommand(service),
		CreateToolGroup:                credentialcommand.NewCreateToolGroupCommand(service),
		StartBrokering:                 credentialcommand.NewStartBrokeringCommand(service),
		ResumeBrokering:                credentialcommand.NewResumeBrokeringCommand(service),
		DeleteBrokerState:              credentialcommand.NewDeleteBrokerStateCommand(service),
		RotateUserCredential:           credentialcommand.NewRotateUserCredentialCommand(service),
	}
	facade.queries = Queries{
		GetStaticCredentials:          credentialquery.NewGetStaticCredentialsQuery(service),
		GetResourceServerCredential:   credentialquery.NewGetResourceServerCredentialQuery(service),
		GetUserCredential:             credentialquery.NewGetUserCredentialQuery(service),
		ListResourceServerCredentials: credentialquery.NewListResourceServerCredentialsQuery(service),
		ListUserCredentials:           credentialquery.NewListUserCredentialsQuery(service),
		GetToolGroup:                  credentialquery.NewGetToolGroupQuery(service),
		GetBrokerState:                credentialquery.NewGetBrokerStateQuery(service),
		ListDueForRotation:            credentialquery.NewListDueForRotationQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
