package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/core"
)

// MutatingService is the slice of the core service the command surface
// drives.
type MutatingService interface {
	CreateResourceServerCredential(ctx context.Context, req core.CreateResourceServerCredentialRequest) (core.SerializedCredential, error)
	CreateUserCredential(ctx context.Context, req core.CreateUserCredentialRequest) (core.SerializedCredential, error)
	UpdateResourceServerCredential(ctx context.Context, id string, in core.UpdateCredentialInput) (core.SerializedCredential, error)
	UpdateUserCredential(ctx context.Context, id string, in core.UpdateCredentialInput) (core.SerializedCredential, error)
	DeleteResourceServerCredential(ctx context.Context, id string) error
	DeleteUserCredential(ctx context.Context, id string) error
	CreateToolGroup(ctx context.Context, req core.CreateToolGroupRequest) (core.ToolGroup, error)
	StartBrokering(ctx context.Context, req core.StartBrokeringRequest) (core.BrokerResult, error)
	ResumeBrokering(ctx context.Context, req core.ResumeBrokeringRequest) (core.UserCredentialRecord, error)
	DeleteBrokerState(ctx context.Context, id string) error
	RotateUserCredential(ctx context.Context, req core.RotateCredentialRequest) (core.SerializedCredential, error)
}

type CreateResourceServerCredentialCommand struct {
	service MutatingService
}

func NewCreateResourceServerCredentialCommand(service MutatingService) *CreateResourceServerCredentialCommand {
	return &CreateResourceServerCredentialCommand{service: service}
}

func (c *CreateResourceServerCredentialCommand) Execute(ctx context.Context, msg CreateResourceServerCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: resource server credential service is required")
	}
	out, err := c.service.CreateResourceServerCredential(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateUserCredentialCommand struct {
	service MutatingService
}

func NewCreateUserCredentialCommand(service MutatingService) *CreateUserCredentialCommand {
	return &CreateUserCredentialCommand{service: service}
}

func (c *CreateUserCredentialCommand) Execute(ctx context.Context, msg CreateUserCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: user credential service is required")
	}
	out, err := c.service.CreateUserCredential(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateResourceServerCredentialCommand struct {
	service MutatingService
}

func NewUpdateResourceServerCredentialCommand(service MutatingService) *UpdateResourceServerCredentialCommand {
	return &UpdateResourceServerCredentialCommand{service: service}
}

func (c *UpdateResourceServerCredentialCommand) Execute(ctx context.Context, msg UpdateResourceServerCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: resource server credential service is required")
	}
	out, err := c.service.UpdateResourceServerCredential(ctx, msg.CredentialID, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateUserCredentialCommand struct {
	service MutatingService
}

func NewUpdateUserCredentialCommand(service MutatingService) *UpdateUserCredentialCommand {
	return &UpdateUserCredentialCommand{service: service}
}

func (c *UpdateUserCredentialCommand) Execute(ctx context.Context, msg UpdateUserCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: user credential service is required")
	}
	out, err := c.service.UpdateUserCredential(ctx, msg.CredentialID, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteResourceServerCredentialCommand struct {
	service MutatingService
}

func NewDeleteResourceServerCredentialCommand(service MutatingService) *DeleteResourceServerCredentialCommand {
	return &DeleteResourceServerCredentialCommand{service: service}
}

func (c *DeleteResourceServerCredentialCommand) Execute(ctx context.Context, msg DeleteResourceServerCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: resource server credential service is required")
	}
	return c.service.DeleteResourceServerCredential(ctx, msg.CredentialID)
}

type DeleteUserCredentialCommand struct {
	service MutatingService
}

func NewDeleteUserCredentialCommand(service MutatingService) *DeleteUserCredentialCommand {
	return &DeleteUserCredentialCommand{service: service}
}

func (c *DeleteUserCredentialCommand) Execute(ctx context.Context, msg DeleteUserCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: user credential service is required")
	}
	return c.service.DeleteUserCredential(ctx, msg.CredentialID)
}

type CreateToolGroupCommand struct {
	service MutatingService
}

func NewCreateToolGroupCommand(service MutatingService) *CreateToolGroupCommand {
	return &CreateToolGroupCommand{service: service}
}

func (c *CreateToolGroupCommand) Execute(ctx context.Context, msg CreateToolGroupMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: tool group service is required")
	}
	out, err := c.service.CreateToolGroup(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type StartBrokeringCommand struct {
	service MutatingService
}

func NewStartBrokeringCommand(service MutatingService) *StartBrokeringCommand {
	return &StartBrokeringCommand{service: service}
}

func (c *StartBrokeringCommand) Execute(ctx context.Context, msg StartBrokeringMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: brokering service is required")
	}
	out, err := c.service.StartBrokering(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ResumeBrokeringCommand struct {
	service MutatingService
}

func NewResumeBrokeringCommand(service MutatingService) *ResumeBrokeringCommand {
	return &ResumeBrokeringCommand{service: service}
}

func (c *ResumeBrokeringCommand) Execute(ctx context.Context, msg ResumeBrokeringMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: brokering service is required")
	}
	out, err := c.service.ResumeBrokering(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteBrokerStateCommand struct {
	service MutatingService
}

func NewDeleteBrokerStateCommand(service MutatingService) *DeleteBrokerStateCommand {
	return &DeleteBrokerStateCommand{service: service}
}

func (c *DeleteBrokerStateCommand) Execute(ctx context.Context, msg DeleteBrokerStateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: broker state service is required")
	}
	return c.service.DeleteBrokerState(ctx, msg.BrokerStateID)
}

type RotateUserCredentialCommand struct {
	service MutatingService
}

func NewRotateUserCredentialCommand(service MutatingService) *RotateUserCredentialCommand {
	return &RotateUserCredentialCommand{service: service}
}

func (c *RotateUserCredentialCommand) Execute(ctx context.Context, msg RotateUserCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: rotation service is required")
	}
	out, err := c.service.RotateUserCredential(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
