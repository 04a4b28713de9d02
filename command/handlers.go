package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/whwar9739/WhiskeyTracker/session"
)

// SessionService is the surface the handlers delegate to; *session.Provider
// satisfies it.
type SessionService interface {
	Login(ctx context.Context, email, password string) (session.Snapshot, error)
	Logout() session.Snapshot
	Register(ctx context.Context, username, email, password string) (session.UserRecord, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type LoginCommand struct {
	service SessionService
}

func NewLoginCommand(service SessionService) *LoginCommand {
	return &LoginCommand{service: service}
}

func (c *LoginCommand) Execute(ctx context.Context, msg LoginMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: login service is required")
	}
	if err := commandWrapValidation(msg.Validate(), "command: invalid login message"); err != nil {
		return err
	}
	snapshot, err := c.service.Login(ctx, msg.Email, msg.Password)
	if err != nil {
		return err
	}
	storeResult(ctx, snapshot)
	return nil
}

type LogoutCommand struct {
	service SessionService
}

func NewLogoutCommand(service SessionService) *LogoutCommand {
	return &LogoutCommand{service: service}
}

func (c *LogoutCommand) Execute(ctx context.Context, msg LogoutMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: logout service is required")
	}
	storeResult(ctx, c.service.Logout())
	return nil
}

type RegisterCommand struct {
	service SessionService
}

func NewRegisterCommand(service SessionService) *RegisterCommand {
	return &RegisterCommand{service: service}
}

func (c *RegisterCommand) Execute(ctx context.Context, msg RegisterMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: register service is required")
	}
	if err := commandWrapValidation(msg.Validate(), "command: invalid register message"); err != nil {
		return err
	}
	user, err := c.service.Register(ctx, msg.Username, msg.Email, msg.Password)
	if err != nil {
		return err
	}
	storeResult(ctx, user)
	return nil
}

type RequestPasswordResetCommand struct {
	service SessionService
}

func NewRequestPasswordResetCommand(service SessionService) *RequestPasswordResetCommand {
	return &RequestPasswordResetCommand{service: service}
}

func (c *RequestPasswordResetCommand) Execute(ctx context.Context, msg RequestPasswordResetMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: password reset service is required")
	}
	if err := commandWrapValidation(msg.Validate(), "command: invalid password reset request"); err != nil {
		return err
	}
	return c.service.RequestPasswordReset(ctx, msg.Email)
}

type ResetPasswordCommand struct {
	service SessionService
}

func NewResetPasswordCommand(service SessionService) *ResetPasswordCommand {
	return &ResetPasswordCommand{service: service}
}

func (c *ResetPasswordCommand) Execute(ctx context.Context, msg ResetPasswordMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: password reset service is required")
	}
	if err := commandWrapValidation(msg.Validate(), "command: invalid password reset"); err != nil {
		return err
	}
	return c.service.ResetPassword(ctx, msg.Token, msg.NewPassword)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
