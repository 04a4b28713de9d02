// Package command exposes the session operations as go-command messages for
// hosts that drive the client through a command bus.
package command

import (
	"fmt"
	"strings"
)

const (
	TypeLogin                = "whiskeytracker.command.login"
	TypeLogout               = "whiskeytracker.command.logout"
	TypeRegister             = "whiskeytracker.command.register"
	TypeRequestPasswordReset = "whiskeytracker.command.password_reset.request"
	TypeResetPassword        = "whiskeytracker.command.password_reset.complete"
)

type LoginMessage struct {
	Email    string
	Password string
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return fmt.Errorf("command: email is required")
	}
	if m.Password == "" {
		return fmt.Errorf("command: password is required")
	}
	return nil
}

type LogoutMessage struct{}

func (LogoutMessage) Type() string { return TypeLogout }

func (LogoutMessage) Validate() error { return nil }

type RegisterMessage struct {
	Username string
	Email    string
	Password string
}

func (RegisterMessage) Type() string { return TypeRegister }

func (m RegisterMessage) Validate() error {
	if strings.TrimSpace(m.Username) == "" {
		return fmt.Errorf("command: username is required")
	}
	if strings.TrimSpace(m.Email) == "" {
		return fmt.Errorf("command: email is required")
	}
	if m.Password == "" {
		return fmt.Errorf("command: password is required")
	}
	return nil
}

type RequestPasswordResetMessage struct {
	Email string
}

func (RequestPasswordResetMessage) Type() string { return TypeRequestPasswordReset }

func (m RequestPasswordResetMessage) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return fmt.Errorf("command: email is required")
	}
	return nil
}

type ResetPasswordMessage struct {
	Token       string
	NewPassword string
}

func (ResetPasswordMessage) Type() string { return TypeResetPassword }

func (m ResetPasswordMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return fmt.Errorf("command: reset token is required")
	}
	if m.NewPassword == "" {
		return fmt.Errorf("command: new password is required")
	}
	return nil
}
