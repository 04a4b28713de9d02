package forms

import (
	"context"
	"strings"

	"github.com/whwar9739/WhiskeyTracker/gateway"
)

// PasswordResetter is the slice of the session provider the reset pages use.
type PasswordResetter interface {
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

const resetRequestedNotice = "If a user with that email exists, a password reset link has been sent."

// ForgotPasswordForm starts a reset flow. The backend answers identically
// whether or not the account exists, so the notice is fixed.
type ForgotPasswordForm struct {
	Email string

	FieldErrors  map[string]string
	ErrorMessage string
}

func (f *ForgotPasswordForm) Validate() error {
	fields := map[string]string{}
	if !strings.Contains(f.Email, "@") {
		fields[FieldEmail] = "Please enter a valid email address"
	}
	f.FieldErrors = fields
	if len(fields) > 0 {
		return validationError(fields)
	}
	return nil
}

func (f *ForgotPasswordForm) Submit(ctx context.Context, resetter PasswordResetter) (Outcome, error) {
	f.ErrorMessage = ""
	if err := f.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := resetter.RequestPasswordReset(ctx, strings.TrimSpace(f.Email)); err != nil {
		f.ErrorMessage = gateway.UserMessageFromError(err)
		return Outcome{}, err
	}
	return Outcome{Notice: resetRequestedNotice}, nil
}

// ResetPasswordForm redeems a reset token for a new password. The password
// rules mirror registration.
type ResetPasswordForm struct {
	Token           string
	NewPassword     string
	ConfirmPassword string

	// LoginRoute is where a successful reset navigates.
	LoginRoute string

	FieldErrors  map[string]string
	ErrorMessage string
}

func (f *ResetPasswordForm) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(f.Token) == "" {
		fields[FieldToken] = "Reset token is required"
	}
	if len(f.NewPassword) < 8 {
		fields[FieldPassword] = "Password must be at least 8 characters long"
	}
	if f.NewPassword != f.ConfirmPassword {
		fields[FieldConfirmPassword] = "Passwords do not match"
	}
	f.FieldErrors = fields
	if len(fields) > 0 {
		return validationError(fields)
	}
	return nil
}

func (f *ResetPasswordForm) Submit(ctx context.Context, resetter PasswordResetter) (Outcome, error) {
	f.ErrorMessage = ""
	if err := f.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := resetter.ResetPassword(ctx, strings.TrimSpace(f.Token), f.NewPassword); err != nil {
		f.ErrorMessage = gateway.UserMessageFromError(err)
		return Outcome{}, err
	}
	route := f.LoginRoute
	if strings.TrimSpace(route) == "" {
		route = "/login"
	}
	return Outcome{RedirectTo: route, Notice: "Password has been reset successfully"}, nil
}
