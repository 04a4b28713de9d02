package forms

import (
	"context"
	"strings"

	"github.com/whwar9739/WhiskeyTracker/gateway"
	"github.com/whwar9739/WhiskeyTracker/session"
)

const registrationNotice = "Registration successful! Please login."

// Registrar is the slice of the session provider the register page uses.
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (session.UserRecord, error)
}

// RegisterForm enforces the client-side rules before any network call:
// username 3-50 characters, email contains "@", password at least 8
// characters and matching its confirmation. The backend remains the
// authority on everything else (uniqueness in particular).
type RegisterForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string

	// LoginRoute is where a successful registration navigates; defaults to
	// the login page.
	LoginRoute string

	FieldErrors  map[string]string
	ErrorMessage string
}

func (f *RegisterForm) Validate() error {
	fields := map[string]string{}

	username := strings.TrimSpace(f.Username)
	if len(username) < 3 {
		fields[FieldUsername] = "Username must be at least 3 characters long"
	} else if len(username) > 50 {
		fields[FieldUsername] = "Username cannot exceed 50 characters"
	}

	if !strings.Contains(f.Email, "@") {
		fields[FieldEmail] = "Please enter a valid email address"
	}

	if len(f.Password) < 8 {
		fields[FieldPassword] = "Password must be at least 8 characters long"
	}

	if f.Password != f.ConfirmPassword {
		fields[FieldConfirmPassword] = "Passwords do not match"
	}

	f.FieldErrors = fields
	if len(fields) > 0 {
		return validationError(fields)
	}
	return nil
}

// Submit validates locally, then registers. Success does not establish a
// session; the outcome routes the user to the login page with a one-shot
// notice.
func (f *RegisterForm) Submit(ctx context.Context, registrar Registrar) (Outcome, error) {
	f.ErrorMessage = ""
	if err := f.Validate(); err != nil {
		return Outcome{}, err
	}

	if _, err := registrar.Register(ctx, strings.TrimSpace(f.Username), strings.TrimSpace(f.Email), f.Password); err != nil {
		f.ErrorMessage = gateway.UserMessageFromError(err)
		return Outcome{}, err
	}

	route := f.LoginRoute
	if strings.TrimSpace(route) == "" {
		route = "/login"
	}
	return Outcome{RedirectTo: route, Notice: registrationNotice}, nil
}
