package forms

import (
	"context"
	"strings"

	"github.com/whwar9739/WhiskeyTracker/gateway"
	"github.com/whwar9739/WhiskeyTracker/session"
)

// Authenticator is the slice of the session provider the login page uses.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (session.Snapshot, error)
}

// LoginForm collects credentials and drives the login flow. ErrorMessage
// carries the backend's failure text verbatim for display.
type LoginForm struct {
	Email    string
	Password string

	// SuccessRoute is where a successful login navigates; defaults to the
	// protected entry point.
	SuccessRoute string

	FieldErrors  map[string]string
	ErrorMessage string
}

func (f *LoginForm) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(f.Email) == "" {
		fields[FieldEmail] = "Email is required"
	}
	if f.Password == "" {
		fields[FieldPassword] = "Password is required"
	}
	f.FieldErrors = fields
	if len(fields) > 0 {
		return validationError(fields)
	}
	return nil
}

// Submit validates locally, then attempts the login. Local failures block
// the network call entirely; gateway failures surface the backend's message
// and leave the session untouched.
func (f *LoginForm) Submit(ctx context.Context, auth Authenticator) (Outcome, error) {
	f.ErrorMessage = ""
	if err := f.Validate(); err != nil {
		return Outcome{}, err
	}

	if _, err := auth.Login(ctx, strings.TrimSpace(f.Email), f.Password); err != nil {
		f.ErrorMessage = gateway.UserMessageFromError(err)
		return Outcome{}, err
	}

	route := f.SuccessRoute
	if strings.TrimSpace(route) == "" {
		route = "/dashboard"
	}
	return Outcome{RedirectTo: route}, nil
}
