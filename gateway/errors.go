package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrAuthenticationFailed = errors.New("gateway: authentication failed")
	ErrRegistrationFailed   = errors.New("gateway: registration failed")
	ErrPasswordResetFailed  = errors.New("gateway: password reset failed")
)

const (
	ErrorCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	ErrorCodeVerifyFailed       = "AUTH_VERIFY_FAILED"
	ErrorCodeRegistration       = "REGISTRATION_FAILED"
	ErrorCodePasswordReset      = "PASSWORD_RESET_FAILED"
)

const (
	fallbackLoginMessage        = "login failed"
	verifyFailedMessage         = "failed to get user data"
	fallbackRegistrationMessage = "registration failed"
	fallbackResetMessage        = "password reset failed"
)

// AuthenticationError reports a failed login: either the token endpoint
// rejected the credentials or the follow-up verification call failed.
// Message carries the backend's detail when one was provided and is the
// string pages display verbatim.
type AuthenticationError struct {
	StatusCode int
	Message    string
	Verify     bool
	Cause      error
}

func (e *AuthenticationError) Error() string {
	if e == nil {
		return ErrAuthenticationFailed.Error()
	}
	base := ErrAuthenticationFailed.Error()
	if strings.TrimSpace(e.Message) != "" {
		base += ": " + strings.TrimSpace(e.Message)
	}
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.Cause != nil {
		base += ": " + e.Cause.Error()
	}
	return base
}

func (e *AuthenticationError) Unwrap() error {
	if e == nil || e.Cause == nil {
		return ErrAuthenticationFailed
	}
	return errors.Join(ErrAuthenticationFailed, e.Cause)
}

// UserMessage is the human-readable failure text for display.
func (e *AuthenticationError) UserMessage() string {
	if e == nil || strings.TrimSpace(e.Message) == "" {
		return fallbackLoginMessage
	}
	return strings.TrimSpace(e.Message)
}

func (e *AuthenticationError) ToServiceError() *goerrors.Error {
	textCode := ErrorCodeInvalidCredentials
	if e != nil && e.Verify {
		textCode = ErrorCodeVerifyFailed
	}
	return goerrors.New(e.UserMessage(), goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(textCode)
}

// RegistrationError reports a backend-rejected registration, typically a
// uniqueness violation surfaced through the response detail field.
type RegistrationError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *RegistrationError) Error() string {
	if e == nil {
		return ErrRegistrationFailed.Error()
	}
	base := ErrRegistrationFailed.Error()
	if strings.TrimSpace(e.Message) != "" {
		base += ": " + strings.TrimSpace(e.Message)
	}
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.Cause != nil {
		base += ": " + e.Cause.Error()
	}
	return base
}

func (e *RegistrationError) Unwrap() error {
	if e == nil || e.Cause == nil {
		return ErrRegistrationFailed
	}
	return errors.Join(ErrRegistrationFailed, e.Cause)
}

func (e *RegistrationError) UserMessage() string {
	if e == nil || strings.TrimSpace(e.Message) == "" {
		return fallbackRegistrationMessage
	}
	return strings.TrimSpace(e.Message)
}

func (e *RegistrationError) ToServiceError() *goerrors.Error {
	status := http.StatusBadRequest
	if e != nil && e.StatusCode > 0 {
		status = e.StatusCode
	}
	return goerrors.New(e.UserMessage(), goerrors.CategoryConflict).
		WithCode(status).
		WithTextCode(ErrorCodeRegistration)
}

// PasswordResetError covers both the reset-request and reset-confirm calls.
type PasswordResetError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *PasswordResetError) Error() string {
	if e == nil {
		return ErrPasswordResetFailed.Error()
	}
	base := ErrPasswordResetFailed.Error()
	if strings.TrimSpace(e.Message) != "" {
		base += ": " + strings.TrimSpace(e.Message)
	}
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.Cause != nil {
		base += ": " + e.Cause.Error()
	}
	return base
}

func (e *PasswordResetError) Unwrap() error {
	if e == nil || e.Cause == nil {
		return ErrPasswordResetFailed
	}
	return errors.Join(ErrPasswordResetFailed, e.Cause)
}

func (e *PasswordResetError) UserMessage() string {
	if e == nil || strings.TrimSpace(e.Message) == "" {
		return fallbackResetMessage
	}
	return strings.TrimSpace(e.Message)
}

func (e *PasswordResetError) ToServiceError() *goerrors.Error {
	status := http.StatusBadRequest
	if e != nil && e.StatusCode > 0 {
		status = e.StatusCode
	}
	return goerrors.New(e.UserMessage(), goerrors.CategoryBadInput).
		WithCode(status).
		WithTextCode(ErrorCodePasswordReset)
}

// UserMessageFromError extracts the display string from any gateway error,
// falling back to the raw error text so no failure is silently swallowed.
func UserMessageFromError(err error) string {
	if err == nil {
		return ""
	}
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr.UserMessage()
	}
	var regErr *RegistrationError
	if errors.As(err, &regErr) {
		return regErr.UserMessage()
	}
	var resetErr *PasswordResetError
	if errors.As(err, &resetErr) {
		return resetErr.UserMessage()
	}
	return err.Error()
}
