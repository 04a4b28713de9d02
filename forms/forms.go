// Package forms holds the operational logic of the account pages: local
// validation rules, gateway invocation, and outcome/error surfacing. Markup
// and styling belong to the host UI; a form here is the state a page binds
// its inputs and error annotations to.
package forms

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/whwar9739/WhiskeyTracker/session"
)

const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldToken           = "token"
)

// Outcome tells the host UI where to navigate after a successful submit.
// Notice is a one-shot message for the destination page.
type Outcome struct {
	RedirectTo string
	Notice     string
}

// fieldError builds the validation error pages receive when local rules
// fail. These never reach the network.
func validationError(fields map[string]string) error {
	fieldErrors := make([]goerrors.FieldError, 0, len(fields))
	for field, message := range fields {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   field,
			Message: message,
		})
	}
	return goerrors.NewValidation("forms: validation failed", fieldErrors...).
		WithCode(http.StatusBadRequest).
		WithTextCode(session.ErrorTextValidationFailed)
}
