package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/whwar9739/WhiskeyTracker/session"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(session.ErrorTextInternal)
}

func commandWrapValidation(err error, message string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(session.ErrorTextValidationFailed)
}
