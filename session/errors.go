package session

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorTextValidationFailed     = "VALIDATION_FAILED"
	ErrorTextLoginInFlight        = "SESSION_LOGIN_IN_FLIGHT"
	ErrorTextRegistrationInFlight = "SESSION_REGISTRATION_IN_FLIGHT"
	ErrorTextInternal             = "CLIENT_INTERNAL_ERROR"
)

var (
	// ErrLoginInFlight is returned when a login is submitted while a
	// previous attempt is still resolving.
	ErrLoginInFlight = errors.New("session: login already in flight")
	// ErrRegistrationInFlight is the registration equivalent.
	ErrRegistrationInFlight = errors.New("session: registration already in flight")
)

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureErrorEnvelope(rich)
	}

	var convertible interface{ ToServiceError() *goerrors.Error }
	if errors.As(err, &convertible) {
		return ensureErrorEnvelope(convertible.ToServiceError())
	}

	switch {
	case errors.Is(err, ErrLoginInFlight):
		return ensureErrorEnvelope(
			goerrors.New(err.Error(), goerrors.CategoryConflict).
				WithTextCode(ErrorTextLoginInFlight),
		)
	case errors.Is(err, ErrRegistrationInFlight):
		return ensureErrorEnvelope(
			goerrors.New(err.Error(), goerrors.CategoryConflict).
				WithTextCode(ErrorTextRegistrationInFlight),
		)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = httpStatusFor(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = ErrorTextInternal
	}
	return err
}

func httpStatusFor(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
