package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput            = "NEO_BAD_INPUT"
	ServiceErrorNotFound            = "NEO_NOT_FOUND"
	ServiceErrorUnauthorized        = "NEO_UNAUTHORIZED"
	ServiceErrorForbidden           = "NEO_FORBIDDEN"
	ServiceErrorRateLimited         = "NEO_RATE_LIMITED"
	ServiceErrorOperationFailed     = "NEO_OPERATION_FAILED"
	ServiceErrorExternalFailure     = "NEO_REMOTE_FAILURE"
	ServiceErrorWebhookCreateFailed = "NEO_WEBHOOK_CREATE_FAILED"
	ServiceErrorSecretMissing       = "NEO_WEBHOOK_SECRET_MISSING"
	ServiceErrorSecretInvalid       = "NEO_WEBHOOK_SECRET_INVALID"
	ServiceErrorInternal            = "NEO_INTERNAL_ERROR"
)

var (
	ErrSecretMissing = errors.New("webhook secret missing in x-neo-secret header")
	ErrSecretInvalid = errors.New("webhook secret validation failed - unauthorized request")
)

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrSecretMissing):
		return newServiceError(err.Error(), goerrors.CategoryAuth, ServiceErrorSecretMissing)
	case errors.Is(err, ErrSecretInvalid):
		return newServiceError(err.Error(), goerrors.CategoryAuth, ServiceErrorSecretInvalid)
	case errors.Is(err, ErrEventTypesRequired), errors.Is(err, ErrInvalidEventType),
		errors.Is(err, ErrTriggerIDRequired), errors.Is(err, ErrWebhookURLRequired):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorBadInput)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ServiceErrorNotFound)
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return newServiceError(err.Error(), goerrors.CategoryRateLimit, ServiceErrorRateLimited)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = TextCodeForCategory(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

// TextCodeForCategory returns the NEO_* text code reported for a go-errors
// category.
func TextCodeForCategory(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryNotFound:
		return ServiceErrorNotFound
	case goerrors.CategoryAuth:
		return ServiceErrorUnauthorized
	case goerrors.CategoryAuthz:
		return ServiceErrorForbidden
	case goerrors.CategoryRateLimit:
		return ServiceErrorRateLimited
	case goerrors.CategoryOperation:
		return ServiceErrorOperationFailed
	case goerrors.CategoryExternal:
		return ServiceErrorExternalFailure
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus resolves the response status for an error returned by the
// trigger. Unknown errors map to 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	mapped := serviceErrorMapper(err)
	if mapped == nil || mapped.Code == 0 {
		return http.StatusInternalServerError
	}
	return mapped.Code
}

// TextCode returns the text code carried by err, if any.
func TextCode(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode
	}
	return ""
}

// IsNotFound reports whether err represents a remote 404.
func IsNotFound(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryNotFound || richErr.Code == http.StatusNotFound
	}
	return false
}
