package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
)

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}

func field(name, message string) goerrors.FieldError {
	return goerrors.FieldError{Field: name, Message: message}
}

// validationError returns nil when fields is empty.
func validationError(messageType string, fields ...goerrors.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return goerrors.NewValidation("query: invalid "+messageType, fields...).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError).
		WithMetadata(map[string]any{"message_type": messageType})
}
