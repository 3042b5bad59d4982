package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}

// fieldErrors collects every invalid field of a command message.
type fieldErrors []goerrors.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, goerrors.FieldError{Field: field, Message: message})
}

// err returns nil when no field failed.
func (f fieldErrors) err(messageType string) error {
	if len(f) == 0 {
		return nil
	}
	return goerrors.NewValidation("command: invalid "+messageType, f...).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError).
		WithMetadata(map[string]any{"message_type": messageType})
}
