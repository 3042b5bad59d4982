package inbound

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
)

func inboundError(source error, category goerrors.Category, message string, code int, textCode string, metadata map[string]any) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, category)
	} else {
		err = goerrors.Wrap(source, category, message)
	}
	err = err.WithCode(code).WithTextCode(textCode)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

func errDispatcherNotConfigured() error {
	return inboundError(nil, goerrors.CategoryInternal, "inbound: dispatcher is not configured",
		http.StatusInternalServerError, core.ServiceErrorInternal, nil)
}

func errTriggerIDRequired(meta map[string]any) error {
	return inboundError(nil, goerrors.CategoryBadInput, "inbound: trigger id is required",
		http.StatusBadRequest, core.ServiceErrorBadInput, meta)
}

func errInvalidInstance(source error) error {
	return inboundError(source, goerrors.CategoryBadInput, "inbound: invalid trigger instance",
		http.StatusBadRequest, core.ServiceErrorBadInput, nil)
}

func errUnknownTrigger(triggerID string) error {
	return inboundError(nil, goerrors.CategoryNotFound, "inbound: trigger instance not found",
		http.StatusNotFound, core.ServiceErrorNotFound, map[string]any{"trigger_id": triggerID})
}

// errResolveInstance keeps not-found lookups as 404 and reports every other
// resolver failure as internal.
func errResolveInstance(source error, meta map[string]any) (int, error) {
	if core.IsNotFound(source) {
		return http.StatusNotFound, inboundError(source, goerrors.CategoryNotFound, "inbound: resolve trigger instance",
			http.StatusNotFound, core.ServiceErrorNotFound, meta)
	}
	return http.StatusInternalServerError, inboundError(source, goerrors.CategoryInternal, "inbound: resolve trigger instance",
		http.StatusInternalServerError, core.ServiceErrorInternal, meta)
}

func errEmitEvent(source error, meta map[string]any) error {
	return inboundError(source, goerrors.CategoryOperation, "inbound: emit event",
		http.StatusInternalServerError, core.ServiceErrorOperationFailed, meta)
}

func errReadBody(source error) error {
	return inboundError(source, goerrors.CategoryBadInput, "inbound: read callback body",
		http.StatusRequestEntityTooLarge, core.ServiceErrorBadInput, nil)
}
