package transport

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
)

// transportError builds the envelope for a failed NEO API call. A nil source
// yields a fresh error, otherwise source is wrapped.
func transportError(source error, category goerrors.Category, message string, code int, metadata map[string]any) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, category)
	} else {
		err = goerrors.Wrap(source, category, message)
	}
	err = err.WithCode(code).WithTextCode(core.TextCodeForCategory(category))
	meta := map[string]any{"adapter": KindREST}
	for key, value := range metadata {
		meta[key] = value
	}
	return err.WithMetadata(meta)
}
