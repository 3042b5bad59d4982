package neo

import (
	"encoding/json"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
)

// statusError converts a non-2xx NEO response into a go-errors envelope. The
// message comes from the response body when NEO provides one.
func statusError(method, path string, res core.TransportResponse) error {
	category, textCode := classifyStatus(res.StatusCode)
	message := remoteErrorMessage(res.Body)
	if message == "" {
		message = strings.ToLower(http.StatusText(res.StatusCode))
	}
	if message == "" {
		message = "unexpected response"
	}
	code := res.StatusCode
	if category == goerrors.CategoryExternal {
		code = http.StatusBadGateway
	}
	return goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode).
		WithMetadata(map[string]any{
			"method":      method,
			"path":        path,
			"status_code": res.StatusCode,
		})
}

func classifyStatus(status int) (goerrors.Category, string) {
	switch {
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound, core.ServiceErrorNotFound
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth, core.ServiceErrorUnauthorized
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz, core.ServiceErrorForbidden
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit, core.ServiceErrorRateLimited
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity, status == http.StatusConflict:
		return goerrors.CategoryBadInput, core.ServiceErrorBadInput
	default:
		return goerrors.CategoryExternal, core.ServiceErrorExternalFailure
	}
}

func remoteErrorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error_description", "detail", "error"} {
		switch typed := payload[key].(type) {
		case string:
			if strings.TrimSpace(typed) != "" {
				return strings.TrimSpace(typed)
			}
		case map[string]any:
			if nested, ok := typed["message"].(string); ok && strings.TrimSpace(nested) != "" {
				return strings.TrimSpace(nested)
			}
		}
	}
	return ""
}

func decodeError(err error, path string) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "neo: decode response").
		WithCode(http.StatusBadGateway).
		WithTextCode(core.ServiceErrorExternalFailure).
		WithMetadata(map[string]any{"path": path})
}
