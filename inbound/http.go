package inbound

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
)

const defaultMaxCallbackBodyBytes int64 = 1 << 20 // 1 MiB

// AcceptedMessage is the body returned for every accepted delivery.
const AcceptedMessage = "Workflow was started"

type HTTPHandler struct {
	Dispatcher   *Dispatcher
	MaxBodyBytes int64
}

func NewHTTPHandler(dispatcher *Dispatcher) *HTTPHandler {
	return &HTTPHandler{Dispatcher: dispatcher, MaxBodyBytes: defaultMaxCallbackBodyBytes}
}

// Routes mounts the production and test-session callback endpoints. The
// path prefix decides the execution mode.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Post("/webhook/{triggerID}/webhook", h.serve(core.ExecutionModeWebhook))
	r.Post("/webhook-test/{triggerID}/webhook", h.serve(core.ExecutionModeManual))
}

func NewRouter(dispatcher *Dispatcher) chi.Router {
	router := chi.NewRouter()
	NewHTTPHandler(dispatcher).Routes(router)
	return router
}

func (h *HTTPHandler) serve(mode core.ExecutionMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := h.MaxBodyBytes
		if limit <= 0 {
			limit = defaultMaxCallbackBodyBytes
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			writeError(w, errReadBody(err))
			return
		}

		result, err := h.Dispatcher.Dispatch(r.Context(), core.InboundRequest{
			TriggerID: chi.URLParam(r, "triggerID"),
			Mode:      mode,
			Headers:   core.HeadersFromHTTP(r.Header),
			Body:      body,
			Metadata: map[string]any{
				"remote_addr": r.RemoteAddr,
				"path":        r.URL.Path,
			},
		})
		if err != nil {
			if result.StatusCode > 0 {
				writeErrorStatus(w, result.StatusCode, err)
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": AcceptedMessage})
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorStatus(w, core.HTTPStatus(err), err)
}

func writeErrorStatus(w http.ResponseWriter, status int, err error) {
	body := errorBody{Error: http.StatusText(status), Code: core.TextCode(err), Message: err.Error()}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		body.Message = richErr.Message
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
