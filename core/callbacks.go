package core

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// isoMillis matches the ISO-8601 form NEO and the host use for timestamps.
const isoMillis = "2006-01-02T15:04:05.000Z"

// SecretHeaderVerifier checks the shared secret NEO echoes back on every
// callback.
type SecretHeaderVerifier struct {
	Header string
	Secret string
}

func (v SecretHeaderVerifier) Verify(_ context.Context, req InboundRequest) error {
	header := strings.TrimSpace(v.Header)
	if header == "" {
		header = DefaultSecretHeader
	}
	received := headerValue(req.Headers, header)
	if received == "" {
		return ErrSecretMissing
	}
	if subtle.ConstantTimeCompare([]byte(received), []byte(v.Secret)) != 1 {
		return ErrSecretInvalid
	}
	return nil
}

// HandleCallback authenticates one inbound delivery and turns it into the
// event record emitted by the trigger. Secret validation never runs for
// interactive test sessions.
func (t *Trigger) HandleCallback(
	ctx context.Context,
	instance TriggerInstance,
	req InboundRequest,
) (event InboundEvent, err error) {
	startedAt := time.Now().UTC()
	mode := req.Mode
	if mode == "" {
		mode = ExecutionModeWebhook
	}
	fields := map[string]any{
		"trigger_id": strings.TrimSpace(instance.ID),
		"mode":       string(mode),
	}
	defer func() {
		if err == nil {
			fields["event_type"] = event.EventType
		}
		t.observeOperation(ctx, startedAt, OperationCallback, err, fields)
	}()

	if t == nil {
		return InboundEvent{}, fmt.Errorf("core: trigger is nil")
	}

	if !mode.IsTest() && instance.Settings.ValidateSecret {
		verifier := SecretHeaderVerifier{
			Header: t.config.Webhook.SecretHeader,
			Secret: instance.Settings.Secret,
		}
		if verifyErr := verifier.Verify(ctx, req); verifyErr != nil {
			return InboundEvent{}, t.mapError(verifyErr)
		}
	}

	body, err := decodeCallbackBody(req.Body)
	if err != nil {
		return InboundEvent{}, err
	}

	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = t.timeNow()
	}
	timestamp := body["timestamp"]
	if !truthy(timestamp) {
		timestamp = receivedAt.UTC().Format(isoMillis)
	}

	return InboundEvent{
		EventType: stringValue(body["event_type"]),
		Timestamp: timestamp,
		Data:      body,
		Headers:   normalizeHeaders(req.Headers),
		TestMode:  mode.IsTest(),
		Mode:      mode,
	}, nil
}

func decodeCallbackBody(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var body map[string]any
	if err := decoder.Decode(&body); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "callback body must be a JSON object").
			WithCode(http.StatusBadRequest).
			WithTextCode(ServiceErrorBadInput)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

// truthy follows the loose truthiness NEO payloads are produced with: null,
// empty strings, false and zero count as absent.
func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	case bool:
		return typed
	case json.Number:
		f, err := typed.Float64()
		return err != nil || f != 0
	case float64:
		return typed != 0
	case int:
		return typed != 0
	default:
		return true
	}
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

func normalizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		name := strings.ToLower(strings.TrimSpace(key))
		if name == "" {
			continue
		}
		out[name] = value
	}
	return out
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return value
		}
	}
	return ""
}

// HeadersFromHTTP flattens multi-value headers the way the transport does.
func HeadersFromHTTP(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for key, values := range header {
		out[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	return out
}
