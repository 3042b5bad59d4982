package core

import "strings"

const RedactedValue = "[REDACTED]"

// sensitiveKeyTokens mark a log field or header as secret when the key
// contains any of them. The NEO secret header and API key header match.
var sensitiveKeyTokens = []string{
	"secret",
	"api-key",
	"api_key",
	"apikey",
	"authorization",
	"password",
	"token",
	"credential",
	"signature",
}

// traceabilityKeys are never redacted even if they contain a token.
var traceabilityKeys = map[string]struct{}{
	"trigger_id":  {},
	"webhook_id":  {},
	"webhook_url": {},
	"event_type":  {},
	"event_types": {},
	"request_id":  {},
	"trace_id":    {},
}

// RedactSensitiveMap returns a copy of metadata with secret values replaced.
// Nested maps and slices are walked.
func RedactSensitiveMap(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for key, value := range metadata {
		if IsSensitiveKey(key) {
			out[key] = RedactedValue
			continue
		}
		out[key] = redactValue(value)
	}
	return out
}

// RedactHeaders masks secret headers such as x-neo-secret and x-api-key.
func RedactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		if IsSensitiveKey(key) {
			out[key] = RedactedValue
			continue
		}
		out[key] = value
	}
	return out
}

func IsSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	if _, ok := traceabilityKeys[key]; ok {
		return false
	}
	for _, token := range sensitiveKeyTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

func redactValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return RedactSensitiveMap(typed)
	case map[string]string:
		return RedactHeaders(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = redactValue(item)
		}
		return out
	default:
		return value
	}
}
