package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// observeOperation logs the outcome of a registrar or callback operation and
// records its counter and latency. Secrets in fields are redacted.
func (t *Trigger) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if t == nil {
		return
	}
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = "unknown"
	}
	elapsed := time.Since(startedAt)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	logFields := RedactSensitiveMap(fields)
	logFields["operation"] = operation
	logFields["status"] = outcome
	logFields["duration_ms"] = elapsed.Milliseconds()

	tags := map[string]string{"operation": operation, "status": outcome}
	for _, key := range operationTagFields {
		if value, ok := logFields[key]; ok && value != nil {
			tags[key] = fmt.Sprint(value)
		}
	}
	t.recordOperation(ctx, operation, elapsed, tags)

	if err != nil {
		logFields["error"] = err.Error()
		if code := TextCode(err); code != "" {
			logFields["error_code"] = code
		}
		t.log(ctx, "error", "neo "+operation+" failed", logFields)
		return
	}
	t.log(ctx, "info", "neo "+operation+" completed", logFields)
}

func (t *Trigger) logWarn(ctx context.Context, message string, fields map[string]any) {
	t.log(ctx, "warn", message, RedactSensitiveMap(fields))
}

func (t *Trigger) log(ctx context.Context, level string, message string, fields map[string]any) {
	if t == nil || t.logger == nil {
		return
	}
	logger := t.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	args := sortedFieldArgs(fields)
	switch level {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	default:
		logger.Info(message, args...)
	}
}

// sortedFieldArgs flattens fields into key/value pairs ordered by key so log
// lines are stable.
func sortedFieldArgs(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
