package core

import (
	"context"
	"time"
)

// Operations reported through the logger and the metrics recorder.
const (
	OperationCheckExists = "webhook_check_exists"
	OperationCreate      = "webhook_create"
	OperationDelete      = "webhook_delete"
	OperationCallback    = "webhook_callback"
)

const metricPrefix = "neo."

// OperationCounterName is the counter incremented once per operation call.
func OperationCounterName(operation string) string {
	return metricPrefix + operation + ".total"
}

// OperationDurationName is the histogram observing operation latency.
func OperationDurationName(operation string) string {
	return metricPrefix + operation + ".duration_ms"
}

// operationTagFields are the log fields copied onto metric tags.
var operationTagFields = []string{"mode", "probe_status", "test_session"}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func (t *Trigger) recordOperation(ctx context.Context, operation string, elapsed time.Duration, tags map[string]string) {
	if t == nil || t.metricsRecorder == nil {
		return
	}
	t.metricsRecorder.IncCounter(ctx, OperationCounterName(operation), 1, cloneTags(tags))
	t.metricsRecorder.ObserveHistogram(ctx, OperationDurationName(operation), float64(elapsed.Milliseconds()), cloneTags(tags))
}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

var _ MetricsRecorder = NopMetricsRecorder{}
