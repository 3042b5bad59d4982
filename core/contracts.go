package core

import (
	"context"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// Credentials is the NEO API credential type.
type Credentials struct {
	APIKey  string
	BaseURL string
}

type Signer interface {
	Sign(ctx context.Context, req *http.Request, cred Credentials) error
}

// WebhookAPI is the slice of the remote API the registrar needs.
type WebhookAPI interface {
	ListWebhooks(ctx context.Context) ([]RemoteWebhook, error)
	CreateWebhook(ctx context.Context, sub WebhookSubscription) (RemoteWebhook, error)
	DeleteWebhook(ctx context.Context, id string) error
}

// StateStore holds values that survive the activate/deactivate lifecycle of
// a single trigger instance. Get reports found=false for missing keys.
type StateStore interface {
	Get(ctx context.Context, key StateKey) (value string, found bool, err error)
	Set(ctx context.Context, key StateKey, value string) error
	Delete(ctx context.Context, key StateKey) error
}

// EventSink receives the output item produced for an accepted callback.
type EventSink interface {
	Emit(ctx context.Context, triggerID string, event InboundEvent) error
}

type EventSinkFunc func(ctx context.Context, triggerID string, event InboundEvent) error

func (f EventSinkFunc) Emit(ctx context.Context, triggerID string, event InboundEvent) error {
	return f(ctx, triggerID, event)
}

// InstanceResolver looks up the trigger configuration for an inbound callback.
type InstanceResolver interface {
	ResolveInstance(ctx context.Context, triggerID string) (TriggerInstance, error)
}
