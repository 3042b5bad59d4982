package inbound

import (
	"context"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-neo/core"
)

// CallbackHandler authenticates one callback and builds its event record.
// *core.Trigger satisfies it.
type CallbackHandler interface {
	HandleCallback(ctx context.Context, instance core.TriggerInstance, req core.InboundRequest) (core.InboundEvent, error)
}

// TestSessionMatcher recognises callback URLs of interactive test sessions.
// *core.Trigger satisfies it.
type TestSessionMatcher interface {
	IsTestWebhookURL(webhookURL string) bool
}

type Dispatcher struct {
	Handler   CallbackHandler
	Instances core.InstanceResolver
	Sink      core.EventSink
	Logger    core.Logger
	Now       func() time.Time
}

func NewDispatcher(handler CallbackHandler, instances core.InstanceResolver, sink core.EventSink) *Dispatcher {
	return &Dispatcher{
		Handler:   handler,
		Instances: instances,
		Sink:      sink,
		Logger:    glog.Nop(),
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Dispatch routes a callback to its trigger instance. Rejected deliveries
// return a result carrying the HTTP status alongside the error.
func (d *Dispatcher) Dispatch(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if d == nil || d.Handler == nil || d.Instances == nil {
		return core.InboundResult{}, errDispatcherNotConfigured()
	}
	req.TriggerID = strings.TrimSpace(req.TriggerID)
	if req.Mode == "" {
		req.Mode = core.ExecutionModeWebhook
	}
	if req.ReceivedAt.IsZero() && d.Now != nil {
		req.ReceivedAt = d.Now()
	}
	meta := map[string]any{"trigger_id": req.TriggerID, "mode": string(req.Mode)}
	if req.TriggerID == "" {
		return rejected(http.StatusBadRequest, meta), errTriggerIDRequired(meta)
	}

	instance, err := d.Instances.ResolveInstance(ctx, req.TriggerID)
	if err != nil {
		status, resolveErr := errResolveInstance(err, meta)
		return rejected(status, meta), resolveErr
	}
	// Manual deliveries skip secret validation, so they are only routed to
	// instances registered on a test session URL.
	if req.Mode == core.ExecutionModeManual && !d.isTestSession(instance.WebhookURL) {
		d.logger().Warn("manual callback for non test instance rejected",
			"trigger_id", req.TriggerID,
			"headers", core.RedactHeaders(req.Headers),
		)
		return rejected(http.StatusNotFound, meta), errUnknownTrigger(req.TriggerID)
	}

	event, err := d.Handler.HandleCallback(ctx, instance, req)
	if err != nil {
		status := core.HTTPStatus(err)
		d.logger().Warn("callback rejected",
			"trigger_id", req.TriggerID,
			"mode", string(req.Mode),
			"status", status,
			"headers", core.RedactHeaders(req.Headers),
			"error", err.Error(),
		)
		return rejected(status, meta), err
	}

	if d.Sink != nil {
		if err := d.Sink.Emit(ctx, req.TriggerID, event); err != nil {
			return rejected(http.StatusInternalServerError, meta), errEmitEvent(err, meta)
		}
	}

	meta["event_type"] = event.EventType
	return core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Event:      event,
		Metadata:   meta,
	}, nil
}

func (d *Dispatcher) isTestSession(webhookURL string) bool {
	if matcher, ok := d.Handler.(TestSessionMatcher); ok {
		return matcher.IsTestWebhookURL(webhookURL)
	}
	return core.DefaultConfig().IsTestWebhookURL(webhookURL)
}

func (d *Dispatcher) logger() core.Logger {
	if d.Logger == nil {
		return glog.Nop()
	}
	return d.Logger
}

func rejected(status int, meta map[string]any) core.InboundResult {
	out := make(map[string]any, len(meta)+1)
	for key, value := range meta {
		out[key] = value
	}
	out["rejected"] = true
	return core.InboundResult{Accepted: false, StatusCode: status, Metadata: out}
}
