package inbound

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-neo/core"
)

const (
	testTriggerID = "trigger_1"
	testSessionID = "trigger_test"
	testSecret    = "s3cr3t"
)

type nopWebhookAPI struct{}

func (nopWebhookAPI) ListWebhooks(context.Context) ([]core.RemoteWebhook, error) { return nil, nil }

func (nopWebhookAPI) CreateWebhook(context.Context, core.WebhookSubscription) (core.RemoteWebhook, error) {
	return core.RemoteWebhook{ID: "wh_1"}, nil
}

func (nopWebhookAPI) DeleteWebhook(context.Context, string) error { return nil }

type recordingSink struct {
	mu     sync.Mutex
	events []core.InboundEvent
	err    error
}

func (s *recordingSink) Emit(_ context.Context, _ string, event core.InboundEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func newTestDispatcher(t *testing.T, sink core.EventSink) (*Dispatcher, *InstanceRegistry) {
	t.Helper()
	trigger, err := core.NewTrigger(core.DefaultConfig(), core.WithWebhookAPI(nopWebhookAPI{}))
	if err != nil {
		t.Fatalf("new trigger: %v", err)
	}
	registry := NewInstanceRegistry()
	if err := registry.Register(core.TriggerInstance{
		ID:         testTriggerID,
		WebhookURL: "https://host.example.com/webhook/trigger_1/webhook",
		Settings: core.TriggerSettings{
			EventTypes:     []core.EventType{core.EventTypeExtraction},
			WebhookName:    "invoices",
			Secret:         testSecret,
			ValidateSecret: true,
		},
	}); err != nil {
		t.Fatalf("register instance: %v", err)
	}
	if err := registry.Register(core.TriggerInstance{
		ID:         testSessionID,
		WebhookURL: "https://host.example.com/webhook-test/trigger_test/webhook",
		Settings: core.TriggerSettings{
			EventTypes:     []core.EventType{core.EventTypeEnrichment},
			WebhookName:    "invoices",
			Secret:         testSecret,
			ValidateSecret: true,
		},
	}); err != nil {
		t.Fatalf("register test session instance: %v", err)
	}
	dispatcher := NewDispatcher(trigger, registry, sink)
	dispatcher.Now = func() time.Time {
		return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	}
	return dispatcher, registry
}
