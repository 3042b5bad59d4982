package core

import (
	"errors"
	"testing"
)

func TestParseEventTypes(t *testing.T) {
	parsed, err := ParseEventTypes("extraction", " CLASSIFICATION ", "", "EXTRACTION")
	if err != nil {
		t.Fatalf("parse event types: %v", err)
	}
	if len(parsed) != 2 || parsed[0] != EventTypeExtraction || parsed[1] != EventTypeClassification {
		t.Fatalf("unexpected event types %#v", parsed)
	}

	if _, err := ParseEventTypes("SUMMARY"); !errors.Is(err, ErrInvalidEventType) {
		t.Fatalf("expected invalid event type error, got %v", err)
	}
}

func TestTriggerSettingsValidate(t *testing.T) {
	settings := testInstance(testLiveURL).Settings
	if err := settings.Validate(); err != nil {
		t.Fatalf("expected valid settings: %v", err)
	}

	empty := settings
	empty.EventTypes = nil
	if err := empty.Validate(); !errors.Is(err, ErrEventTypesRequired) {
		t.Fatalf("expected event types required, got %v", err)
	}

	noSecret := settings
	noSecret.Secret = " "
	if err := noSecret.Validate(); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestDefaultTriggerSettingsValidatesSecret(t *testing.T) {
	if !DefaultTriggerSettings().ValidateSecret {
		t.Fatalf("expected secret validation enabled by default")
	}
}

func TestParseExecutionMode(t *testing.T) {
	if ParseExecutionMode("Manual") != ExecutionModeManual {
		t.Fatalf("expected manual mode")
	}
	if ParseExecutionMode("") != ExecutionModeWebhook || ParseExecutionMode("trigger") != ExecutionModeWebhook {
		t.Fatalf("expected non-manual values to map to webhook mode")
	}
}

func TestInboundEventRecordCopiesData(t *testing.T) {
	event := InboundEvent{
		EventType: "EXTRACTION",
		Timestamp: "2026-01-01T00:00:00.000Z",
		Data:      map[string]any{"id": "doc_1"},
		Headers:   map[string]string{"x-neo-secret": testSecret},
		Mode:      ExecutionModeWebhook,
	}
	record := event.Record()
	data := record["data"].(map[string]any)
	data["id"] = "mutated"
	if event.Data["id"] != "doc_1" {
		t.Fatalf("expected record data to be a copy")
	}
	if record["test_mode"] != false {
		t.Fatalf("expected test_mode=false, got %#v", record["test_mode"])
	}
}

func TestStateKeyString(t *testing.T) {
	key := webhookIDKey(" trigger_1 ")
	if key.String() != "trigger_1:webhook_id" {
		t.Fatalf("unexpected key %q", key.String())
	}
	if err := (StateKey{Name: "x"}).Validate(); !errors.Is(err, ErrTriggerIDRequired) {
		t.Fatalf("expected trigger id required, got %v", err)
	}
}
