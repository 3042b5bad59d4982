package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidEventType   = errors.New("core: invalid event type")
	ErrEventTypesRequired = errors.New("core: at least one event type must be selected")
	ErrTriggerIDRequired  = errors.New("core: trigger id is required")
	ErrWebhookURLRequired = errors.New("core: webhook url is required")
)

type EventType string

const (
	EventTypeExtraction     EventType = "EXTRACTION"
	EventTypeClassification EventType = "CLASSIFICATION"
	EventTypeEnrichment     EventType = "ENRICHMENT"
)

// SupportedEventTypes lists the event types NEO can deliver, in display order.
func SupportedEventTypes() []EventType {
	return []EventType{EventTypeExtraction, EventTypeClassification, EventTypeEnrichment}
}

func (e EventType) Valid() bool {
	switch e {
	case EventTypeExtraction, EventTypeClassification, EventTypeEnrichment:
		return true
	default:
		return false
	}
}

// ParseEventTypes normalizes raw values, drops blanks and duplicates and
// rejects anything NEO does not know about.
func ParseEventTypes(values ...string) ([]EventType, error) {
	out := make([]EventType, 0, len(values))
	seen := make(map[EventType]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.ToUpper(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		eventType := EventType(trimmed)
		if !eventType.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEventType, value)
		}
		if _, ok := seen[eventType]; ok {
			continue
		}
		seen[eventType] = struct{}{}
		out = append(out, eventType)
	}
	return out, nil
}

func eventTypeStrings(values []EventType) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, string(value))
	}
	return out
}

type ExecutionMode string

const (
	// ExecutionModeManual is the interactive "listen for test event" session.
	ExecutionModeManual ExecutionMode = "manual"
	// ExecutionModeWebhook is a production delivery to an active trigger.
	ExecutionModeWebhook ExecutionMode = "webhook"
)

func (m ExecutionMode) IsTest() bool {
	return m == ExecutionModeManual
}

func ParseExecutionMode(value string) ExecutionMode {
	switch ExecutionMode(strings.ToLower(strings.TrimSpace(value))) {
	case ExecutionModeManual:
		return ExecutionModeManual
	default:
		return ExecutionModeWebhook
	}
}

type TriggerSettings struct {
	EventTypes     []EventType
	WebhookName    string
	Secret         string
	ValidateSecret bool
}

func DefaultTriggerSettings() TriggerSettings {
	return TriggerSettings{
		EventTypes:     []EventType{},
		ValidateSecret: true,
	}
}

// Validate checks the settings required to register a webhook. An empty
// event type set is reported with ErrEventTypesRequired.
func (s TriggerSettings) Validate() error {
	if len(s.EventTypes) == 0 {
		return ErrEventTypesRequired
	}
	for _, eventType := range s.EventTypes {
		if !eventType.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidEventType, eventType)
		}
	}
	if strings.TrimSpace(s.WebhookName) == "" {
		return fmt.Errorf("core: webhook name is required")
	}
	if strings.TrimSpace(s.Secret) == "" {
		return fmt.Errorf("core: webhook secret is required")
	}
	return nil
}

type TriggerInstance struct {
	ID         string
	WebhookURL string
	Settings   TriggerSettings
}

func (i TriggerInstance) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrTriggerIDRequired
	}
	if strings.TrimSpace(i.WebhookURL) == "" {
		return ErrWebhookURLRequired
	}
	return nil
}

type WebhookSubscription struct {
	Name         string   `json:"name"`
	CallbackURL  string   `json:"callback_url"`
	EventTypes   []string `json:"event_types"`
	ProviderType string   `json:"provider_type"`
	Secret       string   `json:"secret"`
}

type RemoteWebhook struct {
	ID           string         `json:"id"`
	Name         string         `json:"name,omitempty"`
	CallbackURL  string         `json:"callback_url"`
	EventTypes   []string       `json:"event_types,omitempty"`
	ProviderType string         `json:"provider_type,omitempty"`
	Raw          map[string]any `json:"-"`
}

type ProbeStatus string

const (
	ProbeFound    ProbeStatus = "found"
	ProbeNotFound ProbeStatus = "not_found"
	ProbeFailed   ProbeStatus = "query_failed"
)

// ProbeResult is the outcome of looking for an existing remote webhook.
// Callers that only need a yes/no answer use Exists.
type ProbeResult struct {
	Status    ProbeStatus
	WebhookID string
	Err       error
}

func (r ProbeResult) Exists() bool {
	return r.Status == ProbeFound
}

// ActivationResult reports what activation did for a trigger instance.
// TestSession is set for test-session URLs, which never register remotely.
type ActivationResult struct {
	TriggerID   string `json:"trigger_id"`
	WebhookID   string `json:"webhook_id,omitempty"`
	Created     bool   `json:"created"`
	TestSession bool   `json:"test_session"`
}

type InboundRequest struct {
	TriggerID  string
	Mode       ExecutionMode
	Headers    map[string]string
	Body       []byte
	ReceivedAt time.Time
	Metadata   map[string]any
}

type InboundResult struct {
	Accepted   bool
	StatusCode int
	Event      InboundEvent
	Metadata   map[string]any
}

type InboundEvent struct {
	EventType string            `json:"event_type"`
	Timestamp any               `json:"timestamp"`
	Data      map[string]any    `json:"data"`
	Headers   map[string]string `json:"headers"`
	TestMode  bool              `json:"test_mode"`
	Mode      ExecutionMode     `json:"mode"`
}

// Record renders the event as the single output item handed to the host.
func (e InboundEvent) Record() map[string]any {
	headers := make(map[string]any, len(e.Headers))
	for key, value := range e.Headers {
		headers[key] = value
	}
	return map[string]any{
		"event_type": e.EventType,
		"timestamp":  e.Timestamp,
		"data":       copyAnyMap(e.Data),
		"headers":    headers,
		"test_mode":  e.TestMode,
		"mode":       string(e.Mode),
	}
}

type StateKey struct {
	TriggerID string
	Name      string
}

const StateNameWebhookID = "webhook_id"

func webhookIDKey(triggerID string) StateKey {
	return StateKey{TriggerID: strings.TrimSpace(triggerID), Name: StateNameWebhookID}
}

func (k StateKey) Validate() error {
	if strings.TrimSpace(k.TriggerID) == "" {
		return ErrTriggerIDRequired
	}
	if strings.TrimSpace(k.Name) == "" {
		return fmt.Errorf("core: state key name is required")
	}
	return nil
}

func (k StateKey) String() string {
	return strings.TrimSpace(k.TriggerID) + ":" + strings.TrimSpace(k.Name)
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
