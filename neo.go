package neo

import "github.com/goliatone/go-neo/core"

type Config = core.Config

type Trigger = core.Trigger

type TriggerOption = core.Option

type TriggerInstance = core.TriggerInstance

type TriggerSettings = core.TriggerSettings

type EventType = core.EventType

type InboundEvent = core.InboundEvent

type ActivationResult = core.ActivationResult

type StateStore = core.StateStore

type EventSink = core.EventSink

const (
	EventTypeExtraction     = core.EventTypeExtraction
	EventTypeClassification = core.EventTypeClassification
	EventTypeEnrichment     = core.EventTypeEnrichment
)

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithWebhookAPI        = core.WithWebhookAPI
	WithWebhookAPIFactory = core.WithWebhookAPIFactory
	WithStateStore        = core.WithStateStore
	WithClock             = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func DefaultTriggerSettings() TriggerSettings {
	return core.DefaultTriggerSettings()
}

func NewTrigger(cfg Config, opts ...TriggerOption) (*Trigger, error) {
	return core.NewTrigger(cfg, opts...)
}
