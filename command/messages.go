package command

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-neo/core"
)

const (
	TypeActivateTrigger   = "neo.command.trigger.activate"
	TypeDeactivateTrigger = "neo.command.trigger.deactivate"
)

type ActivateTriggerMessage struct {
	Instance core.TriggerInstance
}

func (ActivateTriggerMessage) Type() string { return TypeActivateTrigger }

// Validate reports every invalid field at once. Event types are checked for
// support here; an empty set is left to the trigger, which reports it with
// its own error code.
func (m ActivateTriggerMessage) Validate() error {
	var errs fieldErrors
	validateInstance(m.Instance, &errs)
	for _, eventType := range m.Instance.Settings.EventTypes {
		if !eventType.Valid() {
			errs.add("event_types", "unsupported event type "+string(eventType))
		}
	}
	return errs.err(TypeActivateTrigger)
}

type DeactivateTriggerMessage struct {
	Instance core.TriggerInstance
}

func (DeactivateTriggerMessage) Type() string { return TypeDeactivateTrigger }

func (m DeactivateTriggerMessage) Validate() error {
	var errs fieldErrors
	validateInstance(m.Instance, &errs)
	return errs.err(TypeDeactivateTrigger)
}

func validateInstance(instance core.TriggerInstance, errs *fieldErrors) {
	if strings.TrimSpace(instance.ID) == "" {
		errs.add("trigger_id", "trigger id is required")
	}
	webhookURL := strings.TrimSpace(instance.WebhookURL)
	if webhookURL == "" {
		errs.add("webhook_url", "webhook url is required")
		return
	}
	parsed, err := url.Parse(webhookURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs.add("webhook_url", "webhook url must be absolute")
	}
}
