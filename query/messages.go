package query

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
	sqlstore "github.com/goliatone/go-neo/store/sql"
)

const (
	TypeProbeWebhook       = "neo.query.webhook.probe"
	TypeListRemoteWebhooks = "neo.query.webhook.list"
	TypeTestCredentials    = "neo.query.credentials.test"
	TypeListCallbackEvents = "neo.query.callback_events.list"
)

type ProbeWebhookMessage struct {
	Instance core.TriggerInstance
}

func (ProbeWebhookMessage) Type() string { return TypeProbeWebhook }

func (m ProbeWebhookMessage) Validate() error {
	var fields []goerrors.FieldError
	if strings.TrimSpace(m.Instance.ID) == "" {
		fields = append(fields, field("trigger_id", "trigger id is required"))
	}
	if strings.TrimSpace(m.Instance.WebhookURL) == "" {
		fields = append(fields, field("webhook_url", "webhook url is required"))
	}
	return validationError(TypeProbeWebhook, fields...)
}

type ListRemoteWebhooksMessage struct{}

func (ListRemoteWebhooksMessage) Type() string { return TypeListRemoteWebhooks }

type TestCredentialsMessage struct{}

func (TestCredentialsMessage) Type() string { return TypeTestCredentials }

type ListCallbackEventsMessage struct {
	Filter sqlstore.JournalFilter
}

func (ListCallbackEventsMessage) Type() string { return TypeListCallbackEvents }

func (m ListCallbackEventsMessage) Validate() error {
	var fields []goerrors.FieldError
	if m.Filter.Page < 0 {
		fields = append(fields, field("page", "page must be >= 0"))
	}
	if m.Filter.PerPage < 0 {
		fields = append(fields, field("per_page", "per_page must be >= 0"))
	}
	if m.Filter.Since != nil && m.Filter.Since.IsZero() {
		fields = append(fields, field("since", "since must be a valid time"))
	}
	return validationError(TypeListCallbackEvents, fields...)
}
