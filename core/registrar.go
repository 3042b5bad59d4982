package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// IsTestWebhookURL reports whether the callback URL belongs to an
// interactive test session. Those URLs are never registered remotely.
func (t *Trigger) IsTestWebhookURL(webhookURL string) bool {
	if t == nil {
		return DefaultConfig().IsTestWebhookURL(webhookURL)
	}
	return t.config.IsTestWebhookURL(webhookURL)
}

// Probe looks for a remote webhook whose callback URL matches the instance
// URL exactly. Listing failures are reported as ProbeFailed, never as errors.
func (t *Trigger) Probe(ctx context.Context, instance TriggerInstance) ProbeResult {
	if t == nil || t.webhookAPI == nil {
		return ProbeResult{Status: ProbeFailed, Err: fmt.Errorf("core: webhook api is required")}
	}
	webhookURL := instance.WebhookURL
	if strings.TrimSpace(webhookURL) == "" {
		return ProbeResult{Status: ProbeFailed, Err: ErrWebhookURLRequired}
	}
	if t.IsTestWebhookURL(webhookURL) {
		return ProbeResult{Status: ProbeNotFound}
	}

	webhooks, err := t.webhookAPI.ListWebhooks(ctx)
	if err != nil {
		return ProbeResult{Status: ProbeFailed, Err: err}
	}
	for _, webhook := range webhooks {
		if webhook.CallbackURL == webhookURL {
			return ProbeResult{Status: ProbeFound, WebhookID: strings.TrimSpace(webhook.ID)}
		}
	}
	return ProbeResult{Status: ProbeNotFound}
}

// CheckExists collapses Probe into the boolean the host lifecycle expects. A
// match persists the remote identifier so a later Delete can remove it.
func (t *Trigger) CheckExists(ctx context.Context, instance TriggerInstance) (exists bool, err error) {
	startedAt := time.Now().UTC()
	fields := instanceFields(instance)
	defer func() {
		fields["exists"] = exists
		t.observeOperation(ctx, startedAt, OperationCheckExists, err, fields)
	}()

	if t.IsTestWebhookURL(instance.WebhookURL) {
		fields["test_session"] = true
		return false, nil
	}
	if err := instance.Validate(); err != nil {
		return false, t.mapError(err)
	}

	result := t.Probe(ctx, instance)
	fields["probe_status"] = string(result.Status)
	switch result.Status {
	case ProbeFound:
		if err := t.stateStore.Set(ctx, webhookIDKey(instance.ID), result.WebhookID); err != nil {
			return false, t.mapError(err)
		}
		fields["webhook_id"] = result.WebhookID
		return true, nil
	case ProbeFailed:
		t.logWarn(ctx, "webhook probe failed, treating as not registered", mergeFields(fields, map[string]any{
			"error": errorString(result.Err),
		}))
		return false, nil
	default:
		return false, nil
	}
}

// Create registers the remote webhook for the instance and persists the
// identifier NEO assigns to it.
func (t *Trigger) Create(ctx context.Context, instance TriggerInstance) (err error) {
	startedAt := time.Now().UTC()
	fields := instanceFields(instance)
	defer func() {
		t.observeOperation(ctx, startedAt, OperationCreate, err, fields)
	}()

	if t.IsTestWebhookURL(instance.WebhookURL) {
		fields["test_session"] = true
		return nil
	}
	if len(instance.Settings.EventTypes) == 0 {
		return t.mapError(ErrEventTypesRequired)
	}
	if err := instance.Validate(); err != nil {
		return t.mapError(err)
	}
	if err := instance.Settings.Validate(); err != nil {
		return t.mapError(err)
	}

	providerType := strings.TrimSpace(t.config.Webhook.ProviderType)
	if providerType == "" {
		providerType = DefaultProviderType
	}
	sub := WebhookSubscription{
		Name:         strings.TrimSpace(instance.Settings.WebhookName),
		CallbackURL:  instance.WebhookURL,
		EventTypes:   eventTypeStrings(instance.Settings.EventTypes),
		ProviderType: providerType,
		Secret:       instance.Settings.Secret,
	}
	fields["event_types"] = sub.EventTypes

	created, err := t.webhookAPI.CreateWebhook(ctx, sub)
	if err != nil {
		return webhookCreateError(err, remoteMessage(err))
	}
	webhookID := strings.TrimSpace(created.ID)
	if webhookID == "" {
		return webhookCreateError(nil, "remote response did not include a webhook id")
	}
	if err := t.stateStore.Set(ctx, webhookIDKey(instance.ID), webhookID); err != nil {
		return t.mapError(err)
	}
	fields["webhook_id"] = webhookID
	return nil
}

// Delete removes the remote webhook recorded for the instance. It never
// fails the deactivation because of the remote call: the persisted
// identifier is cleared whatever the outcome.
func (t *Trigger) Delete(ctx context.Context, instance TriggerInstance) (err error) {
	startedAt := time.Now().UTC()
	fields := instanceFields(instance)
	defer func() {
		t.observeOperation(ctx, startedAt, OperationDelete, err, fields)
	}()

	if t.IsTestWebhookURL(instance.WebhookURL) {
		fields["test_session"] = true
		return nil
	}
	if strings.TrimSpace(instance.ID) == "" {
		return t.mapError(ErrTriggerIDRequired)
	}

	key := webhookIDKey(instance.ID)
	webhookID, found, err := t.stateStore.Get(ctx, key)
	if err != nil {
		t.logWarn(ctx, "webhook id lookup failed, skipping remote cleanup", mergeFields(fields, map[string]any{
			"error": err.Error(),
		}))
		return nil
	}
	webhookID = strings.TrimSpace(webhookID)
	if !found || webhookID == "" {
		fields["skipped"] = true
		return nil
	}
	fields["webhook_id"] = webhookID

	if deleteErr := t.webhookAPI.DeleteWebhook(ctx, webhookID); deleteErr != nil {
		fields["remote_not_found"] = IsNotFound(deleteErr)
		if !IsNotFound(deleteErr) {
			t.logWarn(ctx, "remote webhook delete failed, clearing local state", mergeFields(fields, map[string]any{
				"error": deleteErr.Error(),
			}))
		}
	}
	if clearErr := t.stateStore.Delete(ctx, key); clearErr != nil {
		t.logWarn(ctx, "clear webhook id failed", mergeFields(fields, map[string]any{
			"error": clearErr.Error(),
		}))
	}
	return nil
}

// Activate ensures a remote webhook exists for the instance.
func (t *Trigger) Activate(ctx context.Context, instance TriggerInstance) error {
	exists, err := t.CheckExists(ctx, instance)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return t.Create(ctx, instance)
}

// Deactivate removes the remote webhook registered for the instance.
func (t *Trigger) Deactivate(ctx context.Context, instance TriggerInstance) error {
	return t.Delete(ctx, instance)
}

func webhookCreateError(source error, detail string) error {
	err := goerrors.New("failed to create webhook in docunite NEO: "+strings.TrimSpace(detail), goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ServiceErrorWebhookCreateFailed)
	err.Source = source
	return err
}

func remoteMessage(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && strings.TrimSpace(richErr.Message) != "" {
		return strings.TrimSpace(richErr.Message)
	}
	return strings.TrimSpace(err.Error())
}

func instanceFields(instance TriggerInstance) map[string]any {
	return map[string]any{
		"trigger_id":  strings.TrimSpace(instance.ID),
		"webhook_url": strings.TrimSpace(instance.WebhookURL),
	}
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func mergeFields(base map[string]any, extra map[string]any) map[string]any {
	out := cloneFields(base)
	for key, value := range extra {
		out[key] = value
	}
	return out
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
