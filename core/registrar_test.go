package core

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestCheckExists_MatchPersistsWebhookID(t *testing.T) {
	api := &stubWebhookAPI{webhooks: []RemoteWebhook{
		{ID: "wh_other", CallbackURL: "https://host.example.com/webhook/other/webhook"},
		{ID: "wh_1", CallbackURL: testLiveURL},
	}}
	store := NewMemoryStateStore()
	trigger := newTestTrigger(t, api, WithStateStore(store))

	exists, err := trigger.CheckExists(context.Background(), testInstance(testLiveURL))
	if err != nil {
		t.Fatalf("check exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected webhook to exist")
	}
	if id, found := storedWebhookID(t, store, testTriggerID); !found || id != "wh_1" {
		t.Fatalf("expected persisted webhook id wh_1, got %q (found=%t)", id, found)
	}
}

func TestCheckExists_RequiresExactURLMatch(t *testing.T) {
	api := &stubWebhookAPI{webhooks: []RemoteWebhook{
		{ID: "wh_1", CallbackURL: testLiveURL + "/"},
		{ID: "wh_2", CallbackURL: strings.ToUpper(testLiveURL)},
		{ID: "wh_3", CallbackURL: " " + testLiveURL + " "},
	}}
	store := NewMemoryStateStore()
	trigger := newTestTrigger(t, api, WithStateStore(store))

	exists, err := trigger.CheckExists(context.Background(), testInstance(testLiveURL))
	if err != nil {
		t.Fatalf("check exists: %v", err)
	}
	if exists {
		t.Fatalf("expected near-miss urls not to match")
	}
	if store.Len() != 0 {
		t.Fatalf("expected no state to be written")
	}
}

func TestCheckExists_ListFailureReportsNotRegistered(t *testing.T) {
	api := &stubWebhookAPI{listErr: errRemoteDown}
	logger := newCaptureLogger()
	trigger := newTestTrigger(t, api,
		WithLogger(logger),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
	)

	exists, err := trigger.CheckExists(context.Background(), testInstance(testLiveURL))
	if err != nil {
		t.Fatalf("expected listing failure to be swallowed, got %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false on listing failure")
	}
	record, ok := logger.find("warn", "webhook probe failed, treating as not registered")
	if !ok {
		t.Fatalf("expected warn log for failed probe, got %#v", logger.snapshot())
	}
	if record.fields["probe_status"] != string(ProbeFailed) {
		t.Fatalf("expected probe_status field, got %#v", record.fields)
	}
}

func TestCheckExists_TestSessionSkipsRemote(t *testing.T) {
	api := &stubWebhookAPI{webhooks: []RemoteWebhook{{ID: "wh_1", CallbackURL: testSessionURL}}}
	trigger := newTestTrigger(t, api)

	exists, err := trigger.CheckExists(context.Background(), testInstance(testSessionURL))
	if err != nil {
		t.Fatalf("check exists: %v", err)
	}
	if exists {
		t.Fatalf("expected test session urls to report not registered")
	}
	if list, _, _ := api.calls(); list != 0 {
		t.Fatalf("expected no remote listing for test session, got %d calls", list)
	}
}

func TestProbe_DistinguishesFailureFromAbsence(t *testing.T) {
	trigger := newTestTrigger(t, &stubWebhookAPI{listErr: errRemoteDown})
	result := trigger.Probe(context.Background(), testInstance(testLiveURL))
	if result.Status != ProbeFailed || result.Err == nil {
		t.Fatalf("expected query_failed probe, got %#v", result)
	}
	if result.Exists() {
		t.Fatalf("failed probe must not report existence")
	}

	trigger = newTestTrigger(t, &stubWebhookAPI{})
	result = trigger.Probe(context.Background(), testInstance(testLiveURL))
	if result.Status != ProbeNotFound || result.Err != nil {
		t.Fatalf("expected not_found probe, got %#v", result)
	}
}

func TestCreate_RegistersSubscriptionAndPersistsID(t *testing.T) {
	api := &stubWebhookAPI{createID: "wh_new"}
	store := NewMemoryStateStore()
	trigger := newTestTrigger(t, api, WithStateStore(store))

	if err := trigger.Create(context.Background(), testInstance(testLiveURL)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(api.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(api.created))
	}
	sub := api.created[0]
	if sub.Name != "invoices" || sub.CallbackURL != testLiveURL || sub.Secret != testSecret {
		t.Fatalf("unexpected subscription %#v", sub)
	}
	if sub.ProviderType != DefaultProviderType {
		t.Fatalf("expected provider type %q, got %q", DefaultProviderType, sub.ProviderType)
	}
	if len(sub.EventTypes) != 2 || sub.EventTypes[0] != "EXTRACTION" || sub.EventTypes[1] != "CLASSIFICATION" {
		t.Fatalf("unexpected event types %#v", sub.EventTypes)
	}
	if id, found := storedWebhookID(t, store, testTriggerID); !found || id != "wh_new" {
		t.Fatalf("expected persisted webhook id wh_new, got %q (found=%t)", id, found)
	}
}

func TestCreate_EmptyEventTypesFailsBeforeNetwork(t *testing.T) {
	api := &stubWebhookAPI{createID: "wh_new"}
	trigger := newTestTrigger(t, api)
	instance := testInstance(testLiveURL)
	instance.Settings.EventTypes = nil

	err := trigger.Create(context.Background(), instance)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "at least one event type must be selected") {
		t.Fatalf("unexpected error message %q", err.Error())
	}
	if TextCode(err) != ServiceErrorBadInput || HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected bad input envelope, got code=%q status=%d", TextCode(err), HTTPStatus(err))
	}
	if _, create, _ := api.calls(); create != 0 {
		t.Fatalf("expected no remote create call")
	}
}

func TestCreate_RemoteFailureIsWrapped(t *testing.T) {
	remote := goerrors.New("callback_url already registered", goerrors.CategoryExternal).
		WithCode(http.StatusUnprocessableEntity)
	api := &stubWebhookAPI{createErr: remote}
	store := NewMemoryStateStore()
	trigger := newTestTrigger(t, api, WithStateStore(store))

	err := trigger.Create(context.Background(), testInstance(testLiveURL))
	if err == nil {
		t.Fatalf("expected create failure")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if richErr.TextCode != ServiceErrorWebhookCreateFailed {
		t.Fatalf("expected text code %q, got %q", ServiceErrorWebhookCreateFailed, richErr.TextCode)
	}
	if !strings.Contains(richErr.Message, "failed to create webhook in docunite NEO: callback_url already registered") {
		t.Fatalf("unexpected message %q", richErr.Message)
	}
	if store.Len() != 0 {
		t.Fatalf("expected no state written on failure")
	}
}

func TestCreate_MissingRemoteIDFails(t *testing.T) {
	api := &stubWebhookAPI{}
	store := NewMemoryStateStore()
	trigger := newTestTrigger(t, api, WithStateStore(store))

	err := trigger.Create(context.Background(), testInstance(testLiveURL))
	if err == nil || TextCode(err) != ServiceErrorWebhookCreateFailed {
		t.Fatalf("expected create failure for empty id, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected no state written")
	}
}

func TestCreate_TestSessionIsNoop(t *testing.T) {
	api := &stubWebhookAPI{createID: "wh_new"}
	store := NewMemoryStateStore()
	trigger := newTestTrigger(t, api, WithStateStore(store))
	instance := testInstance(testSessionURL)
	instance.Settings.EventTypes = nil

	if err := trigger.Create(context.Background(), instance); err != nil {
		t.Fatalf("expected test session create to succeed, got %v", err)
	}
	if _, create, _ := api.calls(); create != 0 || store.Len() != 0 {
		t.Fatalf("expected no remote call or state, got create=%d state=%d", create, store.Len())
	}
}

func TestDelete_RemovesRemoteAndClearsState(t *testing.T) {
	api := &stubWebhookAPI{}
	store := NewMemoryStateStore()
	seedWebhookID(t, store, testTriggerID, "wh_1")
	trigger := newTestTrigger(t, api, WithStateStore(store))

	if err := trigger.Delete(context.Background(), testInstance(testLiveURL)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "wh_1" {
		t.Fatalf("expected delete of wh_1, got %#v", api.deleted)
	}
	if _, found := storedWebhookID(t, store, testTriggerID); found {
		t.Fatalf("expected webhook id to be cleared")
	}
}

func TestDelete_RemoteFailureStillSucceeds(t *testing.T) {
	for name, remoteErr := range map[string]error{
		"not found": goerrors.New("webhook not found", goerrors.CategoryNotFound).WithCode(http.StatusNotFound),
		"network":   errRemoteDown,
	} {
		t.Run(name, func(t *testing.T) {
			api := &stubWebhookAPI{deleteErr: remoteErr}
			store := NewMemoryStateStore()
			seedWebhookID(t, store, testTriggerID, "wh_1")
			trigger := newTestTrigger(t, api, WithStateStore(store))

			if err := trigger.Delete(context.Background(), testInstance(testLiveURL)); err != nil {
				t.Fatalf("expected delete to succeed, got %v", err)
			}
			if _, found := storedWebhookID(t, store, testTriggerID); found {
				t.Fatalf("expected webhook id to be cleared")
			}
		})
	}
}

func TestDelete_NoStoredIDSkipsRemote(t *testing.T) {
	api := &stubWebhookAPI{}
	trigger := newTestTrigger(t, api)

	if err := trigger.Delete(context.Background(), testInstance(testLiveURL)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, del := api.calls(); del != 0 {
		t.Fatalf("expected no remote delete, got %d", del)
	}
}

func TestDelete_StateReadFailureIsSwallowed(t *testing.T) {
	api := &stubWebhookAPI{}
	trigger := newTestTrigger(t, api, WithStateStore(failingStateStore{err: errors.New("state backend down")}))

	if err := trigger.Delete(context.Background(), testInstance(testLiveURL)); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if _, _, del := api.calls(); del != 0 {
		t.Fatalf("expected no remote delete without an id")
	}
}

func TestDelete_TestSessionIsNoop(t *testing.T) {
	api := &stubWebhookAPI{}
	store := NewMemoryStateStore()
	seedWebhookID(t, store, testTriggerID, "wh_1")
	trigger := newTestTrigger(t, api, WithStateStore(store))

	if err := trigger.Delete(context.Background(), testInstance(testSessionURL)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, del := api.calls(); del != 0 {
		t.Fatalf("expected no remote delete for test session")
	}
	if _, found := storedWebhookID(t, store, testTriggerID); !found {
		t.Fatalf("expected state untouched for test session")
	}
}

func TestActivate_CreatesOnlyWhenMissing(t *testing.T) {
	api := &stubWebhookAPI{createID: "wh_new"}
	store := NewMemoryStateStore()
	trigger := newTestTrigger(t, api, WithStateStore(store))
	instance := testInstance(testLiveURL)

	if err := trigger.Activate(context.Background(), instance); err != nil {
		t.Fatalf("activate: %v", err)
	}
	api.webhooks = []RemoteWebhook{{ID: "wh_new", CallbackURL: testLiveURL}}
	if err := trigger.Activate(context.Background(), instance); err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if _, create, _ := api.calls(); create != 1 {
		t.Fatalf("expected exactly one create, got %d", create)
	}

	if err := trigger.Deactivate(context.Background(), instance); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, found := storedWebhookID(t, store, testTriggerID); found {
		t.Fatalf("expected state cleared after deactivate")
	}
}

func TestRegistrar_RecordsOperationMetrics(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	trigger := newTestTrigger(t, &stubWebhookAPI{createID: "wh_1"}, WithMetricsRecorder(metrics))

	if err := trigger.Create(context.Background(), testInstance(testLiveURL)); err != nil {
		t.Fatalf("create: %v", err)
	}
	counter, ok := metrics.counter(OperationCounterName(OperationCreate))
	if !ok {
		t.Fatalf("expected create counter, got %#v", metrics.counters)
	}
	if counter.tags["status"] != "success" {
		t.Fatalf("expected success status tag, got %#v", counter.tags)
	}
}

func TestRegistrar_TestSessionTagsMetrics(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	trigger := newTestTrigger(t, &stubWebhookAPI{},
		WithMetricsRecorder(metrics),
		WithLogger(logger),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
	)

	if _, err := trigger.CheckExists(context.Background(), testInstance(testSessionURL)); err != nil {
		t.Fatalf("check exists: %v", err)
	}
	counter, ok := metrics.counter("neo.webhook_check_exists.total")
	if !ok {
		t.Fatalf("expected check exists counter, got %#v", metrics.counters)
	}
	if counter.tags["test_session"] != "true" || counter.tags["operation"] != OperationCheckExists {
		t.Fatalf("unexpected tags %#v", counter.tags)
	}
	if _, ok := logger.find("info", "neo webhook_check_exists completed"); !ok {
		t.Fatalf("expected completion log, got %#v", logger.snapshot())
	}
}
