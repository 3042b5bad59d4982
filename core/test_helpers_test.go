package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

const (
	testTriggerID  = "trigger_1"
	testLiveURL    = "https://host.example.com/webhook/trigger_1/webhook"
	testSessionURL = "https://host.example.com/webhook-test/trigger_1/webhook"
	testSecret     = "s3cr3t"
)

type stubWebhookAPI struct {
	mu sync.Mutex

	webhooks  []RemoteWebhook
	listErr   error
	createErr error
	createID  string
	deleteErr error

	listCalls   int
	createCalls int
	deleteCalls int
	created     []WebhookSubscription
	deleted     []string
}

func (s *stubWebhookAPI) ListWebhooks(context.Context) ([]RemoteWebhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]RemoteWebhook(nil), s.webhooks...), nil
}

func (s *stubWebhookAPI) CreateWebhook(_ context.Context, sub WebhookSubscription) (RemoteWebhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.created = append(s.created, sub)
	if s.createErr != nil {
		return RemoteWebhook{}, s.createErr
	}
	return RemoteWebhook{ID: s.createID, Name: sub.Name, CallbackURL: sub.CallbackURL}, nil
}

func (s *stubWebhookAPI) DeleteWebhook(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

func (s *stubWebhookAPI) calls() (list, create, del int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.createCalls, s.deleteCalls
}

type failingStateStore struct {
	err error
}

func (s failingStateStore) Get(context.Context, StateKey) (string, bool, error) {
	return "", false, s.err
}

func (s failingStateStore) Set(context.Context, StateKey, string) error { return s.err }

func (s failingStateStore) Delete(context.Context, StateKey) error { return s.err }

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu       sync.Mutex
	counters []capturedCounter
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func (m *captureMetricsRecorder) counter(name string) (capturedCounter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.counters {
		if item.name == name {
			return item, true
		}
	}
	return capturedCounter{}, false
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]capturedLog, len(*l.records))
	copy(out, *l.records)
	return out
}

func (l *captureLogger) find(level string, msg string) (capturedLog, bool) {
	for _, record := range l.snapshot() {
		if record.level == level && record.msg == msg {
			return record, true
		}
	}
	return capturedLog{}, false
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
	err    error
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.values, nil
}

func testInstance(webhookURL string) TriggerInstance {
	return TriggerInstance{
		ID:         testTriggerID,
		WebhookURL: webhookURL,
		Settings: TriggerSettings{
			EventTypes:     []EventType{EventTypeExtraction, EventTypeClassification},
			WebhookName:    "invoices",
			Secret:         testSecret,
			ValidateSecret: true,
		},
	}
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 4, 10, 11, 12, 345_000_000, time.UTC)
}

func newTestTrigger(t *testing.T, api WebhookAPI, opts ...Option) *Trigger {
	t.Helper()
	base := []Option{
		WithWebhookAPI(api),
		WithClock(fixedClock),
	}
	trigger, err := NewTrigger(DefaultConfig(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("new trigger: %v", err)
	}
	return trigger
}

func seedWebhookID(t *testing.T, store StateStore, triggerID string, webhookID string) {
	t.Helper()
	if err := store.Set(context.Background(), webhookIDKey(triggerID), webhookID); err != nil {
		t.Fatalf("seed webhook id: %v", err)
	}
}

func storedWebhookID(t *testing.T, store StateStore, triggerID string) (string, bool) {
	t.Helper()
	value, found, err := store.Get(context.Background(), webhookIDKey(triggerID))
	if err != nil {
		t.Fatalf("read webhook id: %v", err)
	}
	return value, found
}

var errRemoteDown = fmt.Errorf("dial tcp: connection refused")
