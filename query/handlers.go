package query

import (
	"context"

	"github.com/goliatone/go-neo/core"
	"github.com/goliatone/go-neo/providers/neo"
	sqlstore "github.com/goliatone/go-neo/store/sql"
)

type WebhookProber interface {
	Probe(ctx context.Context, instance core.TriggerInstance) core.ProbeResult
}

type WebhookLister interface {
	ListWebhooks(ctx context.Context) ([]core.RemoteWebhook, error)
}

type CredentialTester interface {
	TestCredentials(ctx context.Context) (neo.CreditBalance, error)
}

type CallbackEventReader interface {
	List(ctx context.Context, filter sqlstore.JournalFilter) (sqlstore.JournalPage, error)
}

type ProbeWebhookQuery struct {
	prober WebhookProber
}

func NewProbeWebhookQuery(prober WebhookProber) *ProbeWebhookQuery {
	return &ProbeWebhookQuery{prober: prober}
}

// Query reports the probe outcome. A failed remote listing is returned in
// the result with status query_failed, not as an error.
func (q *ProbeWebhookQuery) Query(ctx context.Context, msg ProbeWebhookMessage) (core.ProbeResult, error) {
	if q == nil || q.prober == nil {
		return core.ProbeResult{}, queryDependencyError("query: webhook prober is required")
	}
	return q.prober.Probe(ctx, msg.Instance), nil
}

type ListRemoteWebhooksQuery struct {
	lister WebhookLister
}

func NewListRemoteWebhooksQuery(lister WebhookLister) *ListRemoteWebhooksQuery {
	return &ListRemoteWebhooksQuery{lister: lister}
}

func (q *ListRemoteWebhooksQuery) Query(ctx context.Context, _ ListRemoteWebhooksMessage) ([]core.RemoteWebhook, error) {
	if q == nil || q.lister == nil {
		return nil, queryDependencyError("query: webhook lister is required")
	}
	return q.lister.ListWebhooks(ctx)
}

type TestCredentialsQuery struct {
	tester CredentialTester
}

func NewTestCredentialsQuery(tester CredentialTester) *TestCredentialsQuery {
	return &TestCredentialsQuery{tester: tester}
}

func (q *TestCredentialsQuery) Query(ctx context.Context, _ TestCredentialsMessage) (neo.CreditBalance, error) {
	if q == nil || q.tester == nil {
		return neo.CreditBalance{}, queryDependencyError("query: credential tester is required")
	}
	return q.tester.TestCredentials(ctx)
}

type ListCallbackEventsQuery struct {
	reader CallbackEventReader
}

func NewListCallbackEventsQuery(reader CallbackEventReader) *ListCallbackEventsQuery {
	return &ListCallbackEventsQuery{reader: reader}
}

func (q *ListCallbackEventsQuery) Query(ctx context.Context, msg ListCallbackEventsMessage) (sqlstore.JournalPage, error) {
	if q == nil || q.reader == nil {
		return sqlstore.JournalPage{}, queryDependencyError("query: callback event reader is required")
	}
	return q.reader.List(ctx, msg.Filter)
}
