package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-neo/core"
	"github.com/goliatone/go-neo/providers/neo"
	sqlstore "github.com/goliatone/go-neo/store/sql"
)

var (
	_ gocmd.Querier[ProbeWebhookMessage, core.ProbeResult]           = (*ProbeWebhookQuery)(nil)
	_ gocmd.Querier[ListRemoteWebhooksMessage, []core.RemoteWebhook] = (*ListRemoteWebhooksQuery)(nil)
	_ gocmd.Querier[TestCredentialsMessage, neo.CreditBalance]       = (*TestCredentialsQuery)(nil)
	_ gocmd.Querier[ListCallbackEventsMessage, sqlstore.JournalPage] = (*ListCallbackEventsQuery)(nil)
	_ CallbackEventReader                                            = (*sqlstore.EventJournal)(nil)
	_ CredentialTester                                               = (*neo.Client)(nil)
	_ WebhookLister                                                  = (*neo.Client)(nil)
	_ WebhookProber                                                  = (*core.Trigger)(nil)
)
