// Package neo is the docunite NEO REST client used by the webhook registrar.
package neo

import "github.com/goliatone/go-neo/core"

var _ core.WebhookAPI = (*Client)(nil)
