package neo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
	"github.com/goliatone/go-neo/transport"
)

const (
	webhooksPath      = "/webhooks"
	creditBalancePath = "/account-management/credits/balance"
)

// Client talks to the docunite NEO REST API. Requests go through a REST
// adapter that signs them with the configured API key.
type Client struct {
	transport   core.TransportAdapter
	httpClient  transport.HTTPDoer
	credentials core.Credentials
	timeout     time.Duration
	maxBody     int64
}

type Option func(*Client)

// WithTransport replaces the signed REST adapter, typically with a fake in
// tests. The adapter is then responsible for authentication.
func WithTransport(adapter core.TransportAdapter) Option {
	return func(c *Client) {
		if adapter != nil {
			c.transport = adapter
		}
	}
}

func WithHTTPClient(client transport.HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func New(cfg core.Config, opts ...Option) (*Client, error) {
	cred := cfg.CredentialsFromConfig()
	if cred.APIKey == "" {
		return nil, goerrors.New("neo: api key is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ServiceErrorBadInput)
	}
	client := &Client{
		credentials: cred,
		timeout:     cfg.Transport.Timeout,
		maxBody:     cfg.Transport.MaxResponseBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.transport == nil {
		httpClient := client.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Transport.Timeout}
		}
		client.transport = transport.NewRESTAdapter(httpClient,
			transport.WithSigner(core.APIKeySigner{}, cred),
			transport.WithResponseBodyLimit(cfg.Transport.MaxResponseBodyBytes),
		)
	}
	return client, nil
}

// NewWebhookAPI adapts New to core.WebhookAPIFactory.
func NewWebhookAPI(opts ...Option) core.WebhookAPIFactory {
	return func(cfg core.Config) (core.WebhookAPI, error) {
		return New(cfg, opts...)
	}
}

// ListWebhooks returns every webhook registered for the account. A payload
// that is not a JSON array is treated as an empty listing.
func (c *Client) ListWebhooks(ctx context.Context) ([]core.RemoteWebhook, error) {
	res, err := c.do(ctx, http.MethodGet, webhooksPath, nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(res.Body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []core.RemoteWebhook{}, nil
	}
	var items []map[string]any
	if err := decodeJSON(trimmed, &items); err != nil {
		return nil, decodeError(err, webhooksPath)
	}
	out := make([]core.RemoteWebhook, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, remoteWebhookFromMap(item))
	}
	return out, nil
}

func (c *Client) CreateWebhook(ctx context.Context, sub core.WebhookSubscription) (core.RemoteWebhook, error) {
	if sub.EventTypes == nil {
		sub.EventTypes = []string{}
	}
	payload, err := json.Marshal(sub)
	if err != nil {
		return core.RemoteWebhook{}, goerrors.Wrap(err, goerrors.CategoryInternal, "neo: encode webhook subscription").
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.ServiceErrorInternal)
	}
	res, err := c.do(ctx, http.MethodPost, webhooksPath, payload)
	if err != nil {
		return core.RemoteWebhook{}, err
	}
	var decoded map[string]any
	if err := decodeJSON(res.Body, &decoded); err != nil {
		return core.RemoteWebhook{}, decodeError(err, webhooksPath)
	}
	return remoteWebhookFromMap(decoded), nil
}

func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	path, err := webhookPath(id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, path, nil)
	return err
}

func (c *Client) GetWebhook(ctx context.Context, id string) (core.RemoteWebhook, error) {
	path, err := webhookPath(id)
	if err != nil {
		return core.RemoteWebhook{}, err
	}
	res, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return core.RemoteWebhook{}, err
	}
	var decoded map[string]any
	if err := decodeJSON(res.Body, &decoded); err != nil {
		return core.RemoteWebhook{}, decodeError(err, path)
	}
	return remoteWebhookFromMap(decoded), nil
}

// CreditBalance is the account balance payload, used to verify credentials.
type CreditBalance struct {
	Raw map[string]any
}

// TestCredentials performs the credential check request and returns the
// account balance on success.
func (c *Client) TestCredentials(ctx context.Context) (CreditBalance, error) {
	res, err := c.do(ctx, http.MethodGet, creditBalancePath, nil)
	if err != nil {
		return CreditBalance{}, err
	}
	raw := map[string]any{}
	if len(bytes.TrimSpace(res.Body)) > 0 {
		if err := decodeJSON(res.Body, &raw); err != nil {
			return CreditBalance{}, decodeError(err, creditBalancePath)
		}
	}
	return CreditBalance{Raw: raw}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (core.TransportResponse, error) {
	if c == nil || c.transport == nil {
		return core.TransportResponse{}, fmt.Errorf("neo: client is not configured")
	}
	res, err := c.transport.Do(ctx, core.TransportRequest{
		Method:               method,
		URL:                  c.credentials.BaseURL + path,
		Body:                 body,
		Timeout:              c.timeout,
		MaxResponseBodyBytes: c.maxBody,
	})
	if err != nil {
		return core.TransportResponse{}, err
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return core.TransportResponse{}, statusError(method, path, res)
	}
	return res, nil
}

func webhookPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", goerrors.New("neo: webhook id is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ServiceErrorBadInput)
	}
	return webhooksPath + "/" + url.PathEscape(id), nil
}

func decodeJSON(raw []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(target)
}

func remoteWebhookFromMap(item map[string]any) core.RemoteWebhook {
	webhook := core.RemoteWebhook{
		ID:           readString(item["id"]),
		Name:         readString(item["name"]),
		CallbackURL:  callbackURL(item["callback_url"]),
		ProviderType: readString(item["provider_type"]),
		Raw:          item,
	}
	if values, ok := item["event_types"].([]any); ok {
		for _, value := range values {
			if text := readString(value); text != "" {
				webhook.EventTypes = append(webhook.EventTypes, text)
			}
		}
	}
	return webhook
}

// callbackURL keeps the registered URL byte for byte so matching stays exact.
func callbackURL(value any) string {
	if text, ok := value.(string); ok {
		return text
	}
	return readString(value)
}

func readString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
