package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
	"github.com/google/uuid"
)

const KindREST = "rest"

const (
	defaultRESTClientTimeout           = 30 * time.Second
	defaultRESTResponseBodyLimit int64 = 10 << 20
	defaultUserAgent                   = "go-neo"

	// RequestIDHeader carries the identifier generated for each outgoing call.
	RequestIDHeader = "X-Request-ID"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTAdapter executes NEO API calls over HTTP. When a Signer is set every
// outgoing request is signed with Credentials before it is sent.
type RESTAdapter struct {
	Client               HTTPDoer
	Signer               core.Signer
	Credentials          core.Credentials
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
	NewRequestID         func() string
}

type RESTOption func(*RESTAdapter)

func WithSigner(signer core.Signer, cred core.Credentials) RESTOption {
	return func(a *RESTAdapter) {
		a.Signer = signer
		a.Credentials = cred
	}
}

func WithResponseBodyLimit(limit int64) RESTOption {
	return func(a *RESTAdapter) {
		a.MaxResponseBodyBytes = limit
	}
}

// WithRequestIDGenerator replaces the uuid based request id source.
func WithRequestIDGenerator(next func() string) RESTOption {
	return func(a *RESTAdapter) {
		if next != nil {
			a.NewRequestID = next
		}
	}
}

func NewRESTAdapter(client HTTPDoer, opts ...RESTOption) *RESTAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultRESTClientTimeout}
	}
	adapter := &RESTAdapter{
		Client: client,
		DefaultHeaders: map[string]string{
			"Accept":     "application/json",
			"User-Agent": defaultUserAgent,
		},
		MaxResponseBodyBytes: defaultRESTResponseBodyLimit,
		NewRequestID:         uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

func (*RESTAdapter) Kind() string {
	return KindREST
}

func (a *RESTAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, transportError(nil, goerrors.CategoryInternal,
			"transport: rest adapter requires an http client", http.StatusInternalServerError, nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := a.newHTTPRequest(ctx, req)
	if err != nil {
		return core.TransportResponse{}, err
	}
	meta := map[string]any{
		"method":     httpReq.Method,
		"path":       httpReq.URL.Path,
		"request_id": httpReq.Header.Get(RequestIDHeader),
	}

	startedAt := time.Now()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			code = http.StatusGatewayTimeout
		}
		return core.TransportResponse{}, transportError(err, goerrors.CategoryExternal,
			"transport: execute http request", code, meta)
	}
	defer httpRes.Body.Close()

	meta["status_code"] = httpRes.StatusCode
	payload, err := readLimited(httpRes.Body, resolveResponseBodyLimit(req.MaxResponseBodyBytes, a.MaxResponseBodyBytes), meta)
	if err != nil {
		return core.TransportResponse{}, err
	}

	meta["duration_ms"] = time.Since(startedAt).Milliseconds()
	meta["kind"] = KindREST
	return core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    flattenHeaders(httpRes.Header),
		Body:       payload,
		Metadata:   meta,
	}, nil
}

// newHTTPRequest resolves the URL, applies default, per-call and request id
// headers, then signs the request.
func (a *RESTAdapter) newHTTPRequest(ctx context.Context, req core.TransportRequest) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	target, err := requestURL(req)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, transportError(err, goerrors.CategoryBadInput, "transport: create http request",
			http.StatusBadRequest, map[string]any{"method": method, "path": target.Path})
	}

	setHeaders(httpReq.Header, a.DefaultHeaders)
	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	setHeaders(httpReq.Header, req.Headers)
	if httpReq.Header.Get(RequestIDHeader) == "" && a.NewRequestID != nil {
		httpReq.Header.Set(RequestIDHeader, a.NewRequestID())
	}

	if a.Signer != nil {
		if err := a.Signer.Sign(ctx, httpReq, a.Credentials); err != nil {
			return nil, transportError(err, goerrors.CategoryAuth, "transport: sign request",
				http.StatusUnauthorized, map[string]any{"method": method})
		}
	}
	return httpReq, nil
}

func requestURL(req core.TransportRequest) (*url.URL, error) {
	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		return nil, transportError(nil, goerrors.CategoryBadInput, "transport: request url is required",
			http.StatusBadRequest, nil)
	}
	parsed, err := url.Parse(raw)
	if err == nil && (parsed.Scheme == "" || parsed.Host == "") {
		err = fmt.Errorf("missing scheme or host")
	}
	if err != nil {
		return nil, transportError(err, goerrors.CategoryBadInput, "transport: invalid request url",
			http.StatusBadRequest, map[string]any{"url": raw})
	}
	if len(req.Query) > 0 {
		query := parsed.Query()
		for key, value := range req.Query {
			if key = strings.TrimSpace(key); key != "" {
				query.Set(key, strings.TrimSpace(value))
			}
		}
		parsed.RawQuery = query.Encode()
	}
	return parsed, nil
}

func readLimited(body io.Reader, limit int64, meta map[string]any) ([]byte, error) {
	payload, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, transportError(err, goerrors.CategoryExternal, "transport: read response body",
			http.StatusBadGateway, meta)
	}
	if int64(len(payload)) > limit {
		meta["response_limit_bytes"] = limit
		return nil, transportError(nil, goerrors.CategoryExternal,
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit), http.StatusBadGateway, meta)
	}
	return payload, nil
}

func setHeaders(target http.Header, values map[string]string) {
	for key, value := range values {
		if key = strings.TrimSpace(key); key != "" {
			target.Set(key, strings.TrimSpace(value))
		}
	}
}

func flattenHeaders(headers http.Header) map[string]string {
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		flat[strings.ToLower(key)] = strings.Join(values, ",")
	}
	return flat
}

func resolveResponseBodyLimit(requestLimit int64, adapterLimit int64) int64 {
	switch {
	case requestLimit > 0:
		return requestLimit
	case adapterLimit > 0:
		return adapterLimit
	default:
		return defaultRESTResponseBodyLimit
	}
}

var _ core.TransportAdapter = (*RESTAdapter)(nil)
