package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-neo/core"
)

func TestRESTAdapter_SignsAndSendsJSON(t *testing.T) {
	var gotKey, gotType, gotBody, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		gotType = r.Header.Get("Content-Type")
		gotQuery = r.URL.Query().Get("page")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("X-Request-Id", "req_1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"wh_1"}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client(), WithSigner(core.APIKeySigner{}, core.Credentials{APIKey: "key_1"}))
	res, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: http.MethodPost,
		URL:    server.URL + "/webhooks",
		Query:  map[string]string{"page": "2"},
		Body:   []byte(`{"name":"invoices"}`),
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if res.StatusCode != http.StatusCreated || string(res.Body) != `{"id":"wh_1"}` {
		t.Fatalf("unexpected response %d %s", res.StatusCode, res.Body)
	}
	if res.Headers["x-request-id"] != "req_1" {
		t.Fatalf("expected lowercased response headers, got %#v", res.Headers)
	}
	if gotKey != "key_1" || gotType != "application/json" || gotBody != `{"name":"invoices"}` || gotQuery != "2" {
		t.Fatalf("unexpected request key=%q type=%q body=%q page=%q", gotKey, gotType, gotBody, gotQuery)
	}
}

func TestRESTAdapter_SignerFailureIsAuthError(t *testing.T) {
	adapter := NewRESTAdapter(http.DefaultClient, WithSigner(core.APIKeySigner{}, core.Credentials{}))
	_, err := adapter.Do(context.Background(), core.TransportRequest{URL: "https://api.docunite.ai/webhooks"})

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryAuth || rich.Code != http.StatusUnauthorized {
		t.Fatalf("expected auth error, got %s/%d", rich.Category, rich.Code)
	}
}

func TestRESTAdapter_ResponseLimitReturnsRichError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client(), WithResponseBodyLimit(4))

	_, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodGet, URL: server.URL})
	if err == nil {
		t.Fatalf("expected response body limit error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
	if rich.TextCode != core.ServiceErrorExternalFailure {
		t.Fatalf("expected %q text code, got %q", core.ServiceErrorExternalFailure, rich.TextCode)
	}
	if rich.Code != http.StatusBadGateway {
		t.Fatalf("expected %d code, got %d", http.StatusBadGateway, rich.Code)
	}
}

func TestRESTAdapter_TimeoutMapsToGatewayTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	adapter := NewRESTAdapter(server.Client())
	_, err := adapter.Do(context.Background(), core.TransportRequest{URL: server.URL, Timeout: 20 * time.Millisecond})
	if core.HTTPStatus(err) != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 on timeout, got %d (%v)", core.HTTPStatus(err), err)
	}
}

func TestRESTAdapter_InvalidURL(t *testing.T) {
	_, err := NewRESTAdapter(nil).Do(context.Background(), core.TransportRequest{URL: "not-a-url"})
	if core.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid url, got %d", core.HTTPStatus(err))
	}
}

func TestRESTAdapter_NilReturnsRichError(t *testing.T) {
	var adapter *RESTAdapter
	_, err := adapter.Do(context.Background(), core.TransportRequest{})

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != core.ServiceErrorInternal || rich.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected envelope %s/%d", rich.TextCode, rich.Code)
	}
}

func TestRESTAdapter_SetsRequestID(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client(), WithRequestIDGenerator(func() string { return "req_fixed" }))
	res, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodDelete, URL: server.URL + "/webhooks/wh_1"})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if res.Metadata["request_id"] != "req_fixed" {
		t.Fatalf("expected request id in metadata, got %#v", res.Metadata)
	}

	_, err = adapter.Do(context.Background(), core.TransportRequest{
		URL:     server.URL + "/webhooks",
		Headers: map[string]string{RequestIDHeader: "req_caller"},
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if len(seen) != 2 || seen[0] != "req_fixed" || seen[1] != "req_caller" {
		t.Fatalf("unexpected request ids %#v", seen)
	}
}
