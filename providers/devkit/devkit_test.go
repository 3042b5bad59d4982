package devkit

import (
	"context"
	"net/http"
	"testing"

	"github.com/goliatone/go-neo/core"
)

func TestFakeTransportAdapter_ScriptsAndCapturesRequests(t *testing.T) {
	adapter := NewFakeTransportAdapter("rest",
		TransportScript{Response: core.TransportResponse{StatusCode: 429}},
		TransportScript{Response: core.TransportResponse{StatusCode: 200}},
	)

	first, err := adapter.Do(context.Background(), core.TransportRequest{Method: "GET", URL: "https://api.example.test/items"})
	if err != nil {
		t.Fatalf("first fake call: %v", err)
	}
	if first.StatusCode != 429 {
		t.Fatalf("expected first scripted status 429, got %d", first.StatusCode)
	}
	second, err := adapter.Do(context.Background(), core.TransportRequest{Method: "GET", URL: "https://api.example.test/items"})
	if err != nil {
		t.Fatalf("second fake call: %v", err)
	}
	if second.StatusCode != 200 {
		t.Fatalf("expected second scripted status 200, got %d", second.StatusCode)
	}
	if len(adapter.Requests()) != 2 {
		t.Fatalf("expected two captured requests")
	}
}

func TestFakeTransportAdapter_RoutesBySuffix(t *testing.T) {
	adapter := NewFakeTransportAdapter("rest").
		On(http.MethodGet, "/webhooks", JSONScript(http.StatusOK, []any{})).
		On(http.MethodDelete, "/webhooks/wh_1", JSONScript(http.StatusNotFound, map[string]any{"message": "gone"}))

	res, _ := adapter.Do(context.Background(), core.TransportRequest{Method: "DELETE", URL: "https://api.example.test/webhooks/wh_1"})
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected routed 404, got %d", res.StatusCode)
	}
	res, _ = adapter.Do(context.Background(), core.TransportRequest{URL: "https://api.example.test/webhooks?x=1"})
	if res.StatusCode != http.StatusOK || string(res.Body) != "[]" {
		t.Fatalf("expected routed list response, got %d %s", res.StatusCode, res.Body)
	}
}

func TestValidateTransportAdapterConformance(t *testing.T) {
	if err := ValidateTransportAdapterConformance(context.Background(), NewFakeTransportAdapter("rest"), core.TransportRequest{}); err != nil {
		t.Fatalf("expected fake adapter to conform: %v", err)
	}
	if err := ValidateTransportAdapterConformance(context.Background(), NewFakeTransportAdapter(""), core.TransportRequest{}); err == nil {
		t.Fatalf("expected missing kind to fail")
	}
}

func TestValidateStateStoreConformance_MemoryStore(t *testing.T) {
	if err := ValidateStateStoreConformance(context.Background(), core.NewMemoryStateStore(), "trigger_1"); err != nil {
		t.Fatalf("memory store should conform: %v", err)
	}
}
