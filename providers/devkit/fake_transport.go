package devkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/goliatone/go-neo/core"
)

type TransportScript struct {
	Response core.TransportResponse
	Err      error
}

// JSONScript builds a script answering with status and body encoded as JSON.
func JSONScript(status int, body any) TransportScript {
	raw, err := json.Marshal(body)
	if err != nil {
		return TransportScript{Err: fmt.Errorf("devkit: encode scripted body: %w", err)}
	}
	return TransportScript{Response: core.TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       raw,
	}}
}

// FakeTransportAdapter replays scripted responses. Routed scripts registered
// with On win over the sequential scripts passed to the constructor.
type FakeTransportAdapter struct {
	mu       sync.Mutex
	kind     string
	scripts  []TransportScript
	routes   map[string][]TransportScript
	requests []core.TransportRequest
}

func NewFakeTransportAdapter(kind string, scripts ...TransportScript) *FakeTransportAdapter {
	return &FakeTransportAdapter{
		kind:    strings.TrimSpace(strings.ToLower(kind)),
		scripts: append([]TransportScript(nil), scripts...),
		routes:  map[string][]TransportScript{},
	}
}

// On queues scripts for requests matching method and a URL path suffix.
func (a *FakeTransportAdapter) On(method, pathSuffix string, scripts ...TransportScript) *FakeTransportAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := routeKey(method, pathSuffix)
	a.routes[key] = append(a.routes[key], scripts...)
	return a
}

func (a *FakeTransportAdapter) Kind() string {
	if a == nil {
		return ""
	}
	return a.kind
}

func (a *FakeTransportAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil {
		return core.TransportResponse{}, fmt.Errorf("devkit: fake transport adapter is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, cloneTransportRequest(req))
	if script, ok := a.matchRoute(req); ok {
		return cloneTransportResponse(script.Response), script.Err
	}
	index := len(a.requests) - 1
	if index < len(a.scripts) {
		script := a.scripts[index]
		return cloneTransportResponse(script.Response), script.Err
	}
	if len(a.scripts) > 0 {
		last := a.scripts[len(a.scripts)-1]
		return cloneTransportResponse(last.Response), last.Err
	}
	return core.TransportResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{},
		Metadata:   map[string]any{"kind": a.kind},
	}, nil
}

// matchRoute pops the next routed script; the last one is replayed forever.
func (a *FakeTransportAdapter) matchRoute(req core.TransportRequest) (TransportScript, bool) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := req.URL
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	for key, scripts := range a.routes {
		routeMethod, suffix, _ := strings.Cut(key, " ")
		if routeMethod != method || !strings.HasSuffix(path, suffix) || len(scripts) == 0 {
			continue
		}
		script := scripts[0]
		if len(scripts) > 1 {
			a.routes[key] = scripts[1:]
		}
		return script, true
	}
	return TransportScript{}, false
}

func (a *FakeTransportAdapter) Requests() []core.TransportRequest {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]core.TransportRequest, 0, len(a.requests))
	for _, item := range a.requests {
		out = append(out, cloneTransportRequest(item))
	}
	return out
}

func routeKey(method, pathSuffix string) string {
	return strings.ToUpper(strings.TrimSpace(method)) + " " + strings.TrimSpace(pathSuffix)
}

func cloneTransportRequest(in core.TransportRequest) core.TransportRequest {
	out := core.TransportRequest{
		Method:               in.Method,
		URL:                  in.URL,
		Headers:              map[string]string{},
		Query:                map[string]string{},
		Body:                 append([]byte(nil), in.Body...),
		Metadata:             map[string]any{},
		Timeout:              in.Timeout,
		MaxResponseBodyBytes: in.MaxResponseBodyBytes,
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Query {
		out.Query[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

func cloneTransportResponse(in core.TransportResponse) core.TransportResponse {
	out := core.TransportResponse{
		StatusCode: in.StatusCode,
		Headers:    map[string]string{},
		Body:       append([]byte(nil), in.Body...),
		Metadata:   map[string]any{},
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

var _ core.TransportAdapter = (*FakeTransportAdapter)(nil)
