package devkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-neo/core"
)

// FakeNEOServer is an in-memory stand-in for the NEO webhook API. It checks
// the API key header and keeps registered webhooks in a map.
type FakeNEOServer struct {
	*httptest.Server

	mu         sync.Mutex
	apiKey     string
	nextID     int
	webhooks   map[string]core.WebhookSubscription
	failList   bool
	failCreate bool
	calls      map[string]int
}

func NewFakeNEOServer(apiKey string) *FakeNEOServer {
	fake := &FakeNEOServer{
		apiKey:   apiKey,
		webhooks: map[string]core.WebhookSubscription{},
		calls:    map[string]int{},
	}

	router := chi.NewRouter()
	router.Use(fake.requireAPIKey)
	router.Get("/webhooks", fake.listWebhooks)
	router.Post("/webhooks", fake.createWebhook)
	router.Get("/webhooks/{id}", fake.getWebhook)
	router.Delete("/webhooks/{id}", fake.deleteWebhook)
	router.Get("/account-management/credits/balance", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"balance": 100})
	})

	fake.Server = httptest.NewServer(router)
	return fake
}

// FailListing makes GET /webhooks answer 500 until reset.
func (f *FakeNEOServer) FailListing(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = fail
}

// FailCreate makes POST /webhooks answer 500 until reset.
func (f *FakeNEOServer) FailCreate(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCreate = fail
}

// Seed registers a webhook directly and returns its identifier.
func (f *FakeNEOServer) Seed(sub core.WebhookSubscription) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.storeLocked(sub)
}

func (f *FakeNEOServer) Webhooks() map[string]core.WebhookSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]core.WebhookSubscription, len(f.webhooks))
	for id, sub := range f.webhooks {
		out[id] = sub
	}
	return out
}

// Calls reports how many requests hit "METHOD /pattern".
func (f *FakeNEOServer) Calls(method, pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[strings.ToUpper(method)+" "+pattern]
}

func (f *FakeNEOServer) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(core.APIKeyHeader) != f.apiKey {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid api key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeNEOServer) listWebhooks(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	f.calls["GET /webhooks"]++
	if f.failList {
		f.mu.Unlock()
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "listing unavailable"})
		return
	}
	ids := make([]string, 0, len(f.webhooks))
	for id := range f.webhooks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, webhookPayload(id, f.webhooks[id]))
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (f *FakeNEOServer) createWebhook(w http.ResponseWriter, r *http.Request) {
	var sub core.WebhookSubscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid body"})
		return
	}
	if len(sub.EventTypes) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "event_types must not be empty"})
		return
	}
	f.mu.Lock()
	f.calls["POST /webhooks"]++
	if f.failCreate {
		f.mu.Unlock()
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "webhook quota exceeded"})
		return
	}
	id := f.storeLocked(sub)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, webhookPayload(id, sub))
}

func (f *FakeNEOServer) getWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	f.calls["GET /webhooks/{id}"]++
	sub, ok := f.webhooks[id]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "webhook not found"})
		return
	}
	writeJSON(w, http.StatusOK, webhookPayload(id, sub))
}

func (f *FakeNEOServer) deleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	f.calls["DELETE /webhooks/{id}"]++
	_, ok := f.webhooks[id]
	delete(f.webhooks, id)
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "webhook not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeNEOServer) storeLocked(sub core.WebhookSubscription) string {
	f.nextID++
	id := fmt.Sprintf("wh_%d", f.nextID)
	f.webhooks[id] = sub
	return id
}

func webhookPayload(id string, sub core.WebhookSubscription) map[string]any {
	return map[string]any{
		"id":            id,
		"name":          sub.Name,
		"callback_url":  sub.CallbackURL,
		"event_types":   sub.EventTypes,
		"provider_type": sub.ProviderType,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
