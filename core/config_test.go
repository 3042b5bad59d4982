package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Credentials.BaseURL != "https://api.docunite.ai" {
		t.Fatalf("unexpected default base url %q", cfg.Credentials.BaseURL)
	}
	if cfg.Webhook.SecretHeader != "x-neo-secret" || cfg.Webhook.ProviderType != "default" {
		t.Fatalf("unexpected webhook defaults %#v", cfg.Webhook)
	}
}

func TestConfigValidateRejectsBadBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Credentials.BaseURL = "api.docunite.ai"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Fatalf("expected base_url validation error, got %v", err)
	}
}

func TestCredentialsFromConfigTrimsTrailingSlash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Credentials.APIKey = " key_1 "
	cfg.Credentials.BaseURL = "https://neo.example.com/"

	cred := cfg.CredentialsFromConfig()
	if cred.APIKey != "key_1" || cred.BaseURL != "https://neo.example.com" {
		t.Fatalf("unexpected credentials %#v", cred)
	}
}

func TestIsTestWebhookURL(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.IsTestWebhookURL(testSessionURL) {
		t.Fatalf("expected test session url to match")
	}
	if cfg.IsTestWebhookURL(testLiveURL) {
		t.Fatalf("expected production url not to match")
	}
}

func TestNewTrigger_LoadsRawConfigAndRuntimeOverrides(t *testing.T) {
	loader := mapRawLoader{values: map[string]any{
		"credentials": map[string]any{
			"api_key":  "loaded_key",
			"base_url": "https://loaded.example.com",
		},
		"webhook": map[string]any{
			"provider_type": "custom",
		},
	}}
	runtime := Config{Credentials: CredentialsConfig{APIKey: "runtime_key"}}

	trigger, err := NewTrigger(runtime,
		WithConfigProvider(NewCfgxConfigProvider(loader)),
		WithWebhookAPI(&stubWebhookAPI{}),
	)
	if err != nil {
		t.Fatalf("new trigger: %v", err)
	}
	cfg := trigger.Config()
	if cfg.Credentials.APIKey != "runtime_key" {
		t.Fatalf("expected runtime api key to win, got %q", cfg.Credentials.APIKey)
	}
	if cfg.Credentials.BaseURL != "https://loaded.example.com" {
		t.Fatalf("expected loaded base url, got %q", cfg.Credentials.BaseURL)
	}
	if cfg.Webhook.ProviderType != "custom" {
		t.Fatalf("expected loaded provider type, got %q", cfg.Webhook.ProviderType)
	}
	if cfg.Webhook.SecretHeader != DefaultSecretHeader {
		t.Fatalf("expected default secret header, got %q", cfg.Webhook.SecretHeader)
	}
	if cfg.Transport.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Transport.Timeout)
	}
}

func TestNewTrigger_LoaderErrorIsMapped(t *testing.T) {
	_, err := NewTrigger(DefaultConfig(),
		WithConfigProvider(NewCfgxConfigProvider(mapRawLoader{err: errors.New("config source unavailable")})),
		WithWebhookAPI(&stubWebhookAPI{}),
	)
	if err == nil {
		t.Fatalf("expected loader error")
	}
	if TextCode(err) == "" {
		t.Fatalf("expected mapped error envelope, got %T", err)
	}
}

func TestNewTrigger_RequiresWebhookAPI(t *testing.T) {
	if _, err := NewTrigger(DefaultConfig()); err == nil {
		t.Fatalf("expected error without webhook api")
	}
}

func TestNewTrigger_FactoryReceivesResolvedConfig(t *testing.T) {
	var seen Config
	api := &stubWebhookAPI{}
	trigger, err := NewTrigger(Config{Credentials: CredentialsConfig{APIKey: "key_1"}},
		WithWebhookAPIFactory(func(cfg Config) (WebhookAPI, error) {
			seen = cfg
			return api, nil
		}),
	)
	if err != nil {
		t.Fatalf("new trigger: %v", err)
	}
	if seen.Credentials.APIKey != "key_1" || seen.Credentials.BaseURL != DefaultBaseURL {
		t.Fatalf("unexpected factory config %#v", seen.Credentials)
	}
	if trigger.Dependencies().WebhookAPI != api {
		t.Fatalf("expected factory api to be wired")
	}
}

func TestWebhookID_ReadsPersistedState(t *testing.T) {
	store := NewMemoryStateStore()
	seedWebhookID(t, store, testTriggerID, "wh_1")
	trigger := newTestTrigger(t, &stubWebhookAPI{}, WithStateStore(store))

	id, found, err := trigger.WebhookID(context.Background(), testTriggerID)
	if err != nil || !found || id != "wh_1" {
		t.Fatalf("expected wh_1, got %q found=%t err=%v", id, found, err)
	}
	if _, _, err := trigger.WebhookID(context.Background(), " "); err == nil {
		t.Fatalf("expected blank trigger id to be rejected")
	}
}
