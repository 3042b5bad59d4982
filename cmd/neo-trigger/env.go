package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-neo/core"
)

type settings struct {
	ListenAddr     string
	StateBackend   string
	DatabaseURL    string
	StateCacheTTL  time.Duration
	ShutdownWait   time.Duration
	Instance       *core.TriggerInstance
	RawTriggerConf map[string]any
}

func loadSettings() (settings, error) {
	out := settings{
		ListenAddr:   envOr("NEO_LISTEN_ADDR", ":5678"),
		StateBackend: strings.ToLower(envOr("NEO_STATE_BACKEND", "memory")),
		DatabaseURL:  strings.TrimSpace(os.Getenv("NEO_DATABASE_URL")),
		ShutdownWait: 30 * time.Second,
	}

	ttl, err := envDuration("NEO_STATE_CACHE_TTL", time.Minute)
	if err != nil {
		return settings{}, err
	}
	out.StateCacheTTL = ttl

	raw, err := rawTriggerConfig()
	if err != nil {
		return settings{}, err
	}
	out.RawTriggerConf = raw

	instance, err := envInstance()
	if err != nil {
		return settings{}, err
	}
	out.Instance = instance
	return out, nil
}

// rawTriggerConfig maps NEO_* variables onto the koanf keys of core.Config.
// Unset variables are omitted so defaults apply.
func rawTriggerConfig() (map[string]any, error) {
	raw := map[string]any{}
	credentials := map[string]any{}
	webhook := map[string]any{}
	transport := map[string]any{}

	setIfPresent(raw, "service_name", "NEO_SERVICE_NAME")
	setIfPresent(credentials, "api_key", "NEO_API_KEY")
	setIfPresent(credentials, "base_url", "NEO_BASE_URL")
	setIfPresent(webhook, "secret_header", "NEO_SECRET_HEADER")
	setIfPresent(webhook, "test_path_marker", "NEO_TEST_PATH_MARKER")
	setIfPresent(webhook, "provider_type", "NEO_PROVIDER_TYPE")

	if value := strings.TrimSpace(os.Getenv("NEO_TIMEOUT")); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("NEO_TIMEOUT: %w", err)
		}
		transport["timeout"] = timeout
	}

	if len(credentials) > 0 {
		raw["credentials"] = credentials
	}
	if len(webhook) > 0 {
		raw["webhook"] = webhook
	}
	if len(transport) > 0 {
		raw["transport"] = transport
	}
	return raw, nil
}

// envInstance builds the trigger instance activated at startup. It returns
// nil when NEO_TRIGGER_ID is not set.
func envInstance() (*core.TriggerInstance, error) {
	id := strings.TrimSpace(os.Getenv("NEO_TRIGGER_ID"))
	if id == "" {
		return nil, nil
	}
	webhookURL := strings.TrimSpace(os.Getenv("NEO_WEBHOOK_URL"))
	if webhookURL == "" {
		return nil, fmt.Errorf("NEO_WEBHOOK_URL is required when NEO_TRIGGER_ID is set")
	}

	triggerSettings := core.DefaultTriggerSettings()
	eventTypes, err := core.ParseEventTypes(splitList(os.Getenv("NEO_EVENT_TYPES"))...)
	if err != nil {
		return nil, fmt.Errorf("NEO_EVENT_TYPES: %w", err)
	}
	triggerSettings.EventTypes = eventTypes
	triggerSettings.WebhookName = envOr("NEO_WEBHOOK_NAME", id)
	triggerSettings.Secret = strings.TrimSpace(os.Getenv("NEO_WEBHOOK_SECRET"))
	if value := strings.TrimSpace(os.Getenv("NEO_VALIDATE_SECRET")); value != "" {
		triggerSettings.ValidateSecret = value != "false" && value != "0"
	}

	return &core.TriggerInstance{
		ID:         id,
		WebhookURL: webhookURL,
		Settings:   triggerSettings,
	}, nil
}

func setIfPresent(target map[string]any, key, env string) {
	if value := strings.TrimSpace(os.Getenv(env)); value != "" {
		target[key] = value
	}
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
