package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL        = "https://api.docunite.ai"
	DefaultSecretHeader   = "x-neo-secret"
	DefaultTestPathMarker = "/webhook-test/"
	DefaultProviderType   = "default"
)

const defaultTransportTimeout = 30 * time.Second
const defaultMaxResponseBodyBytes int64 = 10 << 20 // 10 MiB

type CredentialsConfig struct {
	APIKey  string `koanf:"api_key" mapstructure:"api_key"`
	BaseURL string `koanf:"base_url" mapstructure:"base_url"`
}

type WebhookConfig struct {
	SecretHeader   string `koanf:"secret_header" mapstructure:"secret_header"`
	TestPathMarker string `koanf:"test_path_marker" mapstructure:"test_path_marker"`
	ProviderType   string `koanf:"provider_type" mapstructure:"provider_type"`
}

type TransportConfig struct {
	Timeout              time.Duration `koanf:"timeout" mapstructure:"timeout"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

type Config struct {
	ServiceName string            `koanf:"service_name" mapstructure:"service_name"`
	Credentials CredentialsConfig `koanf:"credentials" mapstructure:"credentials"`
	Webhook     WebhookConfig     `koanf:"webhook" mapstructure:"webhook"`
	Transport   TransportConfig   `koanf:"transport" mapstructure:"transport"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "neo",
		Credentials: CredentialsConfig{
			BaseURL: DefaultBaseURL,
		},
		Webhook: WebhookConfig{
			SecretHeader:   DefaultSecretHeader,
			TestPathMarker: DefaultTestPathMarker,
			ProviderType:   DefaultProviderType,
		},
		Transport: TransportConfig{
			Timeout:              defaultTransportTimeout,
			MaxResponseBodyBytes: defaultMaxResponseBodyBytes,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	base := strings.TrimSpace(c.Credentials.BaseURL)
	if base == "" {
		return fmt.Errorf("core: credentials.base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("core: credentials.base_url is invalid: %q", base)
	}
	if strings.TrimSpace(c.Webhook.SecretHeader) == "" {
		return fmt.Errorf("core: webhook.secret_header is required")
	}
	if strings.TrimSpace(c.Webhook.TestPathMarker) == "" {
		return fmt.Errorf("core: webhook.test_path_marker is required")
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("core: transport.timeout is invalid")
	}
	return nil
}

// CredentialsFromConfig returns the API credential with the default base
// URL applied.
func (c Config) CredentialsFromConfig() Credentials {
	base := strings.TrimRight(strings.TrimSpace(c.Credentials.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return Credentials{
		APIKey:  strings.TrimSpace(c.Credentials.APIKey),
		BaseURL: base,
	}
}

// IsTestWebhookURL reports whether url belongs to an interactive test session.
func (c Config) IsTestWebhookURL(webhookURL string) bool {
	marker := strings.TrimSpace(c.Webhook.TestPathMarker)
	if marker == "" {
		marker = DefaultTestPathMarker
	}
	return strings.Contains(webhookURL, marker)
}
