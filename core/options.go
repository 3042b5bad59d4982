package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// WebhookAPIFactory builds the remote client once the final config is known.
type WebhookAPIFactory func(cfg Config) (WebhookAPI, error)

type triggerBuilder struct {
	runtimeConfig     Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	webhookAPI        WebhookAPI
	webhookAPIFactory WebhookAPIFactory
	stateStore        StateStore
	now               func() time.Time
}

type Option func(*triggerBuilder)

func WithLogger(logger Logger) Option {
	return func(b *triggerBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *triggerBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *triggerBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *triggerBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *triggerBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *triggerBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *triggerBuilder) {
		b.optionsResolver = resolver
	}
}

func WithWebhookAPI(api WebhookAPI) Option {
	return func(b *triggerBuilder) {
		b.webhookAPI = api
	}
}

func WithWebhookAPIFactory(factory WebhookAPIFactory) Option {
	return func(b *triggerBuilder) {
		b.webhookAPIFactory = factory
	}
}

func WithStateStore(store StateStore) Option {
	return func(b *triggerBuilder) {
		b.stateStore = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *triggerBuilder) {
		b.now = now
	}
}

func defaultTriggerBuilder(runtime Config) triggerBuilder {
	loggerProvider, logger := glog.Resolve("neo", nil, nil)
	return triggerBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     DefaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// DefaultErrorMapper wraps plain errors into go-errors envelopes carrying an
// HTTP code and a NEO text code.
func DefaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return serviceErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	return copyAnyMap(l.Values), nil
}

// NewStaticConfigLoader serves a fixed raw config map, typically assembled
// from environment variables by the host.
func NewStaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: copyAnyMap(values)}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	credentials := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Credentials.APIKey) != "" {
		credentials["api_key"] = cfg.Credentials.APIKey
	}
	if includeZero || strings.TrimSpace(cfg.Credentials.BaseURL) != "" {
		credentials["base_url"] = cfg.Credentials.BaseURL
	}
	if len(credentials) > 0 {
		layer["credentials"] = credentials
	}

	webhook := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Webhook.SecretHeader) != "" {
		webhook["secret_header"] = cfg.Webhook.SecretHeader
	}
	if includeZero || strings.TrimSpace(cfg.Webhook.TestPathMarker) != "" {
		webhook["test_path_marker"] = cfg.Webhook.TestPathMarker
	}
	if includeZero || strings.TrimSpace(cfg.Webhook.ProviderType) != "" {
		webhook["provider_type"] = cfg.Webhook.ProviderType
	}
	if len(webhook) > 0 {
		layer["webhook"] = webhook
	}

	transport := map[string]any{}
	if includeZero || cfg.Transport.Timeout > 0 {
		transport["timeout"] = cfg.Transport.Timeout
	}
	if includeZero || cfg.Transport.MaxResponseBodyBytes > 0 {
		transport["max_response_body_bytes"] = cfg.Transport.MaxResponseBodyBytes
	}
	if len(transport) > 0 {
		layer["transport"] = transport
	}
	return layer
}
