package core

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Trigger is the NEO trigger runtime: it keeps the remote webhook in sync with
// the trigger lifecycle and validates inbound callbacks.
type Trigger struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	webhookAPI      WebhookAPI
	stateStore      StateStore
	now             func() time.Time
}

type TriggerDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	WebhookAPI      WebhookAPI
	StateStore      StateStore
}

func NewTrigger(cfg Config, opts ...Option) (*Trigger, error) {
	builder := defaultTriggerBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("neo", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("neo.trigger"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = DefaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.stateStore == nil {
		builder.stateStore = NewMemoryStateStore()
	}
	if builder.now == nil {
		builder.now = func() time.Time {
			return time.Now().UTC()
		}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.webhookAPI == nil && builder.webhookAPIFactory != nil {
		api, buildErr := builder.webhookAPIFactory(finalConfig)
		if buildErr != nil {
			return nil, mapBuildError(builder.errorMapper, buildErr)
		}
		builder.webhookAPI = api
	}
	if builder.webhookAPI == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: webhook api is required"))
	}

	return &Trigger{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		webhookAPI:      builder.webhookAPI,
		stateStore:      builder.stateStore,
		now:             builder.now,
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (t *Trigger) Config() Config {
	if t == nil {
		return Config{}
	}
	return t.config
}

func (t *Trigger) Dependencies() TriggerDependencies {
	if t == nil {
		return TriggerDependencies{}
	}
	return TriggerDependencies{
		Logger:          t.logger,
		LoggerProvider:  t.loggerProvider,
		MetricsRecorder: t.metricsRecorder,
		ErrorFactory:    t.errorFactory,
		ErrorMapper:     t.errorMapper,
		ConfigProvider:  t.configProvider,
		OptionsResolver: t.optionsResolver,
		WebhookAPI:      t.webhookAPI,
		StateStore:      t.stateStore,
	}
}

// WebhookID returns the remote identifier persisted for the trigger, if any.
func (t *Trigger) WebhookID(ctx context.Context, triggerID string) (string, bool, error) {
	if t == nil || t.stateStore == nil {
		return "", false, fmt.Errorf("core: state store is required")
	}
	key := webhookIDKey(triggerID)
	if err := key.Validate(); err != nil {
		return "", false, t.mapError(err)
	}
	value, found, err := t.stateStore.Get(ctx, key)
	if err != nil {
		return "", false, t.mapError(err)
	}
	return value, found, nil
}

func (t *Trigger) mapError(err error) error {
	if err == nil {
		return nil
	}
	if t == nil || t.errorMapper == nil {
		return err
	}
	mapped := t.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (t *Trigger) timeNow() time.Time {
	if t == nil || t.now == nil {
		return time.Now().UTC()
	}
	return t.now().UTC()
}
