package neo

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-chi/chi/v5"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-neo/adapters/gocommand"
	"github.com/goliatone/go-neo/adapters/gologger"
	neocommand "github.com/goliatone/go-neo/command"
	"github.com/goliatone/go-neo/core"
	"github.com/goliatone/go-neo/inbound"
	neoapi "github.com/goliatone/go-neo/providers/neo"
	neoquery "github.com/goliatone/go-neo/query"
	sqlstore "github.com/goliatone/go-neo/store/sql"
	"github.com/goliatone/go-neo/transport"
)

// Journal records accepted callback events and pages through them.
// *sqlstore.EventJournal satisfies it.
type Journal interface {
	core.EventSink
	neoquery.CallbackEventReader
}

type Commands struct {
	Activate   *neocommand.ActivateTriggerCommand
	Deactivate *neocommand.DeactivateTriggerCommand
}

type Queries struct {
	Probe              *neoquery.ProbeWebhookQuery
	ListRemoteWebhooks *neoquery.ListRemoteWebhooksQuery
	TestCredentials    *neoquery.TestCredentialsQuery
	ListCallbackEvents *neoquery.ListCallbackEventsQuery
}

// Service wires the trigger, the NEO client, the callback dispatcher and the
// command/query handlers for one NEO account.
type Service struct {
	trigger    *core.Trigger
	client     *neoapi.Client
	instances  *inbound.InstanceRegistry
	dispatcher *inbound.Dispatcher
	journal    Journal
	logger     core.Logger
	loggers    gologger.ServiceLoggers
	commands   Commands
	queries    Queries
}

type Option func(*serviceOptions)

type serviceOptions struct {
	triggerOptions []core.Option
	clientOptions  []neoapi.Option
	sink           core.EventSink
	journal        Journal
	loggerProvider core.LoggerProvider
	logger         core.Logger
}

// WithTriggerOptions forwards options to core.NewTrigger.
func WithTriggerOptions(opts ...core.Option) Option {
	return func(o *serviceOptions) {
		o.triggerOptions = append(o.triggerOptions, opts...)
	}
}

func WithClientOptions(opts ...neoapi.Option) Option {
	return func(o *serviceOptions) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

func WithHTTPClient(client transport.HTTPDoer) Option {
	return WithClientOptions(neoapi.WithHTTPClient(client))
}

// WithEventSink sets where accepted callback events are delivered.
func WithEventSink(sink core.EventSink) Option {
	return func(o *serviceOptions) {
		o.sink = sink
	}
}

// WithJournal records accepted events before they reach the event sink.
func WithJournal(journal Journal) Option {
	return func(o *serviceOptions) {
		o.journal = journal
	}
}

func WithServiceLogger(provider core.LoggerProvider, logger core.Logger) Option {
	return func(o *serviceOptions) {
		o.loggerProvider = provider
		o.logger = logger
	}
}

func New(cfg Config, opts ...Option) (*Service, error) {
	options := serviceOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	loggers := gologger.ResolveServiceLoggers(options.loggerProvider, options.logger)

	svc := &Service{
		instances: inbound.NewInstanceRegistry(),
		journal:   options.journal,
		logger:    loggers.Service,
		loggers:   loggers,
	}
	factory := func(final core.Config) (core.WebhookAPI, error) {
		client, err := neoapi.New(final, options.clientOptions...)
		if err != nil {
			return nil, err
		}
		svc.client = client
		return client, nil
	}
	triggerOptions := []core.Option{
		core.WithLoggerProvider(loggers.Provider),
		core.WithLogger(loggers.Service),
		core.WithWebhookAPIFactory(factory),
	}
	triggerOptions = append(triggerOptions, options.triggerOptions...)
	trigger, err := core.NewTrigger(cfg, triggerOptions...)
	if err != nil {
		return nil, err
	}
	svc.trigger = trigger

	svc.dispatcher = inbound.NewDispatcher(trigger, svc.instances, fanoutSink(options.journal, options.sink))
	svc.dispatcher.Logger = loggers.Inbound

	svc.commands = Commands{
		Activate:   neocommand.NewActivateTriggerCommand(svc),
		Deactivate: neocommand.NewDeactivateTriggerCommand(svc),
	}
	svc.queries = Queries{
		Probe:              neoquery.NewProbeWebhookQuery(trigger),
		ListRemoteWebhooks: neoquery.NewListRemoteWebhooksQuery(svc.lister()),
	}
	if svc.client != nil {
		svc.queries.TestCredentials = neoquery.NewTestCredentialsQuery(svc.client)
	}
	if options.journal != nil {
		svc.queries.ListCallbackEvents = neoquery.NewListCallbackEventsQuery(options.journal)
	}
	return svc, nil
}

// ActivateTrigger registers the webhook for the instance when none exists
// and makes the instance reachable for callbacks. Test-session URLs are only
// registered locally.
func (s *Service) ActivateTrigger(ctx context.Context, instance core.TriggerInstance) (core.ActivationResult, error) {
	if s == nil || s.trigger == nil {
		return core.ActivationResult{}, fmt.Errorf("neo: service is not configured")
	}
	if err := s.instances.Register(instance); err != nil {
		return core.ActivationResult{}, err
	}
	result := core.ActivationResult{TriggerID: strings.TrimSpace(instance.ID)}
	if s.trigger.IsTestWebhookURL(instance.WebhookURL) {
		result.TestSession = true
		return result, nil
	}

	exists, err := s.trigger.CheckExists(ctx, instance)
	if err != nil {
		s.instances.Remove(instance.ID)
		return core.ActivationResult{}, err
	}
	if !exists {
		if err := s.trigger.Create(ctx, instance); err != nil {
			s.instances.Remove(instance.ID)
			return core.ActivationResult{}, err
		}
		result.Created = true
	}
	webhookID, _, err := s.trigger.WebhookID(ctx, instance.ID)
	if err != nil {
		s.instances.Remove(instance.ID)
		return core.ActivationResult{}, err
	}
	result.WebhookID = webhookID
	s.logger.Info("neo trigger activated", "trigger_id", result.TriggerID, "webhook_id", webhookID, "created", result.Created)
	return result, nil
}

// DeactivateTrigger removes the remote webhook and stops accepting
// callbacks for the instance.
func (s *Service) DeactivateTrigger(ctx context.Context, instance core.TriggerInstance) error {
	if s == nil || s.trigger == nil {
		return fmt.Errorf("neo: service is not configured")
	}
	s.instances.Remove(instance.ID)
	if err := s.trigger.Deactivate(ctx, instance); err != nil {
		return err
	}
	s.logger.Info("neo trigger deactivated", "trigger_id", strings.TrimSpace(instance.ID))
	return nil
}

func (s *Service) Probe(ctx context.Context, instance core.TriggerInstance) core.ProbeResult {
	return s.trigger.Probe(ctx, instance)
}

func (s *Service) Trigger() *core.Trigger {
	if s == nil {
		return nil
	}
	return s.trigger
}

// Client returns the NEO API client, or nil when the webhook API was
// injected through trigger options.
func (s *Service) Client() *neoapi.Client {
	if s == nil {
		return nil
	}
	return s.client
}

func (s *Service) Instances() *inbound.InstanceRegistry {
	if s == nil {
		return nil
	}
	return s.instances
}

func (s *Service) Dispatcher() *inbound.Dispatcher {
	if s == nil {
		return nil
	}
	return s.dispatcher
}

// Routes mounts the callback endpoints on r.
func (s *Service) Routes(r chi.Router) {
	inbound.NewHTTPHandler(s.dispatcher).Routes(r)
}

func (s *Service) Router() chi.Router {
	return inbound.NewRouter(s.dispatcher)
}

// Loggers returns the resolved service loggers, including the go-job bridge
// for hosts that queue trigger commands.
func (s *Service) Loggers() gologger.ServiceLoggers {
	if s == nil {
		return gologger.ResolveServiceLoggers(nil, nil)
	}
	return s.loggers
}

func (s *Service) Commands() Commands {
	if s == nil {
		return Commands{}
	}
	return s.commands
}

func (s *Service) Queries() Queries {
	if s == nil {
		return Queries{}
	}
	return s.queries
}

// RegisterHandlers registers the commands and available queries with a
// go-command registry and subscribes them to the global dispatcher.
func (s *Service) RegisterHandlers(adapter *gocommand.RegistryAdapter) ([]commanddispatcher.Subscription, error) {
	if s == nil {
		return nil, fmt.Errorf("neo: service is not configured")
	}
	deps := gocommand.QueryDependencies{
		Prober: s.trigger,
		Lister: s.lister(),
	}
	if s.client != nil {
		deps.Credentials = s.client
	}
	if s.journal != nil {
		deps.Journal = s.journal
	}
	return gocommand.RegisterTriggerHandlers(adapter, s, deps)
}

func (s *Service) lister() neoquery.WebhookLister {
	if s.client != nil {
		return s.client
	}
	return s.trigger.Dependencies().WebhookAPI
}

func fanoutSink(journal Journal, sink core.EventSink) core.EventSink {
	switch {
	case journal == nil && sink == nil:
		return nil
	case journal == nil:
		return sink
	case sink == nil:
		return journal
	}
	return core.EventSinkFunc(func(ctx context.Context, triggerID string, event core.InboundEvent) error {
		if err := journal.Emit(ctx, triggerID, event); err != nil {
			return err
		}
		return sink.Emit(ctx, triggerID, event)
	})
}

var (
	_ neocommand.TriggerLifecycle = (*Service)(nil)
	_ Journal                     = (*sqlstore.EventJournal)(nil)
)
