package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	neocommand "github.com/goliatone/go-neo/command"
	neoquery "github.com/goliatone/go-neo/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
	queue    *jobqueuecommand.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// MirrorCommands makes every command registered afterwards also available in
// a go-job queue registry so hosts can run activation and deactivation
// asynchronously. Queries are never mirrored.
func (a *RegistryAdapter) MirrorCommands(queueRegistry *jobqueuecommand.Registry) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	a.queue = queueRegistry
	return nil
}

// QueueRegistry returns the go-job registry commands are mirrored into, or nil.
func (a *RegistryAdapter) QueueRegistry() *jobqueuecommand.Registry {
	if a == nil {
		return nil
	}
	return a.queue
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	if adapter.queue != nil {
		if err := jobqueuecommand.RegisterCommand(adapter.queue, cmd); err != nil {
			if subscription != nil {
				subscription.Unsubscribe()
			}
			return nil, fmt.Errorf("gocommand: mirror command to queue: %w", err)
		}
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// QueryDependencies are the readers behind the trigger queries. Nil members
// skip the matching query.
type QueryDependencies struct {
	Prober      neoquery.WebhookProber
	Lister      neoquery.WebhookLister
	Credentials neoquery.CredentialTester
	Journal     neoquery.CallbackEventReader
}

// RegisterTriggerHandlers registers and subscribes the activate/deactivate
// commands plus every query whose reader is present. The returned
// subscriptions are already unsubscribed when an error is returned.
func RegisterTriggerHandlers(
	adapter *RegistryAdapter,
	lifecycle neocommand.TriggerLifecycle,
	deps QueryDependencies,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if lifecycle == nil {
		return nil, fmt.Errorf("gocommand: trigger lifecycle is required")
	}
	var subscriptions []commanddispatcher.Subscription
	fail := func(err error) ([]commanddispatcher.Subscription, error) {
		for _, sub := range subscriptions {
			sub.Unsubscribe()
		}
		return nil, err
	}
	keep := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			return err
		}
		subscriptions = append(subscriptions, sub)
		return nil
	}

	if err := keep(RegisterAndSubscribe(adapter, neocommand.NewActivateTriggerCommand(lifecycle), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := keep(RegisterAndSubscribe(adapter, neocommand.NewDeactivateTriggerCommand(lifecycle), runnerOpts...)); err != nil {
		return fail(err)
	}
	if deps.Prober != nil {
		if err := keep(RegisterAndSubscribeQuery(adapter, neoquery.NewProbeWebhookQuery(deps.Prober), runnerOpts...)); err != nil {
			return fail(err)
		}
	}
	if deps.Lister != nil {
		if err := keep(RegisterAndSubscribeQuery(adapter, neoquery.NewListRemoteWebhooksQuery(deps.Lister), runnerOpts...)); err != nil {
			return fail(err)
		}
	}
	if deps.Credentials != nil {
		if err := keep(RegisterAndSubscribeQuery(adapter, neoquery.NewTestCredentialsQuery(deps.Credentials), runnerOpts...)); err != nil {
			return fail(err)
		}
	}
	if deps.Journal != nil {
		if err := keep(RegisterAndSubscribeQuery(adapter, neoquery.NewListCallbackEventsQuery(deps.Journal), runnerOpts...)); err != nil {
			return fail(err)
		}
	}
	return subscriptions, nil
}
