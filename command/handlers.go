package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-neo/core"
)

// TriggerLifecycle is the mutating surface the commands drive.
type TriggerLifecycle interface {
	ActivateTrigger(ctx context.Context, instance core.TriggerInstance) (core.ActivationResult, error)
	DeactivateTrigger(ctx context.Context, instance core.TriggerInstance) error
}

type ActivateTriggerCommand struct {
	service TriggerLifecycle
}

func NewActivateTriggerCommand(service TriggerLifecycle) *ActivateTriggerCommand {
	return &ActivateTriggerCommand{service: service}
}

func (c *ActivateTriggerCommand) Execute(ctx context.Context, msg ActivateTriggerMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: trigger lifecycle service is required")
	}
	out, err := c.service.ActivateTrigger(ctx, msg.Instance)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeactivateTriggerCommand struct {
	service TriggerLifecycle
}

func NewDeactivateTriggerCommand(service TriggerLifecycle) *DeactivateTriggerCommand {
	return &DeactivateTriggerCommand{service: service}
}

func (c *DeactivateTriggerCommand) Execute(ctx context.Context, msg DeactivateTriggerMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: trigger lifecycle service is required")
	}
	return c.service.DeactivateTrigger(ctx, msg.Instance)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
