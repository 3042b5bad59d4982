package inbound

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-neo/core"
)

// InstanceRegistry holds the trigger instances currently activated by the
// host.
type InstanceRegistry struct {
	mu        sync.RWMutex
	instances map[string]core.TriggerInstance
}

func NewInstanceRegistry() *InstanceRegistry {
	return &InstanceRegistry{instances: map[string]core.TriggerInstance{}}
}

func (r *InstanceRegistry) Register(instance core.TriggerInstance) error {
	if err := instance.Validate(); err != nil {
		return errInvalidInstance(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[strings.TrimSpace(instance.ID)] = instance
	return nil
}

func (r *InstanceRegistry) Remove(triggerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, strings.TrimSpace(triggerID))
}

func (r *InstanceRegistry) ResolveInstance(_ context.Context, triggerID string) (core.TriggerInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.instances[strings.TrimSpace(triggerID)]
	if !ok {
		return core.TriggerInstance{}, errUnknownTrigger(triggerID)
	}
	return instance, nil
}

var _ core.InstanceResolver = (*InstanceRegistry)(nil)
