package devkit

import (
	"context"
	"fmt"

	"github.com/goliatone/go-neo/core"
)

// ValidateStateStoreConformance runs the set/get/delete contract every
// core.StateStore backend must honour.
func ValidateStateStoreConformance(ctx context.Context, store core.StateStore, triggerID string) error {
	if store == nil {
		return fmt.Errorf("devkit: state store is required")
	}
	key := core.StateKey{TriggerID: triggerID, Name: core.StateNameWebhookID}
	other := core.StateKey{TriggerID: triggerID + "_other", Name: core.StateNameWebhookID}

	if _, found, err := store.Get(ctx, key); err != nil {
		return fmt.Errorf("devkit: get missing key: %w", err)
	} else if found {
		return fmt.Errorf("devkit: expected missing key to report found=false")
	}
	if err := store.Set(ctx, key, "wh_1"); err != nil {
		return fmt.Errorf("devkit: set: %w", err)
	}
	if err := store.Set(ctx, key, "wh_2"); err != nil {
		return fmt.Errorf("devkit: overwrite: %w", err)
	}
	value, found, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("devkit: get: %w", err)
	}
	if !found || value != "wh_2" {
		return fmt.Errorf("devkit: expected overwritten value wh_2, got %q (found=%t)", value, found)
	}
	if _, found, err := store.Get(ctx, other); err != nil {
		return fmt.Errorf("devkit: get other trigger: %w", err)
	} else if found {
		return fmt.Errorf("devkit: state leaked across triggers")
	}
	if err := store.Delete(ctx, key); err != nil {
		return fmt.Errorf("devkit: delete: %w", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		return fmt.Errorf("devkit: delete missing key should be a no-op: %w", err)
	}
	if _, found, err := store.Get(ctx, key); err != nil {
		return fmt.Errorf("devkit: get after delete: %w", err)
	} else if found {
		return fmt.Errorf("devkit: expected key to be removed")
	}
	return nil
}

// ValidateTransportAdapterConformance checks that the adapter reports a kind
// and executes the request.
func ValidateTransportAdapterConformance(
	ctx context.Context,
	adapter core.TransportAdapter,
	request core.TransportRequest,
) error {
	if adapter == nil {
		return fmt.Errorf("devkit: transport adapter is required")
	}
	if adapter.Kind() == "" {
		return fmt.Errorf("devkit: transport adapter kind is required")
	}
	_, err := adapter.Do(ctx, request)
	return err
}
