package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-neo/core"
)

const triggerStateCacheKeyPrefix = "go-neo::trigger_state::v1"

// CachedTriggerStateStore fronts a state store with a read-through cache.
// Misses are cached as well so an inactive trigger does not hit the base
// store on every lookup.
type CachedTriggerStateStore struct {
	base  core.StateStore
	cache repositorycache.CacheService
}

type cachedStateValue struct {
	Value string
	Found bool
}

func NewCachedTriggerStateStore(
	base core.StateStore,
	cacheService repositorycache.CacheService,
) (*CachedTriggerStateStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base trigger state store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: trigger state cache service is required")
	}
	return &CachedTriggerStateStore{base: base, cache: cacheService}, nil
}

// TriggerStateCacheKey returns go-neo::trigger_state::v1::<trigger_id>::<name>
// with each segment URL-path escaped after normalization.
func TriggerStateCacheKey(key core.StateKey) (string, error) {
	normalized := normalizeStateKey(key)
	if err := normalized.Validate(); err != nil {
		return "", err
	}
	segments := []string{
		url.PathEscape(normalized.TriggerID),
		url.PathEscape(normalized.Name),
	}
	return strings.Join(append([]string{triggerStateCacheKeyPrefix}, segments...), "::"), nil
}

func (s *CachedTriggerStateStore) Get(ctx context.Context, key core.StateKey) (string, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return "", false, fmt.Errorf("sqlstore: cached trigger state store is not configured")
	}
	normalized := normalizeStateKey(key)
	cacheKey, err := TriggerStateCacheKey(normalized)
	if err != nil {
		return "", false, err
	}
	cached, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedStateValue, error) {
		value, found, fetchErr := s.base.Get(ctx, normalized)
		if fetchErr != nil {
			return cachedStateValue{}, fetchErr
		}
		return cachedStateValue{Value: value, Found: found}, nil
	})
	if err != nil {
		return "", false, err
	}
	return cached.Value, cached.Found, nil
}

func (s *CachedTriggerStateStore) Set(ctx context.Context, key core.StateKey, value string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached trigger state store is not configured")
	}
	normalized := normalizeStateKey(key)
	if err := s.base.Set(ctx, normalized, value); err != nil {
		return err
	}
	return s.invalidate(ctx, normalized)
}

func (s *CachedTriggerStateStore) Delete(ctx context.Context, key core.StateKey) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached trigger state store is not configured")
	}
	normalized := normalizeStateKey(key)
	if err := s.base.Delete(ctx, normalized); err != nil {
		return err
	}
	return s.invalidate(ctx, normalized)
}

func (s *CachedTriggerStateStore) invalidate(ctx context.Context, key core.StateKey) error {
	cacheKey, err := TriggerStateCacheKey(key)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
