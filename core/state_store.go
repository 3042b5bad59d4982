package core

import (
	"context"
	"strings"
	"sync"
)

// MemoryStateStore keeps trigger state in process. It is the default store
// and loses everything on restart.
type MemoryStateStore struct {
	mu     sync.RWMutex
	values map[StateKey]string
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{values: map[StateKey]string{}}
}

func (s *MemoryStateStore) Get(_ context.Context, key StateKey) (string, bool, error) {
	if s == nil {
		return "", false, nil
	}
	key = normalizeStateKey(key)
	if err := key.Validate(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStateStore) Set(_ context.Context, key StateKey, value string) error {
	if s == nil {
		return ErrTriggerIDRequired
	}
	key = normalizeStateKey(key)
	if err := key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[StateKey]string{}
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStateStore) Delete(_ context.Context, key StateKey) error {
	if s == nil {
		return nil
	}
	key = normalizeStateKey(key)
	if err := key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Len reports how many keys are stored across all triggers.
func (s *MemoryStateStore) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func normalizeStateKey(key StateKey) StateKey {
	return StateKey{
		TriggerID: strings.TrimSpace(key.TriggerID),
		Name:      strings.TrimSpace(key.Name),
	}
}

