package sqlstore

import (
	"fmt"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-neo/core"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db *bun.DB

	triggerStateStore *TriggerStateStore
	eventJournal      *EventJournal
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.Build(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.Build(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// Build resolves the bun handle from a *bun.DB or anything exposing DB()
// and wires the stores once.
func (f *RepositoryFactory) Build(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.triggerStateStore != nil && f.eventJournal != nil {
		return nil
	}
	return f.initStores()
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) TriggerStateStore() *TriggerStateStore {
	if f == nil {
		return nil
	}
	return f.triggerStateStore
}

// CachedStateStore wraps the SQL state store with an in-process cache. A
// non-positive ttl keeps the cache library default.
func (f *RepositoryFactory) CachedStateStore(ttl time.Duration) (core.StateStore, error) {
	if f == nil || f.triggerStateStore == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is not built")
	}
	config := repositorycache.DefaultConfig()
	if ttl > 0 {
		config.TTL = ttl
	}
	cacheService, err := repositorycache.NewCacheService(config)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: new cache service: %w", err)
	}
	return NewCachedTriggerStateStore(f.triggerStateStore, cacheService)
}

func (f *RepositoryFactory) EventJournal() *EventJournal {
	if f == nil {
		return nil
	}
	return f.eventJournal
}

func (f *RepositoryFactory) initStores() error {
	triggerStateStore, err := NewTriggerStateStore(f.db)
	if err != nil {
		return err
	}
	f.triggerStateStore = triggerStateStore
	eventJournal, err := NewEventJournal(f.db)
	if err != nil {
		return err
	}
	f.eventJournal = eventJournal
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
