package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-neo/core"
	neomigrations "github.com/goliatone/go-neo/migrations"
	sqlstore "github.com/goliatone/go-neo/store/sql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	backendMemory   = "memory"
	backendSQLite   = "sqlite"
	backendPostgres = "postgres"
)

type persistenceConfig struct {
	driver string
	server string
	debug  bool
}

func (c persistenceConfig) GetDebug() bool {
	return c.debug
}

func (c persistenceConfig) GetDriver() string {
	return c.driver
}

func (c persistenceConfig) GetServer() string {
	return c.server
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "neo-trigger"
}

// storage holds the state store and optional callback journal for the
// selected backend.
type storage struct {
	state   core.StateStore
	journal *sqlstore.EventJournal
	close   func() error
}

func openStorage(ctx context.Context, backend, databaseURL string, cacheTTL time.Duration) (storage, error) {
	var (
		driver  string
		dialect schema.Dialect
		target  string
	)
	switch backend {
	case "", backendMemory:
		return storage{state: core.NewMemoryStateStore(), close: func() error { return nil }}, nil
	case backendSQLite:
		driver, dialect, target = "sqlite3", sqlitedialect.New(), neomigrations.DialectSQLite
		if databaseURL == "" {
			databaseURL = "file:neo-trigger.db?cache=shared&_foreign_keys=on"
		}
	case backendPostgres:
		driver, dialect, target = "postgres", pgdialect.New(), neomigrations.DialectPostgres
		if databaseURL == "" {
			return storage{}, fmt.Errorf("NEO_DATABASE_URL is required for the postgres backend")
		}
	default:
		return storage{}, fmt.Errorf("unknown state backend %q", backend)
	}

	sqlDB, err := sql.Open(driver, databaseURL)
	if err != nil {
		return storage{}, fmt.Errorf("open %s database: %w", backend, err)
	}
	if backend == backendSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(persistenceConfig{driver: driver, server: databaseURL}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return storage{}, fmt.Errorf("persistence client: %w", err)
	}

	if err := neomigrations.Apply(ctx, client, target); err != nil {
		_ = client.Close()
		return storage{}, err
	}

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		_ = client.Close()
		return storage{}, err
	}
	state, err := factory.CachedStateStore(cacheTTL)
	if err != nil {
		_ = client.Close()
		return storage{}, err
	}
	return storage{
		state:   state,
		journal: factory.EventJournal(),
		close:   client.Close,
	}, nil
}
