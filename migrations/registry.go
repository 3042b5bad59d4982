package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	neo "github.com/goliatone/go-neo"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	// SourceLabel names the migration set when registered with a host.
	SourceLabel = "go-neo"

	rootPath = "data/sql/migrations"
)

// Source is the migration set for one SQL dialect.
type Source struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type options struct {
	root        fs.FS
	dialects    []string
	sourceLabel string
}

type Option func(*options)

// WithDialects limits registration to the named dialects.
func WithDialects(dialects ...string) Option {
	return func(o *options) {
		next := make([]string, 0, len(dialects))
		for _, dialect := range dialects {
			dialect = strings.ToLower(strings.TrimSpace(dialect))
			if dialect != "" && !slices.Contains(next, dialect) {
				next = append(next, dialect)
			}
		}
		if len(next) > 0 {
			o.dialects = next
		}
	}
}

func WithSourceLabel(label string) Option {
	return func(o *options) {
		if label = strings.TrimSpace(label); label != "" {
			o.sourceLabel = label
		}
	}
}

// WithRoot reads migrations from fsys instead of the embedded files. fsys
// must contain data/sql/migrations.
func WithRoot(fsys fs.FS) Option {
	return func(o *options) {
		if fsys != nil {
			o.root = fsys
		}
	}
}

// Sources returns the postgres and sqlite migration sets. Every set must hold
// at least one *.up.sql file.
func Sources(opts ...Option) ([]Source, error) {
	o := resolveOptions(opts)
	base, err := fs.Sub(o.root, rootPath)
	if err != nil {
		return nil, fmt.Errorf("migrations: %s not found: %w", rootPath, err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	sources := []Source{
		{Dialect: DialectPostgres, Path: rootPath, FS: base},
		{Dialect: DialectSQLite, Path: rootPath + "/sqlite", FS: sqliteFS},
	}
	for _, source := range sources {
		matches, err := fs.Glob(source.FS, "*.up.sql")
		if err != nil {
			return nil, fmt.Errorf("migrations: glob %s: %w", source.Path, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s has no *.up.sql files", source.Path)
		}
	}
	return sources, nil
}

// SourceFor returns the migration set of a single dialect.
func SourceFor(dialect string, opts ...Option) (Source, error) {
	sources, err := Sources(opts...)
	if err != nil {
		return Source{}, err
	}
	dialect = strings.ToLower(strings.TrimSpace(dialect))
	for _, source := range sources {
		if source.Dialect == dialect {
			return source, nil
		}
	}
	return Source{}, fmt.Errorf("migrations: unsupported dialect %q", dialect)
}

// Register hands every selected migration set to registerFn and returns the
// sets that were registered.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) ([]Source, error) {
	if registerFn == nil {
		return nil, fmt.Errorf("migrations: register function is required")
	}
	o := resolveOptions(opts)
	sources, err := Sources(opts...)
	if err != nil {
		return nil, err
	}

	registered := make([]Source, 0, len(sources))
	for _, source := range sources {
		if !slices.Contains(o.dialects, source.Dialect) {
			continue
		}
		if err := registerFn(ctx, source.Dialect, o.sourceLabel, source.FS); err != nil {
			return registered, fmt.Errorf("migrations: register %s (%s): %w", source.Dialect, source.Path, err)
		}
		registered = append(registered, source)
	}
	return registered, nil
}

// Apply registers the dialect's migrations with client and runs them.
func Apply(ctx context.Context, client *persistence.Client, dialect string) error {
	if client == nil {
		return fmt.Errorf("migrations: persistence client is required")
	}
	source, err := SourceFor(dialect)
	if err != nil {
		return err
	}
	client.RegisterSQLMigrations(source.FS)
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: apply %s: %w", source.Dialect, err)
	}
	return nil
}

func resolveOptions(opts []Option) options {
	o := options{
		root:        neo.GetMigrationsFS(),
		dialects:    []string{DialectPostgres, DialectSQLite},
		sourceLabel: SourceLabel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
