package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aqasim81/migra/internal/logging"
	"github.com/aqasim81/migra/internal/migration"
)

// DefaultTableName is the bookkeeping table used when none is configured.
const DefaultTableName = "migrations"

// BatchExecutor runs raw, unparameterised SQL. The SQL may hold several
// statements.
type BatchExecutor interface {
	BatchExecute(ctx context.Context, sql string) error
}

// TransactionManager controls the transaction on the client's connection.
type TransactionManager interface {
	BeginTransaction(ctx context.Context) error
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
}

// MigrationManager maintains the bookkeeping table of applied migrations.
type MigrationManager interface {
	// CreateMigrationsTable creates the bookkeeping table if it does not exist.
	CreateMigrationsTable(ctx context.Context) error
	// InsertMigration records name as applied and returns the rows affected.
	InsertMigration(ctx context.Context, name string) (int64, error)
	// DeleteMigration removes the record for name and returns the rows affected.
	DeleteMigration(ctx context.Context, name string) (int64, error)
	// AppliedMigrations lists recorded migrations, most recently applied first.
	// A missing bookkeeping table yields an empty set.
	AppliedMigrations(ctx context.Context) (migration.Set, error)
}

// Client is everything the migration engine needs from a backend.
// Implementations own exactly one connection for their lifetime.
type Client interface {
	BatchExecutor
	TransactionManager
	MigrationManager
	Close(ctx context.Context) error
}

// Kind names a supported backend.
type Kind string

// Supported backends.
const (
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindSQLite   Kind = "sqlite"
)

// ParseKind validates a client name from configuration.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPostgres, KindMySQL, KindSQLite:
		return k, nil
	case "postgresql":
		return KindPostgres, nil
	case "sqlite3":
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedClient, s)
	}
}

// DetectKind infers the backend from a connection string.
func DetectKind(url string) (Kind, bool) {
	lower := strings.ToLower(url)

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return KindPostgres, true
	case strings.HasPrefix(lower, "mysql://"):
		return KindMySQL, true
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"):
		return KindSQLite, true
	}

	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(lower, ext) {
			return KindSQLite, true
		}
	}

	return "", false
}

// Options configures Open.
type Options struct {
	// Client selects the backend. Empty means detect from URL, falling
	// back to Postgres.
	Client    Kind
	URL       string
	TableName string
}

var tableNamePattern = regexp.MustCompile( //nolint:gochecknoglobals // compiled once
	`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`,
)

// Open connects to the backend described by opts.
func Open(ctx context.Context, opts Options) (Client, error) {
	table := opts.TableName
	if table == "" {
		table = DefaultTableName
	}

	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}

	kind := opts.Client
	if kind == "" {
		if detected, ok := DetectKind(opts.URL); ok {
			kind = detected
		} else {
			kind = KindPostgres
		}
	}

	logging.FromContext(ctx).Debug("opening database connection", "client", kind, "table", table)

	switch kind {
	case KindPostgres:
		return openPostgres(ctx, opts.URL, table)
	case KindMySQL:
		return openMySQL(ctx, opts.URL, table)
	case KindSQLite:
		return openSQLite(ctx, opts.URL, table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedClient, kind)
	}
}
