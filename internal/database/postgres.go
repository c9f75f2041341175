package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqasim81/migra/internal/logging"
	"github.com/aqasim81/migra/internal/migration"
)

// pgUndefinedTable is the SQLSTATE for a missing relation.
const pgUndefinedTable = "42P01"

// postgresClient holds one pooled connection for its whole life so BEGIN,
// the migration body and COMMIT all run in the same session.
type postgresClient struct {
	pool  *pgxpool.Pool
	conn  *pgxpool.Conn
	table string
}

func openPostgres(ctx context.Context, databaseURL, table string) (*postgresClient, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	poolCfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Release()
		pool.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &postgresClient{pool: pool, conn: conn, table: table}, nil
}

// exec sends sql with no arguments, which pgx runs over the simple
// protocol so a body may hold several statements.
func (c *postgresClient) exec(ctx context.Context, sql string) error {
	_, err := c.conn.Exec(ctx, sql)

	return err //nolint:wrapcheck // callers attach the error kind
}

func (c *postgresClient) BatchExecute(ctx context.Context, sql string) error {
	logging.FromContext(ctx).Debug("executing sql", "client", KindPostgres, "bytes", len(sql))

	if err := c.exec(ctx, sql); err != nil {
		return fmt.Errorf("%w: %w", ErrApplySQL, err)
	}

	return nil
}

func (c *postgresClient) BeginTransaction(ctx context.Context) error {
	return beginWith(ctx, c.exec)
}

func (c *postgresClient) CommitTransaction(ctx context.Context) error {
	return commitWith(ctx, c.exec)
}

func (c *postgresClient) RollbackTransaction(ctx context.Context) error {
	return rollbackWith(ctx, c.exec)
}

func (c *postgresClient) CreateMigrationsTable(ctx context.Context) error {
	if err := c.exec(ctx, fmt.Sprintf(postgresCreateTableSQL, c.table)); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateMigrationsTable, err)
	}

	return nil
}

func (c *postgresClient) InsertMigration(ctx context.Context, name string) (int64, error) {
	tag, err := c.conn.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1)`, c.table), name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInsertMigration, name, err)
	}

	return tag.RowsAffected(), nil
}

func (c *postgresClient) DeleteMigration(ctx context.Context, name string) (int64, error) {
	tag, err := c.conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE name = $1`, c.table), name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrDeleteMigration, name, err)
	}

	return tag.RowsAffected(), nil
}

func (c *postgresClient) AppliedMigrations(ctx context.Context) (migration.Set, error) {
	rows, err := c.conn.Query(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY id DESC`, c.table))
	if err != nil {
		return appliedOrMissing(err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return appliedOrMissing(err)
	}

	return migration.NewSet(names...), nil
}

func (c *postgresClient) Close(_ context.Context) error {
	if c.conn != nil {
		c.conn.Release()
		c.conn = nil
	}

	c.pool.Close()

	return nil
}

func appliedOrMissing(err error) (migration.Set, error) {
	if isPostgresUndefinedTable(err) {
		return migration.Set{}, nil
	}

	return migration.Set{}, fmt.Errorf("%w: %w", ErrGetAppliedMigrations, err)
}

func isPostgresUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
