package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aqasim81/migra/internal/logging"
	"github.com/aqasim81/migra/internal/migration"
)

// sqlDialect carries what differs between database/sql backends.
type sqlDialect struct {
	kind           Kind
	createTableSQL string
	// isMissingTable reports whether err means the bookkeeping table does not exist.
	isMissingTable func(err error) bool
}

// sqlClient implements Client over database/sql. It pins one *sql.Conn so
// that transaction statements and migration bodies share a session.
type sqlClient struct {
	db      *sql.DB
	conn    *sql.Conn
	table   string
	dialect sqlDialect
}

func newSQLClient(ctx context.Context, db *sql.DB, table string, dialect sqlDialect) (*sqlClient, error) {
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &sqlClient{db: db, conn: conn, table: table, dialect: dialect}, nil
}

func (c *sqlClient) exec(ctx context.Context, query string) error {
	_, err := c.conn.ExecContext(ctx, query)

	return err //nolint:wrapcheck // callers attach the error kind
}

func (c *sqlClient) BatchExecute(ctx context.Context, query string) error {
	logging.FromContext(ctx).Debug("executing sql", "client", c.dialect.kind, "bytes", len(query))

	if err := c.exec(ctx, query); err != nil {
		return fmt.Errorf("%w: %w", ErrApplySQL, err)
	}

	return nil
}

func (c *sqlClient) BeginTransaction(ctx context.Context) error {
	return beginWith(ctx, c.exec)
}

func (c *sqlClient) CommitTransaction(ctx context.Context) error {
	return commitWith(ctx, c.exec)
}

func (c *sqlClient) RollbackTransaction(ctx context.Context) error {
	return rollbackWith(ctx, c.exec)
}

func (c *sqlClient) CreateMigrationsTable(ctx context.Context) error {
	if err := c.exec(ctx, fmt.Sprintf(c.dialect.createTableSQL, c.table)); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateMigrationsTable, err)
	}

	return nil
}

// Both MySQL and SQLite accept "?" placeholders.
func (c *sqlClient) InsertMigration(ctx context.Context, name string) (int64, error) {
	res, err := c.conn.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (name) VALUES (?)`, c.table), name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInsertMigration, name, err)
	}

	return rowsAffected(res, ErrInsertMigration)
}

func (c *sqlClient) DeleteMigration(ctx context.Context, name string) (int64, error) {
	res, err := c.conn.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE name = ?`, c.table), name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrDeleteMigration, name, err)
	}

	return rowsAffected(res, ErrDeleteMigration)
}

func (c *sqlClient) AppliedMigrations(ctx context.Context) (migration.Set, error) {
	rows, err := c.conn.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY id DESC`, c.table))
	if err != nil {
		if c.dialect.isMissingTable(err) {
			return migration.Set{}, nil
		}

		return migration.Set{}, fmt.Errorf("%w: %w", ErrGetAppliedMigrations, err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return migration.Set{}, fmt.Errorf("%w: scanning row: %w", ErrGetAppliedMigrations, err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return migration.Set{}, fmt.Errorf("%w: %w", ErrGetAppliedMigrations, err)
	}

	return migration.NewSet(names...), nil
}

func (c *sqlClient) Close(_ context.Context) error {
	connErr := c.conn.Close()
	dbErr := c.db.Close()

	if connErr != nil {
		return fmt.Errorf("closing connection: %w", connErr)
	}

	if dbErr != nil {
		return fmt.Errorf("closing database: %w", dbErr)
	}

	return nil
}

func rowsAffected(res sql.Result, kind error) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", kind, err)
	}

	return n, nil
}
