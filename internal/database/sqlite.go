package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

func openSQLite(ctx context.Context, databaseURL, table string) (*sqlClient, error) {
	path := SQLitePath(databaseURL)
	if path == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrInvalidDatabaseURL)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return newSQLClient(ctx, db, table, sqlDialect{
		kind:           KindSQLite,
		createTableSQL: sqliteCreateTableSQL,
		isMissingTable: isSQLiteNoSuchTable,
	})
}

// SQLitePath strips a sqlite:// scheme. file: URIs and plain paths pass
// through unchanged.
func SQLitePath(databaseURL string) string {
	if len(databaseURL) >= len("sqlite://") && strings.EqualFold(databaseURL[:len("sqlite://")], "sqlite://") {
		return databaseURL[len("sqlite://"):]
	}

	return databaseURL
}

// modernc reports errors as text without a stable typed code for this case.
func isSQLiteNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
