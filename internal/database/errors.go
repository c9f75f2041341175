package database

import "errors"

// ErrInvalidDatabaseURL indicates the provided database URL could not be parsed.
var ErrInvalidDatabaseURL = errors.New("invalid database URL")

// ErrUnsupportedClient indicates a database client kind this build does not know.
var ErrUnsupportedClient = errors.New("unsupported database client")

// ErrInvalidTableName indicates the bookkeeping table name is not a plain SQL identifier.
var ErrInvalidTableName = errors.New("invalid migrations table name")

// ErrConnectionFailed indicates a connection to the database could not be established.
var ErrConnectionFailed = errors.New("database connection failed")

// ErrOpenTransaction indicates BEGIN failed.
var ErrOpenTransaction = errors.New("failed to open a transaction")

// ErrCommitTransaction indicates COMMIT failed.
var ErrCommitTransaction = errors.New("failed to commit a transaction")

// ErrRollbackTransaction indicates ROLLBACK failed.
var ErrRollbackTransaction = errors.New("failed to rollback a transaction")

// ErrCreateMigrationsTable indicates the bookkeeping table could not be created.
var ErrCreateMigrationsTable = errors.New("failed to create a migrations table")

// ErrApplySQL indicates a raw SQL batch failed.
var ErrApplySQL = errors.New("failed to apply sql")

// ErrInsertMigration indicates a bookkeeping row could not be inserted.
var ErrInsertMigration = errors.New("failed to insert a migration")

// ErrDeleteMigration indicates a bookkeeping row could not be deleted.
var ErrDeleteMigration = errors.New("failed to delete a migration")

// ErrGetAppliedMigrations indicates the bookkeeping table could not be read.
var ErrGetAppliedMigrations = errors.New("failed to get applied migrations")
