package executor

import "errors"

// ErrExecutionFailed indicates a migration or script failed to execute.
var ErrExecutionFailed = errors.New("migration execution failed")

// ErrReadMigration indicates a migration body could not be read from disk.
var ErrReadMigration = errors.New("failed to read migration")
