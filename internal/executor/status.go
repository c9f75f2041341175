package executor

import (
	"context"

	"github.com/aqasim81/migra/internal/database"
	"github.com/aqasim81/migra/internal/migration"
)

// Status is the applied/pending split of the on-disk migrations.
type Status struct {
	// Applied is newest first.
	Applied migration.Set
	// Pending keeps on-disk order.
	Pending migration.Set
	// Offline is set when no database was available and Applied is unknown.
	Offline bool
}

// ReadStatus compares all with the applied migrations recorded by mm.
// A nil mm reports every on-disk migration as pending.
func ReadStatus(ctx context.Context, mm database.MigrationManager, all migration.Set) (Status, error) {
	if mm == nil {
		return Status{Pending: all, Offline: true}, nil
	}

	applied, err := mm.AppliedMigrations(ctx)
	if err != nil {
		return Status{}, err //nolint:wrapcheck // adapter errors already carry their kind
	}

	return Status{Applied: applied, Pending: all.Exclude(applied)}, nil
}
