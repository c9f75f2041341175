package executor

import (
	"context"
	"errors"

	"github.com/aqasim81/migra/internal/database"
)

// Work is a unit run inside (or outside) a transaction boundary.
type Work func(ctx context.Context) error

// RunInTransaction runs work between BEGIN and COMMIT on tm.
// On a work error the transaction is rolled back and the work error is
// returned; a failed rollback is joined to it. A failed commit is returned
// as is.
func RunInTransaction(ctx context.Context, tm database.TransactionManager, work Work) error {
	if err := tm.BeginTransaction(ctx); err != nil {
		return err //nolint:wrapcheck // adapter errors already carry their kind
	}

	if err := work(ctx); err != nil {
		if rbErr := tm.RollbackTransaction(ctx); rbErr != nil {
			return errors.Join(err, rbErr)
		}

		return err
	}

	return tm.CommitTransaction(ctx) //nolint:wrapcheck // adapter errors already carry their kind
}

// MaybeRunInTransaction wraps work in a transaction only when needed.
// The engine calls it twice, outer with singleTransaction and inner with
// its negation, so exactly one boundary is active.
func MaybeRunInTransaction(ctx context.Context, needed bool, tm database.TransactionManager, work Work) error {
	if !needed {
		return work(ctx)
	}

	return RunInTransaction(ctx, tm, work)
}
