package database

import (
	"context"
	"fmt"
)

// execFunc runs SQL on a client's pinned connection without wrapping
// the error in a kind.
type execFunc func(ctx context.Context, sql string) error

// Every adapter drives transactions with plain statements on its single
// connection, so the bookkeeping writes and the migration body share the
// transaction.

func beginWith(ctx context.Context, exec execFunc) error {
	if err := exec(ctx, "BEGIN"); err != nil {
		return fmt.Errorf("%w: %w", ErrOpenTransaction, err)
	}

	return nil
}

func commitWith(ctx context.Context, exec execFunc) error {
	if err := exec(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTransaction, err)
	}

	return nil
}

func rollbackWith(ctx context.Context, exec execFunc) error {
	if err := exec(ctx, "ROLLBACK"); err != nil {
		return fmt.Errorf("%w: %w", ErrRollbackTransaction, err)
	}

	return nil
}
