package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/aqasim81/migra/internal/database"
	"github.com/aqasim81/migra/internal/logging"
	"github.com/aqasim81/migra/internal/migration"
)

// Progress status constants reported via ProgressEvent.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Direction says which kind of step a ProgressEvent describes.
type Direction string

// Step directions.
const (
	DirectionUpgrade   Direction = "upgrade"
	DirectionDowngrade Direction = "downgrade"
	DirectionApply     Direction = "apply"
)

// ProgressEvent is emitted by the executor for each migration or script processed.
type ProgressEvent struct {
	Name      string
	Direction Direction
	Status    string
	Duration  time.Duration
	Error     error
}

// Source reads migration bodies by name.
type Source interface {
	ReadUp(name string) (string, error)
	ReadDown(name string) (string, error)
}

// Executor upgrades, downgrades and applies SQL against a single client.
type Executor struct {
	client            database.Client
	source            Source
	singleTransaction bool
	onProgress        func(ProgressEvent)
}

// Option configures an Executor.
type Option func(*Executor)

// WithSingleTransaction runs a whole batch in one transaction instead of
// one transaction per migration.
func WithSingleTransaction(b bool) Option {
	return func(e *Executor) { e.singleTransaction = b }
}

// WithProgressCallback sets a function called for each migration processed.
func WithProgressCallback(fn func(ProgressEvent)) Option {
	return func(e *Executor) { e.onProgress = fn }
}

// New creates an Executor over client, reading bodies from source.
func New(client database.Client, source Source, opts ...Option) *Executor {
	e := &Executor{
		client: client,
		source: source,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// UpgradeOptions narrows which pending migrations Upgrade runs.
// Target wins over Limit. A nil Limit means all pending; a Limit of
// zero runs nothing.
type UpgradeOptions struct {
	Target string
	Limit  *int
}

// Limit returns n as an UpgradeOptions.Limit value.
func Limit(n int) *int {
	return &n
}

// UpgradeResult reports what Upgrade did.
type UpgradeResult struct {
	Applied  []string
	UpToDate bool
	// MissingTarget is set when the requested target is not pending.
	MissingTarget string
}

// Upgrade applies pending migrations from all in on-disk order. The first
// failure stops the run; earlier migrations stay applied unless the whole
// batch shares one transaction.
func (e *Executor) Upgrade(ctx context.Context, all migration.Set, opts UpgradeOptions) (UpgradeResult, error) {
	if err := e.client.CreateMigrationsTable(ctx); err != nil {
		return UpgradeResult{}, err //nolint:wrapcheck // adapter errors already carry their kind
	}

	applied, err := e.client.AppliedMigrations(ctx)
	if err != nil {
		return UpgradeResult{}, err //nolint:wrapcheck // adapter errors already carry their kind
	}

	pending := all.Exclude(applied)
	if pending.IsEmpty() {
		return UpgradeResult{UpToDate: true}, nil
	}

	working := pending

	switch {
	case opts.Target != "":
		target, ok := pending.Find(opts.Target)
		if !ok {
			return UpgradeResult{MissingTarget: opts.Target}, nil
		}

		working = migration.NewSet(target.Name)
	case opts.Limit != nil:
		working = pending.Head(*opts.Limit)
	}

	var done []string

	err = MaybeRunInTransaction(ctx, e.singleTransaction, e.client, func(ctx context.Context) error {
		for _, name := range working.Names() {
			if err := e.upgradeOne(ctx, name); err != nil {
				return err
			}

			done = append(done, name)
		}

		return nil
	})
	if err != nil {
		if e.singleTransaction {
			done = nil
		}

		return UpgradeResult{Applied: done}, err
	}

	return UpgradeResult{Applied: done}, nil
}

func (e *Executor) upgradeOne(ctx context.Context, name string) error {
	return e.step(ctx, DirectionUpgrade, name, func(ctx context.Context) error {
		body, err := e.source.ReadUp(name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrReadMigration, name, err)
		}

		return MaybeRunInTransaction(ctx, !e.singleTransaction, e.client, func(ctx context.Context) error {
			if err := e.client.BatchExecute(ctx, body); err != nil {
				return err //nolint:wrapcheck // wrapped by step
			}

			_, err := e.client.InsertMigration(ctx, name)

			return err //nolint:wrapcheck // wrapped by step
		})
	})
}

// DowngradeOptions selects how many applied migrations to revert.
// All wins over Count; a Count of zero reverts nothing.
type DowngradeOptions struct {
	Count int
	All   bool
}

// DowngradeResult reports what Downgrade did.
type DowngradeResult struct {
	Reverted []string
	// Skipped lists applied migrations whose files are gone from disk.
	Skipped []string
}

// Downgrade reverts the most recently applied migrations, newest first.
// Applied migrations missing from all are skipped without error.
func (e *Executor) Downgrade(ctx context.Context, all migration.Set, opts DowngradeOptions) (DowngradeResult, error) {
	if err := e.client.CreateMigrationsTable(ctx); err != nil {
		return DowngradeResult{}, err //nolint:wrapcheck // adapter errors already carry their kind
	}

	applied, err := e.client.AppliedMigrations(ctx)
	if err != nil {
		return DowngradeResult{}, err //nolint:wrapcheck // adapter errors already carry their kind
	}

	n := applied.Len()
	if !opts.All {
		n = min(opts.Count, applied.Len())
	}

	var result DowngradeResult

	err = MaybeRunInTransaction(ctx, e.singleTransaction, e.client, func(ctx context.Context) error {
		for _, name := range applied.Head(n).Names() {
			if !all.Contains(name) {
				logging.FromContext(ctx).Debug("migration files missing, skipping", "migration", name)
				e.fireProgress(ProgressEvent{Name: name, Direction: DirectionDowngrade, Status: StatusSkipped})
				result.Skipped = append(result.Skipped, name)

				continue
			}

			if err := e.downgradeOne(ctx, name); err != nil {
				return err
			}

			result.Reverted = append(result.Reverted, name)
		}

		return nil
	})
	if err != nil && e.singleTransaction {
		result.Reverted = nil
	}

	return result, err
}

func (e *Executor) downgradeOne(ctx context.Context, name string) error {
	return e.step(ctx, DirectionDowngrade, name, func(ctx context.Context) error {
		body, err := e.source.ReadDown(name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrReadMigration, name, err)
		}

		return MaybeRunInTransaction(ctx, !e.singleTransaction, e.client, func(ctx context.Context) error {
			if err := e.client.BatchExecute(ctx, body); err != nil {
				return err //nolint:wrapcheck // wrapped by step
			}

			_, err := e.client.DeleteMigration(ctx, name)

			return err //nolint:wrapcheck // wrapped by step
		})
	})
}

// Script is an ad-hoc SQL file run by Apply.
type Script struct {
	Name string
	SQL  string
}

// Apply runs scripts in order without touching the bookkeeping table.
func (e *Executor) Apply(ctx context.Context, scripts []Script) error {
	return MaybeRunInTransaction(ctx, e.singleTransaction, e.client, func(ctx context.Context) error {
		for _, s := range scripts {
			err := e.step(ctx, DirectionApply, s.Name, func(ctx context.Context) error {
				return MaybeRunInTransaction(ctx, !e.singleTransaction, e.client, func(ctx context.Context) error {
					return e.client.BatchExecute(ctx, s.SQL) //nolint:wrapcheck // wrapped by step
				})
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// step fires progress around fn and attaches the migration name to its error.
func (e *Executor) step(ctx context.Context, dir Direction, name string, fn Work) error {
	logger := logging.FromContext(ctx)

	e.fireProgress(ProgressEvent{Name: name, Direction: dir, Status: StatusStarting})
	logger.Debug("step starting", "direction", dir, "migration", name)

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		e.fireProgress(ProgressEvent{
			Name:      name,
			Direction: dir,
			Status:    StatusFailed,
			Duration:  duration,
			Error:     err,
		})
		logger.Debug("step failed", "direction", dir, "migration", name, "duration", duration, "error", err)

		return fmt.Errorf("%w: %s %s: %w", ErrExecutionFailed, dir, name, err)
	}

	e.fireProgress(ProgressEvent{
		Name:      name,
		Direction: dir,
		Status:    StatusCompleted,
		Duration:  duration,
	})
	logger.Debug("step completed", "direction", dir, "migration", name, "duration", duration)

	return nil
}

func (e *Executor) fireProgress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}
