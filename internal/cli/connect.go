package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aqasim81/migra/internal/config"
	"github.com/aqasim81/migra/internal/database"
	"github.com/aqasim81/migra/internal/executor"
	"github.com/aqasim81/migra/internal/logging"
	"github.com/aqasim81/migra/internal/migration"
)

// connect resolves the connection string and client from cfg and opens
// a database client on the configured bookkeeping table.
func connect(ctx context.Context, cfg *config.Config) (database.Client, error) {
	url, err := cfg.ConnectionString()
	if err != nil {
		return nil, err //nolint:wrapcheck // config sentinels are user-facing
	}

	kind, err := cfg.ClientKind()
	if err != nil {
		return nil, err //nolint:wrapcheck // config sentinels are user-facing
	}

	logging.FromContext(ctx).Debug("connecting", "client", kind, "url", config.RedactURL(url))

	client, err := database.Open(ctx, database.Options{
		Client:    kind,
		URL:       url,
		TableName: cfg.MigrationsTable(),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", config.RedactURL(url), err)
	}

	return client, nil
}

// closeClient closes client, logging rather than returning a failure so
// the command's own error is what the user sees.
func closeClient(ctx context.Context, client database.Client) {
	if err := client.Close(ctx); err != nil {
		logging.FromContext(ctx).Warn("closing database connection", "error", err)
	}
}

// loadMigrations discovers the on-disk migrations under cfg.
func loadMigrations(cfg *config.Config) (migration.Set, *migration.Source, error) {
	dir := cfg.MigrationsPath()

	all, err := migration.LoadFromDir(dir)
	if err != nil {
		return migration.Set{}, nil, fmt.Errorf("loading migrations: %w", err)
	}

	return all, migration.NewSource(dir), nil
}

// printProgress writes "<direction> <name>..." when a step starts.
func printProgress(out io.Writer) func(executor.ProgressEvent) {
	return func(event executor.ProgressEvent) {
		if event.Status == executor.StatusStarting {
			fmt.Fprintf(out, "%s %s...\n", event.Direction, event.Name)
		}
	}
}
